package catalog

import (
	"slices"
	"strings"

	"github.com/matzehuels/nodedocs/pkg/errors"
)

// RootClassName is the implicit base class every catalog contains.
const RootClassName = "Object"

// Catalog is the set of documentable source objects and their spawners.
//
// A Catalog and everything reachable from it belongs to its World's owning
// goroutine.
type Catalog struct {
	world      *World
	modules    []*Module
	classes    map[string]*Class
	blueprints []*Blueprint
	actions    map[ID][]*Spawner
}

func newCatalog() *Catalog {
	c := &Catalog{
		world:   NewWorld(),
		classes: make(map[string]*Class),
		actions: make(map[ID][]*Spawner),
	}
	root := &Class{object: object{id: c.world.allocate(), name: RootClassName}}
	c.world.add(root, false)
	c.classes[RootClassName] = root
	return c
}

// World returns the world the catalog's objects live in.
func (c *Catalog) World() *World { return c.world }

// Modules returns the native modules in declaration order.
func (c *Catalog) Modules() []*Module { return c.modules }

// Module returns the native module with the given name.
func (c *Catalog) Module(name string) (*Module, bool) {
	for _, m := range c.modules {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}

// Class returns the class with the given name.
func (c *Catalog) Class(name string) (*Class, bool) {
	cls, ok := c.classes[name]
	return cls, ok
}

// Blueprints returns every blueprint sorted by asset path.
func (c *Catalog) Blueprints() []*Blueprint { return c.blueprints }

// BlueprintsUnder returns the live blueprints whose asset path lies under
// path, sorted by asset path.
func (c *Catalog) BlueprintsUnder(path string) []*Blueprint {
	prefix := strings.TrimSuffix(path, "/") + "/"
	var out []*Blueprint
	for _, bp := range c.blueprints {
		if !c.world.IsValid(bp.ObjectID()) {
			continue
		}
		if bp.Path == path || strings.HasPrefix(bp.Path, prefix) {
			out = append(out, bp)
		}
	}
	return out
}

// Actions returns the spawners registered for a source object, in
// registration order. The returned slice must not be modified.
func (c *Catalog) Actions(o Object) []*Spawner {
	if o == nil {
		return nil
	}
	return c.actions[o.ObjectID()]
}

// ActionCount returns the total number of registered spawners.
func (c *Catalog) ActionCount() int {
	n := 0
	for _, list := range c.actions {
		n += len(list)
	}
	return n
}

// NewGraph creates a transient scratch blueprint deriving from the named
// context class, with one empty graph. An empty name uses RootClassName.
// Both objects are unrooted; the caller roots them.
func (c *Catalog) NewGraph(contextClass string) (*Graph, error) {
	if contextClass == "" {
		contextClass = RootClassName
	}
	parent, ok := c.classes[contextClass]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "blueprint context class %q not found", contextClass)
	}

	bp := &Blueprint{
		object:      object{id: c.world.allocate(), name: "DocGenScratch"},
		Path:        "/Transient/DocGenScratch",
		ParentClass: parent,
	}
	c.world.add(bp, true)

	g := &Graph{
		object:    object{id: c.world.allocate(), name: "TempoGraph"},
		Blueprint: bp,
	}
	c.world.add(g, true)
	return g, nil
}

func (c *Catalog) addModule(name string) *Module {
	m := &Module{object: object{id: c.world.allocate(), name: name}}
	c.world.add(m, false)
	c.modules = append(c.modules, m)
	return m
}

func (c *Catalog) addClass(name, display, module string, parent *Class) *Class {
	cls := &Class{
		object:      object{id: c.world.allocate(), name: name},
		DisplayName: display,
		Module:      module,
		Parent:      parent,
	}
	c.world.add(cls, false)
	c.classes[name] = cls
	return cls
}

func (c *Catalog) addFunction(owner *Class, name string) *Function {
	f := &Function{
		object: object{id: c.world.allocate(), name: name},
		Owner:  owner,
		Meta:   map[string]string{},
	}
	c.world.add(f, false)
	owner.Functions = append(owner.Functions, f)
	return f
}

func (c *Catalog) addBlueprint(name, path string, parent, generated *Class) *Blueprint {
	bp := &Blueprint{
		object:         object{id: c.world.allocate(), name: name},
		Path:           path,
		ParentClass:    parent,
		GeneratedClass: generated,
	}
	c.world.add(bp, false)
	c.blueprints = append(c.blueprints, bp)
	slices.SortStableFunc(c.blueprints, func(a, b *Blueprint) int {
		return strings.Compare(a.Path, b.Path)
	})
	return bp
}

func (c *Catalog) addSpawner(source Object, kind SpawnerKind, nodeKind NodeKind, fn *Function, tmpl Template) *Spawner {
	s := &Spawner{
		object:   object{id: c.world.allocate(), name: tmpl.DocID},
		Kind:     kind,
		NodeKind: nodeKind,
		Function: fn,
		Template: tmpl,
		world:    c.world,
	}
	c.world.add(s, false)
	c.actions[source.ObjectID()] = append(c.actions[source.ObjectID()], s)
	return s
}
