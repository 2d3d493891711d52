// Package enumerate yields the source objects a documentation task visits.
//
// Enumerators walk live catalog objects and must only be advanced on the
// goroutine that owns the catalog's World. The objects they return may be
// invalidated afterwards; callers hold them through weak handles.
package enumerate

import (
	"github.com/matzehuels/nodedocs/pkg/catalog"
)

// Enumerator yields source objects one at a time.
type Enumerator interface {
	// Next returns the next object, or nil when exhausted.
	Next() catalog.Object
	// EstimatedSize is the number of objects the enumerator expected to
	// yield when it was created.
	EstimatedSize() int
}

// NativeModuleEnumerator yields the classes of one native module in
// declaration order.
type NativeModuleEnumerator struct {
	world   *catalog.World
	classes []catalog.Weak[*catalog.Class]
	pos     int
}

// NewNativeModule creates an enumerator over the named module. found is
// false when the catalog has no such module; the enumerator is then empty.
func NewNativeModule(cat *catalog.Catalog, name string) (e *NativeModuleEnumerator, found bool) {
	e = &NativeModuleEnumerator{world: cat.World()}
	mod, ok := cat.Module(name)
	if !ok {
		return e, false
	}
	for _, cls := range mod.Classes {
		e.classes = append(e.classes, catalog.WeakOf(cls))
	}
	return e, true
}

func (e *NativeModuleEnumerator) Next() catalog.Object {
	for e.pos < len(e.classes) {
		ref := e.classes[e.pos]
		e.pos++
		if cls, ok := ref.Get(e.world); ok {
			return cls
		}
	}
	return nil
}

func (e *NativeModuleEnumerator) EstimatedSize() int { return len(e.classes) }

// ContentPathEnumerator yields the blueprints under a content path sorted by
// asset path. The asset list is gathered when the enumerator is created.
type ContentPathEnumerator struct {
	world  *catalog.World
	assets []catalog.Weak[*catalog.Blueprint]
	pos    int
}

// NewContentPath creates an enumerator over the blueprints under path.
func NewContentPath(cat *catalog.Catalog, path string) *ContentPathEnumerator {
	e := &ContentPathEnumerator{world: cat.World()}
	for _, bp := range cat.BlueprintsUnder(path) {
		e.assets = append(e.assets, catalog.WeakOf(bp))
	}
	return e
}

func (e *ContentPathEnumerator) Next() catalog.Object {
	for e.pos < len(e.assets) {
		ref := e.assets[e.pos]
		e.pos++
		if bp, ok := ref.Get(e.world); ok {
			return bp
		}
	}
	return nil
}

func (e *ContentPathEnumerator) EstimatedSize() int { return len(e.assets) }

// Composite chains enumerators in order.
type Composite struct {
	parts []Enumerator
	size  int
}

// NewComposite chains parts. Nil parts are ignored.
func NewComposite(parts ...Enumerator) *Composite {
	c := &Composite{}
	for _, p := range parts {
		if p == nil {
			continue
		}
		c.parts = append(c.parts, p)
		c.size += p.EstimatedSize()
	}
	return c
}

func (c *Composite) Next() catalog.Object {
	for len(c.parts) > 0 {
		if o := c.parts[0].Next(); o != nil {
			return o
		}
		c.parts = c.parts[1:]
	}
	return nil
}

func (c *Composite) EstimatedSize() int { return c.size }

// ForTask creates the enumerators for a task: one per native module in the
// order given, then one per distinct content path in first-seen order. It
// also returns the module names the catalog does not know.
func ForTask(cat *catalog.Catalog, modules, contentPaths []string) (enums []Enumerator, missing []string) {
	for _, name := range modules {
		e, found := NewNativeModule(cat, name)
		if !found {
			missing = append(missing, name)
			continue
		}
		enums = append(enums, e)
	}

	seen := make(map[string]bool, len(contentPaths))
	for _, path := range contentPaths {
		if seen[path] {
			continue
		}
		seen[path] = true
		enums = append(enums, NewContentPath(cat, path))
	}
	return enums, missing
}

var (
	_ Enumerator = (*NativeModuleEnumerator)(nil)
	_ Enumerator = (*ContentPathEnumerator)(nil)
	_ Enumerator = (*Composite)(nil)
)
