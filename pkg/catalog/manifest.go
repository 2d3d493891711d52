package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/nodedocs/pkg/errors"
)

// Manifest is the serialized form of a Catalog.
type Manifest struct {
	Modules    []ModuleSpec    `yaml:"modules"`
	Blueprints []BlueprintSpec `yaml:"blueprints"`
}

// ModuleSpec declares a native module.
type ModuleSpec struct {
	Name    string      `yaml:"name"`
	Classes []ClassSpec `yaml:"classes"`
}

// ClassSpec declares a native class and the actions it owns.
type ClassSpec struct {
	Name        string         `yaml:"name"`
	DisplayName string         `yaml:"display_name"`
	Parent      string         `yaml:"parent"`
	Functions   []FunctionSpec `yaml:"functions"`
	Actions     []ActionSpec   `yaml:"actions"`
}

// BlueprintSpec declares a content blueprint.
type BlueprintSpec struct {
	Name           string         `yaml:"name"`
	Path           string         `yaml:"path"`
	Parent         string         `yaml:"parent"`
	GeneratedClass string         `yaml:"generated_class"`
	DisplayName    string         `yaml:"display_name"`
	Functions      []FunctionSpec `yaml:"functions"`
	Actions        []ActionSpec   `yaml:"actions"`
}

// FunctionSpec declares a function.
type FunctionSpec struct {
	Name   string   `yaml:"name"`
	Access string   `yaml:"access"`
	Event  bool     `yaml:"event"`
	Static bool     `yaml:"static"`
	Meta   []string `yaml:"meta"`
}

// ActionSpec declares one spawner.
type ActionSpec struct {
	Spawner  string    `yaml:"spawner"`
	Node     string    `yaml:"node"`
	Function string    `yaml:"function"`
	Title    string    `yaml:"title"`
	Tooltip  string    `yaml:"tooltip"`
	Category string    `yaml:"category"`
	DocID    string    `yaml:"doc_id"`
	Pins     []PinSpec `yaml:"pins"`
}

// PinSpec declares a pin on a spawned node.
type PinSpec struct {
	Name         string `yaml:"name"`
	FriendlyName string `yaml:"friendly_name"`
	Dir          string `yaml:"dir"`
	Type         string `yaml:"type"`
	SubType      string `yaml:"sub_type"`
	Array        bool   `yaml:"array"`
	Description  string `yaml:"description"`
	Default      string `yaml:"default"`
	Hidden       bool   `yaml:"hidden"`
	Advanced     bool   `yaml:"advanced"`
}

// Load reads and builds a catalog manifest from a YAML file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog manifest %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a YAML manifest and builds it. Unknown fields are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode manifest")
	}
	return Build(&m)
}

// Build creates a catalog from a manifest.
func Build(m *Manifest) (*Catalog, error) {
	c := newCatalog()
	b := builder{cat: c}
	if err := b.build(m); err != nil {
		return nil, err
	}
	return c, nil
}

type builder struct {
	cat *Catalog
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidCatalog, format, args...)
}

func (b *builder) build(m *Manifest) error {
	type pending struct {
		cls    *Class
		parent string
	}
	var parents []pending

	// Pass 1: every class exists before anything refers to one.
	moduleClasses := make([][]*Class, len(m.Modules))
	for i, ms := range m.Modules {
		if err := errors.ValidateIdentifier("module", ms.Name); err != nil {
			return err
		}
		if _, dup := b.cat.Module(ms.Name); dup {
			return invalid("duplicate module %q", ms.Name)
		}
		mod := b.cat.addModule(ms.Name)
		for _, cs := range ms.Classes {
			if err := b.checkNewClass(cs.Name); err != nil {
				return err
			}
			cls := b.cat.addClass(cs.Name, cs.DisplayName, ms.Name, nil)
			mod.Classes = append(mod.Classes, cls)
			moduleClasses[i] = append(moduleClasses[i], cls)
			parents = append(parents, pending{cls, cs.Parent})
		}
	}

	bpClasses := make([]*Class, len(m.Blueprints))
	for i, bs := range m.Blueprints {
		if bs.Name == "" {
			return invalid("blueprint at index %d has no name", i)
		}
		if err := errors.ValidateContentPath(bs.Path); err != nil {
			return fmt.Errorf("blueprint %s: %w", bs.Name, err)
		}
		genName := bs.GeneratedClass
		if genName == "" {
			genName = bs.Name + "_C"
		}
		if err := b.checkNewClass(genName); err != nil {
			return err
		}
		display := bs.DisplayName
		if display == "" {
			display = bs.Name
		}
		bpClasses[i] = b.cat.addClass(genName, display, "", nil)
		parents = append(parents, pending{bpClasses[i], bs.Parent})
	}

	// Pass 2: parents.
	for _, p := range parents {
		name := p.parent
		if name == "" {
			name = RootClassName
		}
		parent, ok := b.cat.classes[name]
		if !ok {
			return invalid("class %s: unknown parent %q", p.cls.name, name)
		}
		if parent.IsChildOf(p.cls) {
			return invalid("class %s: inheritance cycle through %s", p.cls.name, name)
		}
		p.cls.Parent = parent
	}

	// Pass 3: functions.
	for i, ms := range m.Modules {
		for j, cs := range ms.Classes {
			if err := b.addFunctions(moduleClasses[i][j], cs.Functions); err != nil {
				return err
			}
		}
	}
	for i, bs := range m.Blueprints {
		if err := b.addFunctions(bpClasses[i], bs.Functions); err != nil {
			return err
		}
	}

	// Pass 4: blueprints and actions.
	for i, ms := range m.Modules {
		for j, cs := range ms.Classes {
			cls := moduleClasses[i][j]
			if err := b.addActions(cls, cls, cs.Actions); err != nil {
				return err
			}
		}
	}
	for i, bs := range m.Blueprints {
		gen := bpClasses[i]
		bp := b.cat.addBlueprint(bs.Name, bs.Path, gen.Parent, gen)
		if err := b.addActions(bp, gen, bs.Actions); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) checkNewClass(name string) error {
	if err := errors.ValidateIdentifier("class", name); err != nil {
		return err
	}
	if _, dup := b.cat.classes[name]; dup {
		return invalid("duplicate class %q", name)
	}
	return nil
}

func (b *builder) addFunctions(owner *Class, specs []FunctionSpec) error {
	for _, fs := range specs {
		if err := errors.ValidateIdentifier("function", fs.Name); err != nil {
			return fmt.Errorf("class %s: %w", owner.name, err)
		}
		if owner.Function(fs.Name) != nil {
			return invalid("class %s: duplicate function %q", owner.name, fs.Name)
		}
		f := b.cat.addFunction(owner, fs.Name)
		if fs.Access != "" {
			access, ok := lookupName(accessNames, fs.Access)
			if !ok {
				return invalid("function %s.%s: unknown access %q", owner.name, fs.Name, fs.Access)
			}
			f.Access = access
		}
		f.BlueprintEvent = fs.Event
		f.Static = fs.Static
		for _, key := range fs.Meta {
			k, v, _ := strings.Cut(key, "=")
			f.Meta[k] = v
		}
	}
	return nil
}

func (b *builder) addActions(source Object, scope *Class, specs []ActionSpec) error {
	for i, as := range specs {
		where := fmt.Sprintf("%s action %d", source.ObjectName(), i)

		kind := SpawnerGeneric
		if as.Spawner != "" {
			k, ok := lookupName(spawnerKindNames, as.Spawner)
			if !ok {
				return invalid("%s: unknown spawner kind %q", where, as.Spawner)
			}
			kind = k
		}
		nodeKind := defaultNodeKind(kind)
		if as.Node != "" {
			k, ok := lookupName(nodeKindNames, as.Node)
			if !ok {
				return invalid("%s: unknown node kind %q", where, as.Node)
			}
			nodeKind = k
		}

		var fn *Function
		if as.Function != "" {
			f, err := b.resolveFunction(scope, as.Function)
			if err != nil {
				return fmt.Errorf("%s: %w", where, err)
			}
			fn = f
		} else if kind == SpawnerFunction {
			return invalid("%s: function spawner needs a function", where)
		}

		tmpl := Template{
			Title:    as.Title,
			Tooltip:  as.Tooltip,
			Category: as.Category,
			DocID:    as.DocID,
		}
		if tmpl.Title == "" && fn != nil {
			tmpl.Title = fn.name
		}
		if tmpl.Title == "" {
			return invalid("%s: title is required", where)
		}
		if tmpl.DocID == "" {
			if fn != nil {
				tmpl.DocID = fn.name
			} else {
				tmpl.DocID = docIDFromTitle(tmpl.Title)
			}
		}

		for _, ps := range as.Pins {
			p, err := buildPin(ps)
			if err != nil {
				return fmt.Errorf("%s: %w", where, err)
			}
			tmpl.Pins = append(tmpl.Pins, p)
		}

		b.cat.addSpawner(source, kind, nodeKind, fn, tmpl)
	}
	return nil
}

func (b *builder) resolveFunction(scope *Class, ref string) (*Function, error) {
	owner := scope
	name := ref
	if clsName, fnName, ok := strings.Cut(ref, "."); ok {
		cls, found := b.cat.classes[clsName]
		if !found {
			return nil, invalid("function %q: unknown class %q", ref, clsName)
		}
		owner, name = cls, fnName
	}
	for cls := owner; cls != nil; cls = cls.Parent {
		if f := cls.Function(name); f != nil {
			return f, nil
		}
	}
	return nil, invalid("unknown function %q", ref)
}

func buildPin(ps PinSpec) (Pin, error) {
	if ps.Name == "" && ps.Type != PinExec {
		return Pin{}, invalid("pin name is required")
	}
	p := Pin{
		Name:         ps.Name,
		FriendlyName: ps.FriendlyName,
		Category:     strings.ToLower(ps.Type),
		SubType:      ps.SubType,
		Array:        ps.Array,
		Description:  ps.Description,
		DefaultValue: ps.Default,
		Hidden:       ps.Hidden,
		Advanced:     ps.Advanced,
	}
	if p.Category == "" {
		p.Category = PinWildcard
	}
	switch strings.ToLower(ps.Dir) {
	case "", "in", "input":
		p.Direction = DirInput
	case "out", "output":
		p.Direction = DirOutput
	default:
		return Pin{}, invalid("pin %q: unknown direction %q", ps.Name, ps.Dir)
	}
	if p.Category == PinExec && p.Name == "" {
		if p.Direction == DirInput {
			p.Name = "execute"
		} else {
			p.Name = "then"
		}
	}
	return p, nil
}

// docIDFromTitle derives an identifier from a node title by dropping every
// character that is not a letter, digit or underscore.
func docIDFromTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
