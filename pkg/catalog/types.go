package catalog

import "strings"

// Module is a native code module owning a set of classes.
type Module struct {
	object
	Classes []*Class
}

// Class is a native or blueprint-generated class.
type Class struct {
	object
	DisplayName string
	Module      string
	Parent      *Class
	Functions   []*Function
}

// FriendlyName returns the display name, falling back to the class name.
func (c *Class) FriendlyName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.name
}

// IsChildOf reports whether c is other or derives from it.
func (c *Class) IsChildOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Function returns the function declared on c (not its parents) with the
// given name.
func (c *Class) Function(name string) *Function {
	for _, f := range c.Functions {
		if f.name == name {
			return f
		}
	}
	return nil
}

// Blueprint is a content asset that generates a class.
type Blueprint struct {
	object
	Path           string
	ParentClass    *Class
	GeneratedClass *Class
}

// Access is a function's access specifier.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

var accessNames = map[string]Access{
	"public":    AccessPublic,
	"protected": AccessProtected,
	"private":   AccessPrivate,
}

func (a Access) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "public"
	}
}

// Function is a callable declared on a class.
type Function struct {
	object
	Owner *Class
	// Access is ignored for blueprint events, which carry no specifier.
	Access         Access
	BlueprintEvent bool
	Static         bool
	Meta           map[string]string
}

// HasMeta reports whether the function carries the metadata key.
func (f *Function) HasMeta(key string) bool {
	_, ok := f.Meta[key]
	return ok
}

// SpawnerKind classifies what a spawner produces.
type SpawnerKind int

const (
	SpawnerGeneric SpawnerKind = iota
	SpawnerFunction
	SpawnerEvent
	SpawnerVariable
	SpawnerDelegate
	SpawnerBound
	SpawnerComponent
)

var spawnerKindNames = map[string]SpawnerKind{
	"generic":   SpawnerGeneric,
	"function":  SpawnerFunction,
	"event":     SpawnerEvent,
	"variable":  SpawnerVariable,
	"delegate":  SpawnerDelegate,
	"bound":     SpawnerBound,
	"component": SpawnerComponent,
}

func (k SpawnerKind) String() string {
	for name, v := range spawnerKindNames {
		if v == k {
			return name
		}
	}
	return "unknown"
}

// NodeKind classifies the node a spawner creates.
type NodeKind int

const (
	NodeGeneric NodeKind = iota
	NodeCallFunction
	NodeEvent
	NodeDynamicCast
	NodeMessage
	NodeMacro
	NodeVariable
	// NodeComment is an editor annotation, not a script node.
	NodeComment
)

var nodeKindNames = map[string]NodeKind{
	"generic":       NodeGeneric,
	"call_function": NodeCallFunction,
	"event":         NodeEvent,
	"dynamic_cast":  NodeDynamicCast,
	"message":       NodeMessage,
	"macro":         NodeMacro,
	"variable":      NodeVariable,
	"comment":       NodeComment,
}

func (k NodeKind) String() string {
	for name, v := range nodeKindNames {
		if v == k {
			return name
		}
	}
	return "unknown"
}

// IsScript reports whether nodes of this kind belong to the script graph
// schema and can be documented.
func (k NodeKind) IsScript() bool { return k != NodeComment }

// defaultNodeKind returns the node kind a spawner kind produces when the
// manifest does not say otherwise.
func defaultNodeKind(k SpawnerKind) NodeKind {
	switch k {
	case SpawnerFunction:
		return NodeCallFunction
	case SpawnerEvent:
		return NodeEvent
	case SpawnerVariable:
		return NodeVariable
	default:
		return NodeGeneric
	}
}

func lookupName[T any](table map[string]T, name string) (T, bool) {
	v, ok := table[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}
