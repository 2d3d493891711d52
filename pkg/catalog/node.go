package catalog

import (
	"fmt"
	"strings"
)

// SelfPinName is the name of the implicit target pin on member calls.
const SelfPinName = "self"

// Graph is a scratch graph nodes are spawned into.
type Graph struct {
	object
	Blueprint *Blueprint
	Nodes     []*Node
}

// Outer returns the blueprint owning the graph.
func (g *Graph) Outer() Object {
	if g.Blueprint == nil {
		return nil
	}
	return g.Blueprint
}

// RemoveNode detaches n from the graph so it becomes collectable.
func (g *Graph) RemoveNode(n *Node) {
	for i, cur := range g.Nodes {
		if cur == n {
			g.Nodes = append(g.Nodes[:i], g.Nodes[i+1:]...)
			n.graph = nil
			return
		}
	}
}

// Outer returns nil; scratch blueprints are rooted explicitly.
func (b *Blueprint) Outer() Object { return nil }

// TitleType selects which node title to return.
type TitleType int

const (
	// TitleListView is the short title shown in menus.
	TitleListView TitleType = iota
	// TitleFull is the full title drawn on the node, including any
	// engine-injected target line.
	TitleFull
)

// AdvancedPins describes whether a node has advanced pins and whether they
// are currently expanded.
type AdvancedPins int

const (
	AdvancedNoPins AdvancedPins = iota
	AdvancedHidden
	AdvancedShown
)

// Direction is a pin's direction.
type Direction int

const (
	DirInput Direction = iota
	DirOutput
)

func (d Direction) String() string {
	if d == DirOutput {
		return "out"
	}
	return "in"
}

// Pin categories understood by TypeText.
const (
	PinExec     = "exec"
	PinBool     = "bool"
	PinByte     = "byte"
	PinInt      = "int"
	PinFloat    = "float"
	PinName     = "name"
	PinString   = "string"
	PinText     = "text"
	PinObject   = "object"
	PinClass    = "class"
	PinStruct   = "struct"
	PinWildcard = "wildcard"
)

var pinCategoryText = map[string]string{
	PinExec:     "Exec",
	PinBool:     "Boolean",
	PinByte:     "Byte",
	PinInt:      "Integer",
	PinFloat:    "Float",
	PinName:     "Name",
	PinString:   "String",
	PinText:     "Text",
	PinWildcard: "Wildcard",
}

// Pin is a node input or output.
type Pin struct {
	Name         string
	FriendlyName string
	Direction    Direction
	Category     string
	SubType      string
	Array        bool
	Description  string
	DefaultValue string
	Hidden       bool
	Advanced     bool

	// DefaultValueIgnored hides the default value box when the node is drawn.
	DefaultValueIgnored bool

	owner *Node
}

// Owner returns the node the pin belongs to.
func (p *Pin) Owner() *Node { return p.owner }

// DisplayName returns the name drawn next to the pin.
// Unnamed execution pins have an empty display name.
func (p *Pin) DisplayName() string {
	if p.FriendlyName != "" {
		return p.FriendlyName
	}
	if p.Category == PinExec && (p.Name == "execute" || p.Name == "then" || p.Name == "") {
		return ""
	}
	return p.Name
}

// TypeText returns the human-readable pin type.
func (p *Pin) TypeText() string {
	var text string
	switch p.Category {
	case PinObject:
		text = p.SubType + " Object Reference"
	case PinClass:
		text = p.SubType + " Class Reference"
	case PinStruct:
		text = p.SubType + " Structure"
	default:
		if t, ok := pinCategoryText[p.Category]; ok {
			text = t
		} else {
			text = p.Category
		}
	}
	if p.Array {
		return "Array of " + text
	}
	return text
}

// Node is a spawned graph node.
type Node struct {
	object
	Kind     NodeKind
	Function *Function
	Pins     []*Pin

	// AdvancedPinDisplay may be flipped to AdvancedShown before drawing.
	AdvancedPinDisplay AdvancedPins

	graph     *Graph
	listTitle string
	fullTitle string
	tooltip   string
	category  string
	docID     string
}

// Outer returns the graph the node was spawned into.
func (n *Node) Outer() Object {
	if n.graph == nil {
		return nil
	}
	return n.graph
}

// Graph returns the owning graph, or nil once removed.
func (n *Node) Graph() *Graph { return n.graph }

// Title returns the node title of the requested type.
func (n *Node) Title(t TitleType) string {
	if t == TitleFull {
		return n.fullTitle
	}
	return n.listTitle
}

// TooltipText returns the node's tooltip.
func (n *Node) TooltipText() string { return n.tooltip }

// MenuCategory returns the "|"-separated palette category.
func (n *Node) MenuCategory() string { return n.category }

// DocumentationExcerptName returns the node's documentation identifier.
func (n *Node) DocumentationExcerptName() string { return n.docID }

// FindPin returns the pin with the given name, or nil.
func (n *Node) FindPin(name string) *Pin {
	for _, p := range n.Pins {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PinHoverText returns the tooltip shown when hovering a pin.
//
// The format is: display name, type, a blank line, then the description.
func (n *Node) PinHoverText(p *Pin) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s", p.DisplayName(), p.TypeText())
	if p.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", p.Description)
	}
	return b.String()
}
