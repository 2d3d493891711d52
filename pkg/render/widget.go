package render

import (
	"strings"

	"github.com/matzehuels/nodedocs/pkg/catalog"
)

// Toggle is the state of a widget's advanced-pin arrow row.
type Toggle int

const (
	ToggleNone Toggle = iota
	ToggleCollapsed
	ToggleExpanded
)

// WidgetPin is one drawn pin.
type WidgetPin struct {
	Label    string
	Category string
	Array    bool
	// Default is drawn in an inline value box; empty hides the box.
	Default string
}

// Widget describes a node as drawn in the graph editor.
type Widget struct {
	TitleLines []string
	Kind       catalog.NodeKind
	Pure       bool
	Inputs     []WidgetPin
	Outputs    []WidgetPin
	Toggle     Toggle
}

// WidgetFor snapshots how n is currently drawn. Hidden pins are never drawn;
// advanced pins only while the node's advanced display is expanded.
func WidgetFor(n *catalog.Node) Widget {
	w := Widget{
		TitleLines: strings.Split(n.Title(catalog.TitleFull), "\n"),
		Kind:       n.Kind,
		Pure:       true,
	}
	switch n.AdvancedPinDisplay {
	case catalog.AdvancedHidden:
		w.Toggle = ToggleCollapsed
	case catalog.AdvancedShown:
		w.Toggle = ToggleExpanded
	}

	for _, p := range n.Pins {
		if p.Category == catalog.PinExec {
			w.Pure = false
		}
		if p.Hidden || (p.Advanced && n.AdvancedPinDisplay != catalog.AdvancedShown) {
			continue
		}
		wp := WidgetPin{
			Label:    p.DisplayName(),
			Category: p.Category,
			Array:    p.Array,
		}
		if p.Direction == catalog.DirInput && !p.DefaultValueIgnored && p.Category != catalog.PinExec {
			wp.Default = p.DefaultValue
		}
		if p.Direction == catalog.DirInput {
			w.Inputs = append(w.Inputs, wp)
		} else {
			w.Outputs = append(w.Outputs, wp)
		}
	}
	return w
}
