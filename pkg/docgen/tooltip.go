package docgen

import (
	"strings"
	"unicode"

	"github.com/matzehuels/nodedocs/pkg/catalog"
)

// PinDoc is the documented form of a pin.
type PinDoc struct {
	Name        string
	Type        string
	Description string
}

// ParsePinHover splits pin hover text into its name line, its type line and
// the description that follows any blank lines.
//
// The layout is whatever catalog.Node.PinHoverText produces. If that format
// changes this parser breaks; TestParsePinHoverMatchesCatalog pins the two
// together.
func ParsePinHover(text string) (name, typ, desc string) {
	rest := strings.ReplaceAll(text, "\r\n", "\n")
	name, rest, _ = strings.Cut(rest, "\n")
	typ, rest, _ = strings.Cut(rest, "\n")
	return name, typ, strings.TrimLeft(rest, "\n")
}

// DocumentPin returns the name, type and description documented for p.
//
// The description comes from the node's hover text. Name and type are read
// from the pin directly; unnamed exec pins are called "In" or "Out".
func DocumentPin(n *catalog.Node, p *catalog.Pin) PinDoc {
	var doc PinDoc
	if hover := n.PinHoverText(p); hover != "" {
		_, _, doc.Description = ParsePinHover(hover)
	}

	doc.Name = p.DisplayName()
	if doc.Name == "" && p.Category == catalog.PinExec {
		if p.Direction == catalog.DirInput {
			doc.Name = "In"
		} else {
			doc.Name = "Out"
		}
	}
	doc.Type = p.TypeText()
	return doc
}

// targetMarker is appended by the engine to member call titles and tooltips.
const targetMarker = "Target is "

// trimTarget cuts s at the first "Target is " and trims trailing space.
func trimTarget(s string) string {
	if i := strings.Index(s, targetMarker); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
