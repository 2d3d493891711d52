package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/matzehuels/nodedocs/pkg/catalog"
)

// Graph editor palette.
const (
	BackgroundColor = "#262626"
	bodyColor       = "#141414"
	borderColor     = "#000000"
	textColor       = "#ffffff"
	defaultBoxColor = "#3a3a3a"
)

var headerColors = map[catalog.NodeKind]string{
	catalog.NodeCallFunction: "#2c5b8f",
	catalog.NodeEvent:        "#8c1f1f",
	catalog.NodeMacro:        "#5a5a5a",
	catalog.NodeVariable:     "#3f7f3f",
}

const pureHeaderColor = "#5b8f2c"

var pinColors = map[string]string{
	catalog.PinExec:   "#ffffff",
	catalog.PinBool:   "#920101",
	catalog.PinByte:   "#006f65",
	catalog.PinInt:    "#1fe3af",
	catalog.PinFloat:  "#9ffd4a",
	catalog.PinName:   "#c98ffc",
	catalog.PinString: "#fb00d1",
	catalog.PinText:   "#e27fa4",
	catalog.PinObject: "#00a8f3",
	catalog.PinClass:  "#5800a8",
	catalog.PinStruct: "#0057c8",
}

const wildcardPinColor = "#808080"

// DOTOptions controls the generated DOT source.
type DOTOptions struct {
	// DPI of the rendered image. Zero means 96.
	DPI float64
	// Pad is the transparent margin around the node in inches. The canvas
	// is requested large and cropped afterwards. Zero means 0.5.
	Pad float64
}

func (o DOTOptions) withDefaults() DOTOptions {
	if o.DPI <= 0 {
		o.DPI = 96
	}
	if o.Pad <= 0 {
		o.Pad = 0.5
	}
	return o
}

// ToDOT lays a widget out as a single Graphviz HTML-table node.
func ToDOT(w Widget, opts DOTOptions) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph node {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  pad=\"%.2f\";\n", opts.Pad)
	fmt.Fprintf(&buf, "  dpi=%.0f;\n", opts.DPI)
	buf.WriteString("  node [shape=plaintext, fontname=\"Helvetica\", fontsize=11];\n")
	buf.WriteString("  n [label=<")
	writeTable(&buf, w)
	buf.WriteString(">];\n")
	buf.WriteString("}\n")
	return buf.String()
}

func writeTable(buf *bytes.Buffer, w Widget) {
	fmt.Fprintf(buf, `<TABLE BORDER="1" CELLBORDER="0" CELLSPACING="0" CELLPADDING="4" STYLE="ROUNDED" BGCOLOR="%s" COLOR="%s">`, bodyColor, borderColor)

	header := headerColors[w.Kind]
	if w.Kind == catalog.NodeCallFunction && w.Pure {
		header = pureHeaderColor
	}
	if header == "" {
		header = defaultBoxColor
	}
	if len(w.TitleLines) > 0 && w.TitleLines[0] != "" {
		fmt.Fprintf(buf, `<TR><TD COLSPAN="2" ALIGN="LEFT" BGCOLOR="%s">`, header)
		for i, line := range w.TitleLines {
			if i == 0 {
				fmt.Fprintf(buf, `<FONT COLOR="%s" POINT-SIZE="12"><B>%s</B></FONT>`, textColor, esc(line))
			} else {
				fmt.Fprintf(buf, `<BR ALIGN="LEFT"/><FONT COLOR="#bfbfbf" POINT-SIZE="9"><I>%s</I></FONT>`, esc(line))
			}
		}
		buf.WriteString(`<BR ALIGN="LEFT"/></TD></TR>`)
	}

	rows := max(len(w.Inputs), len(w.Outputs))
	for i := 0; i < rows; i++ {
		buf.WriteString("<TR>")
		if i < len(w.Inputs) {
			writePin(buf, w.Inputs[i], false)
		} else {
			buf.WriteString("<TD></TD>")
		}
		if i < len(w.Outputs) {
			writePin(buf, w.Outputs[i], true)
		} else {
			buf.WriteString("<TD></TD>")
		}
		buf.WriteString("</TR>")
	}

	switch w.Toggle {
	case ToggleCollapsed:
		fmt.Fprintf(buf, `<TR><TD COLSPAN="2" BGCOLOR="%s"><FONT COLOR="%s">&#9660;</FONT></TD></TR>`, defaultBoxColor, textColor)
	case ToggleExpanded:
		fmt.Fprintf(buf, `<TR><TD COLSPAN="2" BGCOLOR="%s"><FONT COLOR="%s">&#9650;</FONT></TD></TR>`, defaultBoxColor, textColor)
	}
	buf.WriteString("</TABLE>")
}

func writePin(buf *bytes.Buffer, p WidgetPin, output bool) {
	glyph := "&#9679;" // filled circle
	if p.Category == catalog.PinExec {
		glyph = "&#9654;" // right-pointing triangle
	} else if p.Array {
		glyph = "&#9638;" // square with grid
	}
	color, ok := pinColors[p.Category]
	if !ok {
		color = wildcardPinColor
	}
	pin := fmt.Sprintf(`<FONT COLOR="%s">%s</FONT>`, color, glyph)
	label := ""
	if p.Label != "" {
		label = fmt.Sprintf(`<FONT COLOR="%s">%s</FONT>`, textColor, esc(p.Label))
	}

	if output {
		buf.WriteString(`<TD ALIGN="RIGHT">`)
		if label != "" {
			buf.WriteString(label + " ")
		}
		buf.WriteString(pin + "</TD>")
		return
	}

	buf.WriteString(`<TD ALIGN="LEFT">` + pin)
	if label != "" {
		buf.WriteString(" " + label)
	}
	if p.Default != "" {
		fmt.Fprintf(buf, ` <FONT COLOR="#bfbfbf" POINT-SIZE="9">[%s]</FONT>`, esc(p.Default))
	}
	buf.WriteString("</TD>")
}

// esc escapes text for an HTML-like Graphviz label.
func esc(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", `<BR ALIGN="LEFT"/>`)
}
