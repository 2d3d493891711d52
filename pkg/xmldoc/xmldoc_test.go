package xmldoc

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncode(t *testing.T) {
	doc := New("root")
	doc.Root.AppendText("name", "A & B")
	classes := doc.Root.Append("classes")
	cls := classes.Append("class")
	cls.AppendText("id", "Actor")
	doc.Root.AppendCDATA("description", "<b>bold</b>")
	doc.Root.Append("empty")

	var buf bytes.Buffer
	if err := doc.Encode(&buf, "static/transform.xslt"); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<?xml-stylesheet type="text/xsl" href="static/transform.xslt"?>
<root>
	<name>A &amp; B</name>
	<classes>
		<class>
			<id>Actor</id>
		</class>
	</classes>
	<description><![CDATA[<b>bold</b>]]></description>
	<empty/>
</root>
`
	if got := buf.String(); got != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
	}
}

func TestEncodeWithoutStylesheet(t *testing.T) {
	var buf bytes.Buffer
	if err := New("root").Encode(&buf, ""); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || lines[1] != "<root/>" {
		t.Errorf("Encode() lines = %q", lines)
	}
}

func TestCDATASplitsTerminator(t *testing.T) {
	doc := New("root")
	doc.Root.AppendCDATA("text", "a]]>b")

	var buf bytes.Buffer
	if err := doc.Encode(&buf, ""); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := back.Root.Find("text").Text; got != "a]]>b" {
		t.Errorf("round trip text = %q, want %q", got, "a]]>b")
	}
}

func TestCDATAReplacesInvalidCharacters(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Rings the bell\x07 now", "Rings the bell\uFFFD now"},
		{"nul\x00", "nul\uFFFD"},
		{"bad \xff utf8", "bad \uFFFD utf8"},
		{"tab\tand\nnewline", "tab\tand\nnewline"},
		{"emoji \U0001F600", "emoji \U0001F600"},
	}
	for _, tt := range tests {
		doc := New("root")
		doc.Root.AppendCDATA("description", tt.in)

		var buf bytes.Buffer
		if err := doc.Encode(&buf, ""); err != nil {
			t.Fatalf("Encode(%q): %v", tt.in, err)
		}
		back, err := Decode(&buf)
		if err != nil {
			t.Fatalf("Decode(%q): %v", tt.in, err)
		}
		if got := back.Root.Find("description").Text; got != tt.want {
			t.Errorf("round trip of %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeRejectsUnnamedElement(t *testing.T) {
	doc := New("root")
	doc.Root.Children = append(doc.Root.Children, &Element{})
	if err := doc.Encode(&bytes.Buffer{}, ""); err == nil {
		t.Error("Encode() error = nil for unnamed element")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "index.xml")
	doc := New("function")
	doc.Root.AppendText("id", "GetActorLocation")
	inputs := doc.Root.Append("inputs")
	inputs.Append("param").AppendText("name", "Target")
	inputs.Append("param").AppendText("name", "Other")

	if err := doc.Save(path, "../../static/transform.xslt"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(data), "\n")
	if want := `<?xml-stylesheet type="text/xsl" href="../../static/transform.xslt"?>`; lines[1] != want {
		t.Errorf("line 2 = %q, want %q", lines[1], want)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := back.Root.Path("id").Text; got != "GetActorLocation" {
		t.Errorf("id = %q", got)
	}
	if got := len(back.Root.Find("inputs").FindAll("param")); got != 2 {
		t.Errorf("len(params) = %d, want 2", got)
	}
	if back.Root.Path("inputs", "missing") != nil {
		t.Error("Path() found a missing element")
	}

	href, err := Stylesheet(bytes.NewReader(data))
	if err != nil || href != "../../static/transform.xslt" {
		t.Errorf("Stylesheet() = %q, %v", href, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []string{
		"",
		"<a></b>",
	}
	for _, in := range tests {
		if _, err := Decode(strings.NewReader(in)); err == nil {
			t.Errorf("Decode(%q) error = nil", in)
		}
	}
}
