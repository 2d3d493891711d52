// Package assets provides the static files shipped next to generated docs.
//
// The files are embedded into the binary using go:embed: the XSL transform
// browsers apply to every document, its stylesheet and script, and a small
// index.html loader that is dropped into every generated directory.
package assets

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir is the directory name the assets are copied to under the output root.
const Dir = "static"

// Stylesheet is the XSL transform's file name inside Dir.
const Stylesheet = "transform.xslt"

// Loader is the file copied into every generated directory.
const Loader = "index.html"

//go:embed static
var files embed.FS

// FS returns the embedded files rooted at the static directory.
func FS() fs.FS {
	sub, err := fs.Sub(files, Dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// LoaderHTML returns the index.html loader.
func LoaderHTML() []byte {
	data, err := fs.ReadFile(files, Dir+"/"+Loader)
	if err != nil {
		panic(err)
	}
	return data
}

// CopyTo writes every embedded file into <root>/static.
func CopyTo(root string) error {
	dst := filepath.Join(root, Dir)
	return fs.WalkDir(FS(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := fs.ReadFile(FS(), path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
}

// StylesheetHref returns the stylesheet href for a document depth levels
// below the output root.
func StylesheetHref(depth int) string {
	href := Dir + "/" + Stylesheet
	for range depth {
		href = "../" + href
	}
	return href
}
