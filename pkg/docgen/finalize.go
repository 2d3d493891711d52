package docgen

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matzehuels/nodedocs/pkg/assets"
	"github.com/matzehuels/nodedocs/pkg/errors"
)

func stylesheetHref(depth int) string { return assets.StylesheetHref(depth) }

// Finalize saves every class document and the index, copies the static
// assets and drops the index.html loader into every generated directory.
//
// It runs on the worker once no live-object method can still be running.
// Documents already on disk are left in place when a step fails.
func (g *Generator) Finalize() error {
	if g.index == nil {
		return errors.New(errors.ErrCodeFinalizeFailed, "generator was not initialized")
	}
	out := g.opts.OutputDir

	for _, id := range g.classOrder {
		path := filepath.Join(out, id, "index.xml")
		if err := g.classDocs[id].Save(path, stylesheetHref(1)); err != nil {
			return errors.Wrap(errors.ErrCodeFinalizeFailed, err, "save class document %s", id)
		}
	}
	if err := g.index.Save(filepath.Join(out, "index.xml"), stylesheetHref(0)); err != nil {
		return errors.Wrap(errors.ErrCodeFinalizeFailed, err, "save index document")
	}
	if err := assets.CopyTo(out); err != nil {
		return errors.Wrap(errors.ErrCodeFinalizeFailed, err, "copy static assets")
	}
	if err := writeLoaders(out); err != nil {
		return errors.Wrap(errors.ErrCodeFinalizeFailed, err, "write index.html loaders")
	}

	g.logger.Info("documentation written", "dir", out, "classes", len(g.classOrder), "nodes", g.nodes)
	return nil
}

// writeLoaders copies the index.html loader into root and every directory
// below it except the asset directory, which already has one.
func writeLoaders(root string) error {
	loader := assets.LoaderHTML()
	static := filepath.Join(root, assets.Dir)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path == static {
			return filepath.SkipDir
		}
		return os.WriteFile(filepath.Join(path, assets.Loader), loader, 0644)
	})
}
