package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nodedocs/pkg/cache"
	"github.com/matzehuels/nodedocs/pkg/observability"
)

// Renderer draws a widget off-screen and returns the cropped pixels.
type Renderer interface {
	Render(ctx context.Context, w Widget) (image.Image, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, w Widget) (image.Image, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, w Widget) (image.Image, error) { return f(ctx, w) }

// GraphvizOptions configures a GraphvizRenderer.
type GraphvizOptions struct {
	DOT    DOTOptions
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// GraphvizRenderer renders widgets with go-graphviz.
//
// A GraphvizRenderer is not safe for concurrent use. It is meant to be
// called from the goroutine that owns the live nodes.
type GraphvizRenderer struct {
	gv   *graphviz.Graphviz
	opts GraphvizOptions
}

// NewGraphviz creates a renderer. Close releases the Graphviz runtime.
func NewGraphviz(ctx context.Context, opts GraphvizOptions) (*GraphvizRenderer, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	opts.DOT = opts.DOT.withDefaults()
	return &GraphvizRenderer{gv: gv, opts: opts}, nil
}

// Render lays w out, rasterises it and crops the result to the drawn node.
func (r *GraphvizRenderer) Render(ctx context.Context, w Widget) (image.Image, error) {
	dot := ToDOT(w, r.opts.DOT)
	key := r.opts.Keyer.ImageKey(cache.Hash([]byte(dot)), cache.ImageKeyOpts{
		Format: "png",
		DPI:    r.opts.DOT.DPI,
		Crop:   true,
	})

	if data, hit, err := r.opts.Cache.Get(ctx, key); err != nil {
		r.opts.Logger.Debug("image cache read failed", "err", err)
	} else if hit {
		if img, err := png.Decode(bytes.NewReader(data)); err == nil {
			observability.Cache().OnCacheHit(ctx, "image")
			return img, nil
		}
		_ = r.opts.Cache.Delete(ctx, key)
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	raw, err := r.renderPNG(ctx, dot)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode rendered png: %w", err)
	}
	cropped := CropToContent(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err == nil {
		if err := r.opts.Cache.Set(ctx, key, buf.Bytes(), r.opts.TTL); err != nil {
			r.opts.Logger.Debug("image cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "image", buf.Len())
		}
	}
	return cropped, nil
}

func (r *GraphvizRenderer) renderPNG(ctx context.Context, dot string) ([]byte, error) {
	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := r.gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the Graphviz runtime.
func (r *GraphvizRenderer) Close() error {
	return r.gv.Close()
}

var _ Renderer = (*GraphvizRenderer)(nil)
