// Package render rasterises node widgets to images.
//
// # Overview
//
// A [Widget] is a plain description of how a node is drawn: its title
// lines, the visible input and output pins, and the advanced-pin toggle.
// [WidgetFor] builds one from a live node; it must run on the goroutine that
// owns the node's world. Everything after that works on copies.
//
// [ToDOT] lays the widget out as a Graphviz HTML-table node on a generous
// transparent canvas. [GraphvizRenderer] renders the DOT source to PNG with
// go-graphviz, memoising the bytes in a [cache.Cache] keyed by the DOT hash,
// and [CropToContent] trims the canvas back to the drawn pixels.
//
//	w := render.WidgetFor(node)
//	img, err := renderer.Render(ctx, w)
//	err = render.WriteOpaquePNG(f, img)
//
// # Opacity
//
// Written images never carry transparency: [Flatten] composites the cropped
// node over the graph background colour and forces every alpha to 255.
//
// [cache.Cache]: github.com/matzehuels/nodedocs/pkg/cache.Cache
package render
