package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"

	"github.com/disintegration/imaging"
)

// CropToContent trims fully transparent rows and columns from the edges of
// img. An image with no visible pixel is returned unchanged.
func CropToContent(img image.Image) image.Image {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := nrgba.Pix[(y-b.Min.Y)*nrgba.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return nrgba
	}
	return imaging.Crop(nrgba, image.Rect(minX, minY, maxX+1, maxY+1))
}

// Flatten composites img over bg and returns a fully opaque copy.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	out := imaging.Overlay(imaging.New(b.Dx(), b.Dy(), bg), img, image.Pt(0, 0), 1.0)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// WriteOpaquePNG flattens img over the graph background and encodes it as
// PNG.
func WriteOpaquePNG(w io.Writer, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("render: empty image")
	}
	return imaging.Encode(w, Flatten(img, Background()), imaging.PNG)
}

// Background returns the graph editor background colour.
func Background() color.NRGBA {
	return parseHex(BackgroundColor)
}

func parseHex(s string) color.NRGBA {
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil || len(s) != 7 {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
