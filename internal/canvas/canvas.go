// Package canvas stores rendered pixels and encodes them as PPM, PNG or
// BMP images.
package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/kingrea/rayforge/internal/geom"
)

// Canvas is a width×height grid of linear colors, initially black.
type Canvas struct {
	Width, Height int
	pixels        []geom.Color
}

func New(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		pixels: make([]geom.Color, width*height),
	}
}

// WritePixel sets (x, y). Coordinates outside the canvas are ignored.
// Distinct pixels may be written from different goroutines.
func (c *Canvas) WritePixel(x, y int, col geom.Color) {
	if !c.contains(x, y) {
		return
	}
	c.pixels[y*c.Width+x] = col
}

// PixelAt returns the color at (x, y), or black outside the canvas.
func (c *Canvas) PixelAt(x, y int) geom.Color {
	if !c.contains(x, y) {
		return geom.Black
	}
	return c.pixels[y*c.Width+x]
}

// Fill paints every pixel with col.
func (c *Canvas) Fill(col geom.Color) {
	for i := range c.pixels {
		c.pixels[i] = col
	}
}

func (c *Canvas) contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Width && y < c.Height
}

// Image exposes the canvas as an image.Image without copying.
func (c *Canvas) Image() image.Image {
	return imageView{c}
}

type imageView struct {
	c *Canvas
}

func (v imageView) ColorModel() color.Model { return color.RGBAModel }

func (v imageView) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.c.Width, v.c.Height)
}

func (v imageView) At(x, y int) color.Color {
	px := v.c.PixelAt(x, y)
	return color.RGBA{
		R: uint8(component(px.R)),
		G: uint8(component(px.G)),
		B: uint8(component(px.B)),
		A: 0xff,
	}
}

// component maps a linear channel onto 0..255.
func component(v float64) int {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 255
	default:
		return int(math.Ceil(v * 255))
	}
}
