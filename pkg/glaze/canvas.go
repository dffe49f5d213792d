// Package glaze implements the live color map painted onto a vessel: a square
// pixel buffer with rectangle fills and round brush stamps, read back by the
// renderer as the surface texture.
package glaze

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
)

// DefaultSize is the edge length of the color map in pixels.
const DefaultSize = 1024

// DefaultStampRadius is the brush radius in pixels.
const DefaultStampRadius = 20.0

// Canvas is a 2D pixel buffer with paint-like drawing primitives.
// It is not safe for concurrent use.
type Canvas struct {
	img     *image.RGBA
	gc      *draw2dimg.GraphicContext
	version uint64
}

// NewCanvas returns a width×height canvas filled with background.
func NewCanvas(width, height int, background color.Color) *Canvas {
	if width <= 0 {
		width = DefaultSize
	}
	if height <= 0 {
		height = DefaultSize
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := &Canvas{img: img, gc: draw2dimg.NewGraphicContext(img)}
	c.FillRect(0, 0, float64(width), float64(height), background)
	return c
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Version increases with every draw so a renderer can tell when the
// texture needs re-uploading.
func (c *Canvas) Version() uint64 { return c.version }

// Image exposes the backing pixels. Callers must not draw on it directly.
func (c *Canvas) Image() *image.RGBA { return c.img }

// At returns the color of pixel (x, y).
func (c *Canvas) At(x, y int) color.RGBA {
	return c.img.RGBAAt(x, y)
}

// FillRect paints the rectangle (x0,y0)-(x1,y1) with col.
func (c *Canvas) FillRect(x0, y0, x1, y1 float64, col color.Color) {
	c.gc.SetFillColor(col)
	draw2dkit.Rectangle(c.gc, x0, y0, x1, y1)
	c.gc.Fill()
	c.version++
}

// FillCircle paints a filled disc of the given radius centred on (cx, cy).
func (c *Canvas) FillCircle(cx, cy, radius float64, col color.Color) {
	if radius <= 0 {
		return
	}
	c.gc.SetFillColor(col)
	draw2dkit.Circle(c.gc, cx, cy, radius)
	c.gc.Fill()
	c.version++
}

// PixelAt maps a surface texture coordinate to canvas pixels. The V axis is
// flipped: v=1 is the top row.
func (c *Canvas) PixelAt(u, v float64) (x, y int) {
	x = int(math.Floor(u * float64(c.Width())))
	y = int(math.Floor((1 - v) * float64(c.Height())))
	return x, y
}

// Stamp paints a round dab of col at texture coordinate (u, v) and returns
// the pixel it was centred on.
func (c *Canvas) Stamp(u, v, radius float64, col color.Color) (x, y int) {
	x, y = c.PixelAt(u, v)
	c.FillCircle(float64(x), float64(y), radius, col)
	return x, y
}

// PNG encodes the canvas for the renderer.
func (c *Canvas) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("glaze: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
