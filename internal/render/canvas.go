package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas is the rasterizer: an RGBA target that can be cleared, filled with
// axis-aligned rectangles, and written on.
type Canvas struct {
	img    *image.RGBA
	packed []uint32
	face   font.Face
}

// NewCanvas allocates a w*h target.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		packed: make([]uint32, w*h),
		face:   basicfont.Face7x13,
	}
}

// Size returns the target dimensions.
func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image exposes the target for encoders and tests.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear fills the whole target with col.
func (c *Canvas) Clear(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// FillRect fills the rectangle with top-left corner (x, y) and size (w, h).
// Edges are rounded to the nearest pixel and clipped to the target.
func (c *Canvas) FillRect(x, y, w, h float64, col color.RGBA) {
	r := image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+w)),
		int(math.Round(y+h)),
	).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// DrawText writes s with its baseline starting at (x, y).
func (c *Canvas) DrawText(s string, x, y int, col color.RGBA) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// Pixels packs the target as 0xAARRGGBB words, row major. The returned
// slice is reused by the next call.
func (c *Canvas) Pixels() []uint32 {
	b := c.img.Bounds()
	w := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		row := c.img.Pix[y*c.img.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4]
			c.packed[y*w+x] = uint32(p[3])<<24 | uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
		}
	}
	return c.packed
}

// Unpack converts a packed 0xAARRGGBB buffer back to an image.
func Unpack(buf []uint32, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, px := range buf {
		if i >= w*h {
			break
		}
		o := i * 4
		img.Pix[o+0] = uint8(px >> 16)
		img.Pix[o+1] = uint8(px >> 8)
		img.Pix[o+2] = uint8(px)
		img.Pix[o+3] = uint8(px >> 24)
	}
	return img
}
