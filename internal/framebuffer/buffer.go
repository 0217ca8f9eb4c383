// Package framebuffer holds the flat ARGB pixel store behind every surface.
package framebuffer

import (
	"image"
	"image/color"
	"image/draw"
)

const (
	alphaMask = 0xFF000000
	redMask   = 0x00FF0000
	greenMask = 0x0000FF00
	blueMask  = 0x000000FF
)

// Buffer is a row-major grid of non-premultiplied 32-bit ARGB pixels.
// It implements draw.Image so the standard and x/image drawing packages
// can render into it directly.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint32
}

var _ draw.Image = (*Buffer)(nil)

// New allocates a fully transparent buffer.
func New(width, height int) *Buffer {
	return &Buffer{Width: width, Height: height, Pix: make([]uint32, width*height)}
}

// Alpha returns the alpha channel (0-255) of an ARGB pixel.
func Alpha(p uint32) int { return int((p & alphaMask) >> 24) }

// Red returns the red channel (0-255) of an ARGB pixel.
func Red(p uint32) int { return int((p & redMask) >> 16) }

// Green returns the green channel (0-255) of an ARGB pixel.
func Green(p uint32) int { return int((p & greenMask) >> 8) }

// Blue returns the blue channel (0-255) of an ARGB pixel.
func Blue(p uint32) int { return int(p & blueMask) }

// Pack composes an ARGB pixel. Channels are truncated to their low 8 bits.
func Pack(a, r, g, b int) uint32 {
	return uint32(a&0xFF)<<24 | uint32(r&0xFF)<<16 | uint32(g&0xFF)<<8 | uint32(b&0xFF)
}

// FromColor converts any color.Color to a non-premultiplied ARGB pixel.
func FromColor(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pack(int(n.A), int(n.R), int(n.G), int(n.B))
}

// ToColor converts an ARGB pixel to color.NRGBA.
func ToColor(p uint32) color.NRGBA {
	return color.NRGBA{R: uint8(Red(p)), G: uint8(Green(p)), B: uint8(Blue(p)), A: uint8(Alpha(p))}
}

// Contains reports whether (x, y) lies inside the buffer.
func (b *Buffer) Contains(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// ARGB returns the pixel at (x, y). The caller checks bounds.
func (b *Buffer) ARGB(x, y int) uint32 { return b.Pix[y*b.Width+x] }

// SetARGB stores the pixel at (x, y). The caller checks bounds.
func (b *Buffer) SetARGB(x, y int, p uint32) { b.Pix[y*b.Width+x] = p }

// Fill sets every pixel to p.
func (b *Buffer) Fill(p uint32) {
	for i := range b.Pix {
		b.Pix[i] = p
	}
}

// Resized returns a new buffer of the given size with the current contents
// anchored at the origin. Pixels outside the new bounds are dropped and new
// area is transparent.
func (b *Buffer) Resized(width, height int) *Buffer {
	out := New(width, height)
	w := min(width, b.Width)
	h := min(height, b.Height)
	for y := 0; y < h; y++ {
		copy(out.Pix[y*width:y*width+w], b.Pix[y*b.Width:y*b.Width+w])
	}
	return out
}

// Rows returns a row-major copy of the pixels.
func (b *Buffer) Rows() [][]uint32 {
	rows := make([][]uint32, b.Height)
	for y := range rows {
		row := make([]uint32, b.Width)
		copy(row, b.Pix[y*b.Width:(y+1)*b.Width])
		rows[y] = row
	}
	return rows
}

// SetRows copies rows into the buffer. Rows must match the buffer size.
func (b *Buffer) SetRows(rows [][]uint32) {
	for y := 0; y < b.Height && y < len(rows); y++ {
		copy(b.Pix[y*b.Width:(y+1)*b.Width], rows[y])
	}
}

// ReplaceColor sets every pixel whose channels are each within tolerance of
// old to repl, and returns the number of pixels changed.
func (b *Buffer) ReplaceColor(old, repl uint32, tolerance int) int {
	oa, or, og, ob := Alpha(old), Red(old), Green(old), Blue(old)
	changed := 0
	for i, p := range b.Pix {
		if absDiff(oa, Alpha(p)) <= tolerance &&
			absDiff(or, Red(p)) <= tolerance &&
			absDiff(og, Green(p)) <= tolerance &&
			absDiff(ob, Blue(p)) <= tolerance {
			b.Pix[i] = repl
			changed++
		}
	}
	return changed
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// CopyChanged copies into the buffer only the pixels where after differs
// from base. base is after's starting point with nothing drawn on it, so
// pixels a drawing pass never touched keep their exact value.
func (b *Buffer) CopyChanged(base, after image.Image) int {
	bb, ab := base.Bounds(), after.Bounds()
	w := min(bb.Dx(), ab.Dx(), b.Width)
	h := min(bb.Dy(), ab.Dy(), b.Height)
	changed := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := after.At(ab.Min.X+x, ab.Min.Y+y)
			if sameColor(base.At(bb.Min.X+x, bb.Min.Y+y), c) {
				continue
			}
			b.Pix[y*b.Width+x] = FromColor(c)
			changed++
		}
	}
	return changed
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

// NRGBA returns a snapshot of the buffer as an *image.NRGBA.
func (b *Buffer) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, p := range b.Pix {
		o := i * 4
		img.Pix[o+0] = uint8(Red(p))
		img.Pix[o+1] = uint8(Green(p))
		img.Pix[o+2] = uint8(Blue(p))
		img.Pix[o+3] = uint8(Alpha(p))
	}
	return img
}

// Premultiplied writes the buffer into dst as premultiplied RGBA, the
// layout GPU uploads expect. dst is reallocated when its size differs.
func (b *Buffer) Premultiplied(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Rect.Dx() != b.Width || dst.Rect.Dy() != b.Height {
		dst = image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	}
	for i, p := range b.Pix {
		a := uint32(Alpha(p))
		o := i * 4
		dst.Pix[o+0] = uint8(uint32(Red(p)) * a / 0xFF)
		dst.Pix[o+1] = uint8(uint32(Green(p)) * a / 0xFF)
		dst.Pix[o+2] = uint8(uint32(Blue(p)) * a / 0xFF)
		dst.Pix[o+3] = uint8(a)
	}
	return dst
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	if !b.Contains(x, y) {
		return color.NRGBA{}
	}
	return ToColor(b.ARGB(x, y))
}

// Set implements draw.Image. Out of range writes are ignored.
func (b *Buffer) Set(x, y int, c color.Color) {
	if !b.Contains(x, y) {
		return
	}
	b.SetARGB(x, y, FromColor(c))
}
