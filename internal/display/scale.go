package display

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/rook-computer/drawingpanel/internal/framebuffer"
	"github.com/rook-computer/drawingpanel/internal/layout"
)

// Letterbox scales frame into dst with nearest-neighbor sampling, keeping the
// frame's aspect ratio and centering it. The bars and any transparency are
// filled from bg. It returns the rectangle the frame occupies.
func Letterbox(dst draw.Image, frame *framebuffer.Buffer, bg color.Color) image.Rectangle {
	bounds := dst.Bounds()
	target := layout.Fit(bounds, frame.Width, frame.Height)
	bgc := color.NRGBAModel.Convert(bg).(color.NRGBA)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !image.Pt(x, y).In(target) {
				dst.Set(x, y, color.NRGBA{R: bgc.R, G: bgc.G, B: bgc.B, A: 0xFF})
				continue
			}
			sx := (x - target.Min.X) * frame.Width / target.Dx()
			sy := (y - target.Min.Y) * frame.Height / target.Dy()
			dst.Set(x, y, over(frame.ARGB(sx, sy), bgc))
		}
	}
	return target
}

// over composites a non-premultiplied ARGB pixel onto an opaque background.
func over(p uint32, bg color.NRGBA) color.NRGBA {
	a := framebuffer.Alpha(p)
	if a == 0xFF {
		return framebuffer.ToColor(p)
	}
	mix := func(fg int, b uint8) uint8 {
		return uint8((fg*a + int(b)*(0xFF-a)) / 0xFF)
	}
	return color.NRGBA{
		R: mix(framebuffer.Red(p), bg.R),
		G: mix(framebuffer.Green(p), bg.G),
		B: mix(framebuffer.Blue(p), bg.B),
		A: 0xFF,
	}
}
