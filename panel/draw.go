package panel

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Draw runs fn with a gg context seeded from a copy of the buffer and
// writes back the pixels fn changed. Shapes, paths, gradients and text all
// go through fn. Pixels fn leaves alone keep their exact ARGB value.
func (s *Surface) Draw(fn func(dc *gg.Context)) error {
	buf := s.buffer()
	seed := buf.NRGBA()
	base := gg.FromImage(seed).ToImage()
	dc := gg.NewContextForImage(seed)
	defer dc.Close()
	fn(dc)
	if err := dc.FlushGPU(); err != nil {
		return fmt.Errorf("flush drawing: %w", err)
	}
	buf.CopyChanged(base, dc.Image())
	return nil
}

// DrawImage composites img onto the buffer with its top-left corner at (x, y).
func (s *Surface) DrawImage(img image.Image, x, y int) {
	b := img.Bounds()
	dst := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	xdraw.Draw(s.buffer(), dst, img, b.Min, xdraw.Over)
}

// DrawImageScaled composites img stretched to fill dst. The scaling kernel is
// bilinear with anti-aliasing on and nearest-neighbor with it off.
func (s *Surface) DrawImageScaled(img image.Image, dst image.Rectangle) {
	var scaler xdraw.Scaler = xdraw.NearestNeighbor
	if s.AntiAlias() {
		scaler = xdraw.ApproxBiLinear
	}
	scaler.Scale(s.buffer(), dst, img, img.Bounds(), xdraw.Over, nil)
}

var (
	fontOnce  sync.Once
	ttFont    *truetype.Font
	fontErr   error
	facesMu   sync.Mutex
	fontFaces = map[float64]font.Face{}
)

// face returns a Go Regular face at size points, or basicfont 7x13 when
// size is not positive or the font cannot be parsed.
func face(size float64) font.Face {
	if size <= 0 {
		return basicfont.Face7x13
	}
	fontOnce.Do(func() { ttFont, fontErr = truetype.Parse(goregular.TTF) })
	if fontErr != nil {
		return basicfont.Face7x13
	}
	facesMu.Lock()
	defer facesMu.Unlock()
	f, ok := fontFaces[size]
	if !ok {
		f = truetype.NewFace(ttFont, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
		fontFaces[size] = f
	}
	return f
}

// DrawString draws text with its baseline starting at (x, y). size is in
// points; size <= 0 selects a fixed 7x13 bitmap font.
func (s *Surface) DrawString(text string, x, y int, c color.Color, size float64) {
	f := face(size)
	// truetype faces keep glyph caches that are not safe for concurrent use.
	facesMu.Lock()
	defer facesMu.Unlock()
	d := &font.Drawer{
		Dst:  s.buffer(),
		Src:  image.NewUniform(c),
		Face: f,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// MeasureString returns the advance width of text in pixels at size.
func MeasureString(text string, size float64) int {
	f := face(size)
	facesMu.Lock()
	defer facesMu.Unlock()
	return font.MeasureString(f, text).Ceil()
}
