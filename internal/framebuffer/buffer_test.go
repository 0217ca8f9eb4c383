package framebuffer

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestPackRoundTrip(t *testing.T) {
	values := []int{0, 1, 17, 127, 128, 200, 254, 255}
	for _, a := range values {
		for _, r := range values {
			for _, g := range values {
				for _, b := range values {
					p := Pack(a, r, g, b)
					if Alpha(p) != a || Red(p) != r || Green(p) != g || Blue(p) != b {
						t.Fatalf("Pack(%d,%d,%d,%d)=%08x decomposed to (%d,%d,%d,%d)",
							a, r, g, b, p, Alpha(p), Red(p), Green(p), Blue(p))
					}
				}
			}
		}
	}
}

func TestMasks(t *testing.T) {
	p := uint32(0x80402010)
	if got := Alpha(p); got != 0x80 {
		t.Errorf("Alpha = %#x, want 0x80", got)
	}
	if got := Red(p); got != 0x40 {
		t.Errorf("Red = %#x, want 0x40", got)
	}
	if got := Green(p); got != 0x20 {
		t.Errorf("Green = %#x, want 0x20", got)
	}
	if got := Blue(p); got != 0x10 {
		t.Errorf("Blue = %#x, want 0x10", got)
	}
}

func TestResizedAnchorsAtOrigin(t *testing.T) {
	b := New(3, 2)
	for i := range b.Pix {
		b.Pix[i] = uint32(i + 1)
	}

	grown := b.Resized(4, 3)
	if grown.Width != 4 || grown.Height != 3 {
		t.Fatalf("size = %dx%d, want 4x3", grown.Width, grown.Height)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := uint32(0)
			if x < 3 && y < 2 {
				want = b.ARGB(x, y)
			}
			if got := grown.ARGB(x, y); got != want {
				t.Errorf("grown(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}

	shrunk := b.Resized(2, 1)
	want := []uint32{1, 2}
	for i, w := range want {
		if shrunk.Pix[i] != w {
			t.Errorf("shrunk.Pix[%d] = %d, want %d", i, shrunk.Pix[i], w)
		}
	}
}

func TestReplaceColor(t *testing.T) {
	old := Pack(255, 100, 100, 100)
	near := Pack(255, 103, 98, 100)
	far := Pack(255, 110, 100, 100)
	repl := Pack(255, 0, 0, 0)

	tests := []struct {
		name      string
		tolerance int
		want      []uint32
		changed   int
	}{
		{"exact", 0, []uint32{repl, near, far}, 1},
		{"within three", 3, []uint32{repl, repl, far}, 2},
		{"within ten", 10, []uint32{repl, repl, repl}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(3, 1)
			copy(b.Pix, []uint32{old, near, far})
			if n := b.ReplaceColor(old, repl, tt.tolerance); n != tt.changed {
				t.Errorf("changed = %d, want %d", n, tt.changed)
			}
			for i, w := range tt.want {
				if b.Pix[i] != w {
					t.Errorf("Pix[%d] = %08x, want %08x", i, b.Pix[i], w)
				}
			}
		})
	}
}

func TestRowsCopies(t *testing.T) {
	b := New(2, 2)
	b.Fill(7)
	rows := b.Rows()
	rows[0][0] = 9
	if b.ARGB(0, 0) != 7 {
		t.Fatal("Rows must return a copy")
	}
	b.SetRows([][]uint32{{1, 2}, {3, 4}})
	if b.ARGB(1, 1) != 4 || b.ARGB(0, 1) != 3 {
		t.Errorf("SetRows wrote %v", b.Pix)
	}
}

func TestDrawImageCompatibility(t *testing.T) {
	b := New(4, 4)
	red := color.NRGBA{R: 255, A: 255}
	draw.Draw(b, image.Rect(1, 1, 3, 3), image.NewUniform(red), image.Point{}, draw.Src)

	if got := b.ARGB(1, 1); got != 0xFFFF0000 {
		t.Errorf("inside = %08x, want ffff0000", got)
	}
	if got := b.ARGB(0, 0); got != 0 {
		t.Errorf("outside = %08x, want 0", got)
	}
	// Writes past the edge are ignored rather than panicking.
	b.Set(10, 10, red)
}

func TestPremultiplied(t *testing.T) {
	b := New(1, 1)
	b.SetARGB(0, 0, Pack(128, 255, 0, 0))
	img := b.Premultiplied(nil)
	if img.Pix[0] != 128 || img.Pix[3] != 128 {
		t.Errorf("premultiplied = %v, want [128 0 0 128]", img.Pix)
	}
	again := b.Premultiplied(img)
	if again != img {
		t.Error("matching destination should be reused")
	}
}

func TestCopyChangedKeepsUntouchedPixels(t *testing.T) {
	b := New(3, 1)
	b.Pix = []uint32{0x00FF0000, 0x01123456, 0x80123456}
	base := image.NewRGBA(image.Rect(0, 0, 3, 1))
	after := image.NewRGBA(image.Rect(0, 0, 3, 1))
	after.Set(2, 0, color.RGBA{B: 0xFF, A: 0xFF})

	if n := b.CopyChanged(base, after); n != 1 {
		t.Errorf("changed = %d, want 1", n)
	}
	want := []uint32{0x00FF0000, 0x01123456, 0xFF0000FF}
	for i, p := range b.Pix {
		if p != want[i] {
			t.Errorf("pixel %d = %#08x, want %#08x", i, p, want[i])
		}
	}
}
