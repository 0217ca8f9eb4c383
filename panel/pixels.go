package panel

import (
	"fmt"
	"image"

	"github.com/rook-computer/drawingpanel/internal/framebuffer"
)

func outOfBounds(x, y int, b *framebuffer.Buffer) error {
	return fmt.Errorf("pixel (%d, %d) outside %dx%d surface: %w", x, y, b.Width, b.Height, ErrOutOfBounds)
}

// Pixel returns the ARGB value at (x, y).
func (s *Surface) Pixel(x, y int) (uint32, error) {
	b := s.buffer()
	if !b.Contains(x, y) {
		return 0, outOfBounds(x, y, b)
	}
	return b.ARGB(x, y), nil
}

// SetPixel writes an ARGB value at (x, y).
func (s *Surface) SetPixel(x, y int, argb uint32) error {
	b := s.buffer()
	if !b.Contains(x, y) {
		return outOfBounds(x, y, b)
	}
	b.SetARGB(x, y, argb)
	return nil
}

// Pixels returns a row-major copy of the buffer: Pixels()[y][x].
func (s *Surface) Pixels() [][]uint32 {
	return s.buffer().Rows()
}

// SetPixels replaces every pixel from a row-major grid. The surface is
// resized first when the grid is a different size. The grid must be
// rectangular and non-empty.
func (s *Surface) SetPixels(grid [][]uint32) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return fmt.Errorf("empty pixel grid: %w", ErrInvalidArgument)
	}
	width := len(grid[0])
	for y, row := range grid {
		if len(row) != width {
			return fmt.Errorf("pixel grid row %d has %d pixels, want %d: %w", y, len(row), width, ErrInvalidArgument)
		}
	}
	if err := s.Resize(width, len(grid)); err != nil {
		return err
	}
	s.buffer().SetRows(grid)
	return nil
}

// ReplaceColor replaces every pixel exactly equal to old with repl and
// returns how many changed.
func (s *Surface) ReplaceColor(old, repl uint32) int {
	return s.buffer().ReplaceColor(old, repl, 0)
}

// ReplaceColorTolerance replaces every pixel whose alpha, red, green and blue
// each differ from old's by at most tolerance.
func (s *Surface) ReplaceColorTolerance(old, repl uint32, tolerance int) (int, error) {
	if tolerance < 0 {
		return 0, fmt.Errorf("tolerance %d must not be negative: %w", tolerance, ErrInvalidArgument)
	}
	return s.buffer().ReplaceColor(old, repl, tolerance), nil
}

// Clear makes every pixel transparent so the window background shows
// through, including a background set after the call.
func (s *Surface) Clear() {
	s.buffer().Fill(0)
}

// Image returns a snapshot of the buffer.
func (s *Surface) Image() *image.NRGBA {
	return s.buffer().NRGBA()
}
