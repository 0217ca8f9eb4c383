package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sort"
	"time"

	"github.com/gogpu/gg"

	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/panel"
)

// scenario drives surfaces on reg until ctx is done or its surfaces close.
type scenario func(ctx context.Context, reg *panel.Registry) error

var scenarios = map[string]scenario{
	"bounce":   runBounce,
	"gradient": runGradient,
	"paint":    runPaint,
	"grid":     runGrid,
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// tick waits one frame period. It reports false once ctx is done.
func tick(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func runBounce(ctx context.Context, reg *panel.Registry) error {
	s, err := panel.New(320, 240, panel.WithRegistry(reg), panel.WithTitle("bounce"))
	if err != nil {
		return err
	}
	defer s.Close()

	x, y, dx, dy := 160.0, 120.0, 3.0, 2.0
	for !s.Closed() && tick(ctx, 33*time.Millisecond) {
		x, y = x+dx, y+dy
		if x < 16 || x > 304 {
			dx = -dx
		}
		if y < 16 || y > 224 {
			dy = -dy
		}
		s.Clear()
		err := s.Draw(func(dc *gg.Context) {
			dc.SetRGB(0.1, 0.4, 0.8)
			dc.DrawCircle(x, y, 16)
			_ = dc.Fill()
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// runGradient writes every pixel through SetPixels, shifting the hue a
// little each frame.
func runGradient(ctx context.Context, reg *panel.Registry) error {
	const w, h = 256, 128
	s, err := panel.New(w, h, panel.WithRegistry(reg), panel.WithTitle("gradient"))
	if err != nil {
		return err
	}
	defer s.Close()

	grid := make([][]uint32, h)
	for y := range grid {
		grid[y] = make([]uint32, w)
	}
	for shift := 0; !s.Closed() && tick(ctx, 50*time.Millisecond); shift += 4 {
		for y := range grid {
			for x := range grid[y] {
				grid[y][x] = panel.RGB(x+shift, y*2, 255-x)
			}
		}
		if err := s.SetPixels(grid); err != nil {
			return err
		}
	}
	return nil
}

// painter paints with the pointer. Dragging draws, a right click clears.
type painter struct {
	s *panel.Surface
}

func (p painter) PointerMoved(event.PointerEvent) {}

func (p painter) PointerDragged(e event.PointerEvent) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			_ = p.s.SetPixel(e.X+dx, e.Y+dy, panel.RGB(0x20, 0x20, 0x20))
		}
	}
}

func (p painter) PointerPressed(e event.PointerEvent) { p.PointerDragged(e) }
func (p painter) PointerReleased(event.PointerEvent)  {}
func (p painter) PointerEntered(event.PointerEvent)   {}
func (p painter) PointerExited(event.PointerEvent)    {}

func (p painter) PointerClicked(e event.PointerEvent) {
	if e.Button == event.ButtonRight {
		p.s.Clear()
	}
}

func runPaint(ctx context.Context, reg *panel.Registry) error {
	s, err := panel.New(400, 300, panel.WithRegistry(reg), panel.WithTitle("paint"))
	if err != nil {
		return err
	}
	defer s.Close()
	if _, err := s.AddListener(painter{s: s}); err != nil {
		return err
	}
	s.DrawString("drag to paint, right click clears", 8, 20, color.Gray{Y: 0x60}, 14)
	for !s.Closed() && tick(ctx, 100*time.Millisecond) {
	}
	return nil
}

// runGrid opens several small surfaces at once, each spinning a line at
// its own rate.
func runGrid(ctx context.Context, reg *panel.Registry) error {
	var surfaces []*panel.Surface
	defer func() {
		for _, s := range surfaces {
			s.Close()
		}
	}()
	for i := 0; i < 4; i++ {
		s, err := panel.New(160, 160,
			panel.WithRegistry(reg),
			panel.WithTitle(fmt.Sprintf("grid %d", i+1)),
			panel.WithFrameRate(10*(i+1)),
		)
		if err != nil {
			return err
		}
		s.SetPosition(170*i, 0)
		surfaces = append(surfaces, s)
	}

	for step := 0; tick(ctx, 33*time.Millisecond); step++ {
		live := 0
		for i, s := range surfaces {
			if s.Closed() {
				continue
			}
			live++
			angle := float64(step*(i+1)) * math.Pi / 90
			s.Clear()
			err := s.Draw(func(dc *gg.Context) {
				dc.SetLineWidth(4)
				dc.SetRGB(0.8, 0.3, 0.1)
				dc.DrawLine(80, 80, 80+70*math.Cos(angle), 80+70*math.Sin(angle))
				_ = dc.Stroke()
			})
			if err != nil && !s.Closed() {
				return err
			}
		}
		if live == 0 {
			return nil
		}
	}
	return nil
}
