package main

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/gg"

	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/internal/logging"
	"github.com/rook-computer/drawingpanel/panel"
)

const (
	demoWidth  = 640
	demoHeight = 480
	ballRadius = 24
)

// demoInput collects the input the scene reacts to. Listener methods run
// on the display's event goroutine.
type demoInput struct {
	surface *panel.Surface
	log     logging.Logger

	mu     sync.Mutex
	marks  []image.Point
	paused bool
}

func (d *demoInput) KeyPressed(e event.KeyEvent) {
	switch e.Name {
	case "Escape":
		d.log.Infof("demo", "escape pressed, closing")
		go d.surface.Close()
	case "Space":
		d.mu.Lock()
		d.paused = !d.paused
		d.mu.Unlock()
	}
}

func (d *demoInput) KeyReleased(event.KeyEvent) {}
func (d *demoInput) KeyTyped(event.KeyEvent)    {}

func (d *demoInput) PointerPressed(event.PointerEvent)  {}
func (d *demoInput) PointerReleased(event.PointerEvent) {}
func (d *demoInput) PointerEntered(event.PointerEvent)  {}
func (d *demoInput) PointerExited(event.PointerEvent)   {}

func (d *demoInput) PointerClicked(e event.PointerEvent) {
	d.mu.Lock()
	d.marks = append(d.marks, image.Pt(e.X, e.Y))
	d.mu.Unlock()
}

func (d *demoInput) state() ([]image.Point, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]image.Point(nil), d.marks...), d.paused
}

// runDemo bounces a ball around a surface until the window is closed.
// Clicks leave marks, space pauses, escape closes.
func runDemo(reg *panel.Registry, fps int, log logging.Logger) error {
	s, err := panel.New(demoWidth, demoHeight,
		panel.WithRegistry(reg),
		panel.WithTitle("drawingpanel demo"),
		panel.WithFrameRate(fps),
	)
	if err != nil {
		return err
	}
	s.Center()

	input := &demoInput{surface: s, log: logging.OrNoop(log)}
	if _, err := s.AddListener(input); err != nil {
		return err
	}

	qr, err := panel.QRCode("https://github.com/rook-computer/drawingpanel", 96)
	if err != nil {
		return err
	}

	x, y := float64(demoWidth/2), float64(demoHeight/2)
	dx, dy := 4.0, 3.0
	frame := 0
	for !s.Closed() {
		marks, paused := input.state()
		if !paused {
			x, y = x+dx, y+dy
			if x < ballRadius || x > demoWidth-ballRadius {
				dx = -dx
			}
			if y < ballRadius || y > demoHeight-ballRadius {
				dy = -dy
			}
			frame++
		}

		s.Clear()
		err := s.Draw(func(dc *gg.Context) {
			dc.SetRGB(0.9, 0.9, 0.95)
			dc.DrawRectangle(0, 0, demoWidth, 40)
			_ = dc.Fill()

			dc.SetRGB(0.85, 0.2, 0.2)
			for _, m := range marks {
				dc.DrawCircle(float64(m.X), float64(m.Y), 4)
				_ = dc.Fill()
			}

			dc.SetRGB(0.1, 0.4, 0.8)
			dc.DrawCircle(x, y, ballRadius)
			_ = dc.Fill()
		})
		if err != nil && !s.Closed() {
			return err
		}
		s.DrawImage(qr, demoWidth-qr.Bounds().Dx()-8, demoHeight-qr.Bounds().Dy()-8)
		s.DrawString(fmt.Sprintf("frame %d  marks %d  (space pauses, esc quits)", frame, len(marks)),
			12, 26, color.Black, 16)

		if err := panel.Sleep(int64(1000 / max(fps, 1))); err != nil {
			return err
		}
	}
	return nil
}
