//go:build !linux

package display

import (
	"context"
	"fmt"

	"github.com/rook-computer/drawingpanel/event"
	"github.com/rook-computer/drawingpanel/internal/logging"
)

const DefaultFBDevice = "/dev/fb0"

// FBDev is only available on Linux.
type FBDev struct {
	Path   string
	Logger logging.Logger
}

func NewFBDev(path string, l logging.Logger) *FBDev {
	return &FBDev{Path: path, Logger: logging.OrNoop(l)}
}

func (d *FBDev) Open(cfg WindowConfig, sink event.Sink) (Window, error) {
	return nil, fmt.Errorf("console framebuffer: %w", ErrUnsupported)
}

func (d *FBDev) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
