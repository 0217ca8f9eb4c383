//go:build !linux

package system

import (
	"context"

	"github.com/rook-computer/drawingpanel/internal/logging"
)

const (
	KeyUp     = 0
	KeyDown   = 1
	KeyRepeat = 2
)

type KeyRecord struct {
	Code  uint16
	Value int32
}

type Console struct {
	Logger logging.Logger
}

func (Console) EnterGraphics() error { return nil }
func (Console) Restore() error       { return nil }

func WatchKeys(ctx context.Context, l logging.Logger, fn func(KeyRecord)) {
	logging.OrNoop(l).Infof("input", "evdev input not available on this platform")
}

func KeyName(code uint16) (string, rune) { return "", 0 }
