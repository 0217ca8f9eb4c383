//go:build linux

package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rook-computer/drawingpanel/internal/logging"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

var vtPaths = []string{"/dev/tty", "/dev/tty0"}

// Console switches the active virtual terminal between text and graphics
// mode so the blinking text cursor does not draw over the framebuffer.
type Console struct {
	Logger logging.Logger
}

// EnterGraphics sets KD_GRAPHICS and hides the cursor. Failures are logged
// and returned; the framebuffer still works without them.
func (c Console) EnterGraphics() error {
	l := logging.OrNoop(c.Logger)
	if err := setMode(kdGraphics); err != nil {
		l.Errorf("tty", "KD_GRAPHICS failed: %v", err)
		return err
	}
	l.Infof("tty", "KD_GRAPHICS set")
	if err := writeVT("\x1b[?25l"); err != nil {
		l.Errorf("tty", "hide cursor failed: %v", err)
		return err
	}
	return nil
}

// Restore returns the console to text mode with a visible cursor.
func (c Console) Restore() error {
	l := logging.OrNoop(c.Logger)
	err := setMode(kdText)
	if err != nil {
		l.Errorf("tty", "KD_TEXT failed: %v", err)
	} else {
		l.Infof("tty", "KD_TEXT set")
	}
	if cerr := writeVT("\x1b[?25h"); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func setMode(mode int) error {
	var lastErr error
	for _, p := range vtPaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err)
			continue
		}
		return nil
	}
	return lastErr
}

func writeVT(s string) error {
	var lastErr error
	for _, p := range vtPaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("write VT failed: %w", lastErr)
}
