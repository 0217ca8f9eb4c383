package panel

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"time"

	"github.com/skip2/go-qrcode"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rook-computer/drawingpanel/internal/framebuffer"
)

// LoadImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load image %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// Sleep pauses the calling goroutine for ms milliseconds.
func Sleep(ms int64) error {
	if ms < 0 {
		return fmt.Errorf("sleep %dms: %w", ms, ErrInvalidArgument)
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return nil
}

// Alpha returns the alpha channel (0-255) of an ARGB pixel.
func Alpha(argb uint32) int { return framebuffer.Alpha(argb) }

// Red returns the red channel (0-255) of an ARGB pixel.
func Red(argb uint32) int { return framebuffer.Red(argb) }

// Green returns the green channel (0-255) of an ARGB pixel.
func Green(argb uint32) int { return framebuffer.Green(argb) }

// Blue returns the blue channel (0-255) of an ARGB pixel.
func Blue(argb uint32) int { return framebuffer.Blue(argb) }

// ARGB packs four channels into a pixel. Channels are truncated to 8 bits.
func ARGB(a, r, g, b int) uint32 { return framebuffer.Pack(a, r, g, b) }

// RGB packs an opaque pixel.
func RGB(r, g, b int) uint32 { return framebuffer.Pack(0xFF, r, g, b) }

// SetAutoExit toggles auto-exit on the default registry.
func SetAutoExit(enabled bool) error {
	r, err := DefaultRegistry()
	if err != nil {
		return err
	}
	r.SetAutoExit(enabled)
	return nil
}

// Main runs fn as the program's entry function on the default registry.
// See Registry.Main.
func Main(fn func() error) error {
	r, err := DefaultRegistry()
	if err != nil {
		return err
	}
	return r.Main(fn)
}

const defaultQRCodeSizePx = 256

// QRCode renders payload as a sizePx x sizePx QR code image, ready for
// DrawImage. A non-positive size uses 256.
func QRCode(payload string, sizePx int) (image.Image, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty QR code payload: %w", ErrInvalidArgument)
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode QR code: %w", err)
	}

	return qrCode.Image(sizePx), nil
}
