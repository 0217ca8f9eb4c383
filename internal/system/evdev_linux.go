//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/rook-computer/drawingpanel/internal/logging"
)

const evKey = 0x01

// Key values reported by EV_KEY records.
const (
	KeyUp     = 0
	KeyDown   = 1
	KeyRepeat = 2
)

// KeyRecord is one EV_KEY input_event.
type KeyRecord struct {
	Code  uint16
	Value int32
}

// eventSize is sizeof(struct input_event): timeval + u16 type + u16 code + s32 value.
func eventSize() (tvSize, size int) {
	tvSize = binary.Size(unix.Timeval{})
	return tvSize, tvSize + 2 + 2 + 4
}

// ParseKeyRecords extracts EV_KEY records from raw input_event bytes.
// Trailing partial records are ignored.
func ParseKeyRecords(buf []byte, tvSize int) []KeyRecord {
	size := tvSize + 8
	var out []KeyRecord
	for off := 0; off+size <= len(buf); off += size {
		rec := buf[off : off+size]
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		if typ != evKey {
			continue
		}
		out = append(out, KeyRecord{
			Code:  binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4]),
			Value: int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8])),
		})
	}
	return out
}

// WatchKeys reads every /dev/input/event* device and calls fn for each key
// record until ctx is done. It is best effort: with no readable devices it
// logs and returns. fn may be called from several goroutines at once.
func WatchKeys(ctx context.Context, l logging.Logger, fn func(KeyRecord)) {
	l = logging.OrNoop(l)
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		l.Infof("input", "no evdev devices found")
		return
	}
	tvSize, size := eventSize()
	for _, path := range paths {
		go readDevice(ctx, l, path, tvSize, size, fn)
	}
}

func readDevice(ctx context.Context, l logging.Logger, path string, tvSize, size int, fn func(KeyRecord)) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		l.Errorf("input", "open %s: %v", path, err)
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	buf := make([]byte, 64*size)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			l.Errorf("input", "read %s: %v", path, err)
			return
		}
		for _, rec := range ParseKeyRecords(buf[:n], tvSize) {
			fn(rec)
		}
	}
}

// keyNames maps Linux input-event-codes.h key codes to display names.
var keyNames = map[uint16]struct {
	name string
	r    rune
}{
	1: {"Escape", 0}, 14: {"Backspace", '\b'}, 15: {"Tab", '\t'}, 28: {"Enter", '\n'}, 57: {"Space", ' '},
	2: {"1", '1'}, 3: {"2", '2'}, 4: {"3", '3'}, 5: {"4", '4'}, 6: {"5", '5'},
	7: {"6", '6'}, 8: {"7", '7'}, 9: {"8", '8'}, 10: {"9", '9'}, 11: {"0", '0'},
	16: {"Q", 'q'}, 17: {"W", 'w'}, 18: {"E", 'e'}, 19: {"R", 'r'}, 20: {"T", 't'},
	21: {"Y", 'y'}, 22: {"U", 'u'}, 23: {"I", 'i'}, 24: {"O", 'o'}, 25: {"P", 'p'},
	30: {"A", 'a'}, 31: {"S", 's'}, 32: {"D", 'd'}, 33: {"F", 'f'}, 34: {"G", 'g'},
	35: {"H", 'h'}, 36: {"J", 'j'}, 37: {"K", 'k'}, 38: {"L", 'l'},
	44: {"Z", 'z'}, 45: {"X", 'x'}, 46: {"C", 'c'}, 47: {"V", 'v'}, 48: {"B", 'b'},
	49: {"N", 'n'}, 50: {"M", 'm'},
	59: {"F1", 0}, 60: {"F2", 0}, 61: {"F3", 0}, 62: {"F4", 0},
	103: {"ArrowUp", 0}, 105: {"ArrowLeft", 0}, 106: {"ArrowRight", 0}, 108: {"ArrowDown", 0},
}

// KeyName returns the display name and typed rune for a key code. Unknown
// codes are named "Key<code>" and type nothing.
func KeyName(code uint16) (string, rune) {
	if k, ok := keyNames[code]; ok {
		return k.name, k.r
	}
	return "Key" + strconv.Itoa(int(code)), 0
}
