//go:build unix

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// redirectStdIO points fds 1 and 2 at the log so panics from any goroutine
// land there, even while the framebuffer console hides the terminal.
func redirectStdIO(path string) error {
	f, err := openStdIOLog(path)
	if err != nil || f == nil {
		return err
	}
	defer f.Close()

	if err := unix.Dup2(int(f.Fd()), int(os.Stdout.Fd())); err != nil {
		return err
	}
	return unix.Dup2(int(f.Fd()), int(os.Stderr.Fd()))
}
