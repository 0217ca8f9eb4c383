package main

import (
	"fmt"
	"os"
	"time"
)

// openStdIOLog opens path for appending and marks the start of this run.
// An empty path returns a nil file.
func openStdIOLog(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open stdio log %s: %w", path, err)
	}
	fmt.Fprintf(f, "--- drawingpanel pid %d started %s ---\n", os.Getpid(), time.Now().Format(time.RFC3339))
	return f, nil
}
