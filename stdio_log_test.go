package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenStdIOLog(t *testing.T) {
	f, err := openStdIOLog("")
	if err != nil || f != nil {
		t.Fatalf("openStdIOLog(\"\") = %v, %v; want nil, nil", f, err)
	}

	path := filepath.Join(t.TempDir(), "stdio.log")
	f, err = openStdIOLog(path)
	if err != nil {
		t.Fatalf("openStdIOLog: %v", err)
	}
	f.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "--- drawingpanel pid ") {
		t.Errorf("log starts with %q, want a run marker", data)
	}

	if _, err := openStdIOLog(filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
