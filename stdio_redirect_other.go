//go:build !unix

package main

import "os"

// Without Dup2 only output written through os.Stdout/os.Stderr is captured;
// runtime panics still go to the original stderr.
func redirectStdIO(path string) error {
	f, err := openStdIOLog(path)
	if err != nil || f == nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
