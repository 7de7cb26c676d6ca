//go:build linux

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// redirectStdIO points fds 1 and 2 at path. With the framebuffer back-end the
// console is in graphics mode, so a panic is only readable from the file.
func redirectStdIO(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	// Dup3 rather than Dup2: arm64 has no dup2 syscall.
	for _, std := range []*os.File{os.Stdout, os.Stderr} {
		if err := unix.Dup3(int(f.Fd()), int(std.Fd()), 0); err != nil {
			return fmt.Errorf("redirect %s: %w", std.Name(), err)
		}
	}
	return nil
}
