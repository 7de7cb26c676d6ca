//go:build linux

// Package system switches the Linux console between text and graphics mode
// so the framebuffer overlay is not fought over by the console cursor.
package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rook-computer/hud/internal/logging"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

// Active VT first, then the console device.
var ttyPaths = []string{"/dev/tty", "/dev/tty0"}

// SetGraphicsMode switches the active console to graphics mode to suppress
// the text cursor and console output.
func SetGraphicsMode() error { return setMode(kdGraphics, "KD_GRAPHICS") }

// RestoreTextMode puts the console back into text mode.
func RestoreTextMode() error { return setMode(kdText, "KD_TEXT") }

func setMode(mode int, name string) error {
	var lastErr error
	for _, p := range ttyPaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		_ = unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("%s on %s: %w", name, p, err)
			continue
		}
		return nil
	}
	return lastErr
}

func SetGraphicsModeWithLog(l logging.Logger) error {
	return logged(l, "KD_GRAPHICS set", SetGraphicsMode())
}

func RestoreTextModeWithLog(l logging.Logger) error {
	return logged(l, "KD_TEXT set", RestoreTextMode())
}

// HideCursor writes the ANSI escape to hide the cursor to the active VT.
func HideCursor() error { return writeVT("\x1b[?25l") }
func ShowCursor() error { return writeVT("\x1b[?25h") }

func HideCursorWithLog(l logging.Logger) error { return logged(l, "cursor hidden", HideCursor()) }
func ShowCursorWithLog(l logging.Logger) error { return logged(l, "cursor shown", ShowCursor()) }

func logged(l logging.Logger, ok string, err error) error {
	if l == nil {
		return err
	}
	if err != nil {
		l.Errorf("tty", "%v", err)
	} else {
		l.Infof("tty", "%s", ok)
	}
	return err
}

func writeVT(s string) error {
	var lastErr error
	for _, p := range ttyPaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		_ = f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("write VT failed: %w", lastErr)
}
