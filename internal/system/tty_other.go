//go:build !linux

package system

import (
	"errors"

	"github.com/rook-computer/hud/internal/logging"
)

// ErrNoConsole is returned where there is no Linux virtual console.
var ErrNoConsole = errors.New("console modes need a Linux virtual terminal")

func SetGraphicsMode() error { return ErrNoConsole }
func RestoreTextMode() error { return ErrNoConsole }
func HideCursor() error      { return ErrNoConsole }
func ShowCursor() error      { return ErrNoConsole }

func SetGraphicsModeWithLog(l logging.Logger) error { return ErrNoConsole }
func RestoreTextModeWithLog(l logging.Logger) error { return ErrNoConsole }
func HideCursorWithLog(l logging.Logger) error      { return ErrNoConsole }
func ShowCursorWithLog(l logging.Logger) error      { return ErrNoConsole }
