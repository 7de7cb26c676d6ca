package app

import (
	"bufio"
	"context"
	"io"

	"github.com/rook-computer/hud/internal/osd"
)

// Pump displays every line read from r the way osd_cat does: lines fill
// the overlay from the top and, once it is full, each new line scrolls the
// others up. It returns at EOF, on the first overlay error, or when ctx is
// done between lines.
func Pump(ctx context.Context, s *osd.Session, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 512), osd.MaxPrintfBuffer)
	n := s.NumberOfLines()
	next := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if next == n {
			if err := s.Scroll(1); err != nil {
				return err
			}
			next = n - 1
		}
		if _, err := s.SetText(next, sc.Text()); err != nil {
			return err
		}
		next++
	}
	return sc.Err()
}
