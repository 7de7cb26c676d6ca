package osd

import (
	"context"
	"image"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DisplayInfo puts up, on every monitor base knows about, the monitor
// number in the middle and the head's width and height in the top corners.
// The overlays are clones of base. They stay up for hold, or until ctx is
// done, and are destroyed before DisplayInfo returns.
func DisplayInfo(ctx context.Context, base *Session, hold time.Duration) error {
	heads := base.MonitorCount()
	perHead := heads > 0
	if !perHead {
		heads = 1
	}

	var (
		mu   sync.Mutex
		made []*Session
	)
	defer func() {
		for _, s := range made {
			_ = s.Destroy()
		}
	}()

	var g errgroup.Group
	for head := 1; head <= heads; head++ {
		g.Go(func() error {
			out, err := infoOverlays(base, head, perHead)
			mu.Lock()
			made = append(made, out...)
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	t := time.NewTimer(hold)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// infoOverlays creates the three overlays of one head. Whatever was created
// is returned even on error so the caller can destroy it.
func infoOverlays(base *Session, head int, selectHead bool) ([]*Session, error) {
	corners := []struct {
		align Alignment
		pos   Position
		text  func(screen image.Rectangle) string
	}{
		{Center, Middle, func(image.Rectangle) string { return strconv.Itoa(head) }},
		{Left, Top, func(r image.Rectangle) string { return strconv.Itoa(r.Dx()) }},
		{Right, Top, func(r image.Rectangle) string { return strconv.Itoa(r.Dy()) }},
	}

	var out []*Session
	for _, c := range corners {
		s, err := base.Clone()
		if err != nil {
			return out, err
		}
		out = append(out, s)
		if selectHead {
			if err := s.SelectMonitor(head); err != nil {
				return out, err
			}
		}
		screen, err := s.Screen()
		if err != nil {
			return out, err
		}
		if err := s.SetAlignment(c.align); err != nil {
			return out, err
		}
		if err := s.SetPosition(c.pos); err != nil {
			return out, err
		}
		if _, err := s.SetText(0, c.text(screen)); err != nil {
			return out, err
		}
	}
	return out, nil
}
