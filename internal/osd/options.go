package osd

import (
	"github.com/rook-computer/hud/internal/config"
	"github.com/rook-computer/hud/internal/logging"
	"github.com/rook-computer/hud/internal/metrics"
	"github.com/rook-computer/hud/internal/render"
	"github.com/rook-computer/hud/internal/render/layout"
)

// Option configures Create.
type Option func(*options)

type options struct {
	opener  render.Opener
	log     logging.Logger
	metrics *metrics.Metrics

	// Applied through the public setters once the worker runs.
	setters []func(*Session) error
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logging.NoopLogger{}
	}
	return o
}

func (o *options) apply(s *Session) error {
	for _, set := range o.setters {
		if err := set(s); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) then(set func(*Session) error) {
	o.setters = append(o.setters, set)
}

// WithBackend sets how the session connects to a display.
func WithBackend(open render.Opener) Option {
	return func(o *options) { o.opener = open }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithFont replaces the default font. Create fails if it cannot be loaded.
func WithFont(spec string) Option {
	return func(o *options) { o.then(func(s *Session) error { return s.SetFont(spec) }) }
}

// WithColour sets the text colour. An unknown name leaves the fallback
// colour installed without failing Create.
func WithColour(name string) Option {
	return func(o *options) {
		o.then(func(s *Session) error {
			if err := s.SetColour(name); err != nil {
				s.log.Errorf("osd", "%s: %v", s.id, err)
			}
			return nil
		})
	}
}

func WithTimeout(seconds int) Option {
	return func(o *options) { o.then(func(s *Session) error { return s.SetTimeout(seconds) }) }
}

func WithPosition(p Position) Option {
	return func(o *options) { o.then(func(s *Session) error { return s.SetPosition(p) }) }
}

func WithVerticalOffset(px int) Option {
	return func(o *options) { o.then(func(s *Session) error { return s.SetVerticalOffset(px) }) }
}

func WithShadowOffset(px int) Option {
	return func(o *options) { o.then(func(s *Session) error { return s.SetShadowOffset(px) }) }
}

// WithStyle applies a configured style. Empty font and colour fields keep
// the defaults.
func WithStyle(st config.Style) Option {
	return func(o *options) {
		o.then(func(s *Session) error {
			if err := st.Validate(); err != nil {
				return failf(ErrInvalidArgument, "%v", err)
			}
			if st.Font != "" {
				if err := s.SetFont(st.Font); err != nil {
					return err
				}
			}
			for _, c := range []struct {
				name string
				set  func(string) error
			}{
				{st.Colour, s.SetColour},
				{st.ShadowColour, s.SetShadowColour},
				{st.OutlineColour, s.SetOutlineColour},
			} {
				if c.name == "" {
					continue
				}
				if err := c.set(c.name); err != nil {
					s.log.Errorf("osd", "%s: %v", s.id, err)
				}
			}
			pos, _ := layout.ParsePosition(st.Position)
			align, _ := layout.ParseAlignment(st.Align)
			steps := []func() error{
				func() error { return s.SetTimeout(st.Timeout) },
				func() error { return s.SetShadowOffset(st.ShadowOffset) },
				func() error { return s.SetShadowDirection(st.ShadowDirection) },
				func() error { return s.SetOutlineOffset(st.OutlineOffset) },
				func() error { return s.SetHorizontalOffset(st.HorizontalOffset) },
				func() error { return s.SetVerticalOffset(st.VerticalOffset) },
				func() error { return s.SetPosition(pos) },
				func() error { return s.SetAlignment(align) },
			}
			if st.BarLength > 0 {
				steps = append(steps, func() error { return s.SetBarLength(st.BarLength) })
			}
			for _, step := range steps {
				if err := step(); err != nil {
					return err
				}
			}
			return nil
		})
	}
}
