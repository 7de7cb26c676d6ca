// Package app wires configuration, logging, metrics, the overlay and the
// control API into the hud binaries.
package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/rook-computer/hud/internal/backend/fbdev"
	"github.com/rook-computer/hud/internal/backend/headless"
	"github.com/rook-computer/hud/internal/backend/x11"
	"github.com/rook-computer/hud/internal/config"
	"github.com/rook-computer/hud/internal/logging"
	"github.com/rook-computer/hud/internal/metrics"
	"github.com/rook-computer/hud/internal/osd"
	"github.com/rook-computer/hud/internal/render"
	"github.com/rook-computer/hud/internal/system"
	"github.com/rook-computer/hud/internal/web"
)

// Headless display size used when no real back-end is configured.
const (
	HeadlessWidth  = 1024
	HeadlessHeight = 768
)

type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *metrics.Metrics

	// Backend overrides the back-end named by Config.Display.
	Backend render.Opener
	// Serve starts the control API on Config.Server.
	Serve bool
	// Input, when set, is displayed line by line like osd_cat does.
	Input io.Reader
	// Wait keeps Start from returning before the overlay has hidden.
	Wait bool

	session *osd.Session
	web     web.Server
	console bool

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(cfg *config.Config, logger logging.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	return &App{Config: cfg, Logger: logger, exitCh: make(chan error, 1)}
}

// BackendOpener returns the opener for the configured back-end.
func BackendOpener(d config.DisplayConfig, log logging.Logger) (render.Opener, error) {
	switch strings.ToLower(strings.TrimSpace(d.Backend)) {
	case "x11", "":
		return x11.Opener(d.X11Display, log), nil
	case "fbdev", "fb":
		return fbdev.Opener(d.Framebuffer, log), nil
	case "headless":
		return headless.Factory(HeadlessWidth, HeadlessHeight, nil), nil
	}
	return nil, fmt.Errorf("unknown display backend %q", d.Backend)
}

// Open creates the overlay session once and returns it.
func (app *App) Open() (*osd.Session, error) {
	if app.session != nil {
		return app.session, nil
	}
	d := app.Config.Display
	opener := app.Backend
	if opener == nil {
		var err error
		if opener, err = BackendOpener(d, app.Logger); err != nil {
			return nil, err
		}
		if strings.HasPrefix(strings.ToLower(d.Backend), "fb") {
			app.enterConsole()
		}
	}

	s, err := osd.Create(d.Lines,
		osd.WithBackend(opener),
		osd.WithLogger(app.Logger),
		osd.WithMetrics(app.Metrics),
		osd.WithStyle(app.Config.Style),
	)
	if err != nil {
		app.leaveConsole()
		return nil, err
	}
	if d.Monitor > 0 {
		if err := s.SelectMonitor(d.Monitor); err != nil {
			app.Logger.Errorf("app", "monitor %d: %v", d.Monitor, err)
		}
	}
	app.session = s
	return s, nil
}

// Session returns the overlay opened by Open, or nil.
func (app *App) Session() *osd.Session { return app.session }

// Exit requests Start to return with err. Only the first request counts.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start opens the overlay, starts the control API and the input pump, and
// blocks until ctx is done or Exit is called.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)

	s, err := app.Open()
	if err != nil {
		app.Logger.Errorf("app", "open overlay: %v", err)
		return err
	}

	if app.Serve {
		srv := web.NewHTTPServer(web.ServerConfigFrom(app.Config.Server, config.DefaultServerAddr))
		srv.Logger = app.Logger
		srv.Handler = web.NewDefaultMux(web.APIV1Config{Overlay: s, Logger: app.Logger}, app.Metrics.Registry())
		if err := srv.Start(ctx); err != nil {
			return err
		}
		app.web = srv
		defer func() { _ = srv.Stop() }()
	}

	if app.Input != nil {
		go func() { app.Exit(Pump(ctx, s, app.Input)) }()
	}

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	if err == nil && app.Wait {
		err = s.WaitUntilHidden()
	}
	return err
}

// Stop destroys the overlay and gives the console back.
func (app *App) Stop() error {
	var err error
	if app.session != nil {
		err = app.session.Destroy()
		app.session = nil
	}
	app.leaveConsole()
	return err
}

func (app *App) enterConsole() {
	if err := system.SetGraphicsModeWithLog(app.Logger); err != nil {
		return
	}
	_ = system.HideCursorWithLog(app.Logger)
	app.console = true
}

func (app *App) leaveConsole() {
	if !app.console {
		return
	}
	_ = system.ShowCursorWithLog(app.Logger)
	_ = system.RestoreTextModeWithLog(app.Logger)
	app.console = false
}
