package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rook-computer/hud/internal/app"
	"github.com/rook-computer/hud/internal/config"
	"github.com/rook-computer/hud/internal/logging"
	"github.com/rook-computer/hud/internal/metrics"
	"github.com/rook-computer/hud/internal/osd"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}

	// Flags override the configuration.
	backend := flag.String("backend", cfg.Display.Backend, "display back-end: x11 | fbdev | headless; also HUD_DISPLAY_BACKEND")
	display := flag.String("display", cfg.Display.X11Display, "X display to connect to; defaults to $DISPLAY")
	lines := flag.Int("lines", cfg.Display.Lines, "number of overlay lines")
	monitor := flag.Int("monitor", cfg.Display.Monitor, "1-based monitor to show the overlay on; 0 uses the whole display")
	timeout := flag.Int("timeout", cfg.Style.Timeout, "seconds before the overlay hides; <= 0 keeps it up")
	font := flag.String("font", cfg.Style.Font, "font: fixed, mono[:size], sans[:size], an XLFD or a .ttf/.otf path")
	colour := flag.String("colour", cfg.Style.Colour, "text colour: X11 name, #rrggbb or rgb:rr/gg/bb")
	wait := flag.Bool("wait", false, "after input ends, wait until the overlay hides")
	serve := flag.Bool("serve", false, "serve the control API on "+cfg.Server.Addr)
	displayInfo := flag.Bool("display-info", false, "show the monitor layout for a few seconds and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via HUD_STDIO_LOG")
	flag.Parse()

	// Best-effort: in framebuffer mode the console is in graphics mode, so
	// crashes are only diagnosable from a file.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("HUD_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
		}
	}

	cfg.Display.Backend = *backend
	cfg.Display.X11Display = *display
	cfg.Display.Lines = *lines
	cfg.Display.Monitor = *monitor
	cfg.Style.Timeout = *timeout
	cfg.Style.Font = *font
	cfg.Style.Colour = *colour
	if *debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: cfg.Logging.OutputPaths,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, logger)
	a.Metrics = metrics.New()
	a.Serve = *serve
	a.Wait = *wait
	if !*displayInfo {
		a.Input = os.Stdin
	}
	defer func() {
		if err := a.Stop(); err != nil {
			logger.Errorf("main", "stop: %v", err)
		}
	}()

	if *displayInfo {
		err = runDisplayInfo(ctx, a)
	} else {
		err = a.Start(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("main", "%v (last overlay error: %s)", err, osd.LastError())
		// Stop has to run before exiting.
		_ = a.Stop()
		os.Exit(1)
	}
}

// infoHold is how long the monitor layout stays up.
const infoHold = 15 * time.Second

func runDisplayInfo(ctx context.Context, a *app.App) error {
	base, err := a.Open()
	if err != nil {
		return err
	}
	if err := base.SetOutlineOffset(1); err != nil {
		return err
	}
	return osd.DisplayInfo(ctx, base, infoHold)
}
