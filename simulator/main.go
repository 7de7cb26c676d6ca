package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/hud/internal/app"
	"github.com/rook-computer/hud/internal/backend/headless"
	"github.com/rook-computer/hud/internal/config"
	"github.com/rook-computer/hud/internal/logging"
	"github.com/rook-computer/hud/internal/metrics"
	"github.com/rook-computer/hud/internal/web"
)

func main() {
	cfg := config.LoadOrDefault()
	addr := os.Getenv("HUD_SERVER_ADDR")
	defaults := web.ServerConfigFrom(config.ServerConfig{Addr: addr, DevCORS: cfg.Server.DevCORS}, ":8080")

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via HUD_SERVER_ADDR")
	devMode := flag.Bool("dev", defaults.DevMode, "allow cross-origin requests; also configurable via HUD_SERVER_DEV_CORS")
	width := flag.Int("width", app.HeadlessWidth, "simulated display width")
	height := flag.Int("height", app.HeadlessHeight, "simulated display height")
	heads := flag.Int("heads", 0, "split the display into this many side by side monitors; 0 disables the monitor query")
	lines := flag.Int("lines", cfg.Display.Lines, "number of overlay lines")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: true})
	if err != nil {
		fmt.Println("logger error:", err)
		os.Exit(2)
	}
	defer logger.Sync()

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	display := headless.New(*width, *height, splitHeads(*width, *height, *heads)...)
	control := NewSimControl(display)

	cfg.Display.Lines = *lines
	m := metrics.New()
	a := app.New(cfg, logger)
	a.Backend = display.Opener()
	a.Metrics = m
	session, err := a.Open()
	if err != nil {
		fmt.Println("overlay error:", err)
		os.Exit(2)
	}
	defer a.Stop()

	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode})
	server.Logger = logger
	server.Handler = web.NewDefaultMux(web.APIV1Config{Overlay: session, Logger: logger}, m.Registry())
	registerSimEndpoints(server.Handler, control)

	if err := server.Start(processCtx); err != nil {
		fmt.Println("server start error:", err)
		os.Exit(1)
	}

	fmt.Println("HUD simulator listening on", server.ListenAddr())
	fmt.Printf("Display: %dx%d, %d lines\n", *width, *height, *lines)
	fmt.Println("API: http://" + server.ListenAddr() + "/api/v1/")
	fmt.Println("Snapshot: http://" + server.ListenAddr() + "/sim/snapshot.png")

	<-processCtx.Done()
	_ = server.Stop()
}

// splitHeads divides a width x height display into n equal columns.
func splitHeads(width, height, n int) []image.Rectangle {
	if n <= 0 {
		return nil
	}
	heads := make([]image.Rectangle, 0, n)
	w := width / n
	for i := 0; i < n; i++ {
		heads = append(heads, image.Rect(i*w, 0, (i+1)*w, height))
	}
	return heads
}
