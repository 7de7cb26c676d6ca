package web

import "github.com/rook-computer/hud/internal/config"

// ServerConfig contains settings for running the HTTP server.
//
// The intended defaults differ per binary:
// - device:    127.0.0.1:8088, only with -serve
// - simulator: :8080
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
}

// ServerConfigFrom takes the listen address and dev mode from the loaded
// configuration, falling back to defaultListenAddr.
func ServerConfigFrom(c config.ServerConfig, defaultListenAddr string) ServerConfig {
	addr := c.Addr
	if addr == "" {
		addr = defaultListenAddr
	}
	return ServerConfig{ListenAddr: addr, DevMode: c.DevCORS}
}
