package web

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvListenAddr = "DRAWINGPANEL_LISTEN"
	EnvDevMode    = "DRAWINGPANEL_DEV"

	// DefaultListenAddr keeps the preview on loopback unless asked otherwise.
	DefaultListenAddr = "127.0.0.1:8080"
)

// ServerConfig configures the preview HTTP server.
type ServerConfig struct {
	ListenAddr string
	// DevMode adds permissive CORS so a viewer on another origin can poll.
	DevMode bool
}

// DefaultServerConfigFromEnv reads DRAWINGPANEL_LISTEN and DRAWINGPANEL_DEV
// on top of defaultListenAddr with dev mode off.
func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	cfg := ServerConfig{ListenAddr: defaultListenAddr}
	if addr := strings.TrimSpace(os.Getenv(EnvListenAddr)); addr != "" {
		cfg.ListenAddr = addr
	}
	dev, err := envBool(EnvDevMode, false)
	if err != nil {
		return ServerConfig{}, err
	}
	cfg.DevMode = dev
	return cfg, nil
}

func envBool(name string, def bool) (bool, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean (got %q): %w", name, raw, err)
	}
	return v, nil
}
