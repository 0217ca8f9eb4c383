package panel

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rook-computer/drawingpanel/internal/display"
	"github.com/rook-computer/drawingpanel/internal/logging"
	"github.com/rook-computer/drawingpanel/internal/web"
)

const (
	EnvBackend  = "DRAWINGPANEL_BACKEND"
	EnvFBDevice = "DRAWINGPANEL_FBDEV"
	EnvAutoExit = "DRAWINGPANEL_AUTO_EXIT"
	EnvDebugLog = "DRAWINGPANEL_DEBUG_LOG"
)

// Backend names a display implementation.
type Backend string

const (
	BackendEbiten   Backend = "ebiten"
	BackendFBDev    Backend = "fbdev"
	BackendWeb      Backend = "web"
	BackendHeadless Backend = "headless"
)

// Config selects the display backend and process-wide defaults.
type Config struct {
	Backend  Backend
	FBDevice string
	Web      web.ServerConfig
	AutoExit bool
	// DebugLog, when set, is a file that receives the debug log.
	DebugLog string
}

// DefaultConfig uses the ebiten backend with auto-exit on.
func DefaultConfig() Config {
	return Config{
		Backend:  BackendEbiten,
		FBDevice: display.DefaultFBDevice,
		Web:      web.ServerConfig{ListenAddr: web.DefaultListenAddr},
		AutoExit: true,
	}
}

// ConfigFromEnv reads DRAWINGPANEL_* variables on top of DefaultConfig.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if raw := os.Getenv(EnvBackend); raw != "" {
		b, err := ParseBackend(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvBackend, err)
		}
		cfg.Backend = b
	}
	if raw := os.Getenv(EnvFBDevice); raw != "" {
		cfg.FBDevice = raw
	}
	if raw := os.Getenv(EnvAutoExit); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvAutoExit, raw, err)
		}
		cfg.AutoExit = parsed
	}
	cfg.DebugLog = os.Getenv(EnvDebugLog)

	webCfg, err := web.DefaultServerConfigFromEnv(web.DefaultListenAddr)
	if err != nil {
		return Config{}, err
	}
	cfg.Web = webCfg
	return cfg, nil
}

// ParseBackend parses a backend name, ignoring case and surrounding space.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendEbiten, BackendFBDev, BackendWeb, BackendHeadless:
		return b, nil
	}
	return "", fmt.Errorf("unknown backend %q (want ebiten, fbdev, web or headless): %w", s, ErrInvalidArgument)
}

// NewDisplay builds the display named by cfg.Backend.
func NewDisplay(cfg Config, l logging.Logger) (display.Display, error) {
	switch cfg.Backend {
	case BackendEbiten, "":
		return display.NewEbiten(l), nil
	case BackendFBDev:
		return display.NewFBDev(cfg.FBDevice, l), nil
	case BackendWeb:
		return web.NewDisplay(cfg.Web, l), nil
	case BackendHeadless:
		return display.NewHeadless(), nil
	}
	return nil, fmt.Errorf("unknown backend %q: %w", cfg.Backend, ErrInvalidArgument)
}

// openDebugLog opens cfg.DebugLog for appending, or returns a NoopLogger.
func openDebugLog(path string) (logging.Logger, error) {
	if path == "" {
		return logging.NoopLogger{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return logging.NoopLogger{}, fmt.Errorf("open debug log %s: %w", path, err)
	}
	return logging.NewFileLogger(f), nil
}
