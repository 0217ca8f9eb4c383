package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rook-computer/drawingpanel/internal/logging"
	"github.com/rook-computer/drawingpanel/internal/web"
	"github.com/rook-computer/drawingpanel/panel"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	scenario := flag.String("scenario", "bounce", "startup scenario: "+strings.Join(scenarioNames(), " | "))
	debugLog := flag.String("debug-log", "", "append debug logging to this file")
	flag.Parse()

	run, ok := scenarios[strings.TrimSpace(*scenario)]
	if !ok {
		fmt.Printf("unknown scenario %q\n", *scenario)
		os.Exit(2)
	}

	var logger logging.Logger = logging.NoopLogger{}
	if *debugLog != "" {
		f, err := os.OpenFile(*debugLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Println("debug log open error:", err)
		} else {
			logger = logging.NewFileLogger(f)
		}
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvCfg := web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode}
	cfg := panel.DefaultConfig()
	cfg.Backend = panel.BackendWeb
	cfg.Web = srvCfg

	reg, err := panel.NewRegistry(cfg,
		panel.WithLogger(logger),
		panel.WithDisplay(web.NewDisplay(srvCfg, logger)),
	)
	if err != nil {
		fmt.Println("registry error:", err)
		os.Exit(2)
	}
	go func() {
		<-processCtx.Done()
		reg.Shutdown()
	}()

	fmt.Println("Drawing panel simulator listening on", displayAddr(*listenAddr))
	fmt.Println("Scenario:", *scenario)
	fmt.Println("API: http://" + displayAddr(*listenAddr) + "/api/v1/")

	if err := reg.Main(func() error { return run(processCtx, reg) }); err != nil {
		fmt.Println("scenario error:", err)
		os.Exit(1)
	}
}

func displayAddr(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if addr == "" {
		return web.DefaultListenAddr
	}
	if addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
