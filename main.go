package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gogpu/gg"

	"github.com/rook-computer/drawingpanel/internal/logging"
	"github.com/rook-computer/drawingpanel/panel"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging to ./drawingpanel-debug.log")
	backend := flag.String("backend", "", "display backend: ebiten, fbdev, web or headless; also configurable via DRAWINGPANEL_BACKEND")
	fps := flag.Int("fps", panel.DefaultFrameRate, "repaint rate of the demo surface")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via DRAWINGPANEL_STDIO_LOG")
	flag.Parse()

	// Best-effort: on the framebuffer backend the console stays in graphics
	// mode, so panics are only readable from a file.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("DRAWINGPANEL_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	cfg, err := panel.ConfigFromEnv()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	if *backend != "" {
		b, err := panel.ParseBackend(*backend)
		if err != nil {
			fmt.Println("config error:", err)
			os.Exit(2)
		}
		cfg.Backend = b
	}

	var logger logging.Logger = logging.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./drawingpanel-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			fl := logging.NewFileLogger(f)
			gg.SetLogger(logging.Slog(fl.Writer()))
			logger = fl
			logger.Infof("main", "debug logging enabled, backend=%s", cfg.Backend)
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	reg, err := panel.NewRegistry(cfg, panel.WithLogger(logger))
	if err != nil {
		fmt.Println("registry error:", err)
		os.Exit(2)
	}
	if cfg.Backend == panel.BackendWeb {
		fmt.Printf("preview at http://%s/\n", cfg.Web.ListenAddr)
	}

	err = reg.Main(func() error {
		return runDemo(reg, *fps, logger)
	})
	if err != nil {
		fmt.Println("demo error:", err)
		os.Exit(1)
	}
}
