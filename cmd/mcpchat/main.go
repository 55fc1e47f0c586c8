package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"mcpchat/internal"
	"mcpchat/internal/ai"
	"mcpchat/internal/bridge"
	"mcpchat/internal/initialization"
	"mcpchat/internal/logger"
	"mcpchat/internal/mcp"
	"mcpchat/internal/ui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <path_to_server_script>\n", filepath.Base(os.Args[0]))
		os.Exit(1)
	}
	os.Exit(run(os.Args[1]))
}

func run(script string) int {
	cfg, err := initialization.Initialize()
	if err != nil {
		logger.Errorf("Initialization error: %v", err)
		return 1
	}

	// Ensure all log files are closed on exit
	defer func() {
		logger.CloseAllChatLogs()
		logger.Infof("All log files closed")
		logger.CloseLogFile()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := ai.NewOpenAIBackend(cfg.APIKey, cfg.BaseURL, cfg.RequestTimeoutDuration())
	if err != nil {
		logger.Errorf("Backend error: %v", err)
		return 1
	}

	engine := ai.NewEngine(backend, mcp.NewDialer(cfg.Server), ai.ConfigFrom(cfg))
	defer engine.Cleanup()

	if err := engine.Connect(ctx, script); err != nil {
		logger.Errorf("Could not start tool provider: %v", err)
		return 1
	}

	br := bridge.New(bridge.Options{
		PollInterval: cfg.PollInterval(),
		Workers:      cfg.UI.MaxInFlight,
		PumpBatch:    cfg.UI.PumpBatch,
	})
	br.Start()

	runErr := ui.Run(ctx, engine, br, ui.Options{
		Session: filepath.Base(script),
		BaseURL: cfg.BaseURL,
	})

	logger.Infof("Shutting down, waiting for %d pending task(s)", br.Pending())
	closeCtx, cancel := context.WithTimeout(context.Background(), internal.DEFAULT_SHUTDOWN_GRACE*time.Second)
	defer cancel()
	if err := br.Close(closeCtx); err != nil {
		logger.Warnf("Pending tasks abandoned: %v", err)
	}

	if runErr != nil {
		logger.Errorf("Shell error: %v", runErr)
		return 1
	}
	return 0
}
