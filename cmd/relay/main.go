package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stonebriar/sagerelay/internal/config"
	"github.com/stonebriar/sagerelay/internal/events"
	"github.com/stonebriar/sagerelay/internal/infrastructure"
	"github.com/stonebriar/sagerelay/internal/relay"
	"github.com/stonebriar/sagerelay/internal/workflow"
)

func main() {
	eventPath := flag.String("event", "", "process a single event file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	if *eventPath != "" {
		if err := runOnce(cfg, *eventPath); err != nil {
			log.Fatal(err)
		}
		return
	}

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}
	if err := server.Start(); err != nil {
		log.Fatal("server start failed: ", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	if err := server.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		log.Fatal("shutdown failed: ", err)
	}
	server.infra.Logger.Info("relay stopped")
}

// runOnce drives the setup workflow for a single event payload, the way a
// state machine task invocation would.
func runOnce(cfg *config.Config, path string) error {
	ctx := context.Background()

	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read event %s: %w", path, err)
	}

	wc, err := events.ProjectContext(string(payload))
	if err != nil {
		return err
	}

	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return err
	}
	runtime, err := relay.NewRuntime(ctx, cfg, infra)
	if err != nil {
		return err
	}

	final, err := runtime.Machine.Run(ctx, wc)
	if err != nil {
		return err
	}

	slog.New(slog.NewTextHandler(os.Stderr, nil)).Info(
		"workflow finished",
		"project", final.ProjectID,
		"status", final.Status,
		"version", final.Version(),
	)
	if final.Status != workflow.StatusSuccessful {
		return fmt.Errorf("workflow ended %s: %s", final.Status, final.Err)
	}
	return nil
}
