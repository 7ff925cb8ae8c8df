package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/config"
	"github.com/mikey/llm-autoresponder/internal/core"
	"github.com/mikey/llm-autoresponder/internal/di"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.BuildTriageContainer(ctx)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(func(logger *zap.Logger, svc *core.TriageService, cfg *config.Config) error {
		return run(ctx, cancel, logger, svc, cfg)
	}); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run polls the mailbox until interrupted. The first pass happens right
// away so a restart picks up backlog without waiting a full interval.
func run(ctx context.Context, cancel context.CancelFunc, logger *zap.Logger, svc *core.TriageService, cfg *config.Config) error {
	defer logger.Sync()

	mailboxCfg, err := cfg.GetMailbox()
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down...")
		cancel()
	}()

	logger.Info("Autoresponder started",
		zap.Duration("poll_interval", mailboxCfg.PollInterval),
		zap.Int("max_threads", mailboxCfg.MaxThreads))

	if err := svc.ProcessBatch(ctx); err != nil {
		logger.Error("Batch failed", zap.Error(err))
	}

	ticker := time.NewTicker(mailboxCfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := svc.ProcessBatch(ctx); err != nil {
				logger.Error("Batch failed", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("Shutdown complete")
			return nil
		}
	}
}
