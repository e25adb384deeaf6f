package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/edusummarize/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Process URL lists dropped into the inbox folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger

			p, err := ctx.buildPipeline(runCtx)
			if err != nil {
				return err
			}
			defer p.Close()

			handler := watcher.NewInboxHandler(p.proc, cfg.Watch.UserID, cfg.Paths.Output, log)
			w, err := watcher.New(cfg.Paths.Inbox, handler.Handle, log, cfg.Performance.MaxConcurrent)
			if err != nil {
				return err
			}
			defer w.Stop()

			log.Info(runCtx, "Drop .txt or .url files with one video URL per line into %s", cfg.Paths.Inbox)
			log.Info(runCtx, "Output: %s", cfg.Paths.Output)
			log.Info(runCtx, "Press Ctrl+C to stop")

			if err := w.Start(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
