package main

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/edusummarize/internal/auth"
	httpapi "github.com/nguyentantai21042004/edusummarize/internal/http"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger

			log.Info(runCtx, "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
			log.Info(runCtx, "Max concurrent pipeline runs: %d", cfg.Performance.MaxConcurrent)

			p, err := ctx.buildPipeline(runCtx)
			if err != nil {
				return err
			}
			defer p.Close()

			verifier, err := auth.NewSupabase(cfg.Auth)
			if err != nil {
				return fmt.Errorf("init identity provider: %w", err)
			}
			if cfg.Auth.SupabaseURL == "" {
				log.Warn(runCtx, "No identity provider configured; history endpoints will reject every request")
			}

			srv := httpapi.NewServer(cfg, p.proc, p.store, verifier, log)
			if err := srv.Run(runCtx); err != nil && err != context.Canceled {
				return err
			}
			log.Info(context.Background(), "Server stopped")
			return nil
		},
	}
}
