package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/edusummarize/internal/auth"
	"github.com/nguyentantai21042004/edusummarize/internal/export"
	"github.com/nguyentantai21042004/edusummarize/internal/history"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var userID string
	var docxOut bool

	cmd := &cobra.Command{
		Use:   "process <video-url>",
		Short: "Transcribe and summarize one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			p, err := ctx.buildPipeline(runCtx)
			if err != nil {
				return err
			}
			defer p.Close()

			identity := auth.Identity{Status: auth.Anonymous}
			if userID != "" {
				identity = auth.Identity{UserID: userID, Status: auth.Verified}
			}

			videoURL := args[0]
			result, err := p.proc.Process(runCtx, videoURL, identity)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transcript:\n%s\n\nSummary:\n%s\n", result.Transcript, result.Summary)
			if result.Saved {
				fmt.Fprintf(out, "\nSaved to history for %s\n", userID)
			}

			if docxOut {
				path := filepath.Join(cfg.Paths.Output, export.FileName(result.Title, history.DocID(videoURL)))
				err := export.WriteFile(path, export.Document{
					Title:       result.Title,
					VideoURL:    videoURL,
					Transcript:  result.Transcript,
					Summary:     result.Summary,
					ProcessedAt: time.Now(),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Record the result in this user's history")
	cmd.Flags().BoolVar(&docxOut, "docx", false, "Also write a .docx export to the output directory")
	return cmd
}
