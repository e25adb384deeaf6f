package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/edusummarize/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved summaries",
	}

	var userID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's processed videos, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}
	listCmd.Flags().StringVar(&userID, "user", "", "User id whose history to list")
	_ = listCmd.MarkFlagRequired("user")

	var deleteUser, videoURL string
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove one saved summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.Delete(cmd.Context(), deleteUser, videoURL)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("no saved summary for %s", videoURL)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", videoURL)
			return nil
		},
	}
	deleteCmd.Flags().StringVar(&deleteUser, "user", "", "User id owning the summary")
	deleteCmd.Flags().StringVar(&videoURL, "url", "", "Video URL of the summary to remove")
	_ = deleteCmd.MarkFlagRequired("user")
	_ = deleteCmd.MarkFlagRequired("url")

	historyCmd.AddCommand(listCmd, deleteCmd)
	return historyCmd
}

func printHistory(w io.Writer, records []history.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No history")
		return
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Timestamp.Local().Format("2006-01-02 15:04"),
			truncate(rec.Title, 40),
			rec.VideoURL,
			rec.DocID[:12],
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Processed", "Title", "Video URL", "Doc ID"}, rows))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
