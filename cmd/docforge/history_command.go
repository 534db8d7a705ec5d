package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docforge/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past batch runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent batches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is disabled in the configuration")
			}
			defer store.Close()

			records, err := store.ListRecent(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No batches recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.BatchID[:8],
					string(rec.Operation),
					rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
					rec.Duration().Round(time.Second).String(),
					fmt.Sprintf("%d", rec.Summary.Total),
					fmt.Sprintf("%d", rec.Summary.Succeeded),
					fmt.Sprintf("%d", rec.Summary.Skipped),
					fmt.Sprintf("%d", rec.Summary.Failed),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Batch", "Operation", "Started", "Duration", "Total", "OK", "Skip", "Fail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of batches to list")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show per-file results of one batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is disabled in the configuration")
			}
			defer store.Close()

			batchID, err := resolveBatchID(store, args[0])
			if err != nil {
				return err
			}
			results, err := store.BatchResults(context.Background(), batchID)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no results recorded for batch %s", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderResults(results))
			return nil
		},
	}
}

// resolveBatchID accepts a full batch id or the unique prefix shown by list.
func resolveBatchID(store batchLister, arg string) (string, error) {
	records, err := store.ListRecent(context.Background(), 1000)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, rec := range records {
		if rec.BatchID == arg {
			return arg, nil
		}
		if strings.HasPrefix(rec.BatchID, arg) {
			matches = append(matches, rec.BatchID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no batch matches %q", arg)
	default:
		return "", fmt.Errorf("%q matches %d batches, give more of the id", arg, len(matches))
	}
}

type batchLister interface {
	ListRecent(ctx context.Context, limit int) ([]history.BatchRecord, error)
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old batches from the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is disabled in the configuration")
			}
			defer store.Close()

			deleted, err := store.Prune(context.Background(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d batches older than %s\n", deleted, olderThan)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Delete batches started longer ago than this")
	return cmd
}
