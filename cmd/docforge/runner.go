package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docforge/internal/batch"
	"docforge/internal/history"
	"docforge/internal/report"
)

// runBatch drives one batch end to end: signal-aware cancellation, progress
// lines, the result table, history recording, and notifications.
func runBatch(cmd *cobra.Command, cmdCtx *commandContext, req batch.Request) error {
	dispatcher, err := cmdCtx.dispatcher()
	if err != nil {
		return err
	}
	notifier := cmdCtx.notifier()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if notifier != nil {
		_ = notifier.NotifyBatchStarted(ctx, req.Operation, len(req.Inputs))
	}

	started := time.Now().UTC()
	outcome, runErr := dispatcher.Run(ctx, req, func(p batch.Progress) {
		fmt.Fprintf(out, "[%d/%d] %-7s %s\n",
			p.Completed, p.Total, formatStatus(p.Last.Status), p.Last.InputPath)
	})
	finished := time.Now().UTC()
	if runErr != nil && len(outcome.Results) == 0 {
		if notifier != nil {
			_ = notifier.NotifyError(context.Background(), runErr, string(req.Operation)+" batch")
		}
		return runErr
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderResults(outcome.Results))
	printSummary(cmd, outcome.Summary)

	recordHistory(cmdCtx, cmd, history.BatchRecord{
		BatchID:    outcome.BatchID,
		Operation:  req.Operation,
		StartedAt:  started,
		FinishedAt: finished,
		Summary:    outcome.Summary,
		Results:    outcome.Results,
	})

	if notifier != nil {
		_ = notifier.NotifyBatchCompleted(context.Background(), req.Operation, outcome.Summary, finished.Sub(started))
	}
	if runErr != nil {
		return fmt.Errorf("batch cancelled after %d of %d files", outcome.Summary.Succeeded+outcome.Summary.Failed, outcome.Summary.Total)
	}
	if outcome.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", outcome.Summary.Failed, outcome.Summary.Total)
	}
	return nil
}

func renderResults(results []report.JobResult) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			fmt.Sprintf("%d", res.Index+1),
			formatStatus(res.Status),
			res.InputPath,
			res.Message,
		})
	}
	return renderTable(
		[]string{"#", "Status", "Input", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func printSummary(cmd *cobra.Command, summary report.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d total: %d succeeded, %d skipped, %d failed\n",
		summary.Total, summary.Succeeded, summary.Skipped, summary.Failed)
	if summary.LastOutputDir != "" {
		fmt.Fprintf(out, "Output directory: %s\n", summary.LastOutputDir)
	}
}

func recordHistory(cmdCtx *commandContext, cmd *cobra.Command, rec history.BatchRecord) {
	store, err := cmdCtx.openHistory()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: history unavailable: %v\n", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()
	if err := store.RecordBatch(context.Background(), rec); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to record history: %v\n", err)
	}
}
