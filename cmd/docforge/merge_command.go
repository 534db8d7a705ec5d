package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docforge/internal/batch"
	"docforge/internal/config"
	"docforge/internal/report"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var (
		output    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "merge --output <file> <files or directories>",
		Short: "Concatenate PDFs into a single document",
		Long: "Merge joins the given PDFs in argument order into one output file.\n" +
			"The merge is all-or-nothing: one unreadable input fails the whole\n" +
			"batch and no output is written.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(output) == "" {
				return errors.New("--output is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inputs, err := collectInputs(args, ".pdf")
			if err != nil {
				return err
			}

			target, err := config.ExpandPath(output)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if !filepath.IsAbs(target) {
				target = filepath.Join(cfg.Paths.OutputDir, target)
			}

			return runBatch(cmd, ctx, batch.Request{
				Operation:   report.OpMerge,
				Inputs:      inputs,
				MergeOutput: target,
				Overwrite:   overwrite || cfg.Engine.Overwrite,
				BackupDir:   cfg.Paths.BackupDir,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Path of the merged document (relative paths land in the output dir)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing output file, backing it up first")

	return cmd
}
