package main

import (
	"github.com/spf13/cobra"

	"docforge/internal/batch"
	"docforge/internal/report"
)

func newDecryptCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir    string
		mirror       bool
		commonRoot   string
		overwrite    bool
		password     string
		passwordFile string
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "decrypt <files or directories>",
		Short: "Remove password protection from PDFs in bulk",
		Long: "Decrypt unlocks every given PDF using the common password or a\n" +
			"per-file password map. Files that are already unlocked are skipped.\n" +
			"Directories are expanded to the PDFs they contain.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inputs, err := collectInputs(args, ".pdf")
			if err != nil {
				return err
			}
			resolver, err := buildResolver(password, passwordFile)
			if err != nil {
				return err
			}
			policy, err := buildPolicy(cfg, outputDir, mirror, commonRoot, inputs, "")
			if err != nil {
				return err
			}

			return runBatch(cmd, ctx, batch.Request{
				Operation: report.OpDecrypt,
				Inputs:    inputs,
				Resolver:  resolver,
				Policy:    policy,
				Overwrite: overwrite || cfg.Engine.Overwrite,
				BackupDir: cfg.Paths.BackupDir,
				Workers:   pickWorkers(workers, cfg.Engine.Workers),
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for unlocked files (defaults to configured output dir)")
	cmd.Flags().BoolVar(&mirror, "mirror", false, "Recreate the input directory structure under the output dir")
	cmd.Flags().StringVar(&commonRoot, "common-root", "", "Ancestor directory for --mirror (derived from inputs when empty)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing output files, backing them up first")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password applied to files without a per-file entry")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", "CSV of filename,password pairs")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent files (defaults to configured worker count)")

	return cmd
}

func pickWorkers(flag, configured int) int {
	if flag > 0 {
		return flag
	}
	return configured
}
