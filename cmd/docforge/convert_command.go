package main

import (
	"github.com/spf13/cobra"

	"docforge/internal/batch"
	"docforge/internal/report"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir  string
		mirror     bool
		commonRoot string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:   "convert <files or directories>",
		Short: "Convert Word documents to PDF",
		Long: "Convert renders .docx and .doc files to PDF through the configured\n" +
			"office-automation host. Conversions run one at a time; the host is\n" +
			"not safe to drive concurrently.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			inputs, err := collectInputs(args, ".docx", ".doc")
			if err != nil {
				return err
			}
			policy, err := buildPolicy(cfg, outputDir, mirror, commonRoot, inputs, ".pdf")
			if err != nil {
				return err
			}

			return runBatch(cmd, ctx, batch.Request{
				Operation: report.OpConvert,
				Inputs:    inputs,
				Policy:    policy,
				Overwrite: overwrite || cfg.Engine.Overwrite,
				BackupDir: cfg.Paths.BackupDir,
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for converted PDFs (defaults to configured output dir)")
	cmd.Flags().BoolVar(&mirror, "mirror", false, "Recreate the input directory structure under the output dir")
	cmd.Flags().StringVar(&commonRoot, "common-root", "", "Ancestor directory for --mirror (derived from inputs when empty)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing output files, backing them up first")

	return cmd
}
