package main

import (
	"errors"

	"github.com/spf13/cobra"

	"docforge/internal/batch"
	"docforge/internal/report"
)

func newReencryptCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir    string
		mirror       bool
		commonRoot   string
		overwrite    bool
		password     string
		passwordFile string
		newPassword  string
		skipUnlocked bool
		workers      int
	)

	cmd := &cobra.Command{
		Use:   "reencrypt <files or directories>",
		Short: "Replace PDF passwords in bulk",
		Long: "Reencrypt unlocks each protected PDF with its current password and\n" +
			"protects the result with the new one. Unprotected files are encrypted\n" +
			"directly unless --skip-unlocked is set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if newPassword == "" {
				return errors.New("--new-password is required")
			}
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
				Operation:    report.OpReEncrypt,
				Inputs:       inputs,
				Resolver:     resolver,
				NewPassword:  newPassword,
				Policy:       policy,
				Overwrite:    overwrite || cfg.Engine.Overwrite,
				BackupDir:    cfg.Paths.BackupDir,
				SkipUnlocked: skipUnlocked || cfg.Engine.SkipUnlocked,
				Workers:      pickWorkers(workers, cfg.Engine.Workers),
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for re-encrypted files (defaults to configured output dir)")
	cmd.Flags().BoolVar(&mirror, "mirror", false, "Recreate the input directory structure under the output dir")
	cmd.Flags().StringVar(&commonRoot, "common-root", "", "Ancestor directory for --mirror (derived from inputs when empty)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing output files, backing them up first")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Current password applied to files without a per-file entry")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", "CSV of filename,password pairs with current passwords")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "Password protecting the output files")
	cmd.Flags().BoolVar(&skipUnlocked, "skip-unlocked", false, "Leave files without protection untouched")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent files (defaults to configured worker count)")

	return cmd
}
