package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sales-reconciliation-tool/cmd/salesrecon/config"
	"sales-reconciliation-tool/internal/investigation"
	"sales-reconciliation-tool/pkg/errors"
)

var skippedCmd = &cobra.Command{
	Use:   "skipped",
	Short: "Examine rows carrying an invalid period label",
	Long: `Skipped examines the rows whose period label is invalid, which the import
skips, and checks that none of their orders also appear in the target period.
When the import counters are given, they are compared with the file.

Examples:
  salesrecon skipped --file review.csv --period "December 2025"
  salesrecon skipped --file review.csv --import-created 13228 --import-skipped 41`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		for flag, key := range map[string]string{
			"import-created": config.KeyImportCreated,
			"import-skipped": config.KeyImportSkipped,
		} {
			if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
				if err := viper.BindPFlag(key, f); err != nil {
					return errors.ConfigurationError(errors.CodeInvalidConfig, key, f.Value.String(), err)
				}
			}
		}
		return requireSettings("file", "bad-period")
	},
	RunE: runSkipped,
}

func init() {
	rootCmd.AddCommand(skippedCmd)

	skippedCmd.Flags().String("file", "", "review export (required)")
	skippedCmd.Flags().String("bad-period", "January 0000", "invalid period label")
	skippedCmd.Flags().String("period", "", "target period that must not lose orders, e.g. \"December 2025\"")
	skippedCmd.Flags().Int("import-created", 0, "items the import reported as created")
	skippedCmd.Flags().Int("import-skipped", 0, "items the import reported as skipped")
	addLoadFlags(skippedCmd)
	addOutputFlags(skippedCmd)
}

func runSkipped(cmd *cobra.Command, args []string) error {
	options, err := investigationOptions()
	if err != nil {
		return err
	}
	stats, err := config.CreateImportStats(viper.GetViper())
	if err != nil {
		return err
	}

	return runInvestigation(cmd, &investigation.SkippedRows{
		Options:      options,
		Path:         viper.GetString("file"),
		BadPeriod:    viper.GetString("bad-period"),
		TargetPeriod: viper.GetString("period"),
		Import:       stats,
	})
}
