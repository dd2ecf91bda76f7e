package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sales-reconciliation-tool/internal/investigation"
	"sales-reconciliation-tool/pkg/errors"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Count $0 line items and check line item ids",
	Long: `Items counts the line items priced at $0, checks that line item ids are
unique and estimates the number of import batches.

Examples:
  salesrecon items --file review.csv
  salesrecon items --file review.csv --period "December 2025" --batch-size 450`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetInt("batch-size") <= 0 {
			return errors.ValidationError(errors.CodeOutOfRange, "batch-size", viper.GetInt("batch-size"), nil)
		}
		return requireSettings("file")
	},
	RunE: runItems,
}

func init() {
	rootCmd.AddCommand(itemsCmd)

	itemsCmd.Flags().String("file", "", "review export (required)")
	itemsCmd.Flags().String("period", "", "period label restricting the id and batch checks")
	itemsCmd.Flags().Int("batch-size", investigation.DefaultBatchSize, "line items per import batch")
	addLoadFlags(itemsCmd)
	addOutputFlags(itemsCmd)
}

func runItems(cmd *cobra.Command, args []string) error {
	options, err := investigationOptions()
	if err != nil {
		return err
	}

	return runInvestigation(cmd, &investigation.ZeroPriceAudit{
		Options:   options,
		Path:      viper.GetString("file"),
		Period:    viper.GetString("period"),
		BatchSize: viper.GetInt("batch-size"),
	})
}
