package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sales-reconciliation-tool/cmd/salesrecon/config"
	"sales-reconciliation-tool/internal/investigation"
)

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Break down a period by salesperson and compare with downstream figures",
	Long: `Period totals the rows of one period by salesperson. Given the figures
found downstream, it shows the items and revenue missing per salesperson.

Downstream figures are given as NAME=REVENUE[:ITEMS], once per salesperson.

Examples:
  salesrecon period --file review.csv --period "December 2025"
  salesrecon period --file review.csv --period "December 2025" \
    --downstream 'BenW=$101,797.73:117' --downstream 'Zalak=$143,109.14:72' --focus BenW`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireSettings("file", "period")
	},
	RunE: runPeriod,
}

func init() {
	rootCmd.AddCommand(periodCmd)

	periodCmd.Flags().String("file", "", "review export (required)")
	periodCmd.Flags().String("period", "", "period label, e.g. \"December 2025\" (required)")
	periodCmd.Flags().StringArray(config.KeyDownstream, nil, "downstream figure NAME=REVENUE[:ITEMS] (repeatable)")
	periodCmd.Flags().String("focus", "", "salesperson whose rows are listed in full")
	addLoadFlags(periodCmd)
	addOutputFlags(periodCmd)
}

func runPeriod(cmd *cobra.Command, args []string) error {
	options, err := investigationOptions()
	if err != nil {
		return err
	}
	figures, err := config.CreateDownstreamFigures(viper.GetViper())
	if err != nil {
		return err
	}

	return runInvestigation(cmd, &investigation.PeriodSummary{
		Options:    options,
		Path:       viper.GetString("file"),
		Period:     viper.GetString("period"),
		Downstream: figures,
		Focus:      viper.GetString("focus"),
	})
}
