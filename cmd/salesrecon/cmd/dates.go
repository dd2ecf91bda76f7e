package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sales-reconciliation-tool/internal/investigation"
)

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Audit the issued dates selected by a date prefix",
	Long: `Dates selects the rows whose issued date starts with a prefix and checks
that they really are what the prefix suggests: the share of dates in the
MM-DD-YYYY HH:MM:SS layout, the months they parse to and the years present.

Examples:
  salesrecon dates --file "2025 YTD.csv"
  salesrecon dates --file export.xlsx --sheet Orders --prefix 11- --year 2025`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireSettings("file", "prefix")
	},
	RunE: runDates,
}

func init() {
	rootCmd.AddCommand(datesCmd)

	datesCmd.Flags().String("file", "", "export to audit (required)")
	datesCmd.Flags().String("prefix", "12-", "issued date prefix selecting the rows")
	datesCmd.Flags().String("year", "", "year every selected date should fall in")
	addLoadFlags(datesCmd)
	addOutputFlags(datesCmd)
}

func runDates(cmd *cobra.Command, args []string) error {
	options, err := investigationOptions()
	if err != nil {
		return err
	}

	return runInvestigation(cmd, &investigation.DateAudit{
		Options:      options,
		Path:         viper.GetString("file"),
		Prefix:       viper.GetString("prefix"),
		ExpectedYear: viper.GetString("year"),
	})
}
