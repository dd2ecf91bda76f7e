package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sales-reconciliation-tool/internal/investigation"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Check a salesperson's orders against a larger export",
	Long: `Compare checks that every order in a salesperson's own export is present
in a candidate export filtered to that salesperson and issued date prefix, and
lists the missing orders with their revenue.

Examples:
  salesrecon compare --reference ben_12_2025.csv --candidate "2025 YTD.csv" --sales-person BenW
  salesrecon compare --reference ben.csv --candidate ytd.csv --sales-person BenW --date-prefix 11- -f json`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireSettings("reference", "candidate", "sales-person")
	},
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().String("reference", "", "the salesperson's own export (required)")
	compareCmd.Flags().String("candidate", "", "export expected to contain every reference order (required)")
	compareCmd.Flags().String("sales-person", "", "salesperson to compare (required)")
	compareCmd.Flags().String("date-prefix", "12-", "issued date prefix applied to the candidate")
	addLoadFlags(compareCmd)
	addOutputFlags(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	options, err := investigationOptions()
	if err != nil {
		return err
	}

	return runInvestigation(cmd, &investigation.SalespersonCompare{
		Options:       options,
		ReferencePath: viper.GetString("reference"),
		CandidatePath: viper.GetString("candidate"),
		SalesPerson:   viper.GetString("sales-person"),
		DatePrefix:    viper.GetString("date-prefix"),
	})
}
