package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sales-reconciliation-tool/internal/investigation"
	"sales-reconciliation-tool/pkg/errors"
)

var orderCmd = &cobra.Command{
	Use:   "order ORDER_NUMBER",
	Short: "Look up one order in several exports",
	Long: `Order lists the line items, salespeople, issued dates and revenue of one
order in every given export. Sources are given as LABEL=PATH or as a bare
path, which is labelled with its file name.

Examples:
  salesrecon order 9715 --source ytd="2025 YTD.csv" --source review=review.csv
  salesrecon order 9715 --source review.csv --search 12-01`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(viper.GetStringSlice("source")) == 0 {
			return requireSettings("source")
		}
		return nil
	},
	RunE: runOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().StringArray("source", nil, "export to search, LABEL=PATH or PATH (repeatable, required)")
	orderCmd.Flags().String("search", "", "also list rows of the first source whose issued date contains this text")
	addLoadFlags(orderCmd)
	addOutputFlags(orderCmd)
}

func runOrder(cmd *cobra.Command, args []string) error {
	options, err := investigationOptions()
	if err != nil {
		return err
	}
	sources, err := parseSources(viper.GetStringSlice("source"))
	if err != nil {
		return err
	}

	return runInvestigation(cmd, &investigation.OrderLookup{
		Options:    options,
		Order:      args[0],
		Sources:    sources,
		DateSearch: viper.GetString("search"),
	})
}

// parseSources parses LABEL=PATH values. A value without a label is
// labelled with its file name.
func parseSources(values []string) ([]investigation.Source, error) {
	sources := make([]investigation.Source, 0, len(values))
	for _, value := range values {
		label, path, ok := strings.Cut(value, "=")
		if !ok {
			path = value
			label = filepath.Base(value)
		}
		label, path = strings.TrimSpace(label), strings.TrimSpace(path)
		if path == "" || label == "" {
			return nil, errors.ValidationError(errors.CodeInvalidFormat, "source", value, nil).
				WithSuggestion("use LABEL=PATH or PATH")
		}
		sources = append(sources, investigation.Source{Label: label, Path: path})
	}
	return sources, nil
}
