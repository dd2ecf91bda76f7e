// Package config turns flags, environment variables and the config file into
// the configurations used by the loader, the investigations and the reporter.
package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"

	"sales-reconciliation-tool/internal/investigation"
	"sales-reconciliation-tool/internal/models"
	"sales-reconciliation-tool/internal/parsers"
	"sales-reconciliation-tool/internal/reporter"
	"sales-reconciliation-tool/pkg/errors"
)

// Setting keys shared by flags, SALESRECON_ environment variables and the
// config file
const (
	KeyProfile        = "profile"
	KeyColumns        = "columns"
	KeyAliases        = "aliases"
	KeyDelimiter      = "delimiter"
	KeyEncoding       = "encoding"
	KeySheet          = "sheet"
	KeyCurrencyPolicy = "currency-policy"
	KeyMaxSkipped     = "max-skipped"
	KeyOutputFormat   = "output-format"
	KeyOutputFile     = "output-file"
	KeyNoColor        = "no-color"
	KeyMaxListItems   = "max-list-items"
	KeySampleSize     = "sample-size"
	KeyDownstream     = "downstream"
	KeyImportCreated  = "import.created"
	KeyImportSkipped  = "import.skipped"
)

// Profile is a named column layout for a known export
type Profile struct {
	Name        string
	Description string
	Layout      models.ColumnLayout

	// Aliases maps header names seen in this export to the layout names.
	Aliases map[string]string
}

// GetProfiles returns the built-in export profiles
func GetProfiles() []Profile {
	return []Profile{
		{
			Name:        "review",
			Description: "Sales order review export (all time review file, YTD report)",
			Layout:      models.DefaultColumnLayout(),
		},
		{
			Name:        "fishbowl",
			Description: "Fishbowl sales order item export",
			Layout: models.ColumnLayout{
				SalesPerson: "Sales Rep",
				Product:     "SO Item Product Number",
			}.WithDefaults(),
			Aliases: map[string]string{
				"SO Number":              models.ColumnOrderNumber,
				"Order Number":           models.ColumnOrderNumber,
				"Order #":                models.ColumnOrderNumber,
				"Sales person":           "Sales Rep",
				"Salesperson":            "Sales Rep",
				"SalesRep":               "Sales Rep",
				"Posting Date":           models.ColumnIssuedDate,
				"Issue Date":             models.ColumnIssuedDate,
				"Order Date":             models.ColumnIssuedDate,
				"Sales Order Product ID": models.ColumnLineItemID,
				"Line Item ID":           models.ColumnLineItemID,
				"SOItemID":               models.ColumnLineItemID,
				"Revenue":                models.ColumnTotalPrice,
				"Line Total":             models.ColumnTotalPrice,
			},
		},
	}
}

// GetProfile returns a profile by name
func GetProfile(name string) (*Profile, error) {
	var names []string
	for _, profile := range GetProfiles() {
		if strings.EqualFold(profile.Name, name) {
			p := profile
			return &p, nil
		}
		names = append(names, profile.Name)
	}
	return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyProfile, name,
		fmt.Errorf("unknown profile")).
		WithSuggestion("use one of: " + strings.Join(names, ", "))
}

func activeProfile(v *viper.Viper) (*Profile, error) {
	name := v.GetString(KeyProfile)
	if name == "" {
		name = "review"
	}
	return GetProfile(name)
}

// CreateColumnLayout returns the profile layout with any columns.* overrides
// from the config file applied
func CreateColumnLayout(v *viper.Viper) (models.ColumnLayout, error) {
	profile, err := activeProfile(v)
	if err != nil {
		return models.ColumnLayout{}, err
	}

	var overrides models.ColumnLayout
	if err := v.UnmarshalKey(KeyColumns, &overrides); err != nil {
		return models.ColumnLayout{}, errors.ConfigurationError(errors.CodeInvalidConfig, KeyColumns, nil, err)
	}

	layout := overrides
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&layout.IssuedDate, profile.Layout.IssuedDate)
	fill(&layout.OrderNumber, profile.Layout.OrderNumber)
	fill(&layout.SalesPerson, profile.Layout.SalesPerson)
	fill(&layout.TotalPrice, profile.Layout.TotalPrice)
	fill(&layout.YearMonth, profile.Layout.YearMonth)
	fill(&layout.LineItemID, profile.Layout.LineItemID)
	fill(&layout.Product, profile.Layout.Product)
	return layout, nil
}

// CreateLoadConfig creates the base load configuration
func CreateLoadConfig(v *viper.Viper) (*parsers.LoadConfig, error) {
	profile, err := activeProfile(v)
	if err != nil {
		return nil, err
	}

	config := parsers.DefaultLoadConfig()

	if d := v.GetString(KeyDelimiter); d != "" {
		delimiter, err := ParseDelimiter(d)
		if err != nil {
			return nil, err
		}
		config.Delimiter = delimiter
	}
	if enc := v.GetString(KeyEncoding); enc != "" {
		config.Encoding = strings.ToLower(enc)
	}
	if policy := v.GetString(KeyCurrencyPolicy); policy != "" {
		config.CurrencyPolicy = parsers.CurrencyPolicy(strings.ToLower(policy))
	}
	config.Sheet = v.GetString(KeySheet)
	config.MaxSkippedErrors = v.GetInt(KeyMaxSkipped)

	aliases := make(map[string]string)
	for header, column := range profile.Aliases {
		aliases[header] = column
	}
	for header, column := range v.GetStringMapString(KeyAliases) {
		aliases[header] = column
	}
	if len(aliases) > 0 {
		config.ColumnAliases = aliases
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "load", err.Error(), err).
			WithSuggestion("check --delimiter, --encoding and --currency-policy")
	}
	return config, nil
}

// ParseDelimiter accepts a single character or one of the names "tab",
// "comma", "semicolon" and "pipe"
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.ConfigurationError(errors.CodeInvalidConfig, KeyDelimiter, s,
			fmt.Errorf("delimiter must be a single character")).
			WithSuggestion("use a single character such as ',' or ';', or 'tab'")
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// CreateReportConfig creates a report configuration for the output flags
func CreateReportConfig(v *viper.Viper) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()

	format := strings.ToLower(v.GetString(KeyOutputFormat))
	if format == "" {
		format = string(reporter.FormatConsole)
	}
	config.Format = reporter.OutputFormat(format)

	switch config.Format {
	case reporter.FormatConsole:
		config.UseColors = !v.GetBool(KeyNoColor) && v.GetString(KeyOutputFile) == ""
	case reporter.FormatCSV:
		config.UseColors = false
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	default:
		config.UseColors = false
	}
	if v.IsSet(KeyMaxListItems) {
		config.MaxListItems = v.GetInt(KeyMaxListItems)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyOutputFormat, format, err).
			WithSuggestion("use one of: console, json, yaml, csv")
	}
	return config, nil
}

// CreateOptions creates the options shared by every investigation
func CreateOptions(v *viper.Viper) (investigation.Options, error) {
	layout, err := CreateColumnLayout(v)
	if err != nil {
		return investigation.Options{}, err
	}
	load, err := CreateLoadConfig(v)
	if err != nil {
		return investigation.Options{}, err
	}
	return investigation.Options{
		Layout:     layout,
		Load:       load,
		SampleSize: v.GetInt(KeySampleSize),
	}, nil
}

// CreateDownstreamFigures parses the downstream figures, each given as
// "NAME=REVENUE[:ITEMS]"
func CreateDownstreamFigures(v *viper.Viper) ([]investigation.DownstreamFigure, error) {
	values := v.GetStringSlice(KeyDownstream)
	figures := make([]investigation.DownstreamFigure, 0, len(values))
	for _, value := range values {
		figure, err := investigation.ParseDownstreamFigure(value)
		if err != nil {
			return nil, err
		}
		figures = append(figures, figure)
	}
	return figures, nil
}

// CreateImportStats returns the import counters when either is set
func CreateImportStats(v *viper.Viper) (*investigation.ImportStats, error) {
	if !v.IsSet(KeyImportCreated) && !v.IsSet(KeyImportSkipped) {
		return nil, nil
	}

	stats := &investigation.ImportStats{
		Created: v.GetInt(KeyImportCreated),
		Skipped: v.GetInt(KeyImportSkipped),
	}
	if stats.Created < 0 || stats.Skipped < 0 {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "import",
			fmt.Sprintf("created=%d skipped=%d", stats.Created, stats.Skipped),
			fmt.Errorf("import counts cannot be negative"))
	}
	return stats, nil
}
