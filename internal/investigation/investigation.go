// Package investigation composes the loader, filter, aggregator and
// reconciler into the diagnostics used to chase import discrepancies.
//
// Each investigation is configured by an explicit struct and returns a
// findings object. When an investigation fails part way, the findings
// gathered so far are returned together with the error.
package investigation

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-reconciliation-tool/internal/aggregate"
	"sales-reconciliation-tool/internal/models"
	"sales-reconciliation-tool/internal/parsers"
	"sales-reconciliation-tool/internal/reporter"
	"sales-reconciliation-tool/pkg/errors"
	"sales-reconciliation-tool/pkg/logger"
)

// DefaultSampleSize is the number of rows shown in sample tables
const DefaultSampleSize = 20

// Investigation is a single diagnostic run
type Investigation interface {
	Name() string
	Run(ctx context.Context) (*reporter.Findings, error)
}

// Options holds the settings shared by all investigations
type Options struct {
	// Layout names the columns to read; empty names use the defaults.
	Layout models.ColumnLayout

	// Load is the base load configuration. Required and currency columns
	// are added per investigation.
	Load *parsers.LoadConfig

	// SampleSize caps sample tables; zero uses DefaultSampleSize.
	SampleSize int
}

func (o Options) layout() models.ColumnLayout {
	return o.Layout.WithDefaults()
}

func (o Options) sampleSize() int {
	if o.SampleSize <= 0 {
		return DefaultSampleSize
	}
	return o.SampleSize
}

// loadConfig returns a copy of the base configuration requiring columns.
// The price column, when required, is also normalized as currency.
func (o Options) loadConfig(columns ...string) *parsers.LoadConfig {
	base := o.Load
	if base == nil {
		base = parsers.DefaultLoadConfig()
	}
	config := base.WithColumns(columns...)

	price := o.layout().TotalPrice
	config.CurrencyColumns = nil
	for _, col := range columns {
		if col == price {
			config.CurrencyColumns = []string{price}
		}
	}
	return config
}

// input is a loaded dataset and its load statistics
type input struct {
	label string
	ds    *models.Dataset
	stats *parsers.LoadStats
}

func (o Options) load(ctx context.Context, label, path string, columns ...string) (*input, error) {
	ds, stats, err := parsers.Load(ctx, path, o.loadConfig(columns...))
	if err != nil {
		return nil, err
	}
	return &input{label: label, ds: ds, stats: stats}, nil
}

// describeInputs adds an inputs section naming every loaded file
func describeInputs(f *reporter.Findings, inputs ...*input) {
	f.Section("Inputs")
	for _, in := range inputs {
		f.Text(in.label, in.ds.Source)
		f.Count(in.label+" rows", in.ds.Len())
		if in.stats != nil && in.stats.SkippedValues > 0 {
			f.Count(in.label+" malformed prices treated as blank", in.stats.SkippedValues)
		}
	}
}

// Run executes an investigation with logging. A failed run returns the
// partial findings marked as aborted.
func Run(ctx context.Context, inv Investigation) (*reporter.Findings, error) {
	log := logger.WithComponent("investigation").WithField("investigation", inv.Name())
	log.Debug("Starting investigation")
	start := time.Now()

	findings, err := inv.Run(ctx)
	if findings == nil {
		findings = reporter.NewFindings(inv.Name())
	}
	if err != nil {
		err = errors.WrapIfNeeded(err, errors.CategoryAnalysis, errors.CodeUnexpectedError, inv.Name()+" failed")
		findings.Abort(err)
		log.WithError(err).Error("Investigation aborted")
		return findings, err
	}

	log.WithFields(logger.Fields{
		"entries":  len(findings.Entries),
		"duration": time.Since(start).String(),
	}).Info("Investigation completed")
	return findings, nil
}

func requireValue(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.ValidationError(errors.CodeMissingField, field, value, nil)
	}
	return nil
}

// sampleTable renders up to n rows with the given columns. Currency columns
// render normalized.
func sampleTable(rows []*models.Row, n int, price string, columns ...string) [][]string {
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			if col == price {
				if d, ok := row.Decimal(col); ok {
					record[i] = reporter.FormatMoney(d)
				}
				continue
			}
			record[i], _ = row.Value(col)
		}
		table = append(table, record)
	}
	return table
}

// groupTable renders groups as salesperson, count and sum columns
func groupTable(groups []aggregate.Group) [][]string {
	table := make([][]string, 0, len(groups))
	for _, g := range groups {
		table = append(table, []string{g.Key, reporter.FormatCount(g.Count), reporter.FormatMoney(g.Sum)})
	}
	return table
}

func money(d decimal.Decimal) string {
	return reporter.FormatMoney(d)
}
