package parsers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"sales-reconciliation-tool/internal/models"
	"sales-reconciliation-tool/pkg/errors"
	"sales-reconciliation-tool/pkg/logger"
)

// LoadStats holds statistics about a load
type LoadStats struct {
	Source        string
	TotalLines    int
	RowsLoaded    int
	BlankRows     int
	SkippedValues int
	Errors        []*errors.DiagnosticError
}

// String returns a human-readable summary of the load
func (s *LoadStats) String() string {
	return fmt.Sprintf("Loaded %d rows from %d lines (%d blank, %d values skipped)",
		s.RowsLoaded, s.TotalLines, s.BlankRows, s.SkippedValues)
}

// Loader loads datasets with a fixed configuration
type Loader struct {
	config *LoadConfig
	logger logger.Logger
}

// NewLoader creates a loader for the given configuration
func NewLoader(config *LoadConfig) (*Loader, error) {
	if config == nil {
		config = DefaultLoadConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "load", err.Error(), err)
	}

	return &Loader{
		config: config,
		logger: logger.WithComponent("loader"),
	}, nil
}

// Load reads a dataset using the given configuration
func Load(ctx context.Context, path string, config *LoadConfig) (*models.Dataset, *LoadStats, error) {
	loader, err := NewLoader(config)
	if err != nil {
		return nil, nil, err
	}
	return loader.Load(ctx, path)
}

// Load reads the file at path into a dataset. Missing files, missing
// required columns and, under the fail policy, malformed currency values
// abort the load.
func (l *Loader) Load(ctx context.Context, path string) (*models.Dataset, *LoadStats, error) {
	log := l.logger.WithField("file_path", path)
	log.Debug("Loading dataset")

	stats := &LoadStats{Source: path}

	source, err := openSource(path, l.config)
	if err != nil {
		log.WithError(err).Error("Failed to open dataset")
		return nil, stats, err
	}
	defer source.Close()

	record, _, err := source.Next()
	if err != nil {
		if err == io.EOF {
			return nil, stats, errors.ParseError(errors.CodeInvalidFormat, path, 1, "", "", fmt.Errorf("file is empty")).
				WithSuggestion("the file must start with a header row")
		}
		return nil, stats, l.readError(path, 1, err)
	}
	stats.TotalLines++

	headers := cleanHeaders(record, l.config)
	if err := l.checkColumns(path, headers); err != nil {
		log.WithError(err).Error("Required columns are missing")
		return nil, stats, err
	}

	collector := errors.NewParseErrorCollector(l.config.MaxSkippedErrors)
	tracker := logger.NewProgressTracker(logger.ProgressConfig{Operation: "load " + path})

	var rows []*models.Row
	for {
		if err := ctx.Err(); err != nil {
			tracker.CompleteWithError(err)
			return nil, stats, errors.InternalError(errors.CodeUnexpectedError, "load", err)
		}

		record, line, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			tracker.CompleteWithError(err)
			return nil, stats, l.readError(path, stats.TotalLines+1, err)
		}
		stats.TotalLines++

		if isEmptyRecord(record) {
			stats.BlankRows++
			continue
		}

		row, err := l.buildRow(path, line, headers, record, collector)
		if err != nil {
			stats.Errors = collector.GetErrors()
			stats.SkippedValues = collector.Count()
			tracker.CompleteWithError(err)
			return nil, stats, err
		}

		rows = append(rows, row)
		tracker.Increment()
	}
	tracker.Complete()

	stats.RowsLoaded = len(rows)
	stats.Errors = collector.GetErrors()
	stats.SkippedValues = collector.Count()

	if stats.SkippedValues > 0 {
		log.WithField("skipped", stats.SkippedValues).Warn("Malformed currency values were treated as absent")
		log.Debug(errors.FormatParseErrorsForUser(stats.Errors))
	}
	log.WithFields(logger.Fields{
		"rows":    stats.RowsLoaded,
		"columns": len(headers),
	}).Info("Dataset loaded")

	return models.NewDataset(path, headers, rows), stats, nil
}

func (l *Loader) checkColumns(path string, headers []string) error {
	var wanted []string
	wanted = append(wanted, l.config.RequiredColumns...)
	wanted = append(wanted, l.config.CurrencyColumns...)

	for _, col := range wanted {
		if !containsString(headers, col) {
			return errors.ColumnNotFound(path, col, headers)
		}
	}
	return nil
}

func (l *Loader) buildRow(path string, line int, headers, record []string, collector *errors.ParseErrorCollector) (*models.Row, error) {
	values := make(map[string]string, len(headers))
	for i, header := range headers {
		if i >= len(record) {
			break
		}
		if !utf8.ValidString(record[i]) {
			return nil, errors.ParseError(errors.CodeEncodingError, path, line, header, "", fmt.Errorf("invalid UTF-8"))
		}
		values[header] = record[i]
	}

	row := models.NewRow(line, values)

	for _, col := range l.config.CurrencyColumns {
		raw, ok := row.Value(col)
		if !ok {
			continue
		}
		amount, err := models.NormalizeCurrency(raw)
		if err == nil {
			row.SetDecimal(col, amount)
			continue
		}

		currencyErr := errors.MalformedCurrency(path, line, col, raw, err)
		if l.config.policy() == CurrencyFail {
			return nil, currencyErr
		}

		row.Drop(col)
		if !collector.Add(currencyErr) {
			return nil, errors.ParseError(errors.CodeMalformedCurrency, path, line, col, raw, collector.GetSummary()).
				WithSuggestion(fmt.Sprintf("more than %d malformed values; check the export", l.config.MaxSkippedErrors))
		}
	}

	return row, nil
}

func (l *Loader) readError(path string, line int, err error) error {
	if parseErr, ok := err.(*csv.ParseError); ok {
		line = parseErr.StartLine
	}
	return errors.ParseError(errors.CodeInvalidFormat, path, line, "", "", err)
}
