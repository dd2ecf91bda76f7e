package reporter

import (
	"fmt"
	"io"
	"os"

	"sales-reconciliation-tool/pkg/errors"
	"sales-reconciliation-tool/pkg/logger"
)

// Output writes rendered findings to a file or a fallback writer
type Output struct {
	generator *ReportGenerator
	logger    logger.Logger
}

// NewOutput creates an output for the report configuration
func NewOutput(config *ReportConfig, log logger.Logger) (*Output, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config.Format,
			err,
		).WithSuggestion("use one of: console, json, yaml, csv")
	}

	return &Output{
		generator: generator,
		logger:    log.WithComponent("reporter"),
	}, nil
}

// Write renders findings to path, or to stdout when path is empty. A render
// failure is returned as is; there is no fallback format or destination.
func (o *Output) Write(findings *Findings, path string, stdout io.Writer) error {
	if findings == nil {
		return errors.ValidationError(errors.CodeMissingField, "findings", nil, nil)
	}

	writer := stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			if os.IsPermission(err) {
				return errors.FileError(errors.CodeFilePermission, path, err)
			}
			return errors.FileError(errors.CodeDirectoryError, path, err)
		}
		defer file.Close()
		writer = file
	}
	if writer == nil {
		return errors.ValidationError(errors.CodeMissingField, "writer", nil, nil).
			WithSuggestion("provide an output file or writer")
	}

	log := o.logger.WithFields(logger.Fields{
		"format":  o.generator.GetConfiguration().Format,
		"output":  getWriterDescription(writer),
		"entries": len(findings.Entries),
	})
	log.Debug("Rendering findings")

	if err := o.generator.GenerateReport(findings, writer); err != nil {
		log.WithError(err).Error("Report generation failed")
		return errors.AnalysisError(errors.CodeRenderFailed, findings.Title, err)
	}

	log.Debug("Report generation completed")
	return nil
}

func getWriterDescription(writer io.Writer) string {
	switch w := writer.(type) {
	case *os.File:
		if w.Name() != "" {
			return fmt.Sprintf("file:%s", w.Name())
		}
		return "file:unnamed"
	default:
		return fmt.Sprintf("writer:%T", writer)
	}
}
