package errors

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ParseErrorCollector collects recoverable parse errors while a file is loaded
type ParseErrorCollector struct {
	errors    []*DiagnosticError
	maxErrors int
}

// NewParseErrorCollector creates a collector that stops accepting after maxErrors.
// A maxErrors of zero means no limit.
func NewParseErrorCollector(maxErrors int) *ParseErrorCollector {
	return &ParseErrorCollector{
		errors:    make([]*DiagnosticError, 0),
		maxErrors: maxErrors,
	}
}

// Add records an error and reports whether processing may continue
func (c *ParseErrorCollector) Add(err *DiagnosticError) bool {
	if err == nil {
		return true
	}

	c.errors = append(c.errors, err)
	return c.maxErrors <= 0 || len(c.errors) < c.maxErrors
}

// HasErrors returns true if any errors have been collected
func (c *ParseErrorCollector) HasErrors() bool {
	return len(c.errors) > 0
}

// Count returns the number of collected errors
func (c *ParseErrorCollector) Count() int {
	return len(c.errors)
}

// GetErrors returns all collected errors
func (c *ParseErrorCollector) GetErrors() []*DiagnosticError {
	return c.errors
}

// GetSummary returns an error summary for all collected errors
func (c *ParseErrorCollector) GetSummary() *ErrorSummary {
	return NewErrorSummary(c.errors)
}

// FormatParseErrorsForUser renders collected errors grouped by file, at most
// three in detail per file.
func FormatParseErrorsForUser(errs []*DiagnosticError) string {
	if len(errs) == 0 {
		return "No parse errors"
	}

	var order []string
	byFile := make(map[string][]*DiagnosticError)
	for _, err := range errs {
		file := "unknown"
		if f, ok := err.Context["file"].(string); ok && f != "" {
			file = filepath.Base(f)
		}
		if _, seen := byFile[file]; !seen {
			order = append(order, file)
		}
		byFile[file] = append(byFile[file], err)
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Found %d parse errors:", len(errs)))
	for _, file := range order {
		fileErrors := byFile[file]
		lines = append(lines, fmt.Sprintf("File: %s (%d errors)", file, len(fileErrors)))

		maxDetailed := 3
		for i, err := range fileErrors {
			if i == maxDetailed {
				lines = append(lines, fmt.Sprintf("  ... and %d more errors in this file", len(fileErrors)-maxDetailed))
				break
			}
			lines = append(lines, "  - "+err.Message)
		}
	}

	return strings.Join(lines, "\n")
}
