package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"sales-reconciliation-tool/pkg/errors"
	"sales-reconciliation-tool/pkg/logger"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	out     io.Writer
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler writing to stderr
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		out:     os.Stderr,
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints err and returns the process exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Debug("Command failed")

	if diagErr, ok := errors.AsDiagnosticError(err); ok {
		return h.handleDiagnosticError(diagErr)
	}
	return h.handleGenericError(err)
}

// handleDiagnosticError prints the message, context, suggestion and help of err
func (h *CLIErrorHandler) handleDiagnosticError(err *errors.DiagnosticError) int {
	fmt.Fprintf(h.out, "Error: %s\n", err.Message)

	if keys := err.ContextKeys(); len(keys) > 0 {
		fmt.Fprintf(h.out, "\nContext:\n")
		for _, key := range keys {
			value := err.Context[key]
			if s, ok := value.(string); ok && s == "" {
				continue
			}
			fmt.Fprintf(h.out, "  %s: %v\n", key, value)
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(h.out, "\nSuggestion: %s\n", err.Suggestion)
	}

	fmt.Fprintf(h.out, "\n%s\n", h.getCategoryHelp(err.Category))

	if h.verbose && err.Cause != nil {
		fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles errors raised outside the tool's packages,
// mostly flag parsing errors from cobra
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(h.out, "Error: File not found\n")
		fmt.Fprintf(h.out, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(h.out, "Error: Permission denied\n")
		fmt.Fprintf(h.out, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(h.out, "Error: Insufficient disk space\n")
		fmt.Fprintf(h.out, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	fmt.Fprintf(h.out, "Error: %v\n", err)
	fmt.Fprintf(h.out, "Run 'salesrecon --help' for usage.\n")
	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct, quoting paths with spaces
• Ensure you have permission to read inputs and write --output-file`

	case errors.CategoryParse:
		return `Parse error help:
• Check that the export has a header row with the expected column names
• Override column names with a config file (columns.*) or --profile
• Pass --encoding windows-1252 for exports saved by Excel on Windows
• Pass --currency-policy skip to treat malformed prices as blank`

	case errors.CategoryValidation:
		return `Validation error help:
• Check that all required flags have values
• Downstream figures use NAME=REVENUE[:ITEMS], e.g. BenW=$101,797.73:117
• Sources use LABEL=PATH or PATH`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'salesrecon <command> --help' to see all available options`

	case errors.CategoryAnalysis:
		return `Analysis error help:
• Partial findings were written before the failure
• Rerun with --verbose for details`

	default:
		return `For more help:
• Use 'salesrecon --help' for general help
• Use 'salesrecon <command> --help' for command-specific help
• Rerun with --verbose for details`
	}
}

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || stderrors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) || stderrors.Is(err, os.ErrPermission) ||
		strings.Contains(err.Error(), "permission denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if stderrors.Is(err, syscall.ENOSPC) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") || strings.Contains(errStr, "disk full")
}
