package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the stage of a diagnostic run that failed
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryParse         ErrorCategory = "parse"
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryAnalysis      ErrorCategory = "analysis"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode identifies a specific failure within a category
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeDirectoryError ErrorCode = "directory_error"

	// Parse errors
	CodeInvalidFormat     ErrorCode = "invalid_format"
	CodeMissingColumn     ErrorCode = "missing_column"
	CodeMalformedCurrency ErrorCode = "malformed_currency"
	CodeEncodingError     ErrorCode = "encoding_error"

	// Validation errors
	CodeMissingField ErrorCode = "missing_field"
	CodeInvalidDate  ErrorCode = "invalid_date"
	CodeOutOfRange   ErrorCode = "out_of_range"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Analysis errors
	CodeEmptyDataset ErrorCode = "empty_dataset"
	CodeRenderFailed ErrorCode = "render_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// DiagnosticError is the base error type for all application errors
type DiagnosticError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *DiagnosticError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *DiagnosticError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns the process exit code for the error
func (e *DiagnosticError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryAnalysis, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// ContextKeys returns the context keys in sorted order
func (e *DiagnosticError) ContextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithContext adds context information to the error
func (e *DiagnosticError) WithContext(key string, value interface{}) *DiagnosticError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *DiagnosticError) WithSuggestion(suggestion string) *DiagnosticError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DiagnosticError
func New(category ErrorCategory, code ErrorCode, message string) *DiagnosticError {
	return &DiagnosticError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with DiagnosticError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *DiagnosticError {
	if err == nil {
		return nil
	}

	return &DiagnosticError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func newOrWrap(err error, category ErrorCategory, code ErrorCode, message string) *DiagnosticError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *DiagnosticError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file could not be read: %s", path)
		suggestion = "re-export the file from the source system"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	return newOrWrap(err, CategoryFile, code, message).
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ParseError creates a parsing-related error
func ParseError(code ErrorCode, file string, line int, column string, value string, err error) *DiagnosticError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidFormat:
		message = fmt.Sprintf("invalid format in file %s at line %d", file, line)
		suggestion = "check that the file is a delimited export with a header row"
	case CodeMissingColumn:
		message = fmt.Sprintf("column '%s' not found in file %s", column, file)
		suggestion = "verify the export has the expected headers or override the column names in the config file"
	case CodeMalformedCurrency:
		message = fmt.Sprintf("malformed currency in file %s at line %d, column '%s': '%s'", file, line, column, value)
		suggestion = "fix the value or rerun with --currency-policy skip"
	case CodeEncodingError:
		message = fmt.Sprintf("encoding error in file %s at line %d", file, line)
		suggestion = "save the file as UTF-8 or pass --encoding windows-1252"
	default:
		message = fmt.Sprintf("parse error in file %s at line %d", file, line)
		suggestion = "check the file format and data integrity"
	}

	return newOrWrap(err, CategoryParse, code, message).
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("line", line).
		WithContext("column", column).
		WithContext("value", value)
}

// ColumnNotFound reports that a referenced column is absent from a dataset schema
func ColumnNotFound(file, column string, available []string) *DiagnosticError {
	return ParseError(CodeMissingColumn, file, 1, column, "", nil).
		WithContext("available_columns", strings.Join(available, ", "))
}

// MalformedCurrency reports a currency value that is not numeric after normalization
func MalformedCurrency(file string, line int, column, value string, err error) *DiagnosticError {
	return ParseError(CodeMalformedCurrency, file, line, column, value, err)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *DiagnosticError {
	var message string
	var suggestion string

	switch code {
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use MM-DD-YYYY HH:MM:SS"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	return newOrWrap(err, CategoryValidation, code, message).
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *DiagnosticError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the command help for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting as a flag, env variable or in the config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	return newOrWrap(err, CategoryConfiguration, code, message).
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// AnalysisError creates an error raised while computing findings
func AnalysisError(code ErrorCode, operation string, err error) *DiagnosticError {
	var message string
	var suggestion string

	switch code {
	case CodeEmptyDataset:
		message = fmt.Sprintf("no rows to analyse during %s", operation)
		suggestion = "check the filters and the input file"
	case CodeRenderFailed:
		message = fmt.Sprintf("failed to render findings during %s", operation)
		suggestion = "check the output destination is writable"
	default:
		message = fmt.Sprintf("analysis error during %s", operation)
		suggestion = "review the data and configuration"
	}

	return newOrWrap(err, CategoryAnalysis, code, message).
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *DiagnosticError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	return newOrWrap(err, CategoryInternal, code, message).
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*DiagnosticError    `json:"errors"`
	SampleErrors []*DiagnosticError    `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*DiagnosticError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if summary.Errors == nil {
		summary.Errors = []*DiagnosticError{}
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var codes []string
	for code, count := range es.ByCode {
		codes = append(codes, fmt.Sprintf("%s: %d", code, count))
	}
	sort.Strings(codes)

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(codes, ", "))
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	return es.ByCode[code] > 0
}

// AsDiagnosticError extracts a DiagnosticError from an error chain
func AsDiagnosticError(err error) (*DiagnosticError, bool) {
	var diagErr *DiagnosticError
	if errors.As(err, &diagErr) {
		return diagErr, true
	}
	return nil, false
}

// HasCode reports whether any DiagnosticError in the chain carries the code
func HasCode(err error, code ErrorCode) bool {
	diagErr, ok := AsDiagnosticError(err)
	return ok && diagErr.Code == code
}

// GetExitCode returns the process exit code for any error. Errors without a
// category exit with 1.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	if diagErr, ok := AsDiagnosticError(err); ok {
		return diagErr.GetExitCode()
	}
	return 1
}

// WrapIfNeeded wraps an error if it's not already a DiagnosticError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *DiagnosticError {
	if err == nil {
		return nil
	}

	if diagErr, ok := AsDiagnosticError(err); ok {
		return diagErr
	}

	return Wrap(err, category, code, message)
}
