package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDiagnosticError(t *testing.T) {
	tests := []struct {
		name       string
		category   ErrorCategory
		code       ErrorCode
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "parse error",
			category:   CategoryParse,
			code:       CodeMalformedCurrency,
			message:    "malformed currency",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "configuration error",
			category:   CategoryConfiguration,
			code:       CodeInvalidConfig,
			message:    "invalid config",
			cause:      errors.New("missing field"),
			expectCode: 4,
		},
		{
			name:       "analysis error",
			category:   CategoryAnalysis,
			code:       CodeRenderFailed,
			message:    "render failed",
			cause:      nil,
			expectCode: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *DiagnosticError
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}
			if err.Error() != tt.message {
				t.Errorf("expected error string %s, got %s", tt.message, err.Error())
			}
			if tt.cause != nil && err.Unwrap() != tt.cause {
				t.Errorf("expected to unwrap to %v, got %v", tt.cause, err.Unwrap())
			}
			if len(err.StackTrace) == 0 {
				t.Error("expected a stack trace")
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CategoryFile, CodeFileNotFound, "x") != nil {
		t.Error("expected nil when wrapping nil")
	}
}

func TestColumnNotFound(t *testing.T) {
	err := ColumnNotFound("ytd.csv", "Sales person", []string{"Issued date", "Total Price"})

	if err.Code != CodeMissingColumn {
		t.Errorf("expected code %s, got %s", CodeMissingColumn, err.Code)
	}
	if !strings.Contains(err.Message, "Sales person") {
		t.Errorf("expected message to name the column, got %q", err.Message)
	}
	if err.Context["available_columns"] != "Issued date, Total Price" {
		t.Errorf("unexpected available columns: %v", err.Context["available_columns"])
	}
}

func TestMalformedCurrency(t *testing.T) {
	cause := errors.New("can't convert abc to decimal")
	err := MalformedCurrency("review.csv", 12, "Total Price", "$abc", cause)

	if err.Code != CodeMalformedCurrency {
		t.Errorf("expected code %s, got %s", CodeMalformedCurrency, err.Code)
	}
	if err.Context["line"] != 12 {
		t.Errorf("expected line 12 in context, got %v", err.Context["line"])
	}
	if err.Context["value"] != "$abc" {
		t.Errorf("expected offending value in context, got %v", err.Context["value"])
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable with errors.Is")
	}
}

func TestAsDiagnosticError(t *testing.T) {
	base := FileError(CodeFileNotFound, "missing.csv", nil)
	wrapped := fmt.Errorf("loading dataset: %w", base)

	got, ok := AsDiagnosticError(wrapped)
	if !ok {
		t.Fatal("expected to find DiagnosticError in chain")
	}
	if got != base {
		t.Error("expected the original error")
	}
	if !HasCode(wrapped, CodeFileNotFound) {
		t.Error("expected HasCode to report file_not_found")
	}
	if HasCode(errors.New("plain"), CodeFileNotFound) {
		t.Error("plain errors carry no code")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	existing := New(CategoryParse, CodeInvalidFormat, "bad")
	if WrapIfNeeded(existing, CategoryInternal, CodeUnexpectedError, "x") != existing {
		t.Error("expected existing DiagnosticError to be returned unchanged")
	}

	wrapped := WrapIfNeeded(errors.New("boom"), CategoryInternal, CodeUnexpectedError, "x")
	if wrapped.Category != CategoryInternal {
		t.Errorf("expected internal category, got %s", wrapped.Category)
	}
	if WrapIfNeeded(nil, CategoryInternal, CodeUnexpectedError, "x") != nil {
		t.Error("expected nil for nil error")
	}
}

func TestParseErrorCollector(t *testing.T) {
	collector := NewParseErrorCollector(2)

	if collector.HasErrors() {
		t.Error("new collector should be empty")
	}
	if !collector.Add(nil) {
		t.Error("adding nil should allow continuing")
	}
	if !collector.Add(MalformedCurrency("a.csv", 2, "Total Price", "x", nil)) {
		t.Error("expected to continue after first error")
	}
	if collector.Add(MalformedCurrency("a.csv", 3, "Total Price", "y", nil)) {
		t.Error("expected to stop at the limit")
	}
	if collector.Count() != 2 {
		t.Errorf("expected 2 errors, got %d", collector.Count())
	}

	summary := collector.GetSummary()
	if !summary.HasCode(CodeMalformedCurrency) {
		t.Error("summary should report malformed_currency")
	}
	if summary.Error() != "2 errors occurred (malformed_currency: 2)" {
		t.Errorf("unexpected summary: %s", summary.Error())
	}
}

func TestFormatParseErrorsForUser(t *testing.T) {
	if FormatParseErrorsForUser(nil) != "No parse errors" {
		t.Error("expected placeholder for no errors")
	}

	var errs []*DiagnosticError
	for i := 0; i < 5; i++ {
		errs = append(errs, MalformedCurrency("/tmp/review.csv", i+2, "Total Price", "?", nil))
	}
	out := FormatParseErrorsForUser(errs)

	if !strings.Contains(out, "File: review.csv (5 errors)") {
		t.Errorf("expected per-file header, got:\n%s", out)
	}
	if !strings.Contains(out, "... and 2 more errors in this file") {
		t.Errorf("expected truncation line, got:\n%s", out)
	}
}
