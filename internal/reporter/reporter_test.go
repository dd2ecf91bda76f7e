package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"sales-reconciliation-tool/pkg/errors"
)

func sampleFindings() *Findings {
	f := NewFindings("Salesperson comparison")
	f.GeneratedAt = time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC)

	f.Section("Reference").
		Count("Rows", 12345).
		Money("Revenue", decimal.RequireFromString("1432298.73")).
		Text("Filter", `Sales person = "BenW"`)
	f.Section("Reconciliation").
		IDs("Missing orders", []string{"9715"}).
		IDs("Extra orders", nil).
		Table("Missing order details", []string{"Order", "Items", "Revenue"}, [][]string{{"9715", "2", "$1,432.50"}}).
		Check("Counts match", false, "1 order missing")
	return f
}

func plainConfig(format OutputFormat) *ReportConfig {
	config := DefaultReportConfig()
	config.Format = format
	config.UseColors = false
	return config
}

func TestNewReportGenerator(t *testing.T) {
	tests := []struct {
		name        string
		config      *ReportConfig
		expectError bool
	}{
		{name: "default config", config: nil},
		{name: "valid config", config: DefaultReportConfig()},
		{name: "yaml", config: plainConfig(FormatYAML)},
		{name: "invalid format", config: &ReportConfig{Format: "xml"}, expectError: true},
		{name: "negative limit", config: &ReportConfig{Format: FormatConsole, MaxListItems: -1}, expectError: true},
		{name: "csv without delimiter", config: &ReportConfig{Format: FormatCSV}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator, err := NewReportGenerator(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if generator == nil {
				t.Error("expected generator but got nil")
			}
		})
	}
}

func TestFindings_Builder(t *testing.T) {
	f := sampleFindings()

	if len(f.Entries) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(f.Entries))
	}
	if f.ID.String() == "" {
		t.Error("expected a run id")
	}

	rows, ok := f.FindIn("Reference", "Rows")
	if !ok || rows.Kind != KindCount || rows.Number != 12345 {
		t.Errorf("unexpected rows entry: %+v", rows)
	}

	extra, ok := f.Find("Extra orders")
	if !ok || extra.IDs == nil || len(extra.IDs) != 0 {
		t.Errorf("expected empty non-nil id list, got %+v", extra)
	}

	if _, ok := f.FindIn("Reference", "Missing orders"); ok {
		t.Error("entry should not be found in another section")
	}

	sections := f.Sections()
	if len(sections) != 2 || sections[0] != "Reference" || sections[1] != "Reconciliation" {
		t.Errorf("unexpected sections %v", sections)
	}

	for i := 1; i < len(f.Entries); i++ {
		if f.Entries[i-1].Section == "Reconciliation" && f.Entries[i].Section == "Reference" {
			t.Error("entries must keep computation order")
		}
	}
}

func TestFindings_Abort(t *testing.T) {
	f := NewFindings("Lookup").Count("Rows", 1)
	f.Abort(nil)
	if f.Aborted != "" {
		t.Error("nil error should not abort")
	}

	f.Abort(fmt.Errorf("column 'Product' not found"))
	if f.Aborted == "" || len(f.Entries) != 1 {
		t.Errorf("expected abort with entries kept, got %+v", f)
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	generator, err := NewReportGenerator(plainConfig(FormatConsole))
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleFindings(), &buf); err != nil {
		t.Fatalf("failed to generate report: %v", err)
	}
	output := buf.String()

	expected := []string{
		"SALESPERSON COMPARISON",
		"Generated: 2026-01-05T09:30:00Z",
		"=== REFERENCE ===",
		"Rows: 12,345",
		"Revenue: $1,432,298.73",
		"=== RECONCILIATION ===",
		"Missing orders (1): 9715",
		"Extra orders (0): (none)",
		"Order  Items  Revenue",
		"9715   2      $1,432.50",
		"[FAIL] Counts match - 1 order missing",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}

	if strings.Index(output, "=== REFERENCE ===") > strings.Index(output, "=== RECONCILIATION ===") {
		t.Error("sections out of order")
	}
}

func TestGenerateConsoleReport_Limits(t *testing.T) {
	config := plainConfig(FormatConsole)
	config.MaxListItems = 2
	config.MaxTableRows = 1

	f := NewFindings("Limits").
		IDs("Orders", []string{"1", "2", "3", "4"}).
		Table("Rows", []string{"A"}, [][]string{{"x"}, {"y"}, {"z"}}).
		Table("Empty", []string{"A"}, nil)
	f.Abort(fmt.Errorf("boom"))

	generator, _ := NewReportGenerator(config)
	var buf bytes.Buffer
	if err := generator.GenerateReport(f, &buf); err != nil {
		t.Fatalf("failed to generate report: %v", err)
	}
	output := buf.String()

	for _, want := range []string{"1, 2 ... and 2 more", "... and 2 more rows", "(no rows)", "ABORTED: boom"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}
}

func TestGenerateJSONReport(t *testing.T) {
	generator, _ := NewReportGenerator(plainConfig(FormatJSON))

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleFindings(), &buf); err != nil {
		t.Fatalf("failed to generate report: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}

	if doc["title"] != "Salesperson comparison" {
		t.Errorf("unexpected title %v", doc["title"])
	}
	entries := doc["entries"].([]interface{})
	if len(entries) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(entries))
	}

	revenue := entries[1].(map[string]interface{})
	if revenue["value"] != "1432298.73" || revenue["kind"] != "money" {
		t.Errorf("unexpected money entry %v", revenue)
	}
	check := entries[6].(map[string]interface{})
	if check["value"] != false || check["detail"] != "1 order missing" {
		t.Errorf("unexpected check entry %v", check)
	}
}

func TestGenerateYAMLReport(t *testing.T) {
	generator, _ := NewReportGenerator(plainConfig(FormatYAML))

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleFindings(), &buf); err != nil {
		t.Fatalf("failed to generate report: %v", err)
	}

	var doc struct {
		Title   string `yaml:"title"`
		RunID   string `yaml:"run_id"`
		Entries []struct {
			Section string      `yaml:"section"`
			Label   string      `yaml:"label"`
			Value   interface{} `yaml:"value"`
		} `yaml:"entries"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid YAML output: %v", err)
	}

	if doc.Title != "Salesperson comparison" || doc.RunID == "" {
		t.Errorf("unexpected header %+v", doc)
	}
	if len(doc.Entries) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(doc.Entries))
	}
	if doc.Entries[0].Value != 12345 {
		t.Errorf("expected count 12345, got %v", doc.Entries[0].Value)
	}
	if doc.Entries[3].Section != "Reconciliation" {
		t.Errorf("unexpected section %s", doc.Entries[3].Section)
	}
}

func TestGenerateCSVReport(t *testing.T) {
	generator, _ := NewReportGenerator(plainConfig(FormatCSV))

	var buf bytes.Buffer
	if err := generator.GenerateReport(sampleFindings(), &buf); err != nil {
		t.Fatalf("failed to generate report: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV output: %v", err)
	}

	// header + 6 single-line entries + table header + 1 table row
	if len(records) != 9 {
		t.Fatalf("expected 9 records, got %d: %v", len(records), records)
	}
	if records[0][0] != "Section" {
		t.Errorf("expected header row, got %v", records[0])
	}
	if records[2][3] != "1432298.73" {
		t.Errorf("unexpected money value %v", records[2])
	}
	if records[6][3] != "Order | Items | Revenue" || records[7][4] != "row 1" {
		t.Errorf("unexpected table records %v %v", records[6], records[7])
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"1432298.73", "$1,432,298.73"},
		{"0", "$0.00"},
		{"-12.5", "-$12.50"},
		{"999.999", "$1,000.00"},
	}

	for _, tt := range tests {
		if got := FormatMoney(decimal.RequireFromString(tt.amount)); got != tt.expected {
			t.Errorf("FormatMoney(%s) = %s, want %s", tt.amount, got, tt.expected)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(decimal.NewFromInt(1), decimal.NewFromInt(3)); got != "33.3%" {
		t.Errorf("unexpected percent %s", got)
	}
	if got := FormatPercent(decimal.NewFromInt(1), decimal.Zero); got != "n/a" {
		t.Errorf("unexpected percent %s", got)
	}
	if got := FormatCount(1234567); got != "1,234,567" {
		t.Errorf("unexpected count %s", got)
	}
}

func TestOutput_Write(t *testing.T) {
	output, err := NewOutput(plainConfig(FormatJSON), nil)
	if err != nil {
		t.Fatalf("failed to create output: %v", err)
	}

	var buf bytes.Buffer
	if err := output.Write(sampleFindings(), "", &buf); err != nil {
		t.Fatalf("failed to write to writer: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected output on the fallback writer")
	}

	path := filepath.Join(t.TempDir(), "findings.json")
	if err := output.Write(sampleFindings(), path, nil); err != nil {
		t.Fatalf("failed to write to file: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !json.Valid(data) {
		t.Errorf("expected valid JSON file, got %v", err)
	}

	err = output.Write(sampleFindings(), filepath.Join(t.TempDir(), "missing", "out.json"), nil)
	if diagErr, ok := errors.AsDiagnosticError(err); !ok || diagErr.Category != errors.CategoryFile {
		t.Errorf("expected file error, got %v", err)
	}

	if err := output.Write(nil, "", &buf); err == nil {
		t.Error("expected error for nil findings")
	}
}

func TestNewOutput_InvalidFormat(t *testing.T) {
	_, err := NewOutput(&ReportConfig{Format: "pdf"}, nil)
	if !errors.HasCode(err, errors.CodeInvalidConfig) {
		t.Errorf("expected invalid_config, got %v", err)
	}
}
