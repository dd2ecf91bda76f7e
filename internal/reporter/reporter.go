// Package reporter renders investigation findings.
//
// Findings are built entry by entry while an investigation runs and can be
// inspected directly by tests. The same findings render to several formats:
//   - Console: human-readable sections, tables and checks for a terminal
//   - JSON and YAML: structured documents for scripts
//   - CSV: one line per entry, tables flattened, for spreadsheets
//
// Example usage:
//
//	findings := reporter.NewFindings("Salesperson comparison")
//	findings.Section("Reference").Count("Rows", 42)
//	generator, err := reporter.NewReportGenerator(reporter.DefaultReportConfig())
//	err = generator.GenerateReport(findings, os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatYAML, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Console formatting options
	UseColors bool `json:"use_colors"`

	// MaxListItems caps identifier lists on the console; zero means no cap.
	MaxListItems int `json:"max_list_items"`

	// MaxTableRows caps table rows on the console; zero means no cap.
	MaxTableRows int `json:"max_table_rows"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:       FormatConsole,
		UseColors:    true,
		MaxListItems: 50,
		MaxTableRows: 100,
		CSVDelimiter: ',',
		CSVHeaders:   true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxListItems < 0 || c.MaxTableRows < 0 {
		return fmt.Errorf("output limits cannot be negative")
	}
	if c.Format == FormatCSV && (c.CSVDelimiter == 0 || c.CSVDelimiter == '"' || c.CSVDelimiter == '\n') {
		return fmt.Errorf("invalid CSV delimiter %q", c.CSVDelimiter)
	}
	return nil
}

// ReportGenerator renders findings in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes the findings to writer
func (rg *ReportGenerator) GenerateReport(findings *Findings, writer io.Writer) error {
	if findings == nil {
		return fmt.Errorf("findings cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(findings, writer)
	case FormatJSON:
		return rg.generateJSONReport(findings, writer)
	case FormatYAML:
		return rg.generateYAMLReport(findings, writer)
	case FormatCSV:
		return rg.generateCSVReport(findings, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}

// errWriter remembers the first write error so console output can be
// written without checking every call
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (rg *ReportGenerator) generateConsoleReport(findings *Findings, writer io.Writer) error {
	styles := newStyles(writer, rg.config.UseColors)
	out := &errWriter{w: writer}

	out.printf("%s\n", styles.title.Render(strings.ToUpper(findings.Title)))
	out.printf("Generated: %s\n", findings.GeneratedAt.Format(time.RFC3339))
	out.printf("Run ID: %s\n", findings.ID)

	section := "\x00"
	for _, entry := range findings.Entries {
		if entry.Section != section {
			section = entry.Section
			if section != "" {
				out.printf("\n%s\n", styles.section.Render("=== "+strings.ToUpper(section)+" ==="))
			} else {
				out.printf("\n")
			}
		}
		rg.printEntry(out, styles, entry)
	}

	if findings.Aborted != "" {
		out.printf("\n%s %s\n", styles.fail.Render("ABORTED:"), findings.Aborted)
	}
	return out.err
}

func (rg *ReportGenerator) printEntry(out *errWriter, styles *styles, entry Entry) {
	label := styles.label.Render(entry.Label)

	switch entry.Kind {
	case KindCount:
		out.printf("%s: %s\n", label, FormatCount(entry.Number))
	case KindMoney:
		out.printf("%s: %s\n", label, FormatMoney(entry.Amount))
	case KindIDs:
		out.printf("%s (%d): %s\n", label, len(entry.IDs), rg.formatIDs(entry.IDs))
	case KindTable:
		out.printf("%s:\n", label)
		if out.err == nil {
			out.err = rg.printTable(out.w, entry.Table)
		}
	case KindCheck:
		status := styles.pass.Render("[PASS]")
		if !entry.Passed {
			status = styles.fail.Render("[FAIL]")
		}
		if entry.Text != "" {
			out.printf("%s %s - %s\n", status, label, entry.Text)
		} else {
			out.printf("%s %s\n", status, label)
		}
	default:
		out.printf("%s: %s\n", label, entry.Text)
	}
}

func (rg *ReportGenerator) formatIDs(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	limit := rg.config.MaxListItems
	if limit <= 0 || len(ids) <= limit {
		return strings.Join(ids, ", ")
	}
	return fmt.Sprintf("%s ... and %d more", strings.Join(ids[:limit], ", "), len(ids)-limit)
}

func (rg *ReportGenerator) printTable(writer io.Writer, table *Table) error {
	if table == nil || len(table.Rows) == 0 {
		_, err := fmt.Fprintf(writer, "  (no rows)\n")
		return err
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\n", strings.Join(table.Columns, "\t"))

	rows := table.Rows
	limit := rg.config.MaxTableRows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s\n", strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rows) < len(table.Rows) {
		_, err := fmt.Fprintf(writer, "  ... and %d more rows\n", len(table.Rows)-len(rows))
		return err
	}
	return nil
}

// document is the structured form of findings shared by JSON and YAML
type document struct {
	Title       string          `json:"title" yaml:"title"`
	RunID       string          `json:"run_id" yaml:"run_id"`
	GeneratedAt string          `json:"generated_at" yaml:"generated_at"`
	Entries     []documentEntry `json:"entries" yaml:"entries"`
	Aborted     string          `json:"aborted,omitempty" yaml:"aborted,omitempty"`
}

type documentEntry struct {
	Section string      `json:"section,omitempty" yaml:"section,omitempty"`
	Label   string      `json:"label" yaml:"label"`
	Kind    EntryKind   `json:"kind" yaml:"kind"`
	Value   interface{} `json:"value" yaml:"value"`
	Detail  string      `json:"detail,omitempty" yaml:"detail,omitempty"`
}

func newDocument(findings *Findings) document {
	doc := document{
		Title:       findings.Title,
		RunID:       findings.ID.String(),
		GeneratedAt: findings.GeneratedAt.Format(time.RFC3339),
		Entries:     make([]documentEntry, 0, len(findings.Entries)),
		Aborted:     findings.Aborted,
	}
	for _, e := range findings.Entries {
		entry := documentEntry{Section: e.Section, Label: e.Label, Kind: e.Kind, Value: e.Value()}
		if e.Kind == KindCheck {
			entry.Detail = e.Text
		}
		doc.Entries = append(doc.Entries, entry)
	}
	return doc
}

func (rg *ReportGenerator) generateJSONReport(findings *Findings, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newDocument(findings))
}

func (rg *ReportGenerator) generateYAMLReport(findings *Findings, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(newDocument(findings)); err != nil {
		return err
	}
	return encoder.Close()
}

// generateCSVReport writes one record per entry. Tables contribute one record
// per row with the cells joined by " | ".
func (rg *ReportGenerator) generateCSVReport(findings *Findings, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		if err := csvWriter.Write([]string{"Section", "Label", "Kind", "Value", "Detail"}); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, e := range findings.Entries {
		for _, record := range csvRecords(e) {
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write entry %q: %w", e.Label, err)
			}
		}
	}

	if findings.Aborted != "" {
		if err := csvWriter.Write([]string{"", "aborted", string(KindText), findings.Aborted, ""}); err != nil {
			return fmt.Errorf("failed to write abort record: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func csvRecords(e Entry) [][]string {
	record := func(value, detail string) []string {
		return []string{e.Section, e.Label, string(e.Kind), value, detail}
	}

	switch e.Kind {
	case KindCount:
		return [][]string{record(strconv.Itoa(e.Number), "")}
	case KindMoney:
		return [][]string{record(e.Amount.StringFixed(2), "")}
	case KindIDs:
		return [][]string{record(strings.Join(e.IDs, " "), strconv.Itoa(len(e.IDs)))}
	case KindTable:
		records := [][]string{record(strings.Join(e.Table.Columns, " | "), "header")}
		for i, row := range e.Table.Rows {
			records = append(records, record(strings.Join(row, " | "), "row "+strconv.Itoa(i+1)))
		}
		return records
	case KindCheck:
		return [][]string{record(strconv.FormatBool(e.Passed), e.Text)}
	default:
		return [][]string{record(e.Text, "")}
	}
}
