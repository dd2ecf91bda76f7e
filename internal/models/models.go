package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Default column names of the sales order exports
const (
	ColumnIssuedDate  = "Issued date"
	ColumnOrderNumber = "Sales order Number"
	ColumnSalesPerson = "Sales person"
	ColumnTotalPrice  = "Total Price"
	ColumnYearMonth   = "Year-month"
	ColumnLineItemID  = "SO Item ID"
	ColumnProduct     = "Product"
)

// ColumnLayout names the columns an investigation reads. Exports from
// different reports label the same data differently, so every column can be
// overridden from configuration.
type ColumnLayout struct {
	IssuedDate  string `json:"issued_date" mapstructure:"issued_date"`
	OrderNumber string `json:"order_number" mapstructure:"order_number"`
	SalesPerson string `json:"sales_person" mapstructure:"sales_person"`
	TotalPrice  string `json:"total_price" mapstructure:"total_price"`
	YearMonth   string `json:"year_month" mapstructure:"year_month"`
	LineItemID  string `json:"line_item_id" mapstructure:"line_item_id"`
	Product     string `json:"product" mapstructure:"product"`
}

// DefaultColumnLayout returns the column names used by the sales order exports
func DefaultColumnLayout() ColumnLayout {
	return ColumnLayout{
		IssuedDate:  ColumnIssuedDate,
		OrderNumber: ColumnOrderNumber,
		SalesPerson: ColumnSalesPerson,
		TotalPrice:  ColumnTotalPrice,
		YearMonth:   ColumnYearMonth,
		LineItemID:  ColumnLineItemID,
		Product:     ColumnProduct,
	}
}

// WithDefaults fills empty column names from the default layout
func (c ColumnLayout) WithDefaults() ColumnLayout {
	def := DefaultColumnLayout()
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return v
	}
	return ColumnLayout{
		IssuedDate:  pick(c.IssuedDate, def.IssuedDate),
		OrderNumber: pick(c.OrderNumber, def.OrderNumber),
		SalesPerson: pick(c.SalesPerson, def.SalesPerson),
		TotalPrice:  pick(c.TotalPrice, def.TotalPrice),
		YearMonth:   pick(c.YearMonth, def.YearMonth),
		LineItemID:  pick(c.LineItemID, def.LineItemID),
		Product:     pick(c.Product, def.Product),
	}
}

// Row is one record of a dataset. Empty cells are absent.
type Row struct {
	line    int
	values  map[string]string
	numbers map[string]decimal.Decimal
}

// NewRow creates a row from column values. Blank values are dropped so that
// they read as absent.
func NewRow(line int, values map[string]string) *Row {
	row := &Row{
		line:    line,
		values:  make(map[string]string, len(values)),
		numbers: make(map[string]decimal.Decimal),
	}
	for col, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			row.values[col] = v
		}
	}
	return row
}

// Line returns the 1-based source line of the row, header included
func (r *Row) Line() int {
	return r.line
}

// Value returns the raw text of a column
func (r *Row) Value(column string) (string, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Decimal returns the numeric value of a column. Currency columns return the
// value normalized at load; other columns are parsed on demand.
func (r *Row) Decimal(column string) (decimal.Decimal, bool) {
	if d, ok := r.numbers[column]; ok {
		return d, true
	}
	v, ok := r.values[column]
	if !ok {
		return decimal.Zero, false
	}
	d, err := NormalizeCurrency(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Int returns the integer value of a column, accepting "9715" and "9715.0"
func (r *Row) Int(column string) (int64, bool) {
	v, ok := r.values[column]
	if !ok {
		return 0, false
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, true
	}
	d, err := decimal.NewFromString(v)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return d.IntPart(), true
}

// SetDecimal records the normalized value of a currency column. Only the
// loader calls it, before the dataset is published.
func (r *Row) SetDecimal(column string, d decimal.Decimal) {
	r.numbers[column] = d
}

// Drop makes a column absent. Used by the loader when a malformed value is skipped.
func (r *Row) Drop(column string) {
	delete(r.values, column)
	delete(r.numbers, column)
}

// Dataset is an ordered, immutable sequence of rows loaded from one file
type Dataset struct {
	Source  string
	Columns []string
	rows    []*Row
}

// NewDataset creates a dataset over the given rows
func NewDataset(source string, columns []string, rows []*Row) *Dataset {
	if rows == nil {
		rows = []*Row{}
	}
	return &Dataset{Source: source, Columns: columns, rows: rows}
}

// Rows returns the rows in source order. Callers must not modify the slice.
func (d *Dataset) Rows() []*Row {
	return d.rows
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.rows)
}

// HasColumn reports whether the header contains the column
func (d *Dataset) HasColumn(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Derive creates a dataset with the same source and schema over a subset of rows
func (d *Dataset) Derive(rows []*Row) *Dataset {
	return NewDataset(d.Source, d.Columns, rows)
}

// String returns a short description of the dataset
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset{Source: %s, Rows: %d, Columns: %d}", d.Source, len(d.rows), len(d.Columns))
}

// NormalizeCurrency converts a currency text such as "$1,432,298.73" into a
// decimal. An optional leading minus sign, an optional "$" and thousands
// separators are accepted. Values that are already plain numbers are
// returned unchanged.
func NormalizeCurrency(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("currency value cannot be empty")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	if !negative && strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	s = strings.ReplaceAll(s, ",", "")

	if !currencyDigits.MatchString(s) {
		return decimal.Zero, fmt.Errorf("invalid currency format '%s'", s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid currency format '%s': %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

var currencyDigits = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)

// IssuedDatePattern matches the MM-DD-YYYY HH:MM:SS layout of the exports
var IssuedDatePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}\s+\d{2}:\d{2}:\d{2}$`)

// IssuedDate is a parsed issued-date value
type IssuedDate struct {
	Time     time.Time
	MonthKey string // YYYY-MM
}

// issuedDateLayouts lists the layouts seen in sales order exports, XLSX
// exports first
var issuedDateLayouts = []string{
	"01-02-2006 15:04:05",
	"01-02-2006",
	"1-2-2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseIssuedDate parses an issued date in any of the export layouts
func ParseIssuedDate(s string) (IssuedDate, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return IssuedDate{}, fmt.Errorf("issued date cannot be empty")
	}

	for _, layout := range issuedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return IssuedDate{Time: t, MonthKey: t.Format("2006-01")}, nil
		}
	}

	// Workbooks read without formatting hold dates as serial day numbers
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 100000 {
		t := excelEpoch.Add(time.Duration(serial * float64(24*time.Hour))).Round(time.Second)
		return IssuedDate{Time: t, MonthKey: t.Format("2006-01")}, nil
	}
	return IssuedDate{}, fmt.Errorf("unable to parse issued date '%s'", s)
}

// DateParts splits the date portion of an MM-DD-YYYY value into month, day
// and year text without validating it
func DateParts(s string) (month, day, year string, ok bool) {
	datePart := strings.Fields(s)
	if len(datePart) == 0 {
		return "", "", "", false
	}
	parts := strings.Split(datePart[0], "-")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
