// Package testutil generates fake sales order exports for tests and the
// sample data generator.
package testutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"sales-reconciliation-tool/internal/models"
	"sales-reconciliation-tool/internal/reporter"
)

// IssuedDateLayout is the issued-date layout of the exports
const IssuedDateLayout = "01-02-2006 15:04:05"

// Header lists the export columns in the order the generator writes them
var Header = []string{
	models.ColumnIssuedDate,
	models.ColumnOrderNumber,
	models.ColumnSalesPerson,
	models.ColumnTotalPrice,
	models.ColumnYearMonth,
	models.ColumnLineItemID,
	models.ColumnProduct,
}

// SalesRow is one generated line item
type SalesRow struct {
	IssuedDate  time.Time
	OrderNumber int64
	LineItemID  int64
	SalesPerson string
	TotalPrice  decimal.Decimal
	YearMonth   string
	Product     string
}

// Record formats the row as export text, with the price as "$1,234.50"
func (r SalesRow) Record() []string {
	return []string{
		r.IssuedDate.Format(IssuedDateLayout),
		strconv.FormatInt(r.OrderNumber, 10),
		r.SalesPerson,
		FormatPrice(r.TotalPrice),
		r.YearMonth,
		strconv.FormatInt(r.LineItemID, 10),
		r.Product,
	}
}

// Values returns the row keyed by column name
func (r SalesRow) Values() map[string]string {
	record := r.Record()
	values := make(map[string]string, len(Header))
	for i, col := range Header {
		values[col] = record[i]
	}
	return values
}

// Generator produces reproducible sales orders
type Generator struct {
	faker *gofakeit.Faker

	SalesPeople   []string
	Start, End    time.Time
	MaxLineItems  int
	MinPrice      float64
	MaxPrice      float64
	ZeroPriceRate float64

	nextOrder int64
	nextItem  int64
}

// NewGenerator creates a generator seeded for reproducible output. Orders
// default to December 2025.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		faker:         gofakeit.New(seed),
		SalesPeople:   []string{"BenW", "Zalak", "Priya", "Marco", "Ana"},
		Start:         time.Date(2025, time.December, 1, 8, 0, 0, 0, time.UTC),
		End:           time.Date(2025, time.December, 31, 18, 0, 0, 0, time.UTC),
		MaxLineItems:  4,
		MinPrice:      5,
		MaxPrice:      5000,
		ZeroPriceRate: 0.05,
		nextOrder:     9000,
		nextItem:      20000,
	}
}

// Orders generates n orders of one or more line items. Line items of one
// order share the order number, salesperson and issued date.
func (g *Generator) Orders(n int) []SalesRow {
	var rows []SalesRow
	for i := 0; i < n; i++ {
		rows = append(rows, g.Order()...)
	}
	return rows
}

// Order generates the line items of a single order
func (g *Generator) Order() []SalesRow {
	g.nextOrder++
	issued := g.faker.DateRange(g.Start, g.End).Truncate(time.Second)
	person := g.faker.RandomString(g.SalesPeople)

	items := g.faker.Number(1, max(1, g.MaxLineItems))
	rows := make([]SalesRow, items)
	for i := range rows {
		g.nextItem++
		rows[i] = SalesRow{
			IssuedDate:  issued,
			OrderNumber: g.nextOrder,
			LineItemID:  g.nextItem,
			SalesPerson: person,
			TotalPrice:  g.price(),
			YearMonth:   issued.Format("January 2006"),
			Product:     g.faker.ProductName(),
		}
	}
	return rows
}

func (g *Generator) price() decimal.Decimal {
	if g.faker.Float64Range(0, 1) < g.ZeroPriceRate {
		return decimal.Zero
	}
	return decimal.NewFromFloat(g.faker.Float64Range(g.MinPrice, g.MaxPrice)).Round(2)
}

// FormatPrice renders an amount the way the exports do, e.g. "$1,432,298.73"
func FormatPrice(d decimal.Decimal) string {
	return reporter.FormatMoney(d)
}

// WriteCSV writes rows as an export with a header line
func WriteCSV(w io.Writer, rows []SalesRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row.Record()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes rows to dir/name and returns the path
func WriteCSVFile(dir, name string, rows []SalesRow) (string, error) {
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteCSV(file, rows); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Dataset builds an in-memory dataset with normalized prices, numbering rows
// from line 2 as a loaded file would
func Dataset(source string, rows []SalesRow) *models.Dataset {
	loaded := make([]*models.Row, len(rows))
	for i, r := range rows {
		row := models.NewRow(i+2, r.Values())
		row.SetDecimal(models.ColumnTotalPrice, r.TotalPrice)
		loaded[i] = row
	}
	return models.NewDataset(source, append([]string{}, Header...), loaded)
}

// Total sums the prices of rows
func Total(rows []SalesRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.TotalPrice)
	}
	return total
}
