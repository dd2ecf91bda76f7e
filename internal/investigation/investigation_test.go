package investigation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-reconciliation-tool/internal/reporter"
	"sales-reconciliation-tool/internal/testutil"
	"sales-reconciliation-tool/pkg/errors"
)

const reviewCSV = `Issued date,Sales order Number,Sales person,Total Price,Year-month,SO Item ID,Product
12-01-2025 10:00:00,100,BenW,"$1,000.00",December 2025,1,Widget
12-01-2025 10:00:00,100,BenW,$0.00,December 2025,2,Widget
12-02-2025 11:00:00,101,Zalak,$250.50,December 2025,3,Gadget
12-03-2025 12:00:00,102,BenW,$99.50,January 0000,4,Gizmo
12-04-2025 13:00:00,103,Zalak,$10.00,January 0000,5,Gizmo
12-04-2025 13:00:00,101,Zalak,$5.00,January 0000,5,Gadget
11-20-2025 09:00:00,90,Priya,$40.00,November 2025,6,Widget
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func entry(t *testing.T, f *reporter.Findings, section, label string) reporter.Entry {
	t.Helper()
	e, ok := f.FindIn(section, label)
	require.Truef(t, ok, "missing entry %q in section %q", label, section)
	return e
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDateAudit(t *testing.T) {
	path := writeFile(t, "ytd.csv", `Issued date,Sales order Number,Total Price
12-04-2025 18:35:01,1,$10.00
12/05/2025 10:00,2,$5.00
12-31-2024 09:00:00,3,$1.00
01-02-2025 10:00:00,4,$2.00
12-01-2025,5,$3.00
`)

	audit := &DateAudit{Path: path, Prefix: "12-", ExpectedYear: "2025"}
	f, err := audit.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, entry(t, f, "Inputs", "Export rows").Number)
	assert.Equal(t, 3, entry(t, f, "Selection", "Matching rows").Number)
	assert.Equal(t, 2, entry(t, f, "Date formats", "MM-DD-YYYY HH:MM:SS").Number)
	assert.Equal(t, 1, entry(t, f, "Date formats", "OTHER").Number)
	assert.Equal(t, 0, entry(t, f, "Date formats", "Unparseable").Number)

	samples := entry(t, f, "Samples", "Sample dates").Table
	require.Len(t, samples.Rows, 3)
	assert.Equal(t, []string{"12-04-2025 18:35:01", "12", "04", "2025"}, samples.Rows[0])

	assert.True(t, entry(t, f, "Checks", `All dates start with "12-"`).Passed)
	assert.Equal(t, []string{"2024", "2025"}, entry(t, f, "Checks", "Distinct years").IDs)

	yearCheck := entry(t, f, "Checks", "All dates are in 2025")
	assert.False(t, yearCheck.Passed)
	assert.Contains(t, yearCheck.Text, "2024")
	assert.Equal(t, 2, entry(t, f, "Checks", "Rows issued in 2025").Number)
}

func TestDateAudit_Errors(t *testing.T) {
	_, err := (&DateAudit{Path: writeFile(t, "a.csv", reviewCSV)}).Run(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeMissingField), "prefix is required")

	noDates := writeFile(t, "b.csv", "Sales order Number,Total Price\n1,$2.00\n")
	_, err = (&DateAudit{Path: noDates, Prefix: "12-"}).Run(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeMissingColumn))
}

func TestSkippedRows(t *testing.T) {
	inv := &SkippedRows{
		Path:         writeFile(t, "review.csv", reviewCSV),
		BadPeriod:    "January 0000",
		TargetPeriod: "December 2025",
		Import:       &ImportStats{Created: 4, Skipped: 3},
	}
	f, err := inv.Run(context.Background())
	require.NoError(t, err)

	bad := `Rows with Year-month = "January 0000"`
	assert.Equal(t, 3, entry(t, f, bad, "Rows").Number)
	assert.Equal(t, 3, entry(t, f, bad, "Unique orders").Number)
	assert.True(t, amount("114.50").Equal(entry(t, f, bad, "Revenue").Amount))
	assert.Len(t, entry(t, f, bad, "Sample rows").Table.Rows, 3)

	assert.Equal(t, 3, entry(t, f, "December 2025", "Rows").Number)
	assert.Equal(t, 2, entry(t, f, "December 2025", "Unique orders").Number)
	assert.True(t, amount("1250.50").Equal(entry(t, f, "December 2025", "Revenue").Amount))
	assert.False(t, entry(t, f, "December 2025", "No target period orders skipped").Passed)
	assert.Equal(t, []string{"101"}, entry(t, f, "December 2025", "Skipped target period orders").IDs)

	breakdown := entry(t, f, "Skipped rows by salesperson", "Breakdown").Table
	assert.Equal(t, [][]string{
		{"BenW", "1", "$99.50"},
		{"Zalak", "2", "$15.00"},
	}, breakdown.Rows)

	assert.Equal(t, 0, entry(t, f, "Import results", "Difference").Number)
	assert.True(t, entry(t, f, "Import results", "Every row created or skipped").Passed)
}

func TestParseDownstreamFigure(t *testing.T) {
	fig, err := ParseDownstreamFigure("BenW=$101,797.73:117")
	require.NoError(t, err)
	assert.Equal(t, "BenW", fig.SalesPerson)
	assert.True(t, amount("101797.73").Equal(fig.Revenue))
	assert.Equal(t, 117, fig.Items)

	fig, err = ParseDownstreamFigure(" Zalak = 250")
	require.NoError(t, err)
	assert.Equal(t, "Zalak", fig.SalesPerson)
	assert.Equal(t, -1, fig.Items)

	for _, bad := range []string{"BenW", "=5", "BenW=abc", "BenW=$5:x", "BenW=$5:-1"} {
		_, err := ParseDownstreamFigure(bad)
		assert.Errorf(t, err, "expected error for %q", bad)
	}
}

func TestPeriodSummary(t *testing.T) {
	benw, err := ParseDownstreamFigure("BenW=$1,000.00:1")
	require.NoError(t, err)
	zalak, err := ParseDownstreamFigure("Zalak=$0:0")
	require.NoError(t, err)

	inv := &PeriodSummary{
		Path:       writeFile(t, "review.csv", reviewCSV),
		Period:     "December 2025",
		Downstream: []DownstreamFigure{benw, zalak},
		Focus:      "BenW",
	}
	f, err := inv.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, entry(t, f, "December 2025", "Rows").Number)
	assert.True(t, amount("1250.50").Equal(entry(t, f, "December 2025", "Revenue").Amount))
	assert.Equal(t, [][]string{
		{"BenW", "2", "$1,000.00"},
		{"Zalak", "1", "$250.50"},
	}, entry(t, f, "December 2025", "By salesperson").Table.Rows)

	section := "Downstream discrepancy"
	assert.True(t, amount("1000").Equal(entry(t, f, section, "Downstream revenue").Amount))
	assert.True(t, amount("250.50").Equal(entry(t, f, section, "Missing revenue").Amount))
	assert.Equal(t, "20.0%", entry(t, f, section, "Missing share of revenue").Text)
	assert.Equal(t, 2, entry(t, f, section, "Missing items").Number)
	assert.False(t, entry(t, f, section, "Downstream matches source").Passed)

	rows := entry(t, f, section, "By salesperson").Table.Rows
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Zalak", "1", "0", "1", "$250.50", "$0.00", "$250.50"}, rows[1])

	focus := "BenW in December 2025"
	assert.Equal(t, 2, entry(t, f, focus, "Items").Number)
	assert.Equal(t, 1, entry(t, f, focus, "Missing items").Number)
	assert.True(t, entry(t, f, focus, "Missing revenue").Amount.IsZero())
	items := entry(t, f, focus, "All items").Table
	assert.Len(t, items.Rows, 2)
	assert.Contains(t, items.Columns, "Product")
}

func TestPeriodSummary_RevenueOnly(t *testing.T) {
	fig, err := ParseDownstreamFigure("BenW=$1,000.00")
	require.NoError(t, err)

	f, err := (&PeriodSummary{
		Path:       writeFile(t, "review.csv", reviewCSV),
		Period:     "December 2025",
		Downstream: []DownstreamFigure{fig},
	}).Run(context.Background())
	require.NoError(t, err)

	_, ok := f.FindIn("Downstream discrepancy", "Missing items")
	assert.False(t, ok, "item counts are unknown")
	rows := entry(t, f, "Downstream discrepancy", "By salesperson").Table.Rows
	assert.Equal(t, "?", rows[0][2])
}

func TestOrderLookup(t *testing.T) {
	review := writeFile(t, "review.csv", reviewCSV)
	ytd := writeFile(t, "ytd.csv", "Issued date,Sales order Number,Sales person,Total Price\n"+
		"12-01-2025 10:00:00,100.0,BenW,\"$1,000.00\"\n")

	inv := &OrderLookup{
		Order:      "101",
		Sources:    []Source{{Label: "Review", Path: review}, {Label: "YTD", Path: ytd}},
		DateSearch: "12-04",
	}
	f, err := inv.Run(context.Background())
	require.NoError(t, err)

	found := "Order 101 in Review"
	assert.True(t, entry(t, f, found, "Order present").Passed)
	assert.Equal(t, 2, entry(t, f, found, "Line items").Number)
	assert.Equal(t, "Zalak", entry(t, f, found, "Sales people").Text)
	assert.Equal(t, "12-02-2025 11:00:00, 12-04-2025 13:00:00", entry(t, f, found, "Issued dates").Text)
	assert.True(t, amount("255.50").Equal(entry(t, f, found, "Revenue").Amount))
	assert.Len(t, entry(t, f, found, "Rows").Table.Rows, 2)

	assert.False(t, entry(t, f, "Order 101 in YTD", "Order present").Passed)

	search := `Issued dates containing "12-04" in Review`
	assert.Equal(t, 2, entry(t, f, search, "Rows").Number)
	assert.Equal(t, []string{"101", "103"}, entry(t, f, search, "Orders").IDs)
}

func TestOrderLookup_CanonicalOrder(t *testing.T) {
	ytd := writeFile(t, "ytd.csv", "Issued date,Sales order Number,Sales person,Total Price\n"+
		"12-01-2025 10:00:00,100.0,BenW,\"$1,000.00\"\n")

	f, err := (&OrderLookup{Order: " 100.0 ", Sources: []Source{{Path: ytd}}}).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, entry(t, f, "Order 100 in "+ytd, "Order present").Passed)

	_, err = (&OrderLookup{Order: "100"}).Run(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeMissingField))
}

func TestZeroPriceAudit(t *testing.T) {
	path := writeFile(t, "review.csv", reviewCSV)

	f, err := (&ZeroPriceAudit{Path: path, BatchSize: 2}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, entry(t, f, "Zero price items", "Rows").Number)
	assert.Equal(t, 6, entry(t, f, "Line item ids", "Distinct ids").Number)
	assert.Equal(t, 1, entry(t, f, "Line item ids", "Duplicate rows").Number)
	assert.Equal(t, []string{"5"}, entry(t, f, "Line item ids", "Duplicated ids").IDs)
	assert.False(t, entry(t, f, "Line item ids", "Line item ids are unique").Passed)
	assert.Equal(t, 4, entry(t, f, "Import batches", "Expected batches").Number)

	f, err = (&ZeroPriceAudit{Path: path, Period: "December 2025"}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, entry(t, f, "Zero price items", "Rows in December 2025").Number)
	assert.Equal(t, 3, entry(t, f, "Line item ids in December 2025", "Distinct ids").Number)
	assert.True(t, entry(t, f, "Line item ids in December 2025", "Line item ids are unique").Passed)
	assert.Equal(t, DefaultBatchSize, entry(t, f, "Import batches", "Batch size").Number)
	assert.Equal(t, 1, entry(t, f, "Import batches", "Expected batches").Number)
}

func TestSalespersonCompare(t *testing.T) {
	reference := writeFile(t, "benw.csv", "Issued date,Sales order Number,Sales person,Total Price\n"+
		"12-01-2025 10:00:00,100,BenW,\"$1,000.00\"\n"+
		"12-05-2025 10:00:00,200,BenW,$20.00\n")

	inv := &SalespersonCompare{
		ReferencePath: reference,
		CandidatePath: writeFile(t, "review.csv", reviewCSV),
		SalesPerson:   "BenW",
		DatePrefix:    "12-",
	}
	f, err := inv.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, entry(t, f, "Totals", "Reference rows").Number)
	assert.Equal(t, 3, entry(t, f, "Totals", "Candidate rows").Number)
	assert.Equal(t, 2, entry(t, f, "Totals", "Candidate orders").Number)
	assert.True(t, amount("1099.50").Equal(entry(t, f, "Totals", "Candidate revenue").Amount))

	assert.Equal(t, -1, entry(t, f, "Discrepancy", "Missing rows").Number)
	assert.True(t, amount("-79.50").Equal(entry(t, f, "Discrepancy", "Missing revenue").Amount))

	missing := "Missing from candidate"
	assert.Equal(t, []string{"200"}, entry(t, f, missing, "Order numbers").IDs)
	assert.True(t, amount("20").Equal(entry(t, f, missing, "Total missing revenue").Amount))
	assert.Equal(t, [][]string{{"200", "1", "$20.00", "12-05-2025 10:00:00", "BenW"}},
		entry(t, f, missing, "Details").Table.Rows)

	extra := "Extra in candidate"
	assert.Equal(t, []string{"102"}, entry(t, f, extra, "Order numbers").IDs)
	check := entry(t, f, extra, "No extra orders in candidate")
	assert.False(t, check.Passed)
	assert.Equal(t, "1 of 2 candidate orders matched", check.Text)
}

func TestRun_PartialFindings(t *testing.T) {
	reference := writeFile(t, "benw.csv", "Issued date,Sales order Number,Sales person,Total Price\n"+
		"12-01-2025 10:00:00,100,BenW,$10.00\n")

	inv := &SalespersonCompare{
		ReferencePath: reference,
		CandidatePath: filepath.Join(t.TempDir(), "missing.csv"),
		SalesPerson:   "BenW",
	}
	f, err := Run(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeFileNotFound))

	require.NotNil(t, f)
	assert.NotEmpty(t, f.Aborted)
	assert.Equal(t, 1, entry(t, f, "Inputs", "Reference rows").Number)
}

func TestRun_GeneratedData(t *testing.T) {
	gen := testutil.NewGenerator(42)
	gen.ZeroPriceRate = 0
	rows := gen.Orders(30)
	path, err := testutil.WriteCSVFile(t.TempDir(), "generated.csv", rows)
	require.NoError(t, err)

	f, err := Run(context.Background(), &PeriodSummary{Path: path, Period: "December 2025"})
	require.NoError(t, err)
	assert.Empty(t, f.Aborted)

	assert.Equal(t, len(rows), entry(t, f, "December 2025", "Rows").Number)
	assert.True(t, testutil.Total(rows).Equal(entry(t, f, "December 2025", "Revenue").Amount))

	zero, err := Run(context.Background(), &ZeroPriceAudit{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 0, entry(t, zero, "Zero price items", "Rows").Number)
	assert.True(t, entry(t, zero, "Line item ids", "Line item ids are unique").Passed)
}
