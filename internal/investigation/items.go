package investigation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"sales-reconciliation-tool/internal/aggregate"
	"sales-reconciliation-tool/internal/filter"
	"sales-reconciliation-tool/internal/reconciler"
	"sales-reconciliation-tool/internal/reporter"
)

// DefaultBatchSize is the number of line items the import sends per batch
const DefaultBatchSize = 450

// ZeroPriceAudit counts $0 line items and checks that line item ids are
// unique, the two usual suspects when an import creates fewer items than
// the file holds
type ZeroPriceAudit struct {
	Options

	Path   string
	Period string

	// BatchSize estimates the number of import batches; zero uses
	// DefaultBatchSize.
	BatchSize int
}

// Name returns the investigation name
func (z *ZeroPriceAudit) Name() string {
	return "Line item audit"
}

// Run executes the audit
func (z *ZeroPriceAudit) Run(ctx context.Context) (*reporter.Findings, error) {
	f := reporter.NewFindings(z.Name())
	layout := z.layout()

	columns := []string{layout.TotalPrice, layout.LineItemID}
	if z.Period != "" {
		columns = append(columns, layout.YearMonth)
	}
	in, err := z.load(ctx, "Review file", z.Path, columns...)
	if err != nil {
		return f, err
	}
	describeInputs(f, in)

	isZero := filter.NumberEquals(layout.TotalPrice, decimal.Zero)
	f.Section("Zero price items").
		Text("Filter", filter.Describe(isZero)).
		Count("Rows", filter.Count(in.ds, isZero))

	scope := in.ds
	if z.Period != "" {
		inPeriod := filter.Equals(layout.YearMonth, z.Period)
		scope = filter.Apply(in.ds, inPeriod)
		f.Count(fmt.Sprintf("Rows in %s", z.Period), filter.Count(in.ds, inPeriod, isZero))
	}

	index := reconciler.NewIndex(scope, layout.LineItemID)
	duplicates := index.Duplicates()
	duplicateRows := 0
	for _, id := range duplicates {
		duplicateRows += len(index.Rows(id)) - 1
	}

	section := "Line item ids"
	if z.Period != "" {
		section = fmt.Sprintf("Line item ids in %s", z.Period)
	}
	f.Section(section).
		Count("Rows", scope.Len()).
		Count("Distinct ids", index.Len()).
		Count("Rows without id", index.Missing()).
		Count("Duplicate rows", duplicateRows).
		IDs("Duplicated ids", duplicates).
		Check("Line item ids are unique", len(duplicates) == 0 && index.Missing() == 0, "")

	batch := z.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	f.Section("Import batches").
		Count("Batch size", batch).
		Count("Expected batches", (scope.Len()+batch-1)/batch).
		Money("Revenue", aggregate.Total(scope, layout.TotalPrice).Sum)

	return f, nil
}
