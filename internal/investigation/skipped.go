package investigation

import (
	"context"
	"fmt"

	"sales-reconciliation-tool/internal/aggregate"
	"sales-reconciliation-tool/internal/filter"
	"sales-reconciliation-tool/internal/reconciler"
	"sales-reconciliation-tool/internal/reporter"
)

// ImportStats are the counters reported by the downstream import
type ImportStats struct {
	Created int
	Skipped int
}

// SkippedRows examines the rows carrying an invalid period label, which the
// import skips, and checks that none of them belong to the target period
type SkippedRows struct {
	Options

	Path         string
	BadPeriod    string
	TargetPeriod string

	// Import, when set, is compared with the number of rows in the file.
	Import *ImportStats
}

// Name returns the investigation name
func (s *SkippedRows) Name() string {
	return "Skipped rows"
}

// Run executes the investigation
func (s *SkippedRows) Run(ctx context.Context) (*reporter.Findings, error) {
	f := reporter.NewFindings(s.Name())
	layout := s.layout()
	if err := requireValue("bad_period", s.BadPeriod); err != nil {
		return f, err
	}

	in, err := s.load(ctx, "Review file", s.Path,
		layout.YearMonth, layout.OrderNumber, layout.IssuedDate, layout.SalesPerson, layout.TotalPrice)
	if err != nil {
		return f, err
	}
	describeInputs(f, in)

	bad := filter.Apply(in.ds, filter.Equals(layout.YearMonth, s.BadPeriod))
	badOrders := reconciler.NewIndex(bad, layout.OrderNumber)

	f.Section(fmt.Sprintf("Rows with %s = %q", layout.YearMonth, s.BadPeriod)).
		Count("Rows", bad.Len()).
		Count("Unique orders", badOrders.Len()).
		Money("Revenue", aggregate.Total(bad, layout.TotalPrice).Sum).
		Table("Sample rows",
			[]string{layout.OrderNumber, layout.IssuedDate, layout.YearMonth, layout.SalesPerson, layout.TotalPrice},
			sampleTable(bad.Rows(), s.sampleSize(), layout.TotalPrice,
				layout.OrderNumber, layout.IssuedDate, layout.YearMonth, layout.SalesPerson, layout.TotalPrice))

	if s.TargetPeriod != "" {
		target := filter.Apply(in.ds, filter.Equals(layout.YearMonth, s.TargetPeriod))

		f.Section(s.TargetPeriod).
			Count("Rows", target.Len()).
			Count("Unique orders", reconciler.NewIndex(target, layout.OrderNumber).Len()).
			Money("Revenue", aggregate.Total(target, layout.TotalPrice).Sum)

		overlap, err := reconciler.Reconcile(target, bad, &reconciler.Config{IDColumn: layout.OrderNumber})
		if err != nil {
			return f, err
		}
		detail := "no orders of the period were skipped"
		if len(overlap.Intersection) > 0 {
			detail = fmt.Sprintf("%d orders of the period also carry %q", len(overlap.Intersection), s.BadPeriod)
		}
		f.Check("No target period orders skipped", len(overlap.Intersection) == 0, detail).
			IDs("Skipped target period orders", overlap.Intersection)
	}

	f.Section("Skipped rows by salesperson").
		Table("Breakdown", []string{layout.SalesPerson, "Count", "Sum"},
			groupTable(aggregate.GroupBy(bad, layout.SalesPerson, layout.TotalPrice, aggregate.SumDesc)))

	if s.Import != nil {
		unaccounted := in.ds.Len() - s.Import.Created - s.Import.Skipped
		f.Section("Import results").
			Count("Rows in file", in.ds.Len()).
			Count("Items created", s.Import.Created).
			Count("Items skipped", s.Import.Skipped).
			Count("Difference", unaccounted).
			Check("Every row created or skipped", unaccounted == 0, "")
	}

	return f, nil
}
