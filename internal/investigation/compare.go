package investigation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sales-reconciliation-tool/internal/filter"
	"sales-reconciliation-tool/internal/reconciler"
	"sales-reconciliation-tool/internal/reporter"
)

// SalespersonCompare checks that every order of a salesperson's own export
// is present in a candidate export, typically the year-to-date report
// filtered to that salesperson and month
type SalespersonCompare struct {
	Options

	ReferencePath string
	CandidatePath string
	SalesPerson   string

	// DatePrefix restricts the candidate to issued dates starting with it.
	DatePrefix string
}

// Name returns the investigation name
func (c *SalespersonCompare) Name() string {
	return "Salesperson comparison"
}

// Run executes the comparison
func (c *SalespersonCompare) Run(ctx context.Context) (*reporter.Findings, error) {
	f := reporter.NewFindings(c.Name())
	layout := c.layout()
	if err := requireValue("sales_person", c.SalesPerson); err != nil {
		return f, err
	}

	columns := []string{layout.OrderNumber, layout.IssuedDate, layout.SalesPerson, layout.TotalPrice}
	ref, err := c.load(ctx, "Reference", c.ReferencePath, columns...)
	if err != nil {
		return f, err
	}
	cand, err := c.load(ctx, "Candidate", c.CandidatePath, columns...)
	if err != nil {
		describeInputs(f, ref)
		return f, err
	}
	describeInputs(f, ref, cand)

	preds := []filter.Predicate{filter.Equals(layout.SalesPerson, c.SalesPerson)}
	if c.DatePrefix != "" {
		preds = append(preds, filter.HasPrefix(layout.IssuedDate, c.DatePrefix))
	}
	candidate := filter.Apply(cand.ds, preds...)

	result, err := reconciler.Reconcile(ref.ds, candidate, reconciler.ConfigFromLayout(layout))
	if err != nil {
		return f, err
	}

	f.Section("Totals").
		Text("Candidate filter", filter.Describe(preds...)).
		Count("Reference rows", result.Left.Rows).
		Count("Candidate rows", result.Right.Rows).
		Money("Reference revenue", result.Left.Revenue).
		Money("Candidate revenue", result.Right.Revenue).
		Count("Reference orders", result.Left.IDs).
		Count("Candidate orders", result.Right.IDs)

	f.Section("Discrepancy").
		Count("Missing rows", result.Left.Rows-result.Right.Rows).
		Money("Missing revenue", result.Left.Revenue.Sub(result.Right.Revenue))

	f.Section("Missing from candidate").
		Count("Orders", len(result.LeftOnly)).
		IDs("Order numbers", result.LeftOnly).
		Table("Details", detailColumns(layout.OrderNumber), detailTable(result.LeftOnlyDetails)).
		Money("Total missing revenue", result.LeftOnlyRevenue)

	f.Section("Extra in candidate").
		Count("Orders", len(result.RightOnly)).
		IDs("Order numbers", result.RightOnly).
		Money("Revenue", result.RightOnlyRevenue).
		Check("No extra orders in candidate", len(result.RightOnly) == 0,
			fmt.Sprintf("%d of %d candidate orders matched", len(result.Intersection), result.Right.IDs))

	return f, nil
}

func detailColumns(idColumn string) []string {
	return []string{idColumn, "Line items", "Revenue", "Issued dates", "Sales people"}
}

func detailTable(details []reconciler.Detail) [][]string {
	table := make([][]string, 0, len(details))
	for _, d := range details {
		table = append(table, []string{
			d.ID,
			strconv.Itoa(d.LineItems),
			money(d.Revenue),
			strings.Join(d.Dates, ", "),
			strings.Join(d.SalesPeople, ", "),
		})
	}
	return table
}
