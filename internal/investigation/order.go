package investigation

import (
	"context"
	"fmt"
	"strings"

	"sales-reconciliation-tool/internal/filter"
	"sales-reconciliation-tool/internal/models"
	"sales-reconciliation-tool/internal/reconciler"
	"sales-reconciliation-tool/internal/reporter"
)

// Source is a labelled input file
type Source struct {
	Label string
	Path  string
}

// OrderLookup looks up one order number in several exports and lists what
// each export holds for it
type OrderLookup struct {
	Options

	Order   string
	Sources []Source

	// DateSearch lists the issued dates of the first source containing this
	// text, e.g. "12-01" to find orders issued on the first of the month.
	DateSearch string
}

// Name returns the investigation name
func (o *OrderLookup) Name() string {
	return "Order lookup"
}

// Run executes the lookup
func (o *OrderLookup) Run(ctx context.Context) (*reporter.Findings, error) {
	f := reporter.NewFindings(o.Name())
	layout := o.layout()
	if err := requireValue("order", o.Order); err != nil {
		return f, err
	}
	if len(o.Sources) == 0 {
		return f, requireValue("source", "")
	}

	inputs := make([]*input, 0, len(o.Sources))
	for _, src := range o.Sources {
		label := src.Label
		if label == "" {
			label = src.Path
		}
		in, err := o.load(ctx, label, src.Path,
			layout.OrderNumber, layout.IssuedDate, layout.SalesPerson, layout.TotalPrice)
		if err != nil {
			return f, err
		}
		inputs = append(inputs, in)
	}
	describeInputs(f, inputs...)

	config := reconciler.ConfigFromLayout(layout)
	id := canonicalOrder(o.Order)

	for _, in := range inputs {
		index := reconciler.NewIndex(in.ds, layout.OrderNumber)
		f.Section(fmt.Sprintf("Order %s in %s", id, in.label))

		if !index.Has(id) {
			f.Check("Order present", false, fmt.Sprintf("order %s not found in %s", id, in.ds.Source))
			continue
		}

		detail := reconciler.Describe(index, id, config)
		columns := []string{layout.IssuedDate, layout.SalesPerson, layout.TotalPrice}
		if in.ds.HasColumn(layout.Product) {
			columns = append(columns, layout.Product)
		}

		f.Check("Order present", true, "").
			Count("Line items", detail.LineItems).
			Text("Sales people", strings.Join(detail.SalesPeople, ", ")).
			Text("Issued dates", strings.Join(detail.Dates, ", ")).
			Money("Revenue", detail.Revenue).
			Table("Rows", columns, sampleTable(index.Rows(id), 0, layout.TotalPrice, columns...))
	}

	if o.DateSearch != "" {
		first := inputs[0]
		matches := filter.Apply(first.ds, filter.Contains(layout.IssuedDate, o.DateSearch))
		f.Section(fmt.Sprintf("Issued dates containing %q in %s", o.DateSearch, first.label)).
			Count("Rows", matches.Len()).
			IDs("Orders", reconciler.NewIndex(matches, layout.OrderNumber).IDs()).
			Table("Sample rows", []string{layout.OrderNumber, layout.IssuedDate, layout.SalesPerson, layout.TotalPrice},
				sampleTable(matches.Rows(), o.sampleSize(), layout.TotalPrice,
					layout.OrderNumber, layout.IssuedDate, layout.SalesPerson, layout.TotalPrice))
	}

	return f, nil
}

// canonicalOrder maps "9715.0" and " 9715 " onto the index form "9715"
func canonicalOrder(order string) string {
	order = strings.TrimSpace(order)
	if id, ok := reconciler.Identifier(models.NewRow(0, map[string]string{"id": order}), "id"); ok {
		return id
	}
	return order
}
