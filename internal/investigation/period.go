package investigation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"sales-reconciliation-tool/internal/aggregate"
	"sales-reconciliation-tool/internal/filter"
	"sales-reconciliation-tool/internal/models"
	"sales-reconciliation-tool/internal/reporter"
	"sales-reconciliation-tool/pkg/errors"
)

// DownstreamFigure is what the downstream database holds for one salesperson
type DownstreamFigure struct {
	SalesPerson string
	Revenue     decimal.Decimal
	Items       int
}

// ParseDownstreamFigure parses "NAME=REVENUE[:ITEMS]", e.g.
// "BenW=$101,797.73:117"
func ParseDownstreamFigure(s string) (DownstreamFigure, error) {
	name, rest, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return DownstreamFigure{}, errors.ValidationError(errors.CodeInvalidFormat, "downstream", s,
			fmt.Errorf("expected NAME=REVENUE[:ITEMS]"))
	}

	revenueText, itemsText, hasItems := strings.Cut(rest, ":")
	revenue, err := models.NormalizeCurrency(revenueText)
	if err != nil {
		return DownstreamFigure{}, errors.ValidationError(errors.CodeInvalidFormat, "downstream", s, err)
	}

	figure := DownstreamFigure{SalesPerson: name, Revenue: revenue, Items: -1}
	if hasItems {
		items, err := strconv.Atoi(strings.TrimSpace(itemsText))
		if err != nil || items < 0 {
			return DownstreamFigure{}, errors.ValidationError(errors.CodeOutOfRange, "downstream", s, err)
		}
		figure.Items = items
	}
	return figure, nil
}

// PeriodSummary breaks down the revenue of one period by salesperson and,
// when downstream figures are known, shows what is missing downstream
type PeriodSummary struct {
	Options

	Path   string
	Period string

	// Downstream holds the figures found in the database. Items is -1 when
	// only the revenue is known.
	Downstream []DownstreamFigure

	// Focus lists every row of one salesperson when set.
	Focus string
}

// Name returns the investigation name
func (p *PeriodSummary) Name() string {
	return "Period summary"
}

// Run executes the investigation
func (p *PeriodSummary) Run(ctx context.Context) (*reporter.Findings, error) {
	f := reporter.NewFindings(p.Name())
	layout := p.layout()
	if err := requireValue("period", p.Period); err != nil {
		return f, err
	}

	columns := []string{layout.YearMonth, layout.SalesPerson, layout.TotalPrice}
	if p.Focus != "" {
		columns = append(columns, layout.OrderNumber, layout.IssuedDate)
	}
	in, err := p.load(ctx, "Review file", p.Path, columns...)
	if err != nil {
		return f, err
	}
	describeInputs(f, in)

	period := filter.Apply(in.ds, filter.Equals(layout.YearMonth, p.Period))
	total := aggregate.Total(period, layout.TotalPrice)
	groups := aggregate.GroupBy(period, layout.SalesPerson, layout.TotalPrice, aggregate.SortedKeys)

	f.Section(p.Period).
		Count("Rows", total.Count).
		Money("Revenue", total.Sum).
		Table("By salesperson", []string{layout.SalesPerson, "Items", "Revenue"}, groupTable(groups))

	if len(p.Downstream) > 0 {
		p.discrepancy(f, groups, total)
	}

	if p.Focus != "" {
		p.focus(f, period, layout)
	}

	return f, nil
}

func (p *PeriodSummary) discrepancy(f *reporter.Findings, groups []aggregate.Group, total aggregate.Totals) {
	source := make(map[string]aggregate.Group, len(groups))
	var people []string
	for _, g := range groups {
		source[g.Key] = g
		people = append(people, g.Key)
	}

	downstream := make(map[string]DownstreamFigure, len(p.Downstream))
	for _, fig := range p.Downstream {
		downstream[fig.SalesPerson] = fig
		if _, ok := source[fig.SalesPerson]; !ok {
			people = append(people, fig.SalesPerson)
		}
	}
	aggregate.SortKeys(people)

	var rows [][]string
	downstreamRevenue := decimal.Zero
	downstreamItems, missingItems := 0, 0
	itemsKnown := true

	for _, person := range people {
		src := source[person]
		fig, ok := downstream[person]
		if !ok {
			fig = DownstreamFigure{SalesPerson: person, Revenue: decimal.Zero, Items: 0}
		}

		downstreamRevenue = downstreamRevenue.Add(fig.Revenue)
		items, missing := "?", "?"
		if fig.Items >= 0 {
			downstreamItems += fig.Items
			missingItems += src.Count - fig.Items
			items = strconv.Itoa(fig.Items)
			missing = strconv.Itoa(src.Count - fig.Items)
		} else {
			itemsKnown = false
		}

		rows = append(rows, []string{
			person,
			strconv.Itoa(src.Count),
			items,
			missing,
			money(src.Sum),
			money(fig.Revenue),
			money(src.Sum.Sub(fig.Revenue)),
		})
	}

	missingRevenue := total.Sum.Sub(downstreamRevenue)

	f.Section("Downstream discrepancy").
		Table("By salesperson", []string{"Sales person", "Source items", "Downstream items", "Missing items",
			"Source revenue", "Downstream revenue", "Missing revenue"}, rows).
		Money("Downstream revenue", downstreamRevenue).
		Money("Missing revenue", missingRevenue).
		Text("Missing share of revenue", reporter.FormatPercent(missingRevenue, total.Sum))

	if itemsKnown {
		f.Count("Downstream items", downstreamItems).
			Count("Missing items", missingItems)
	}
	f.Check("Downstream matches source", missingRevenue.IsZero() && (!itemsKnown || missingItems == 0), "")
}

func (p *PeriodSummary) focus(f *reporter.Findings, period *models.Dataset, layout models.ColumnLayout) {
	rows := filter.Apply(period, filter.Equals(layout.SalesPerson, p.Focus))
	total := aggregate.Total(rows, layout.TotalPrice)

	f.Section(fmt.Sprintf("%s in %s", p.Focus, p.Period)).
		Count("Items", total.Count).
		Money("Revenue", total.Sum)

	for _, fig := range p.Downstream {
		if fig.SalesPerson != p.Focus {
			continue
		}
		if fig.Items >= 0 {
			f.Count("Missing items", total.Count-fig.Items)
		}
		f.Money("Missing revenue", total.Sum.Sub(fig.Revenue))
	}

	columns := []string{layout.OrderNumber, layout.IssuedDate, layout.YearMonth, layout.TotalPrice}
	if period.HasColumn(layout.Product) {
		columns = append(columns, layout.Product)
	}
	f.Table("All items", columns, sampleTable(rows.Rows(), 0, layout.TotalPrice, columns...))
}
