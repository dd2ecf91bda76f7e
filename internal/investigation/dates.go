package investigation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sales-reconciliation-tool/internal/aggregate"
	"sales-reconciliation-tool/internal/filter"
	"sales-reconciliation-tool/internal/models"
	"sales-reconciliation-tool/internal/reporter"
)

// DateAudit verifies the issued dates of the rows selected by a date prefix,
// e.g. that every "12-" row really is December of the expected year
type DateAudit struct {
	Options

	Path         string
	Prefix       string
	ExpectedYear string
}

// Name returns the investigation name
func (a *DateAudit) Name() string {
	return "Issued date audit"
}

// Run executes the audit
func (a *DateAudit) Run(ctx context.Context) (*reporter.Findings, error) {
	f := reporter.NewFindings(a.Name())
	layout := a.layout()
	if err := requireValue("prefix", a.Prefix); err != nil {
		return f, err
	}

	in, err := a.load(ctx, "Export", a.Path, layout.IssuedDate)
	if err != nil {
		return f, err
	}
	describeInputs(f, in)

	selected := filter.Apply(in.ds, filter.HasPrefix(layout.IssuedDate, a.Prefix))

	f.Section("Selection").
		Text("Filter", filter.Describe(filter.HasPrefix(layout.IssuedDate, a.Prefix))).
		Count("Matching rows", selected.Len())

	var samples [][]string
	strict, other, unparsed := 0, 0, 0
	yearSet := make(map[string]bool)
	monthCounts := make(map[string]int)
	allPrefixed := true

	for i, row := range selected.Rows() {
		date, _ := row.Value(layout.IssuedDate)
		if !strings.HasPrefix(date, a.Prefix) {
			allPrefixed = false
		}

		if models.IssuedDatePattern.MatchString(date) {
			strict++
		} else {
			other++
		}

		month, day, year, ok := models.DateParts(date)
		if ok {
			yearSet[year] = true
		}
		if i < a.sampleSize() {
			samples = append(samples, []string{date, month, day, year})
		}

		if parsed, err := models.ParseIssuedDate(date); err == nil {
			monthCounts[parsed.MonthKey]++
		} else {
			unparsed++
		}
	}

	f.Section("Samples").
		Table("Sample dates", []string{"Issued date", "Month", "Day", "Year"}, samples)

	f.Section("Date formats").
		Count("MM-DD-YYYY HH:MM:SS", strict).
		Count("OTHER", other).
		Count("Unparseable", unparsed)

	months := make([]string, 0, len(monthCounts))
	for month := range monthCounts {
		months = append(months, month)
	}
	aggregate.SortKeys(months)
	monthRows := make([][]string, 0, len(months))
	for _, month := range months {
		monthRows = append(monthRows, []string{month, reporter.FormatCount(monthCounts[month])})
	}
	f.Table("Parsed months", []string{"Month", "Rows"}, monthRows)

	years := make([]string, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	aggregate.SortKeys(years)

	f.Section("Checks").
		Check(fmt.Sprintf("All dates start with %q", a.Prefix), allPrefixed, "").
		IDs("Distinct years", years)

	if a.ExpectedYear != "" {
		onlyExpected := true
		for _, year := range years {
			if year != a.ExpectedYear {
				onlyExpected = false
			}
		}
		detail := ""
		if !onlyExpected {
			detail = fmt.Sprintf("found years %s", strings.Join(years, ", "))
		}
		f.Check(fmt.Sprintf("All dates are in %s", a.ExpectedYear), onlyExpected, detail)

		if y, err := strconv.Atoi(a.ExpectedYear); err == nil {
			start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(1, 0, 0).Add(-time.Second)
			inYear := filter.DateBetween(layout.IssuedDate, &start, &end)
			f.Count(fmt.Sprintf("Rows issued in %s", a.ExpectedYear), filter.Count(selected, inYear))
		}
	}

	return f, nil
}
