// Package reconciler compares the identifier sets of two datasets.
//
// A reconciliation answers which orders of one export are missing from the
// other and what revenue they carry. Identifier lists are always sorted
// ascending so that runs can be diffed.
package reconciler

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sales-reconciliation-tool/internal/aggregate"
	"sales-reconciliation-tool/internal/models"
	"sales-reconciliation-tool/pkg/errors"
	"sales-reconciliation-tool/pkg/logger"
)

// Config holds the columns a reconciliation reads
type Config struct {
	// IDColumn holds the identifier being reconciled. Required.
	IDColumn string

	// ValueColumn is summed for the revenue of each side. Optional.
	ValueColumn string

	// DateColumn and PersonColumn are listed in the detail of each missing
	// identifier. Optional.
	DateColumn   string
	PersonColumn string
}

// DefaultConfig reconciles sales order numbers
func DefaultConfig() *Config {
	return &Config{
		IDColumn:     models.ColumnOrderNumber,
		ValueColumn:  models.ColumnTotalPrice,
		DateColumn:   models.ColumnIssuedDate,
		PersonColumn: models.ColumnSalesPerson,
	}
}

// ConfigFromLayout reconciles order numbers using the columns of a layout
func ConfigFromLayout(layout models.ColumnLayout) *Config {
	layout = layout.WithDefaults()
	return &Config{
		IDColumn:     layout.OrderNumber,
		ValueColumn:  layout.TotalPrice,
		DateColumn:   layout.IssuedDate,
		PersonColumn: layout.SalesPerson,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.IDColumn) == "" {
		return fmt.Errorf("identifier column is required")
	}
	return nil
}

func (c *Config) columns() []string {
	var cols []string
	for _, col := range []string{c.IDColumn, c.ValueColumn, c.DateColumn, c.PersonColumn} {
		if col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

// Side summarizes one dataset of a reconciliation
type Side struct {
	Source     string          `json:"source"`
	Rows       int             `json:"rows"`
	IDs        int             `json:"ids"`
	MissingIDs int             `json:"missing_ids"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// Detail describes the rows of one identifier
type Detail struct {
	ID          string          `json:"id"`
	LineItems   int             `json:"line_items"`
	Revenue     decimal.Decimal `json:"revenue"`
	Dates       []string        `json:"dates,omitempty"`
	SalesPeople []string        `json:"sales_people,omitempty"`
}

// Result holds the outcome of a reconciliation. Intersection, LeftOnly and
// RightOnly partition the union of both identifier sets.
type Result struct {
	Left  Side `json:"left"`
	Right Side `json:"right"`

	Intersection []string `json:"intersection"`
	LeftOnly     []string `json:"left_only"`
	RightOnly    []string `json:"right_only"`

	LeftOnlyRevenue  decimal.Decimal `json:"left_only_revenue"`
	RightOnlyRevenue decimal.Decimal `json:"right_only_revenue"`

	LeftOnlyDetails  []Detail `json:"left_only_details,omitempty"`
	RightOnlyDetails []Detail `json:"right_only_details,omitempty"`
}

// Balanced reports whether both datasets carry the same identifiers
func (r *Result) Balanced() bool {
	return len(r.LeftOnly) == 0 && len(r.RightOnly) == 0
}

// Union returns every identifier of either dataset, ascending
func (r *Result) Union() []string {
	union := make([]string, 0, len(r.Intersection)+len(r.LeftOnly)+len(r.RightOnly))
	union = append(union, r.Intersection...)
	union = append(union, r.LeftOnly...)
	union = append(union, r.RightOnly...)
	aggregate.SortKeys(union)
	return union
}

// Reconcile compares the identifiers of left and right. Every configured
// column must exist in both datasets.
func Reconcile(left, right *models.Dataset, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "reconcile", err.Error(), err)
	}
	for _, ds := range []*models.Dataset{left, right} {
		for _, col := range config.columns() {
			if !ds.HasColumn(col) {
				return nil, errors.ColumnNotFound(ds.Source, col, ds.Columns)
			}
		}
	}

	log := logger.WithComponent("reconciler").WithFields(logger.Fields{
		"left":      left.Source,
		"right":     right.Source,
		"id_column": config.IDColumn,
	})

	leftIndex := NewIndex(left, config.IDColumn)
	rightIndex := NewIndex(right, config.IDColumn)

	result := &Result{
		Left:             side(left, leftIndex, config),
		Right:            side(right, rightIndex, config),
		Intersection:     []string{},
		LeftOnly:         []string{},
		RightOnly:        []string{},
		LeftOnlyRevenue:  decimal.Zero,
		RightOnlyRevenue: decimal.Zero,
	}

	for _, id := range leftIndex.IDs() {
		if rightIndex.Has(id) {
			result.Intersection = append(result.Intersection, id)
			continue
		}
		detail := Describe(leftIndex, id, config)
		result.LeftOnly = append(result.LeftOnly, id)
		result.LeftOnlyDetails = append(result.LeftOnlyDetails, detail)
		result.LeftOnlyRevenue = result.LeftOnlyRevenue.Add(detail.Revenue)
	}

	for _, id := range rightIndex.IDs() {
		if leftIndex.Has(id) {
			continue
		}
		detail := Describe(rightIndex, id, config)
		result.RightOnly = append(result.RightOnly, id)
		result.RightOnlyDetails = append(result.RightOnlyDetails, detail)
		result.RightOnlyRevenue = result.RightOnlyRevenue.Add(detail.Revenue)
	}

	log.WithFields(logger.Fields{
		"intersection": len(result.Intersection),
		"left_only":    len(result.LeftOnly),
		"right_only":   len(result.RightOnly),
	}).Debug("Reconciliation completed")

	return result, nil
}

func side(ds *models.Dataset, index *Index, config *Config) Side {
	s := Side{
		Source:     ds.Source,
		Rows:       ds.Len(),
		IDs:        index.Len(),
		MissingIDs: index.Missing(),
		Revenue:    decimal.Zero,
	}
	if config.ValueColumn != "" {
		s.Revenue = aggregate.Total(ds, config.ValueColumn).Sum
	}
	return s
}

// Describe summarizes the rows of one identifier. Dates and salespeople are
// listed once each, in order of appearance.
func Describe(index *Index, id string, config *Config) Detail {
	rows := index.Rows(id)
	detail := Detail{ID: id, LineItems: len(rows), Revenue: decimal.Zero}

	for _, row := range rows {
		if config.ValueColumn != "" {
			if v, ok := row.Decimal(config.ValueColumn); ok {
				detail.Revenue = detail.Revenue.Add(v)
			}
		}
		if config.DateColumn != "" {
			if v, ok := row.Value(config.DateColumn); ok {
				detail.Dates = appendUnique(detail.Dates, v)
			}
		}
		if config.PersonColumn != "" {
			if v, ok := row.Value(config.PersonColumn); ok {
				detail.SalesPeople = appendUnique(detail.SalesPeople, v)
			}
		}
	}
	return detail
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
