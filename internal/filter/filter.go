// Package filter selects rows of a dataset by column predicates.
//
// Every predicate treats an absent value as non-matching, so rows with empty
// cells drop out of any filtered view instead of raising an error.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-reconciliation-tool/internal/models"
)

// Predicate decides whether a row belongs to a filtered view
type Predicate interface {
	Match(row *models.Row) bool
	String() string
}

type equals struct {
	column string
	value  string
}

// Equals matches rows whose column value is exactly value
func Equals(column, value string) Predicate {
	return equals{column: column, value: value}
}

func (p equals) Match(row *models.Row) bool {
	v, ok := row.Value(p.column)
	return ok && v == p.value
}

func (p equals) String() string {
	return fmt.Sprintf("%s = %q", p.column, p.value)
}

type hasPrefix struct {
	column string
	prefix string
}

// HasPrefix matches rows whose column value starts with prefix, e.g. issued
// dates starting with "12-" for December of any year
func HasPrefix(column, prefix string) Predicate {
	return hasPrefix{column: column, prefix: prefix}
}

func (p hasPrefix) Match(row *models.Row) bool {
	v, ok := row.Value(p.column)
	return ok && strings.HasPrefix(v, p.prefix)
}

func (p hasPrefix) String() string {
	return fmt.Sprintf("%s starts with %q", p.column, p.prefix)
}

type contains struct {
	column string
	substr string
}

// Contains matches rows whose column value contains substr
func Contains(column, substr string) Predicate {
	return contains{column: column, substr: substr}
}

func (p contains) Match(row *models.Row) bool {
	v, ok := row.Value(p.column)
	return ok && strings.Contains(v, p.substr)
}

func (p contains) String() string {
	return fmt.Sprintf("%s contains %q", p.column, p.substr)
}

type in struct {
	column string
	set    map[string]bool
}

// In matches rows whose column value is one of values
func In(column string, values ...string) Predicate {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return in{column: column, set: set}
}

func (p in) Match(row *models.Row) bool {
	v, ok := row.Value(p.column)
	return ok && p.set[v]
}

func (p in) String() string {
	values := make([]string, 0, len(p.set))
	for v := range p.set {
		values = append(values, fmt.Sprintf("%q", v))
	}
	sort.Strings(values)
	return fmt.Sprintf("%s in {%s}", p.column, strings.Join(values, ", "))
}

type numberEquals struct {
	column string
	value  decimal.Decimal
}

// NumberEquals matches rows whose column holds a number equal to value.
// Currency text and plain numbers compare by value, so "$0.00" equals 0.
func NumberEquals(column string, value decimal.Decimal) Predicate {
	return numberEquals{column: column, value: value}
}

func (p numberEquals) Match(row *models.Row) bool {
	d, ok := row.Decimal(p.column)
	return ok && d.Equal(p.value)
}

func (p numberEquals) String() string {
	return fmt.Sprintf("%s == %s", p.column, p.value)
}

type dateBetween struct {
	column     string
	start, end *time.Time
}

// DateBetween matches rows whose issued-date column falls within the
// inclusive range. A nil bound is open. Unparseable dates never match.
func DateBetween(column string, start, end *time.Time) Predicate {
	return dateBetween{column: column, start: start, end: end}
}

func (p dateBetween) Match(row *models.Row) bool {
	v, ok := row.Value(p.column)
	if !ok {
		return false
	}
	date, err := models.ParseIssuedDate(v)
	if err != nil {
		return false
	}
	if p.start != nil && date.Time.Before(*p.start) {
		return false
	}
	if p.end != nil && date.Time.After(*p.end) {
		return false
	}
	return true
}

func (p dateBetween) String() string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "*"
		}
		return t.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%s between %s and %s", p.column, bound(p.start), bound(p.end))
}

type and []Predicate

// And matches rows satisfying every predicate. An empty And matches all rows.
func And(preds ...Predicate) Predicate {
	return and(preds)
}

func (p and) Match(row *models.Row) bool {
	for _, pred := range p {
		if !pred.Match(row) {
			return false
		}
	}
	return true
}

func (p and) String() string {
	return join(p, " AND ")
}

type or []Predicate

// Or matches rows satisfying at least one predicate. An empty Or matches nothing.
func Or(preds ...Predicate) Predicate {
	return or(preds)
}

func (p or) Match(row *models.Row) bool {
	for _, pred := range p {
		if pred.Match(row) {
			return true
		}
	}
	return false
}

func (p or) String() string {
	return join(p, " OR ")
}

func join(preds []Predicate, sep string) string {
	if len(preds) == 0 {
		return "(all)"
	}
	parts := make([]string, len(preds))
	for i, pred := range preds {
		parts[i] = pred.String()
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// Apply returns the rows of ds matching all predicates, in source order.
// The parent dataset is not modified.
func Apply(ds *models.Dataset, preds ...Predicate) *models.Dataset {
	match := And(preds...)

	filtered := make([]*models.Row, 0, ds.Len())
	for _, row := range ds.Rows() {
		if match.Match(row) {
			filtered = append(filtered, row)
		}
	}
	return ds.Derive(filtered)
}

// Count returns the number of rows of ds matching all predicates
func Count(ds *models.Dataset, preds ...Predicate) int {
	match := And(preds...)

	n := 0
	for _, row := range ds.Rows() {
		if match.Match(row) {
			n++
		}
	}
	return n
}

// Describe renders predicates as one line for reports
func Describe(preds ...Predicate) string {
	return And(preds...).String()
}
