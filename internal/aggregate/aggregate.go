// Package aggregate computes grouped counts and sums over datasets.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"sales-reconciliation-tool/internal/models"
)

// MissingKey is the display key of the group of rows without a group value
const MissingKey = "(blank)"

// Order controls the order of groups in a result
type Order string

const (
	// SortedKeys orders groups by key, numerically when every key is a number
	SortedKeys Order = "sorted"
	// FirstSeen orders groups by the first row of each group
	FirstSeen Order = "first-seen"
	// SumDesc orders groups by descending sum, ties broken by key
	SumDesc Order = "sum-desc"
)

// Group is the aggregate of the rows sharing one group value
type Group struct {
	Key     string          `json:"key"`
	Count   int             `json:"count"`
	Sum     decimal.Decimal `json:"sum"`
	Missing bool            `json:"missing,omitempty"`
}

// Totals is the aggregate of a whole dataset
type Totals struct {
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

// GroupBy groups the rows of ds by groupCol and sums valueCol per group.
// Rows without a group value are collected in a single group flagged
// Missing, always placed last, so group sums add up to the dataset total.
// Rows without a value count towards their group but add nothing to the sum.
func GroupBy(ds *models.Dataset, groupCol, valueCol string, order Order) []Group {
	index := make(map[string]int)
	var groups []Group
	var missing *Group

	for _, row := range ds.Rows() {
		var group *Group
		if key, ok := row.Value(groupCol); ok {
			i, seen := index[key]
			if !seen {
				i = len(groups)
				index[key] = i
				groups = append(groups, Group{Key: key, Sum: decimal.Zero})
			}
			group = &groups[i]
		} else {
			if missing == nil {
				missing = &Group{Key: MissingKey, Sum: decimal.Zero, Missing: true}
			}
			group = missing
		}

		group.Count++
		if valueCol != "" {
			if v, ok := row.Decimal(valueCol); ok {
				group.Sum = group.Sum.Add(v)
			}
		}
	}

	sortGroups(groups, order)

	if missing != nil {
		groups = append(groups, *missing)
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups
}

// CountBy groups rows by groupCol and counts them
func CountBy(ds *models.Dataset, groupCol string, order Order) []Group {
	return GroupBy(ds, groupCol, "", order)
}

func sortGroups(groups []Group, order Order) {
	switch order {
	case FirstSeen:
		return
	case SumDesc:
		less := keyLess(keys(groups))
		sort.SliceStable(groups, func(i, j int) bool {
			if c := groups[i].Sum.Cmp(groups[j].Sum); c != 0 {
				return c > 0
			}
			return less(groups[i].Key, groups[j].Key)
		})
	default:
		less := keyLess(keys(groups))
		sort.SliceStable(groups, func(i, j int) bool {
			return less(groups[i].Key, groups[j].Key)
		})
	}
}

func keys(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

// Total counts the rows of ds and sums valueCol. An empty dataset yields a
// zero count and a zero sum.
func Total(ds *models.Dataset, valueCol string) Totals {
	totals := Totals{Sum: decimal.Zero}
	for _, row := range ds.Rows() {
		totals.Count++
		if v, ok := row.Decimal(valueCol); ok {
			totals.Sum = totals.Sum.Add(v)
		}
	}
	return totals
}

// Sum adds up the sums of groups
func Sum(groups []Group) decimal.Decimal {
	sum := decimal.Zero
	for _, g := range groups {
		sum = sum.Add(g.Sum)
	}
	return sum
}

// Distinct returns the distinct present values of column, sorted numerically
// when every value is a number and lexicographically otherwise
func Distinct(ds *models.Dataset, column string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, row := range ds.Rows() {
		v, ok := row.Value(column)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	SortKeys(values)
	if values == nil {
		values = []string{}
	}
	return values
}

// SortKeys sorts keys numerically when every key is a number and
// lexicographically otherwise
func SortKeys(values []string) {
	less := keyLess(values)
	sort.SliceStable(values, func(i, j int) bool {
		return less(values[i], values[j])
	})
}

func keyLess(values []string) func(a, b string) bool {
	if !allNumeric(values) {
		return func(a, b string) bool { return a < b }
	}
	return func(a, b string) bool {
		x, _ := decimal.NewFromString(a)
		y, _ := decimal.NewFromString(b)
		if c := x.Cmp(y); c != 0 {
			return c < 0
		}
		return a < b
	}
}

func allNumeric(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if _, err := decimal.NewFromString(v); err != nil {
			return false
		}
	}
	return true
}
