package reconciler

import (
	"strconv"

	"sales-reconciliation-tool/internal/aggregate"
	"sales-reconciliation-tool/internal/models"
)

// Index maps identifier values to the rows that carry them
type Index struct {
	column  string
	ids     []string
	rows    map[string][]*models.Row
	missing int
}

// NewIndex indexes the rows of ds by column. Integer identifiers are
// canonicalized so that "9715" and "9715.0" are the same identifier. Rows
// without an identifier are counted but not indexed.
func NewIndex(ds *models.Dataset, column string) *Index {
	index := &Index{
		column: column,
		rows:   make(map[string][]*models.Row),
	}

	for _, row := range ds.Rows() {
		id, ok := Identifier(row, column)
		if !ok {
			index.missing++
			continue
		}
		if _, seen := index.rows[id]; !seen {
			index.ids = append(index.ids, id)
		}
		index.rows[id] = append(index.rows[id], row)
	}

	aggregate.SortKeys(index.ids)
	return index
}

// Identifier returns the canonical identifier of a row
func Identifier(row *models.Row, column string) (string, bool) {
	if n, ok := row.Int(column); ok {
		return strconv.FormatInt(n, 10), true
	}
	return row.Value(column)
}

// Column returns the indexed column
func (i *Index) Column() string {
	return i.column
}

// IDs returns the distinct identifiers in ascending order
func (i *Index) IDs() []string {
	out := make([]string, len(i.ids))
	copy(out, i.ids)
	return out
}

// Len returns the number of distinct identifiers
func (i *Index) Len() int {
	return len(i.ids)
}

// Has reports whether the identifier is present
func (i *Index) Has(id string) bool {
	_, ok := i.rows[id]
	return ok
}

// Rows returns the rows carrying the identifier, in source order
func (i *Index) Rows(id string) []*models.Row {
	return i.rows[id]
}

// Missing returns the number of rows without an identifier
func (i *Index) Missing() int {
	return i.missing
}

// Duplicates returns the identifiers carried by more than one row, ascending
func (i *Index) Duplicates() []string {
	var dups []string
	for _, id := range i.ids {
		if len(i.rows[id]) > 1 {
			dups = append(dups, id)
		}
	}
	return dups
}
