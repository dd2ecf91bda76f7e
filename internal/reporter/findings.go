package reporter

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind identifies how an entry is rendered
type EntryKind string

const (
	KindText  EntryKind = "text"
	KindCount EntryKind = "count"
	KindMoney EntryKind = "money"
	KindIDs   EntryKind = "ids"
	KindTable EntryKind = "table"
	KindCheck EntryKind = "check"
)

// Table is a small tabular finding
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// Entry is one labeled finding. Only the field matching Kind is set.
type Entry struct {
	Section string
	Label   string
	Kind    EntryKind

	Text   string
	Number int
	Amount decimal.Decimal
	IDs    []string
	Table  *Table
	Passed bool
}

// Findings is the ordered result of an investigation. Entries keep the order
// in which they were computed.
type Findings struct {
	Title       string
	ID          uuid.UUID
	GeneratedAt time.Time
	Entries     []Entry

	// Aborted holds the error that stopped the investigation, if any. The
	// entries gathered before the error are kept.
	Aborted string

	section string
}

// NewFindings creates an empty findings object with a fresh run id
func NewFindings(title string) *Findings {
	return &Findings{
		Title:       title,
		ID:          uuid.New(),
		GeneratedAt: time.Now(),
	}
}

// Section starts a new section; later entries belong to it
func (f *Findings) Section(name string) *Findings {
	f.section = name
	return f
}

func (f *Findings) add(e Entry) *Findings {
	e.Section = f.section
	f.Entries = append(f.Entries, e)
	return f
}

// Text adds a free-form text finding
func (f *Findings) Text(label, text string) *Findings {
	return f.add(Entry{Label: label, Kind: KindText, Text: text})
}

// Count adds a counted finding
func (f *Findings) Count(label string, n int) *Findings {
	return f.add(Entry{Label: label, Kind: KindCount, Number: n})
}

// Money adds a currency amount
func (f *Findings) Money(label string, amount decimal.Decimal) *Findings {
	return f.add(Entry{Label: label, Kind: KindMoney, Amount: amount})
}

// IDs adds a list of identifiers. A nil list is stored as empty.
func (f *Findings) IDs(label string, ids []string) *Findings {
	if ids == nil {
		ids = []string{}
	}
	return f.add(Entry{Label: label, Kind: KindIDs, IDs: ids})
}

// Table adds a table
func (f *Findings) Table(label string, columns []string, rows [][]string) *Findings {
	if rows == nil {
		rows = [][]string{}
	}
	return f.add(Entry{Label: label, Kind: KindTable, Table: &Table{Columns: columns, Rows: rows}})
}

// Check adds a pass/fail finding with an optional detail text
func (f *Findings) Check(label string, passed bool, detail string) *Findings {
	return f.add(Entry{Label: label, Kind: KindCheck, Passed: passed, Text: detail})
}

// Abort records the error that stopped the investigation
func (f *Findings) Abort(err error) *Findings {
	if err != nil {
		f.Aborted = err.Error()
	}
	return f
}

// Find returns the first entry with the label
func (f *Findings) Find(label string) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Label == label {
			return e, true
		}
	}
	return Entry{}, false
}

// FindIn returns the first entry with the label within a section
func (f *Findings) FindIn(section, label string) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Section == section && e.Label == label {
			return e, true
		}
	}
	return Entry{}, false
}

// Sections returns the section names in order of first use
func (f *Findings) Sections() []string {
	var sections []string
	seen := make(map[string]bool)
	for _, e := range f.Entries {
		if !seen[e.Section] {
			seen[e.Section] = true
			sections = append(sections, e.Section)
		}
	}
	return sections
}

// Value returns the entry value as a plain value for structured output:
// text, int, fixed-point money string, id list, table or bool
func (e Entry) Value() interface{} {
	switch e.Kind {
	case KindCount:
		return e.Number
	case KindMoney:
		return e.Amount.StringFixed(2)
	case KindIDs:
		return e.IDs
	case KindTable:
		return e.Table
	case KindCheck:
		return e.Passed
	default:
		return e.Text
	}
}
