package importer

import (
	"math"
	"strconv"
	"strings"

	"github.com/fooddept/fdbms/internal/money"
)

// CellKind is the type of a parsed cell.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
)

// Cell is one value of an imported row: empty, text or a number.
type Cell struct {
	kind CellKind
	text string
	num  float64
}

// Text returns a text cell. Blank text is an empty cell.
func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{kind: KindText, text: s}
}

// Number returns a numeric cell. Non-finite numbers are empty cells.
func Number(f float64) Cell {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Cell{}
	}
	return Cell{kind: KindNumber, num: f}
}

// Infer types a raw spreadsheet value: anything that reads as a finite
// number is a number, blank is empty, everything else is text.
func Infer(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Cell{kind: KindNumber, num: f}
	}
	return Cell{kind: KindText, text: raw}
}

// Kind reports the cell's type.
func (c Cell) Kind() CellKind { return c.kind }

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// String returns the cell as text. Numbers use the shortest form.
func (c Cell) String() string {
	switch c.kind {
	case KindText:
		return c.text
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	}
	return ""
}

// Float returns the cell as a number, 0 when it does not read as one.
func (c Cell) Float() float64 {
	if c.kind == KindNumber {
		return c.num
	}
	return money.ParseFloat(c.text)
}

// Int returns the leading integer of the cell, 0 when there is none.
func (c Cell) Int() int {
	if c.kind == KindNumber {
		return int(math.Trunc(c.num))
	}
	return money.ParseInt(c.text)
}

// Strict returns the cell as a number and whether it is one. Text only
// counts when it is entirely numeric.
func (c Cell) Strict() (float64, bool) {
	switch c.kind {
	case KindNumber:
		return c.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Row is one imported record keyed by normalised header.
type Row map[string]Cell

// NormalizeHeader lower-cases and trims a column name.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// NewRow pairs headers with values. Missing values are empty, and when two
// headers normalise to the same name the first one wins.
func NewRow(headers []string, values []Cell) Row {
	row := make(Row, len(headers))
	for i, h := range headers {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		if _, seen := row[key]; seen {
			continue
		}
		if i < len(values) {
			row[key] = values[i]
		} else {
			row[key] = Cell{}
		}
	}
	return row
}

// Get returns the cell under header, matched case-insensitively.
func (r Row) Get(header string) Cell {
	return r[NormalizeHeader(header)]
}

// Field is a canonical field and the column names it may appear under.
type Field struct {
	Name     string
	Synonyms []string
}

// Schema maps the columns of an import to canonical fields.
type Schema []Field

// Record is a row resolved against a schema. It holds only the fields
// that had a value.
type Record map[string]Cell

// Has reports whether the field had a value.
func (r Record) Has(field string) bool {
	c, ok := r[field]
	return ok && !c.IsEmpty()
}

// Resolve picks, for each field, the first synonym present in the row.
// Empty cells count as absent.
func (s Schema) Resolve(row Row) Record {
	rec := make(Record, len(s))
	for _, f := range s {
		for _, syn := range f.Synonyms {
			c, ok := row[NormalizeHeader(syn)]
			if ok && !c.IsEmpty() {
				rec[f.Name] = c
				break
			}
		}
	}
	return rec
}
