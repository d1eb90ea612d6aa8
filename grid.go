package cbcr

import "time"

// CellKind discriminates raw cell values supplied by the spreadsheet reader
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is one raw spreadsheet cell. The core never reads the file
// container itself; cells arrive pre-extracted from the workbook.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// StringCell wraps a raw string value
func StringCell(s string) Cell {
	return Cell{Kind: CellString, Text: s}
}

// NumberCell wraps a raw numeric value
func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n}
}

// EmptyCell is a blank cell
func EmptyCell() Cell {
	return Cell{Kind: CellEmpty}
}

// IsBlank reports whether the cell carries no usable content
func (c Cell) IsBlank() bool {
	if c.Kind == CellEmpty {
		return true
	}
	if c.Kind == CellString {
		return NormalizeCellText(c.Text) == ""
	}
	return false
}

// CellGrid is one sheet's worth of raw rows, in sheet order
type CellGrid [][]Cell

// Value is one typed field value. Text always holds the canonical
// lexical form used for fact emission (dates as YYYY-MM-DD, booleans
// as true/false, numbers without separators).
type Value struct {
	Type   DataType
	Text   string
	Number float64
	Bool   bool
	Date   time.Time
}

// Record is one typed row of one sheet. Fields that were blank, or
// that failed type coercion, are absent.
type Record struct {
	Sheet string
	Row   int // 1-based row index in the source sheet

	values  map[string]Value
	invalid map[string]bool
}

// NewRecord creates an empty record for a sheet row
func NewRecord(sheet string, row int) *Record {
	return &Record{
		Sheet:   sheet,
		Row:     row,
		values:  make(map[string]Value),
		invalid: make(map[string]bool),
	}
}

func (r *Record) set(field string, v Value) {
	r.values[field] = v
}

// markInvalid records that a field was present but failed coercion,
// so the required-field rule does not double-report it.
func (r *Record) markInvalid(field string) {
	r.invalid[field] = true
}

// Has reports whether the field has a typed value
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Invalid reports whether the field was dropped due to a type mismatch
func (r *Record) Invalid(field string) bool {
	return r.invalid[field]
}

// Value returns the typed value for a field
func (r *Record) Value(field string) (Value, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Text returns the canonical lexical value, or empty string if absent
func (r *Record) Text(field string) string {
	return r.values[field].Text
}

// Number returns the numeric value, or 0 if absent
func (r *Record) Number(field string) float64 {
	return r.values[field].Number
}

// Empty reports whether the record carries no values at all
func (r *Record) Empty() bool {
	return len(r.values) == 0 && len(r.invalid) == 0
}
