package extract

import (
	"errors"

	"github.com/ppiankov/finops/internal/normalize"
)

var (
	// ErrEmptyTable is returned for a table without any cells
	ErrEmptyTable = errors.New("empty table")
	// ErrNoFields is returned when no schema field could be recognised
	ErrNoFields = errors.New("no schema fields recognised")
)

// Row is one canonical sheet row keyed by schema field name. Fields the
// sheet did not report are missing from the map.
type Row map[string]string

// Extractor turns a rendered table into one canonical row of a schema
type Extractor interface {
	Extract(rows [][]string) (Row, error)
}

// SheetExtractor applies the layout policy and label corrections of one
// sheet kind. It holds no mutable state and is safe for concurrent use.
type SheetExtractor struct {
	schema *Schema
	layout layout
}

// NewExtractor creates an extractor for schema
func NewExtractor(schema *Schema) *SheetExtractor {
	return &SheetExtractor{
		schema: schema,
		layout: layoutFor(schema.Kind),
	}
}

// Schema returns the schema the extractor produces rows for
func (e *SheetExtractor) Schema() *Schema {
	return e.schema
}

// Extract selects the label and value columns, normalizes both, and pivots
// the recognised labels into a single row.
func (e *SheetExtractor) Extract(rows [][]string) (Row, error) {
	g := newGrid(rows)
	if g.width() == 0 {
		return nil, ErrEmptyTable
	}

	norm := e.schema.Normalizer()
	row := make(Row)

	for _, p := range e.layout(g) {
		label, ok := norm.Normalize(p.label)
		if !ok {
			continue
		}
		value, ok := normalize.Value(p.value)
		if !ok {
			continue
		}
		if !e.schema.Has(label) {
			continue
		}
		// First occurrence wins
		if _, seen := row[label]; seen {
			continue
		}
		row[label] = value
	}

	if len(row) == 0 {
		return nil, ErrNoFields
	}
	return row, nil
}

// Record renders the row in schema order, with empty strings for fields the
// sheet did not report.
func (r Row) Record(schema *Schema) []string {
	fields := schema.Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = r[f]
	}
	return out
}
