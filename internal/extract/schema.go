// Package extract turns rendered sheet tables into canonical rows.
package extract

import (
	"fmt"

	"github.com/ppiankov/finops/internal/normalize"
)

// SheetKind identifies one financial statement of a filing
type SheetKind string

const (
	BalanceSheet SheetKind = "balance_sheet"
	ProfitLoss   SheetKind = "profit_loss"
	CashFlow     SheetKind = "cash_flow"
)

// Kinds lists every sheet kind in harvest order
var Kinds = []SheetKind{BalanceSheet, ProfitLoss, CashFlow}

// Field is one canonical output column and the source spellings that map
// onto it.
type Field struct {
	Name   string
	Labels []string
}

// Schema is the fixed, ordered output layout of one sheet kind together
// with its label-correction table.
type Schema struct {
	Kind       SheetKind
	fields     []string
	index      map[string]int
	normalizer *normalize.Normalizer
}

// NewSchema builds a schema. Field order is the output column order.
func NewSchema(kind SheetKind, fields ...Field) (*Schema, error) {
	s := &Schema{
		Kind:  kind,
		index: make(map[string]int, len(fields)),
	}
	variants := make(map[string][]string, len(fields))
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate field %q", kind, f.Name)
		}
		s.index[f.Name] = i
		s.fields = append(s.fields, f.Name)
		variants[f.Name] = f.Labels
	}

	n, err := normalize.NewNormalizer(variants)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	s.normalizer = n
	return s, nil
}

// MustSchema is NewSchema for the static tables below
func MustSchema(kind SheetKind, fields ...Field) *Schema {
	s, err := NewSchema(kind, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the canonical column names in order
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Has reports whether name is a canonical field of this schema
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Normalizer returns the schema's label-correction table
func (s *Schema) Normalizer() *normalize.Normalizer {
	return s.normalizer
}

// SchemaFor returns the built-in schema of a sheet kind
func SchemaFor(kind SheetKind) (*Schema, error) {
	switch kind {
	case BalanceSheet:
		return balanceSheetSchema, nil
	case ProfitLoss:
		return profitLossSchema, nil
	case CashFlow:
		return cashFlowSchema, nil
	}
	return nil, fmt.Errorf("unknown sheet kind %q", kind)
}
