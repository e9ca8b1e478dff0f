package model

import (
	"strconv"
	"time"
)

// Filing is one disclosure letter as listed by the search API
type Filing struct {
	TracingID string `json:"tracing_id"`
	Symbol    string `json:"symbol"`
	Title     string `json:"title"`
	URL       string `json:"url"`
}

// PeriodType classifies the reporting period of a filing
type PeriodType string

const (
	PeriodAnnual  PeriodType = "annual"  // سال مالی
	PeriodInterim PeriodType = "interim" // میاندوره‌ای
)

// Period is the metadata derived from a filing title
type Period struct {
	Audited      bool
	Correction   bool
	Consolidated bool
	Type         PeriodType
	LengthMonths int // 0 when the title carries no "N ماهه" marker
	EndDate      time.Time
}

// LettersHeader is the column layout of the filing listing store
var LettersHeader = []string{"tracing_id", "symbol", "title", "url"}

// Record renders the filing as a listing store row
func (f Filing) Record() []string {
	return []string{f.TracingID, f.Symbol, f.Title, f.URL}
}

// FilingFromRecord parses a listing store row
func FilingFromRecord(rec []string) Filing {
	get := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	return Filing{
		TracingID: get(0),
		Symbol:    get(1),
		Title:     get(2),
		URL:       get(3),
	}
}

// SheetLogHeader is the ledger layout of the sheet stores
var SheetLogHeader = []string{"tracing_id", "logged_at"}

// FilingInfoHeader is appended to every sheet schema
var FilingInfoHeader = []string{
	"tracing_id",
	"symbol",
	"is_audited",
	"is_correction",
	"is_consolidated",
	"period_type",
	"period_length",
	"period_end_date",
}

// InfoRecord renders the filing identity and period as trailing sheet columns
func (f Filing) InfoRecord(p Period) []string {
	length := ""
	if p.LengthMonths > 0 {
		length = strconv.Itoa(p.LengthMonths)
	}
	return []string{
		f.TracingID,
		f.Symbol,
		strconv.FormatBool(p.Audited),
		strconv.FormatBool(p.Correction),
		strconv.FormatBool(p.Consolidated),
		string(p.Type),
		length,
		p.EndDate.Format("2006-01-02"),
	}
}
