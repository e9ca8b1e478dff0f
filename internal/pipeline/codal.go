package pipeline

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ppiankov/finops/internal/extract"
	"github.com/ppiankov/finops/internal/model"
	"github.com/ppiankov/finops/internal/normalize"
)

// SearchURL builds a listing query from base and Key=Value params. A
// positive page sets PageNumber, replacing any configured value.
func SearchURL(base string, params []string, page int) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		if page > 0 && strings.HasPrefix(p, "PageNumber=") {
			continue
		}
		parts = append(parts, p)
	}
	if page > 0 {
		parts = append(parts, "PageNumber="+strconv.Itoa(page))
	}
	return base + strings.Join(parts, "&")
}

// searchPage is the listing API payload
type searchPage struct {
	Total   int `json:"Total"`
	Page    int `json:"Page"`
	Letters []struct {
		TracingNo json.Number `json:"TracingNo"`
		Symbol    string      `json:"Symbol"`
		Title     string      `json:"Title"`
		URL       string      `json:"Url"`
	} `json:"Letters"`
}

// ParseSearchPage decodes one listing page. It returns the filings and the
// total number of pages the query has.
func ParseSearchPage(body []byte, baseURL string) ([]model.Filing, int, error) {
	var page searchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, 0, fmt.Errorf("decode search page: %w", err)
	}

	filings := make([]model.Filing, 0, len(page.Letters))
	for _, l := range page.Letters {
		if l.TracingNo == "" {
			continue
		}
		filings = append(filings, model.Filing{
			TracingID: l.TracingNo.String(),
			Symbol:    normalize.TickerName(l.Symbol),
			Title:     strings.TrimSpace(l.Title),
			URL:       baseURL + l.URL,
		})
	}
	return filings, page.Page, nil
}

// FilterSymbols keeps the filings whose symbol is listed. An empty list
// keeps everything.
func FilterSymbols(filings []model.Filing, symbols []string) []model.Filing {
	if len(symbols) == 0 {
		return filings
	}
	want := make([]string, 0, len(symbols))
	for _, s := range symbols {
		want = append(want, normalize.TickerName(s))
	}

	var out []model.Filing
	for _, f := range filings {
		if slices.Contains(want, f.Symbol) {
			out = append(out, f)
		}
	}
	return out
}

// SheetURL is the page of one sheet of a filing
func SheetURL(letterURL string, sheetID int) string {
	return fmt.Sprintf("%s&sheetId=%d", letterURL, sheetID)
}

// SheetID returns the configured sheetId of a kind and whether the kind is
// enabled
func SheetID(cfg model.CodalConfig, kind extract.SheetKind) (int, bool) {
	switch kind {
	case extract.BalanceSheet:
		return cfg.SheetIDs.BalanceSheet, cfg.Sheets.BalanceSheet
	case extract.ProfitLoss:
		return cfg.SheetIDs.ProfitLoss, cfg.Sheets.ProfitLoss
	case extract.CashFlow:
		return cfg.SheetIDs.CashFlow, cfg.Sheets.CashFlow
	}
	return 0, false
}
