package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/ppiankov/finops/internal/model"
	"github.com/ppiankov/finops/internal/normalize"
)

const isoDate = "2006-01-02"

// ExpandURL fills the {ticker_index} and {date} placeholders of a template.
// date is an ISO date and is sent in the portal's YYYYMMDD form.
func ExpandURL(template, tickerIndex, date string) string {
	return strings.NewReplacer(
		"{ticker_index}", tickerIndex,
		"{date}", strings.ReplaceAll(date, "-", ""),
	).Replace(template)
}

var (
	parenthesized = regexp.MustCompile(`\(([^()]+)\)`)
	digitRun      = regexp.MustCompile(`\d+`)
)

// ParseTickers reads the instrument list page
func ParseTickers(r io.Reader) ([]model.Ticker, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table.table1").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: table.table1", ErrMarkerNotFound)
	}

	var tickers []model.Ticker
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 7 {
			return
		}
		text := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		first := text(0)
		href, _ := cells.Eq(0).Find("a").Attr("href")
		name := parenthesized.FindStringSubmatch(first)
		indexes := digitRun.FindAllString(href, -1)
		if name == nil || len(indexes) == 0 {
			return
		}

		isin := text(1)
		tickers = append(tickers, model.Ticker{
			Name:           normalize.TickerName(name[1]),
			FullName:       strings.TrimSpace(strings.Split(first, "(")[0]),
			Index:          indexes[len(indexes)-1],
			InstrumentISIN: isin,
			EnName:         text(2),
			Code:           text(3),
			CompanyISIN:    text(4),
			Market:         text(5),
			Section:        text(6),
			Type:           model.InstrumentTypeFromISIN(isin),
		})
	})
	return tickers, nil
}

// StockTickers keeps the tickers whose instrument is a stock
func StockTickers(tickers []model.Ticker) []model.Ticker {
	var out []model.Ticker
	for _, t := range tickers {
		if t.Type == model.InstrumentStock {
			out = append(out, t)
		}
	}
	return out
}

// priceFields maps the export's column names onto record fields; <PER> is
// not kept
var priceFields = map[string]func(*model.PriceRecord, string){
	"<TICKER>":     func(p *model.PriceRecord, v string) { p.EnTicker = v },
	"<DTYYYYMMDD>": func(p *model.PriceRecord, v string) { p.Date = v },
	"<FIRST>":      func(p *model.PriceRecord, v string) { p.First = v },
	"<HIGH>":       func(p *model.PriceRecord, v string) { p.High = v },
	"<LOW>":        func(p *model.PriceRecord, v string) { p.Low = v },
	"<CLOSE>":      func(p *model.PriceRecord, v string) { p.Close = v },
	"<VALUE>":      func(p *model.PriceRecord, v string) { p.Value = v },
	"<VOL>":        func(p *model.PriceRecord, v string) { p.Volume = v },
	"<OPENINT>":    func(p *model.PriceRecord, v string) { p.OpenInt = v },
	"<OPEN>":       func(p *model.PriceRecord, v string) { p.Open = v },
	"<LAST>":       func(p *model.PriceRecord, v string) { p.Last = v },
}

// ParsePriceHistory reads the CSV export of a ticker's daily prices
func ParsePriceHistory(body []byte, tickerIndex string) ([]model.PriceRecord, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read price header: %w", err)
	}

	setters := make([]func(*model.PriceRecord, string), len(header))
	hasDate := false
	for i, col := range header {
		col = strings.TrimSpace(col)
		setters[i] = priceFields[col]
		if col == "<DTYYYYMMDD>" {
			hasDate = true
		}
	}
	if !hasDate {
		return nil, fmt.Errorf("price export has no date column: %v", header)
	}

	var out []model.PriceRecord
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read price row: %w", err)
		}

		p := model.PriceRecord{TickerIndex: tickerIndex}
		for i, v := range rec {
			if i < len(setters) && setters[i] != nil {
				setters[i](&p, strings.TrimSpace(v))
			}
		}
		if p.Date, err = compactToISO(p.Date); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// TradedDates returns the ISO dates of a price history
func TradedDates(prices []model.PriceRecord) []string {
	dates := make([]string, 0, len(prices))
	for _, p := range prices {
		dates = append(dates, p.Date)
	}
	return dates
}

// FilterDates keeps the dates strictly between start and end. Empty bounds
// are open.
func FilterDates(dates []string, start, end string) []string {
	var out []string
	for _, d := range dates {
		if start != "" && d <= start {
			continue
		}
		if end != "" && d >= end {
			continue
		}
		out = append(out, d)
	}
	return out
}

type shareholderPayload struct {
	ShareShareholder []struct {
		ShareHolderID   json.Number `json:"shareHolderID"`
		ShareHolderName string      `json:"shareHolderName"`
		CIsin           string      `json:"cIsin"`
		DEven           json.Number `json:"dEven"`
		NumberOfShares  json.Number `json:"numberOfShares"`
		PerOfShares     json.Number `json:"perOfShares"`
	} `json:"shareShareholder"`
}

// ParseShareholders decodes the major holders of a ticker on reqDate. An
// empty list is a valid answer for a day without disclosed holders.
func ParseShareholders(body []byte, tickerIndex, reqDate string) ([]model.ShareholderRecord, error) {
	var payload shareholderPayload
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode shareholders: %w", err)
	}

	out := make([]model.ShareholderRecord, 0, len(payload.ShareShareholder))
	for _, s := range payload.ShareShareholder {
		date, err := compactToISO(s.DEven.String())
		if err != nil {
			return nil, err
		}
		out = append(out, model.ShareholderRecord{
			ShareholderID:   canonicalNumber(s.ShareHolderID),
			ShareholderName: normalize.Persian(strings.TrimSpace(s.ShareHolderName)),
			ISIN:            s.CIsin,
			Date:            date,
			Shares:          canonicalNumber(s.NumberOfShares),
			Percent:         canonicalNumber(s.PerOfShares),
			TickerIndex:     tickerIndex,
			RequestDate:     reqDate,
		})
	}
	return out, nil
}

// canonicalNumber renders 1.2E+7 and 12000000.0 alike
func canonicalNumber(n json.Number) string {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return n.String()
	}
	return d.String()
}

func compactToISO(v string) (string, error) {
	t, err := time.Parse("20060102", v)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", v, err)
	}
	return t.Format(isoDate), nil
}
