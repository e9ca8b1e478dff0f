package model

import "regexp"

// InstrumentType classifies a ticker by its instrument ISIN
type InstrumentType string

const (
	InstrumentStock     InstrumentType = "stock"
	InstrumentUndefined InstrumentType = "undefined"
)

var stockISIN = regexp.MustCompile(`^IRO[1357].*0001$`)

// InstrumentTypeFromISIN maps an instrument ISIN to its type
func InstrumentTypeFromISIN(isin string) InstrumentType {
	if stockISIN.MatchString(isin) {
		return InstrumentStock
	}
	return InstrumentUndefined
}

// Ticker is one row of the exchange's instrument list
type Ticker struct {
	Name           string         `json:"name"`
	FullName       string         `json:"full_name"`
	Index          string         `json:"ticker_index"`
	InstrumentISIN string         `json:"instrument_isin"`
	EnName         string         `json:"en_name"`
	Code           string         `json:"code"`
	CompanyISIN    string         `json:"company_isin"`
	Market         string         `json:"market"`
	Section        string         `json:"section"`
	Type           InstrumentType `json:"type"`
}

// TickersHeader is the column layout of the ticker list store
var TickersHeader = []string{
	"name",
	"full_name",
	"ticker_index",
	"instrument_isin",
	"en_name",
	"code",
	"company_isin",
	"market",
	"section",
	"type",
}

// Record renders the ticker as a store row
func (t Ticker) Record() []string {
	return []string{
		t.Name,
		t.FullName,
		t.Index,
		t.InstrumentISIN,
		t.EnName,
		t.Code,
		t.CompanyISIN,
		t.Market,
		t.Section,
		string(t.Type),
	}
}

// PriceHeader is the column layout of the price history store
var PriceHeader = []string{
	"en_ticker",
	"date",
	"first",
	"high",
	"low",
	"close",
	"value",
	"volume",
	"open_int",
	"open",
	"last",
	"ticker_index",
}

// PriceRecord is one trading day of a ticker
type PriceRecord struct {
	EnTicker    string
	Date        string // ISO 2006-01-02
	First       string
	High        string
	Low         string
	Close       string
	Value       string
	Volume      string
	OpenInt     string
	Open        string
	Last        string
	TickerIndex string
}

// Record renders the price record as a store row
func (p PriceRecord) Record() []string {
	return []string{
		p.EnTicker,
		p.Date,
		p.First,
		p.High,
		p.Low,
		p.Close,
		p.Value,
		p.Volume,
		p.OpenInt,
		p.Open,
		p.Last,
		p.TickerIndex,
	}
}

// ShareholderHeader is the column layout of the shareholder store
var ShareholderHeader = []string{
	"shareholder_id",
	"shareholder_name",
	"isin",
	"date",
	"n_shares",
	"per_shares",
	"ticker_index",
	"req_date",
}

// ShareholderRecord is one major holder of a ticker on one day
type ShareholderRecord struct {
	ShareholderID   string
	ShareholderName string
	ISIN            string
	Date            string // ISO date reported by the source
	Shares          string
	Percent         string
	TickerIndex     string
	RequestDate     string // ISO date the record was requested for
}

// Record renders the shareholder record as a store row
func (s ShareholderRecord) Record() []string {
	return []string{
		s.ShareholderID,
		s.ShareholderName,
		s.ISIN,
		s.Date,
		s.Shares,
		s.Percent,
		s.TickerIndex,
		s.RequestDate,
	}
}

// DateLogHeader is the ledger layout for (ticker_index, date) keyed stores
var DateLogHeader = []string{"ticker_index", "date"}

