package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/finops/internal/extract"
	"github.com/ppiankov/finops/internal/model"
)

func TestSearchURL(t *testing.T) {
	params := []string{"Audited=true", "LetterType=6"}

	assert.Equal(t, "https://search.codal.ir/api/search/v2/q?Audited=true&LetterType=6",
		SearchURL("https://search.codal.ir/api/search/v2/q?", params, 0))
	assert.Equal(t, "https://search.codal.ir/api/search/v2/q?Audited=true&LetterType=6&PageNumber=3",
		SearchURL("https://search.codal.ir/api/search/v2/q?", params, 3))

	params = append(params, "PageNumber=9")
	assert.Equal(t, "q?Audited=true&LetterType=6&PageNumber=9", SearchURL("q?", params, 0))
	assert.Equal(t, "q?Audited=true&LetterType=6&PageNumber=2", SearchURL("q?", params, 2))
	assert.Equal(t, "PageNumber=9", params[2], "params must not be mutated")
}

const searchBody = `{
  "Total": 2,
  "Page": 7,
  "Letters": [
    {"TracingNo": 1012345, "Symbol": "فولاد", "Title": " صورت‌های مالی سال مالی منتهی به ۱۴۰۲/۱۲/۲۹ (حسابرسی شده) ", "Url": "/Reports/Decision.aspx?LetterSerial=abc"},
    {"TracingNo": 1012346, "Symbol": "كگل", "Title": "اطلاعات و صورت‌های مالی میاندوره‌ای", "Url": "/Reports/Decision.aspx?LetterSerial=def"}
  ]
}`

func TestParseSearchPage(t *testing.T) {
	filings, pages, err := ParseSearchPage([]byte(searchBody), "https://www.codal.ir")
	require.NoError(t, err)
	assert.Equal(t, 7, pages)
	require.Len(t, filings, 2)

	assert.Equal(t, "1012345", filings[0].TracingID)
	assert.Equal(t, "فولاد", filings[0].Symbol)
	assert.Equal(t, "https://www.codal.ir/Reports/Decision.aspx?LetterSerial=abc", filings[0].URL)
	assert.False(t, strings.HasPrefix(filings[0].Title, " "))

	// Arabic kaf is unified
	assert.Equal(t, "کگل", filings[1].Symbol)

	_, _, err = ParseSearchPage([]byte("<html>"), "")
	assert.Error(t, err)
}

func TestFilterSymbols(t *testing.T) {
	filings := []model.Filing{{TracingID: "1", Symbol: "فولاد"}, {TracingID: "2", Symbol: "کگل"}}

	assert.Len(t, FilterSymbols(filings, nil), 2)

	kept := FilterSymbols(filings, []string{"كگل"})
	require.Len(t, kept, 1)
	assert.Equal(t, "2", kept[0].TracingID)
}

func TestSheetURLAndID(t *testing.T) {
	assert.Equal(t, "https://www.codal.ir/Reports/Decision.aspx?LetterSerial=abc&sheetId=1",
		SheetURL("https://www.codal.ir/Reports/Decision.aspx?LetterSerial=abc", 1))

	cfg := model.DefaultConfig().Codal
	id, enabled := SheetID(cfg, extract.CashFlow)
	assert.Equal(t, 9, id)
	assert.False(t, enabled)

	id, enabled = SheetID(cfg, extract.ProfitLoss)
	assert.Equal(t, 1, id)
	assert.True(t, enabled)

	_, enabled = SheetID(cfg, extract.SheetKind("equity"))
	assert.False(t, enabled)
}

const tickersPage = `<html><body>
<table class="table1">
<tr><th>نماد</th></tr>
<tr>
  <td><a href="/Loader.aspx?ParTree=111C1412&inscode=46348559193224090">فولاد مبارکه اصفهان (فولاد)</a></td>
  <td>IRO1FOLD0001</td><td>Foolad</td><td>FOLD1</td><td>IRO1FOLD0008</td><td>بورس</td><td>فلزات اساسی</td>
</tr>
<tr>
  <td><a href="/Loader.aspx?ParTree=111C1412&inscode=65883838195688438">ح . فولاد (فولادح)</a></td>
  <td>IRR1FOLD0101</td><td>Foolad-R</td><td>FOLDR</td><td>IRO1FOLD0008</td><td>بورس</td><td>فلزات اساسی</td>
</tr>
<tr><td>short row</td></tr>
</table>
</body></html>`

func TestParseTickers(t *testing.T) {
	tickers, err := ParseTickers(strings.NewReader(tickersPage))
	require.NoError(t, err)
	require.Len(t, tickers, 2)

	f := tickers[0]
	assert.Equal(t, "فولاد", f.Name)
	assert.Equal(t, "فولاد مبارکه اصفهان", f.FullName)
	assert.Equal(t, "46348559193224090", f.Index)
	assert.Equal(t, "IRO1FOLD0001", f.InstrumentISIN)
	assert.Equal(t, "Foolad", f.EnName)
	assert.Equal(t, "بورس", f.Market)
	assert.Equal(t, model.InstrumentStock, f.Type)
	assert.Equal(t, model.InstrumentUndefined, tickers[1].Type)

	stocks := StockTickers(tickers)
	require.Len(t, stocks, 1)
	assert.Equal(t, "46348559193224090", stocks[0].Index)

	_, err = ParseTickers(strings.NewReader("<html><table></table></html>"))
	assert.ErrorIs(t, err, ErrMarkerNotFound)
}

const priceExport = `<TICKER>,<DTYYYYMMDD>,<FIRST>,<HIGH>,<LOW>,<CLOSE>,<VALUE>,<VOL>,<OPENINT>,<PER>,<OPEN>,<LAST>
Foolad,20230102,5000.00,5100.00,4950.00,5050.00,1000000,200,10,D,5000.00,5060.00
Foolad,20230101,4900.00,5000.00,4880.00,4990.00,900000,180,9,D,4900.00,4995.00
`

func TestParsePriceHistory(t *testing.T) {
	prices, err := ParsePriceHistory([]byte(priceExport), "46348559193224090")
	require.NoError(t, err)
	require.Len(t, prices, 2)

	p := prices[0]
	assert.Equal(t, "Foolad", p.EnTicker)
	assert.Equal(t, "2023-01-02", p.Date)
	assert.Equal(t, "5050.00", p.Close)
	assert.Equal(t, "200", p.Volume)
	assert.Equal(t, "5000.00", p.Open)
	assert.Equal(t, "5060.00", p.Last)
	assert.Equal(t, "46348559193224090", p.TickerIndex)
	assert.Len(t, p.Record(), len(model.PriceHeader))

	assert.Equal(t, []string{"2023-01-02", "2023-01-01"}, TradedDates(prices))

	empty, err := ParsePriceHistory(nil, "1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParsePriceHistory([]byte("<TICKER>,<CLOSE>\nx,1\n"), "1")
	assert.Error(t, err)

	_, err = ParsePriceHistory([]byte("<DTYYYYMMDD>\n2023-13-45\n"), "1")
	assert.Error(t, err)
}

func TestFilterDates(t *testing.T) {
	dates := []string{"2023-01-01", "2023-01-02", "2023-01-03", "2023-01-04"}

	assert.Equal(t, []string{"2023-01-02", "2023-01-03"}, FilterDates(dates, "2023-01-01", "2023-01-04"))
	assert.Equal(t, dates, FilterDates(dates, "", ""))
	assert.Equal(t, []string{"2023-01-04"}, FilterDates(dates, "2023-01-03", ""))
	assert.Empty(t, FilterDates(dates, "2023-01-04", ""))
}

func TestExpandURL(t *testing.T) {
	cfg := model.DefaultConfig().TSETMC
	assert.Equal(t, "http://cdn.tsetmc.com/api/Shareholder/123/20230102",
		ExpandURL(cfg.ShareholderURL, "123", "2023-01-02"))
	assert.Equal(t, "http://old.tsetmc.com/tsev2/data/Export-txt.aspx?t=i&a=1&b=0&i=123",
		ExpandURL(cfg.PriceHistoryURL, "123", ""))
}

const shareholderBody = `{"shareShareholder":[
  {"shareHolderID": 8764, "shareHolderName": "شركت سرمايه گذاري", "cIsin": "IRO1FOLD0008", "dEven": 20230102,
   "numberOfShares": 1.2E+7, "perOfShares": 3.50, "change": 1, "changeAmount": 0}
]}`

func TestParseShareholders(t *testing.T) {
	holders, err := ParseShareholders([]byte(shareholderBody), "123", "2023-01-02")
	require.NoError(t, err)
	require.Len(t, holders, 1)

	h := holders[0]
	assert.Equal(t, "8764", h.ShareholderID)
	assert.Equal(t, "شرکت سرمایه گذاری", h.ShareholderName)
	assert.Equal(t, "2023-01-02", h.Date)
	assert.Equal(t, "12000000", h.Shares)
	assert.Equal(t, "3.5", h.Percent)
	assert.Equal(t, "123", h.TickerIndex)
	assert.Equal(t, "2023-01-02", h.RequestDate)

	empty, err := ParseShareholders([]byte(`{"shareShareholder":[]}`), "123", "2023-01-03")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseShareholders([]byte("not json"), "123", "2023-01-03")
	assert.Error(t, err)
}
