package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/ppiankov/finops/internal/model"
	"github.com/ppiankov/finops/internal/store"
	"github.com/ppiankov/finops/internal/worker"
)

// Tickers fetches the instrument list, optionally keeping stocks only
func (h *Harvester) Tickers(ctx context.Context, stockOnly bool) ([]model.Ticker, error) {
	body, err := h.fetchReference(ctx, "tickers", h.cfg.TSETMC.TickersURL)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}
	tickers, err := ParseTickers(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if stockOnly {
		tickers = StockTickers(tickers)
	}
	return tickers, nil
}

// SaveTickers appends the tickers not yet in tickers.csv
func (h *Harvester) SaveTickers(tickers []model.Ticker) (int, error) {
	ds, err := store.Open(store.Spec{
		Name:     "tickers",
		Path:     h.path("tickers.csv"),
		Header:   model.TickersHeader,
		IDColumn: "ticker_index",
	}, h.writer)
	if err != nil {
		return 0, err
	}

	records := make([][]string, 0, len(tickers))
	for _, t := range tickers {
		records = append(records, t.Record())
	}
	n, err := ds.AppendNew(records)
	if err != nil {
		return 0, err
	}
	h.stats.Stored.Add(int64(n))
	return n, nil
}

// PriceHistory fetches the daily prices of one ticker
func (h *Harvester) PriceHistory(ctx context.Context, tickerIndex string) ([]model.PriceRecord, error) {
	url := ExpandURL(h.cfg.TSETMC.PriceHistoryURL, tickerIndex, "")
	body, err := h.fetchReference(ctx, "prices", url)
	if err != nil {
		return nil, err
	}
	return ParsePriceHistory(body, tickerIndex)
}

// resolveTickers defaults an empty selection to every stock ticker
func (h *Harvester) resolveTickers(ctx context.Context, tickers []string) ([]string, error) {
	if len(tickers) > 0 {
		return tickers, nil
	}
	stocks, err := h.Tickers(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(stocks))
	for _, t := range stocks {
		out = append(out, t.Index)
	}
	return out, nil
}

// HarvestPrices appends the trading days of each ticker that prices.csv
// does not hold yet
func (h *Harvester) HarvestPrices(ctx context.Context, tickers []string) (worker.Summary, error) {
	tickers, err := h.resolveTickers(ctx, tickers)
	if err != nil {
		return worker.Summary{}, err
	}
	prices, err := store.Open(store.Spec{
		Name:        "prices",
		Path:        h.path("prices.csv"),
		Header:      model.PriceHeader,
		ScopeColumn: "ticker_index",
		IDColumn:    "date",
	}, h.writer)
	if err != nil {
		return worker.Summary{}, err
	}

	jobs := make([]worker.Job, 0, len(tickers))
	for _, idx := range tickers {
		jobs = append(jobs, &worker.FuncJob{
			Item: "prices " + idx,
			Fn: func(ctx context.Context) *worker.Outcome {
				history, err := h.PriceHistory(ctx, idx)
				if err != nil {
					h.log.Error("price history failed", "ticker_index", idx, "error", err)
					return &worker.Outcome{Err: err}
				}
				records := make([][]string, 0, len(history))
				for _, p := range history {
					records = append(records, p.Record())
				}
				n, err := prices.AppendNew(records)
				if err != nil {
					h.log.Error("store prices failed", "ticker_index", idx, "error", err)
					return &worker.Outcome{Err: err}
				}
				h.stats.Stored.Add(int64(n))
				h.stats.Skipped.Add(int64(len(records) - n))
				return &worker.Outcome{Rows: n}
			},
		})
	}
	return h.run(ctx, "prices", jobs), nil
}

// tickerDate is one shareholder work item
type tickerDate struct {
	index string
	date  string
}

// HarvestShareholders captures the major holders of each ticker on every
// traded day strictly between start and end that the ledger lacks. Days
// with no disclosed holders are logged as done.
func (h *Harvester) HarvestShareholders(ctx context.Context, tickers []string, start, end string) (worker.Summary, error) {
	tickers, err := h.resolveTickers(ctx, tickers)
	if err != nil {
		return worker.Summary{}, err
	}
	holders, err := store.Open(store.Spec{
		Name:        "shareholders",
		Path:        h.path("shareholders.csv"),
		Header:      model.ShareholderHeader,
		ScopeColumn: "ticker_index",
		IDColumn:    "req_date",
		LogPath:     h.path("shareholders_log.csv"),
		LogHeader:   model.DateLogHeader,
	}, h.writer)
	if err != nil {
		return worker.Summary{}, err
	}

	var (
		mu    sync.Mutex
		items []tickerDate
	)
	dateJobs := make([]worker.Job, 0, len(tickers))
	for _, idx := range tickers {
		dateJobs = append(dateJobs, &worker.FuncJob{
			Item: "dates " + idx,
			Fn: func(ctx context.Context) *worker.Outcome {
				history, err := h.PriceHistory(ctx, idx)
				if err != nil {
					h.log.Error("traded dates failed", "ticker_index", idx, "error", err)
					return &worker.Outcome{Err: err}
				}
				pending := FilterDates(holders.Ledger().Pending(idx, TradedDates(history)), start, end)

				mu.Lock()
				for _, d := range pending {
					items = append(items, tickerDate{index: idx, date: d})
				}
				mu.Unlock()
				return &worker.Outcome{Rows: len(pending)}
			},
		})
	}
	summary := h.run(ctx, "traded dates", dateJobs)
	h.log.Info("harvesting shareholders", "tickers", len(tickers), "pending", len(items))

	jobs := make([]worker.Job, 0, len(items))
	for _, it := range items {
		jobs = append(jobs, h.shareholderJob(holders, it))
	}
	return summary.Merge(h.run(ctx, "shareholders", jobs)), nil
}

func (h *Harvester) shareholderJob(holders *store.Dataset, it tickerDate) worker.Job {
	url := ExpandURL(h.cfg.TSETMC.ShareholderURL, it.index, it.date)

	return &worker.FuncJob{
		Item: fmt.Sprintf("shareholders %s %s", it.index, it.date),
		Fn: func(ctx context.Context) *worker.Outcome {
			k := store.Key{Scope: it.index, ID: it.date}
			if !holders.Claim(k) {
				h.stats.Skipped.Add(1)
				return &worker.Outcome{Skipped: true}
			}
			defer holders.Release(k)

			n, err := h.harvestShareholders(ctx, holders, k, url)
			if err != nil {
				h.log.Error("shareholders failed",
					"ticker_index", it.index,
					"date", it.date,
					"url", url,
					"error", err,
				)
				return &worker.Outcome{Err: err}
			}
			return &worker.Outcome{Rows: n}
		},
	}
}

func (h *Harvester) harvestShareholders(ctx context.Context, holders *store.Dataset, k store.Key, url string) (int, error) {
	body, err := h.fetch(ctx, Request{URL: url})
	if err != nil {
		return 0, err
	}
	parsed, err := ParseShareholders(body, k.Scope, k.ID)
	if err != nil {
		h.stats.ExtractErrors.Add(1)
		return 0, err
	}

	records := make([][]string, 0, len(parsed))
	for _, s := range parsed {
		records = append(records, s.Record())
	}
	if err := holders.Commit(k, records); err != nil {
		return 0, err
	}
	h.stats.Stored.Add(int64(len(records)))
	return len(records), nil
}
