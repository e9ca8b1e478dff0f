package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/finops/internal/model"
	"github.com/ppiankov/finops/internal/store"
	"github.com/ppiankov/finops/internal/worker"
)

const lettersFile = "letters.csv"

func (h *Harvester) openLetters() (*store.Dataset, error) {
	return store.Open(store.Spec{
		Name:     "letters",
		Path:     h.path(lettersFile),
		Header:   model.LettersHeader,
		IDColumn: "tracing_id",
	}, h.writer)
}

// ListLetters pages through the filing search and appends the filings not
// yet in the listing store. The page count comes from an unpaged probe.
func (h *Harvester) ListLetters(ctx context.Context) (worker.Summary, error) {
	letters, err := h.openLetters()
	if err != nil {
		return worker.Summary{}, err
	}

	codal := h.cfg.Codal
	probe := SearchURL(codal.SearchURL, codal.SearchParams, 0)
	if err := h.limiter.Throttle(ctx, probe); err != nil {
		return worker.Summary{}, err
	}
	body, err := h.fetch(ctx, Request{URL: probe})
	if err != nil {
		return worker.Summary{}, fmt.Errorf("probe page count: %w", err)
	}
	_, pages, err := ParseSearchPage(body, codal.BaseURL)
	if err != nil {
		return worker.Summary{}, fmt.Errorf("probe page count: %w", err)
	}
	h.log.Info("listing letters", "pages", pages, "known", letters.Ledger().Len())

	jobs := make([]worker.Job, 0, pages)
	for page := 1; page <= pages; page++ {
		jobs = append(jobs, h.pageJob(letters, page))
	}
	return h.run(ctx, "letters", jobs), nil
}

func (h *Harvester) pageJob(letters *store.Dataset, page int) worker.Job {
	codal := h.cfg.Codal
	url := SearchURL(codal.SearchURL, codal.SearchParams, page)

	return &worker.FuncJob{
		Item: fmt.Sprintf("page %d", page),
		Fn: func(ctx context.Context) *worker.Outcome {
			n, err := h.listPage(ctx, letters, url)
			if err != nil {
				h.log.Error("listing page failed", "page", page, "url", url, "error", err)
				return &worker.Outcome{Err: err}
			}
			h.log.Debug("listed page", "page", page, "new", n)
			return &worker.Outcome{Rows: n}
		},
	}
}

func (h *Harvester) listPage(ctx context.Context, letters *store.Dataset, url string) (int, error) {
	if err := h.limiter.Throttle(ctx, url); err != nil {
		return 0, err
	}
	body, err := h.fetch(ctx, Request{URL: url})
	if err != nil {
		return 0, err
	}
	filings, _, err := ParseSearchPage(body, h.cfg.Codal.BaseURL)
	if err != nil {
		return 0, err
	}
	filings = FilterSymbols(filings, h.cfg.Codal.Symbols)
	h.stats.Listed.Add(int64(len(filings)))

	records := make([][]string, 0, len(filings))
	for _, f := range filings {
		records = append(records, f.Record())
	}
	n, err := letters.AppendNew(records)
	if err != nil {
		return 0, err
	}
	h.stats.Stored.Add(int64(n))
	h.stats.Skipped.Add(int64(len(records) - n))
	return n, nil
}

// LoadFilings reads a listing store. An empty path reads the harvester's
// own letters.csv.
func (h *Harvester) LoadFilings(path string) ([]model.Filing, error) {
	if path == "" {
		path = h.path(lettersFile)
	}
	records, err := store.ReadRecords(path)
	if err != nil {
		return nil, fmt.Errorf("load filings: %w", err)
	}
	filings := make([]model.Filing, 0, len(records))
	for _, rec := range records {
		f := model.FilingFromRecord(rec)
		if f.TracingID == "" || f.URL == "" {
			continue
		}
		filings = append(filings, f)
	}
	return filings, nil
}
