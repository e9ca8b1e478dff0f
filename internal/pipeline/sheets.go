package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/finops/internal/extract"
	"github.com/ppiankov/finops/internal/model"
	"github.com/ppiankov/finops/internal/store"
	"github.com/ppiankov/finops/internal/worker"
)

// sheetStore is the dataset and extractor of one enabled sheet kind
type sheetStore struct {
	kind      extract.SheetKind
	sheetID   int
	extractor *extract.SheetExtractor
	data      *store.Dataset
}

// openSheetStores opens the store of every enabled sheet kind. Stores are
// opened concurrently; any header mismatch fails the whole harvest before
// a single fetch.
func (h *Harvester) openSheetStores(ctx context.Context) ([]*sheetStore, error) {
	var stores []*sheetStore
	for _, kind := range extract.Kinds {
		id, enabled := SheetID(h.cfg.Codal, kind)
		if !enabled {
			continue
		}
		schema, err := extract.SchemaFor(kind)
		if err != nil {
			return nil, err
		}
		stores = append(stores, &sheetStore{
			kind:      kind,
			sheetID:   id,
			extractor: extract.NewExtractor(schema),
		})
	}

	g, _ := errgroup.WithContext(ctx)
	for _, s := range stores {
		g.Go(func() error {
			header := append(s.extractor.Schema().Fields(), model.FilingInfoHeader...)
			ds, err := store.Open(store.Spec{
				Name:      string(s.kind),
				Path:      h.path(string(s.kind) + ".csv"),
				Header:    header,
				IDColumn:  "tracing_id",
				LogPath:   h.path(string(s.kind) + "_log.csv"),
				LogHeader: model.SheetLogHeader,
			}, h.writer)
			if err != nil {
				return err
			}
			s.data = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stores, nil
}

// HarvestSheets captures every enabled sheet of filings that its ledger
// does not hold yet. Per-sheet failures are logged and counted; the
// returned error is reserved for failures before scheduling.
func (h *Harvester) HarvestSheets(ctx context.Context, filings []model.Filing) (worker.Summary, error) {
	stores, err := h.openSheetStores(ctx)
	if err != nil {
		return worker.Summary{}, err
	}
	if len(stores) == 0 {
		return worker.Summary{}, fmt.Errorf("no sheet kind enabled")
	}

	var jobs []worker.Job
	done := 0
	for _, f := range filings {
		for _, s := range stores {
			if s.data.IsDone(store.Key{ID: f.TracingID}) {
				done++
				continue
			}
			jobs = append(jobs, h.sheetJob(s, f))
		}
	}
	h.stats.Skipped.Add(int64(done))
	h.log.Info("harvesting sheets", "filings", len(filings), "pending", len(jobs), "done", done)

	summary := h.run(ctx, "sheets", jobs)
	summary.Skipped += done
	return summary, nil
}

func (h *Harvester) sheetJob(s *sheetStore, f model.Filing) worker.Job {
	url := SheetURL(f.URL, s.sheetID)

	return &worker.FuncJob{
		Item: fmt.Sprintf("%s %s", s.kind, f.TracingID),
		Fn: func(ctx context.Context) *worker.Outcome {
			k := store.Key{ID: f.TracingID}
			// A filing listed twice is worked on once
			if !s.data.Claim(k) {
				h.stats.Skipped.Add(1)
				return &worker.Outcome{Skipped: true}
			}
			defer s.data.Release(k)

			if err := h.harvestSheet(ctx, s, f, url); err != nil {
				h.log.Error("sheet failed",
					"kind", s.kind,
					"tracing_id", f.TracingID,
					"symbol", f.Symbol,
					"url", url,
					"error", err,
				)
				return &worker.Outcome{Err: err}
			}
			return &worker.Outcome{Rows: 1}
		},
	}
}

// harvestSheet fetches, extracts and commits one sheet. Nothing is written
// unless every step succeeds.
func (h *Harvester) harvestSheet(ctx context.Context, s *sheetStore, f model.Filing, url string) error {
	period, err := extract.ParsePeriod(f.Title)
	if err != nil {
		h.stats.ExtractErrors.Add(1)
		return err
	}

	waitFor := h.cfg.Codal.WaitFor
	body, err := h.fetch(ctx, Request{URL: url, WaitFor: waitFor})
	if err != nil {
		return err
	}

	table, err := extract.ParseTable(bytes.NewReader(body), waitFor)
	if err != nil {
		h.stats.ExtractErrors.Add(1)
		return err
	}
	row, err := s.extractor.Extract(table)
	if err != nil {
		h.stats.ExtractErrors.Add(1)
		return err
	}

	record := append(row.Record(s.extractor.Schema()), f.InfoRecord(period)...)
	if err := s.data.Commit(store.Key{ID: f.TracingID}, [][]string{record}); err != nil {
		return err
	}
	h.stats.Stored.Add(1)
	return nil
}
