// Package pipeline runs the incremental harvest: it enumerates work, skips
// what the ledgers already hold, and fans the rest out over a bounded pool
// of fetch sessions.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/ppiankov/finops/internal/cache"
	"github.com/ppiankov/finops/internal/logging"
	"github.com/ppiankov/finops/internal/model"
	"github.com/ppiankov/finops/internal/store"
	"github.com/ppiankov/finops/internal/util"
	"github.com/ppiankov/finops/internal/worker"
)

// Stats counts harvest events across every stage of a run
type Stats struct {
	Listed        atomic.Int64
	Fetched       atomic.Int64
	FetchErrors   atomic.Int64
	ExtractErrors atomic.Int64
	Stored        atomic.Int64
	Skipped       atomic.Int64
}

// LogValue renders the counters as one log group
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("listed", s.Listed.Load()),
		slog.Int64("fetched", s.Fetched.Load()),
		slog.Int64("fetch_errors", s.FetchErrors.Load()),
		slog.Int64("extract_errors", s.ExtractErrors.Load()),
		slog.Int64("stored", s.Stored.Load()),
		slog.Int64("skipped", s.Skipped.Load()),
	)
}

// FetcherFactory opens the fetcher of one pool slot
type FetcherFactory func(slot int) (Fetcher, error)

// Options wires a Harvester. Only Config is required.
type Options struct {
	Config     *model.Config
	Logger     *slog.Logger
	NewFetcher FetcherFactory
	// Cache holds reference data; nil fetches it every time
	Cache  *cache.Layered
	Writer *store.Writer
}

// Harvester owns the fetch sessions and store writer of a run
type Harvester struct {
	cfg      *model.Config
	log      *slog.Logger
	sessions *worker.SessionPool[Fetcher]
	retrier  Retrier
	limiter  *worker.Limiter
	cache    *cache.Layered
	writer   *store.Writer
	stats    Stats
}

// New opens one fetch session per worker
func New(opts Options) (*Harvester, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	h := &Harvester{
		cfg:     cfg,
		log:     log,
		limiter: worker.NewLimiter(cfg.Listing.RequestsPerSecond, cfg.Listing.Burst, cfg.Listing.PreDelay),
		cache:   opts.Cache,
		writer:  opts.Writer,
		retrier: Retrier{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Wait:        cfg.Retry.Wait,
			Logger:      log,
		},
	}
	if h.writer == nil {
		h.writer = store.NewWriter()
	}

	factory := opts.NewFetcher
	if factory == nil {
		factory = h.sessionFactory()
	}

	sessions, err := worker.NewSessionPool(cfg.Concurrency.Workers, factory, closeFetcher)
	if err != nil {
		return nil, err
	}
	h.sessions = sessions
	return h, nil
}

func (h *Harvester) sessionFactory() FetcherFactory {
	var robots *util.RobotsChecker
	if h.cfg.Robots.Respect {
		robots = util.NewRobotsChecker(h.cfg.HTTP.UserAgent, h.cfg.HTTP.Timeout)
	}
	return func(slot int) (Fetcher, error) {
		return NewSession(SessionConfig{
			Timeout:    h.cfg.HTTP.Timeout,
			UserAgent:  h.cfg.HTTP.UserAgent,
			MaxBytes:   h.cfg.HTTP.MaxBodyBytes,
			HTTPProxy:  h.cfg.HTTP.HTTPProxy,
			HTTPSProxy: h.cfg.HTTP.HTTPSProxy,
			NoProxy:    h.cfg.HTTP.NoProxy,
			Robots:     robots,
			Limiter:    h.limiter,
		})
	}
}

func closeFetcher(f Fetcher) {
	if c, ok := f.(interface{ Close() }); ok {
		c.Close()
	}
}

// Close releases every fetch session
func (h *Harvester) Close() {
	h.sessions.Close(closeFetcher)
}

// Stats returns the run's counters
func (h *Harvester) Stats() *Stats {
	return &h.stats
}

// fetch runs req with retries on a checked-out session
func (h *Harvester) fetch(ctx context.Context, req Request) ([]byte, error) {
	var body []byte
	err := h.sessions.With(ctx, func(f Fetcher) error {
		var err error
		body, err = h.retrier.Do(ctx, f, req)
		return err
	})
	if err != nil {
		h.stats.FetchErrors.Add(1)
		return nil, err
	}
	h.stats.Fetched.Add(1)
	return body, nil
}

// fetchReference serves slow-changing pages from the cache when one is set
func (h *Harvester) fetchReference(ctx context.Context, namespace, url string) ([]byte, error) {
	if h.cache == nil {
		return h.fetch(ctx, Request{URL: url})
	}
	body, hit, err := h.cache.GetOrLoad(cache.Key(namespace, url), func() ([]byte, error) {
		return h.fetch(ctx, Request{URL: url})
	})
	if err != nil {
		return nil, err
	}
	if hit {
		h.log.Debug("cache hit", "namespace", namespace, "url", url)
	}
	return body, nil
}

// run executes jobs on the pool and logs what could not be attributed to
// an item by the jobs themselves
func (h *Harvester) run(ctx context.Context, stage string, jobs []worker.Job) worker.Summary {
	results, unscheduled := worker.NewBatchProcessor(h.cfg.Concurrency.Workers).Process(ctx, jobs)
	summary := worker.Summarize(results)
	summary.Unscheduled = unscheduled

	for _, r := range summary.Failures {
		if p, ok := r.(*worker.PanicResult); ok {
			h.log.Error("job panicked", "stage", stage, "panic", p.Value)
		}
	}
	if unscheduled > 0 {
		h.log.Warn("stopped scheduling", "stage", stage, "unscheduled", unscheduled)
	}
	h.log.Info("stage finished",
		"stage", stage,
		"submitted", summary.Submitted,
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"rows", summary.Rows,
	)
	return summary
}

func (h *Harvester) path(name string) string {
	return filepath.Join(h.cfg.Output.Dir, name)
}
