package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/finops/internal/cache"
	"github.com/ppiankov/finops/internal/model"
	"github.com/ppiankov/finops/internal/pipeline"
	"github.com/ppiankov/finops/internal/worker"
)

// newHarvester loads the config and opens the fetch sessions
func newHarvester() (*pipeline.Harvester, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	var layered *cache.Layered
	if cfg.Cache.Enabled {
		layered = cache.NewLayered(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	h, err := pipeline.New(pipeline.Options{
		Config: cfg,
		Logger: logger,
		Cache:  layered,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open sessions: %w", err)
	}
	return h, cfg, nil
}

// signalContext is cancelled on SIGINT/SIGTERM. Cancellation stops
// scheduling; items already running finish and are persisted.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printBanner(title string, cfg *model.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  finops %s\n", title)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Run:          %s\n", runID)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")
}

func printSummary(s worker.Summary, stats *pipeline.Stats) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Items:        %d\n", s.Submitted+s.Unscheduled)
	fmt.Fprintf(os.Stderr, "  Succeeded:    %d\n", s.Succeeded)
	fmt.Fprintf(os.Stderr, "  Skipped:      %d\n", s.Skipped)
	fmt.Fprintf(os.Stderr, "  Failures:     %d\n", s.Failed)
	if s.Unscheduled > 0 {
		fmt.Fprintf(os.Stderr, "  Not started:  %d (interrupted)\n", s.Unscheduled)
	}
	fmt.Fprintf(os.Stderr, "  Rows written: %d\n", s.Rows)
	fmt.Fprintf(os.Stderr, "  Fetches:      %d (%d failed)\n", stats.Fetched.Load(), stats.FetchErrors.Load())
	fmt.Fprintf(os.Stderr, "\n")
}

var lettersCmd = &cobra.Command{
	Use:   "letters",
	Short: "List Codal filings into letters.csv",
	Long: `Letters pages through the Codal filing search and appends every filing
not yet in letters.csv. The page count is probed first; pages are fetched
concurrently with a fixed delay and a per-host rate limit.

Example:
  finops letters
  finops letters --symbols فولاد,فملی`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, cfg, err := newHarvester()
		if err != nil {
			return err
		}
		defer h.Close()

		ctx, cancel := signalContext()
		defer cancel()

		printBanner("letters", cfg)
		summary, err := h.ListLetters(ctx)
		if err != nil {
			return err
		}
		printSummary(summary, h.Stats())
		logger.Info("letters done", "stats", h.Stats())
		return nil
	},
}

var sheetsCmd = &cobra.Command{
	Use:   "sheets [letters.csv]",
	Short: "Harvest financial sheets of listed filings",
	Long: `Sheets fetches the enabled financial statements of every filing in the
listing store (or the given letters file) that is not yet captured, and
appends one canonical row per filing to <output-dir>/<sheet>.csv.

Example:
  finops sheets
  finops sheets --cash-flow
  finops sheets ./letters-2023.csv --workers 8`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, cfg, err := newHarvester()
		if err != nil {
			return err
		}
		defer h.Close()

		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		filings, err := h.LoadFilings(path)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		printBanner("sheets", cfg)
		fmt.Fprintf(os.Stderr, "✓ Loaded %d filings\n", len(filings))

		summary, err := h.HarvestSheets(ctx, filings)
		if err != nil {
			return err
		}
		printSummary(summary, h.Stats())
		logger.Info("sheets done", "stats", h.Stats())
		return nil
	},
}

func init() {
	defaults := model.DefaultConfig().Codal

	lettersCmd.Flags().StringSlice("symbols", nil, "keep only filings of these symbols")
	bindFlag(lettersCmd.Flags().Lookup("symbols"), "codal.symbols")

	sheetsCmd.Flags().Bool("balance-sheet", defaults.Sheets.BalanceSheet, "harvest balance sheets")
	sheetsCmd.Flags().Bool("profit-loss", defaults.Sheets.ProfitLoss, "harvest profit and loss statements")
	sheetsCmd.Flags().Bool("cash-flow", defaults.Sheets.CashFlow, "harvest cash flow statements")
	bindFlag(sheetsCmd.Flags().Lookup("balance-sheet"), "codal.sheets.balance_sheet")
	bindFlag(sheetsCmd.Flags().Lookup("profit-loss"), "codal.sheets.profit_loss")
	bindFlag(sheetsCmd.Flags().Lookup("cash-flow"), "codal.sheets.cash_flow")

	rootCmd.AddCommand(lettersCmd)
	rootCmd.AddCommand(sheetsCmd)
}
