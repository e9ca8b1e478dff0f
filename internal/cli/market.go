package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/finops/internal/util"
)

var (
	stockOnly   bool
	tickersFile string
)

// selectedTickers merges --tickers (or tsetmc.tickers) with --tickers-file.
// An empty result selects every stock ticker.
func selectedTickers() ([]string, error) {
	tickers := viper.GetStringSlice("tsetmc.tickers")
	if tickersFile == "" {
		return tickers, nil
	}
	fromFile, err := util.ReadList(tickersFile)
	if err != nil {
		return nil, fmt.Errorf("read tickers file: %w", err)
	}
	return append(tickers, fromFile...), nil
}

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Save the TSETMC instrument list to tickers.csv",
	Long: `Tickers fetches the exchange instrument list and appends instruments
not yet in tickers.csv.

Example:
  finops tickers
  finops tickers --stock-only`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, cfg, err := newHarvester()
		if err != nil {
			return err
		}
		defer h.Close()

		ctx, cancel := signalContext()
		defer cancel()

		printBanner("tickers", cfg)
		tickers, err := h.Tickers(ctx, stockOnly)
		if err != nil {
			return err
		}
		n, err := h.SaveTickers(tickers)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ %d tickers listed, %d new\n", len(tickers), n)
		return nil
	},
}

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Harvest daily price history into prices.csv",
	Long: `Prices fetches the daily price export of each selected ticker and
appends the trading days prices.csv does not hold yet.

Without --tickers or --tickers-file every stock ticker is harvested.

Example:
  finops prices --tickers 46348559193224090
  finops prices --tickers-file tickers.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tickers, err := selectedTickers()
		if err != nil {
			return err
		}
		h, cfg, err := newHarvester()
		if err != nil {
			return err
		}
		defer h.Close()

		ctx, cancel := signalContext()
		defer cancel()

		printBanner("prices", cfg)
		summary, err := h.HarvestPrices(ctx, tickers)
		if err != nil {
			return err
		}
		printSummary(summary, h.Stats())
		logger.Info("prices done", "stats", h.Stats())
		return nil
	},
}

var shareholdersCmd = &cobra.Command{
	Use:   "shareholders",
	Short: "Harvest major shareholders per ticker and traded day",
	Long: `Shareholders collects the traded days of each selected ticker, keeps
the days strictly between --start and --end that are not captured yet, and
fetches the major holders of each. Days without disclosed holders are
recorded so they are not fetched again.

Example:
  finops shareholders --start 2023-03-20 --end 2024-03-19
  finops shareholders --tickers 46348559193224090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tickers, err := selectedTickers()
		if err != nil {
			return err
		}
		h, cfg, err := newHarvester()
		if err != nil {
			return err
		}
		defer h.Close()

		ctx, cancel := signalContext()
		defer cancel()

		printBanner("shareholders", cfg)
		summary, err := h.HarvestShareholders(ctx, tickers, cfg.TSETMC.StartDate, cfg.TSETMC.EndDate)
		if err != nil {
			return err
		}
		printSummary(summary, h.Stats())
		logger.Info("shareholders done", "stats", h.Stats())
		return nil
	},
}

func init() {
	tickersCmd.Flags().BoolVar(&stockOnly, "stock-only", false, "keep stock instruments only")

	for _, cmd := range []*cobra.Command{pricesCmd, shareholdersCmd} {
		cmd.Flags().StringSlice("tickers", nil, "ticker indexes to harvest (default: every stock)")
		cmd.Flags().StringVar(&tickersFile, "tickers-file", "", "file with one ticker index per line")
	}
	shareholdersCmd.Flags().String("start", "", "exclusive start date (YYYY-MM-DD)")
	shareholdersCmd.Flags().String("end", "", "exclusive end date (YYYY-MM-DD)")

	rootCmd.AddCommand(tickersCmd)
	rootCmd.AddCommand(pricesCmd)
	rootCmd.AddCommand(shareholdersCmd)
}

// bindCommandFlags binds the flags of the running command only, so the
// same key can be served by flags of several commands
func bindCommandFlags(cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("tickers"); f != nil {
		bindFlag(f, "tsetmc.tickers")
	}
	if f := cmd.Flags().Lookup("start"); f != nil {
		bindFlag(f, "tsetmc.start_date")
	}
	if f := cmd.Flags().Lookup("end"); f != nil {
		bindFlag(f, "tsetmc.end_date")
	}
}
