package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/finops/internal/logging"
	"github.com/ppiankov/finops/internal/model"
)

var (
	cfgFile string
	verbose bool
	noCache bool
	logger  = logging.Discard()
	runID   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "finops",
	Short: "finops - incremental Codal and TSETMC harvester",
	Long: `finops incrementally harvests financial disclosures from Codal and
market data from TSETMC into append-only CSV stores.

Every store keeps a ledger of what it already holds, so repeated runs only
fetch what is new and an interrupted run resumes where it stopped.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		bindCommandFlags(cmd)
		runID = uuid.NewString()
		level := viper.GetString("log.level")
		if verbose {
			level = "debug"
		}
		l, err := logging.Init(os.Stderr, level, viper.GetString("log.format"), runID)
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// Version is set at build time
var Version = "dev"

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("finops %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := model.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.finops/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.String("output-dir", defaults.Output.Dir, "directory of the CSV stores")
	flags.Int("workers", defaults.Concurrency.Workers, "number of concurrent fetch sessions")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (text, json)")
	flags.BoolVar(&noCache, "no-cache", false, "disable the reference-data cache")

	bindFlag(flags.Lookup("output-dir"), "output.dir")
	bindFlag(flags.Lookup("workers"), "concurrency.workers")
	bindFlag(flags.Lookup("log-level"), "log.level")
	bindFlag(flags.Lookup("log-format"), "log.format")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".finops"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// FINOPS_CONCURRENCY_WORKERS overrides concurrency.workers
	viper.SetEnvPrefix("FINOPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
	}
}
