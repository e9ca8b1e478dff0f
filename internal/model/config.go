package model

import "time"

// Config holds every tunable of a harvest run
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Retry       RetryConfig       `yaml:"retry" mapstructure:"retry"`
	Listing     ListingConfig     `yaml:"listing" mapstructure:"listing"`
	Codal       CodalConfig       `yaml:"codal" mapstructure:"codal"`
	TSETMC      TSETMCConfig      `yaml:"tsetmc" mapstructure:"tsetmc"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Robots      RobotsConfig      `yaml:"robots" mapstructure:"robots"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures the fetch sessions
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ConcurrencyConfig bounds the worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RetryConfig is the fixed-backoff retry policy applied to every fetch
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	Wait        time.Duration `yaml:"wait" mapstructure:"wait"`
}

// ListingConfig throttles search-page fetches
type ListingConfig struct {
	PreDelay          time.Duration `yaml:"pre_delay" mapstructure:"pre_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// CodalConfig drives the filing listing and sheet harvest
type CodalConfig struct {
	SearchURL string `yaml:"search_url" mapstructure:"search_url"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	// SearchParams are Key=Value query pairs, sent in order
	SearchParams []string     `yaml:"search_params" mapstructure:"search_params"`
	Symbols      []string     `yaml:"symbols,omitempty" mapstructure:"symbols"`
	Sheets       SheetToggles `yaml:"sheets" mapstructure:"sheets"`
	SheetIDs     SheetIDs     `yaml:"sheet_ids" mapstructure:"sheet_ids"`
	WaitFor      string       `yaml:"wait_for" mapstructure:"wait_for"`
}

// SheetToggles enables or disables each sheet kind
type SheetToggles struct {
	BalanceSheet bool `yaml:"balance_sheet" mapstructure:"balance_sheet"`
	ProfitLoss   bool `yaml:"profit_loss" mapstructure:"profit_loss"`
	CashFlow     bool `yaml:"cash_flow" mapstructure:"cash_flow"`
}

// SheetIDs are the portal's sheetId query values per sheet kind
type SheetIDs struct {
	BalanceSheet int `yaml:"balance_sheet" mapstructure:"balance_sheet"`
	ProfitLoss   int `yaml:"profit_loss" mapstructure:"profit_loss"`
	CashFlow     int `yaml:"cash_flow" mapstructure:"cash_flow"`
}

// TSETMCConfig drives the ticker, price and shareholder harvest
type TSETMCConfig struct {
	TickersURL      string   `yaml:"tickers_url" mapstructure:"tickers_url"`
	PriceHistoryURL string   `yaml:"price_history_url" mapstructure:"price_history_url"`
	ShareholderURL  string   `yaml:"shareholder_url" mapstructure:"shareholder_url"`
	StartDate       string   `yaml:"start_date,omitempty" mapstructure:"start_date"`
	EndDate         string   `yaml:"end_date,omitempty" mapstructure:"end_date"`
	Tickers         []string `yaml:"tickers,omitempty" mapstructure:"tickers"`
}

// OutputConfig locates the store files
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// CacheConfig configures the reference-data cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RobotsConfig toggles robots.txt compliance
type RobotsConfig struct {
	Respect bool `yaml:"respect" mapstructure:"respect"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "Mozilla/5.0 (Windows NT 6.1; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/56.0.2924.76 Safari/537.36",
			MaxBodyBytes: 20_000_000,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 5,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Wait:        time.Second,
		},
		Listing: ListingConfig{
			PreDelay:          time.Second,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Codal: CodalConfig{
			SearchURL: "https://search.codal.ir/api/search/v2/q?",
			BaseURL:   "https://www.codal.ir",
			SearchParams: []string{
				"Audited=true",
				"AuditorRef=-1",
				"Category=1",
				"Childs=true",
				"CompanyState=-1",
				"CompanyType=-1",
				"Consolidatable=true",
				"IsNotAudited=false",
				"Length=-1",
				"LetterType=6",
				"Mains=true",
				"NotAudited=true",
				"NotConsolidatable=true",
				"Publisher=false",
				"TracingNo=-1",
				"search=true",
			},
			Sheets: SheetToggles{
				BalanceSheet: true,
				ProfitLoss:   true,
				CashFlow:     false,
			},
			SheetIDs: SheetIDs{
				BalanceSheet: 0,
				ProfitLoss:   1,
				CashFlow:     9,
			},
			WaitFor: ".table_wrapper, .rayanDynamicStatement",
		},
		TSETMC: TSETMCConfig{
			TickersURL:      "http://old.tsetmc.com/Loader.aspx?ParTree=151114",
			PriceHistoryURL: "http://old.tsetmc.com/tsev2/data/Export-txt.aspx?t=i&a=1&b=0&i={ticker_index}",
			ShareholderURL:  "http://cdn.tsetmc.com/api/Shareholder/{ticker_index}/{date}",
		},
		Output: OutputConfig{
			Dir: "./finops-data",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".finops-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   12 * time.Hour,
		},
		Robots: RobotsConfig{
			Respect: false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
