package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks every configuration failure. The domain maps it to ConfigurationError.
var ErrInvalid = errors.New("invalid configuration")

const (
	ModelTreeEnsemble = "tree_ensemble"
	ModelSeasonal     = "seasonal"

	SourceCoinGecko  = "coingecko"
	SourceClickHouse = "clickhouse"
)

type Config struct {
	Environment string `yaml:"environment" default:"dev" validate:"required"`

	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stderr"`
	} `yaml:"log"`

	Portfolio struct {
		Currency string             `yaml:"currency" default:"usd" validate:"required"`
		Holdings map[string]float64 `yaml:"holdings" validate:"required,min=1,dive,keys,required,endkeys,gte=0"`
		// Assets maps a holding symbol to its history provider id.
		Assets map[string]string `yaml:"assets"`
	} `yaml:"portfolio"`

	History struct {
		Source string `yaml:"source" default:"coingecko" validate:"oneof=coingecko clickhouse"`
	} `yaml:"history"`

	CoinGecko struct {
		BaseURL       string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3" validate:"url"`
		APIKey        string        `yaml:"api_key"`
		Timeout       time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
		RatePerMinute float64       `yaml:"rate_per_minute" default:"25" validate:"gt=0"`
		Burst         float64       `yaml:"burst" default:"5" validate:"gte=1"`
	} `yaml:"coingecko"`

	CoinMarketCap struct {
		BaseURL string         `yaml:"base_url" default:"https://pro-api.coinmarketcap.com" validate:"url"`
		APIKey  string         `yaml:"api_key"`
		Timeout time.Duration  `yaml:"timeout" default:"15s" validate:"gt=0"`
		IDs     map[string]int `yaml:"ids"`
	} `yaml:"coinmarketcap"`

	Forecast struct {
		Model          string `yaml:"model" default:"tree_ensemble" validate:"oneof=tree_ensemble seasonal"`
		LookbackDays   int    `yaml:"lookback_days" default:"120" validate:"gte=1"`
		Horizon        int    `yaml:"horizon" default:"1" validate:"gte=1"`
		MinHistoryDays int    `yaml:"min_history_days" default:"30" validate:"gte=1"`
		Workers        int    `yaml:"workers" validate:"gte=0,lte=10"`
		Lags           []int  `yaml:"lags" validate:"required,min=1,dive,gte=1"`
		Rolls          []int  `yaml:"rolls" validate:"required,min=1,dive,gte=2"`

		Tree struct {
			Trees       int   `yaml:"trees" default:"400" validate:"gte=1"`
			MaxDepth    int   `yaml:"max_depth" validate:"gte=0"`
			MinLeaf     int   `yaml:"min_leaf" default:"1" validate:"gte=1"`
			MaxFeatures int   `yaml:"max_features" validate:"gte=0"`
			MinRows     int   `yaml:"min_rows" default:"5" validate:"gte=1"`
			Seed        int64 `yaml:"seed" default:"42"`
		} `yaml:"tree"`

		Seasonal struct {
			YearlyOrder        int     `yaml:"yearly_order" default:"10" validate:"gte=0"`
			DailyOrder         int     `yaml:"daily_order" default:"4" validate:"gte=0"`
			Changepoints       int     `yaml:"changepoints" default:"25" validate:"gte=0"`
			ChangepointRange   float64 `yaml:"changepoint_range" default:"0.8" validate:"gt=0,lte=1"`
			ChangepointPenalty float64 `yaml:"changepoint_penalty" default:"10" validate:"gt=0"`
			SeasonalityPenalty float64 `yaml:"seasonality_penalty" default:"1" validate:"gt=0"`
			MinObservations    int     `yaml:"min_observations" default:"30" validate:"gte=2"`
		} `yaml:"seasonal"`
	} `yaml:"forecast"`

	Cache struct {
		Enabled       bool          `yaml:"enabled"`
		TTL           time.Duration `yaml:"ttl" default:"6h"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"256" validate:"gte=1"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"fincast"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Report struct {
		Quiet         bool   `yaml:"quiet"`
		Style         string `yaml:"style" default:"auto"`
		CSVPath       string `yaml:"csv_path"`
		SeriesCSVPath string `yaml:"series_csv_path"`
		ChartDir      string `yaml:"chart_dir"`
	} `yaml:"report"`

	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers" validate:"required_if=Enabled true"`
		Topic        string        `yaml:"topic" default:"fincast.forecasts"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`

	ClickHouse struct {
		Enabled     bool          `yaml:"enabled"`
		Host        string        `yaml:"host" default:"localhost"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"fincast"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		UseHTTP     bool          `yaml:"use_http"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"30s"`
		// CandleTable is read when history.source is clickhouse.
		CandleTable string `yaml:"candle_table" default:"candles_1d"`
		// ForecastTable receives forecast points when enabled.
		ForecastTable string `yaml:"forecast_table" default:"forecasts"`
	} `yaml:"clickhouse"`

	Metrics struct {
		TextfilePath string `yaml:"textfile_path"`
	} `yaml:"metrics"`
}

// Load reads and parses a YAML configuration file, applying defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %v", ErrInvalid, err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: parse config: %v", ErrInvalid, err)
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %v", ErrInvalid, err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: parse config: %v", ErrInvalid, err)
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("FINCAST_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("COINGECKO_API_KEY"); v != "" {
		c.CoinGecko.APIKey = v
	}
	if v := getenv("CMC_API_KEY"); v != "" {
		c.CoinMarketCap.APIKey = v
	}
	if v := getenv("FORECAST_MODEL"); v != "" {
		c.Forecast.Model = v
	}
	if v := getenv("HOLDINGS"); v != "" {
		h, err := ParseHoldings(v)
		if err != nil {
			return err
		}
		c.Portfolio.Holdings = h
	}
	return nil
}

func (c *Config) finish() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("%w: defaults: %v", ErrInvalid, err)
	}
	if len(c.Forecast.Lags) == 0 {
		c.Forecast.Lags = []int{1, 2, 3, 7, 14}
	}
	if len(c.Forecast.Rolls) == 0 {
		c.Forecast.Rolls = []int{3, 7, 14}
	}
	normalizeHoldings(c)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Validate checks struct tags and the rules that span several fields.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if c.Forecast.Model == ModelTreeEnsemble && c.Forecast.Horizon != 1 {
		return fmt.Errorf("%w: forecast.horizon must be 1 for %s, got %d", ErrInvalid, ModelTreeEnsemble, c.Forecast.Horizon)
	}
	if c.Forecast.LookbackDays < c.Forecast.MinHistoryDays {
		return fmt.Errorf("%w: forecast.lookback_days (%d) is below forecast.min_history_days (%d)",
			ErrInvalid, c.Forecast.LookbackDays, c.Forecast.MinHistoryDays)
	}
	return nil
}

// ParseHoldings parses "BTC=1.5,ETH=2" into a holdings map.
func ParseHoldings(s string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sym, qty, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: holding %q must be SYMBOL=QUANTITY", ErrInvalid, part)
		}
		sym = strings.ToUpper(strings.TrimSpace(sym))
		q, err := strconv.ParseFloat(strings.TrimSpace(qty), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: holding %q: %v", ErrInvalid, part, err)
		}
		if _, dup := out[sym]; dup {
			return nil, fmt.Errorf("%w: duplicate holding %s", ErrInvalid, sym)
		}
		out[sym] = q
	}
	return out, nil
}

// Symbols returns the configured holding symbols in sorted order.
func (c *Config) Symbols() []string {
	out := make([]string, 0, len(c.Portfolio.Holdings))
	for s := range c.Portfolio.Holdings {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func normalizeHoldings(c *Config) {
	if c.Portfolio.Holdings != nil {
		h := make(map[string]float64, len(c.Portfolio.Holdings))
		for k, v := range c.Portfolio.Holdings {
			h[strings.ToUpper(strings.TrimSpace(k))] = v
		}
		c.Portfolio.Holdings = h
	}
	if c.Portfolio.Assets != nil {
		a := make(map[string]string, len(c.Portfolio.Assets))
		for k, v := range c.Portfolio.Assets {
			a[strings.ToUpper(strings.TrimSpace(k))] = v
		}
		c.Portfolio.Assets = a
	}
	if c.CoinMarketCap.IDs != nil {
		ids := make(map[string]int, len(c.CoinMarketCap.IDs))
		for k, v := range c.CoinMarketCap.IDs {
			ids[strings.ToUpper(strings.TrimSpace(k))] = v
		}
		c.CoinMarketCap.IDs = ids
	}
}
