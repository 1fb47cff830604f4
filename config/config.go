package config

import (
	"fmt"
	"strings"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger     `mapstructure:"logger"`
	API        API        `mapstructure:"api"`
	Binance    Binance    `mapstructure:"binance"`
	Cache      Cache      `mapstructure:"cache"`
	Simulation Simulation `mapstructure:"simulation"`
	Sweep      Sweep      `mapstructure:"sweep"`
	Report     Report     `mapstructure:"report"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type API struct {
	Port int `mapstructure:"port" validate:"gt=0"`
}

type Binance struct {
	BaseURL             string        `mapstructure:"base_url" validate:"required"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_min" validate:"gt=0"`
	Symbol              string        `mapstructure:"symbol" validate:"required"`
	Interval            string        `mapstructure:"interval" validate:"required"`
	Days                int           `mapstructure:"days" validate:"gt=0"`
	CacheDir            string        `mapstructure:"cache_dir"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// Simulation holds the capital and execution model shared by every run.
type Simulation struct {
	InitialCapital  float64 `mapstructure:"initial_capital" validate:"gt=0"`
	PositionSizePct float64 `mapstructure:"position_size_pct" validate:"gt=0,lte=1"`
	MinTradeUnit    float64 `mapstructure:"min_trade_unit" validate:"gt=0"`
	StopLossPct     float64 `mapstructure:"stop_loss_pct" validate:"gt=0,lt=1"`
	FeeRate         float64 `mapstructure:"fee_rate" validate:"gte=0,lt=1"`
}

type Sweep struct {
	TopN           int     `mapstructure:"top_n" validate:"gt=0"`
	MaxConcurrency int     `mapstructure:"max_concurrency" validate:"gt=0"`
	TrainRatio     float64 `mapstructure:"train_ratio" validate:"gt=0,lt=1"`
	SplitCutoff    string  `mapstructure:"split_cutoff"`
	OverfitGapPct  float64 `mapstructure:"overfit_gap_pct" validate:"gt=0"`
	Grids          Grids   `mapstructure:"grids"`
}

type Grids struct {
	Crossover   CrossoverGrid   `mapstructure:"crossover"`
	RSI         RSIGrid         `mapstructure:"rsi"`
	TrendFilter TrendFilterGrid `mapstructure:"trend_filter"`
}

type CrossoverGrid struct {
	ShortPeriods []int `mapstructure:"short_periods" validate:"min=1,dive,gt=0"`
	LongPeriods  []int `mapstructure:"long_periods" validate:"min=1,dive,gt=0"`
}

type RSIGrid struct {
	Periods    []int     `mapstructure:"periods" validate:"min=1,dive,gt=0"`
	Oversold   []float64 `mapstructure:"oversold" validate:"min=1,dive,gt=0,lt=100"`
	Overbought []float64 `mapstructure:"overbought" validate:"min=1,dive,gt=0,lt=100"`
}

type TrendFilterGrid struct {
	ShortPeriod   int       `mapstructure:"short_period" validate:"gt=0"`
	LongPeriod    int       `mapstructure:"long_period" validate:"gt=0,gtfield=ShortPeriod"`
	ATRPeriods    []int     `mapstructure:"atr_periods" validate:"dive,gt=0"`
	ATRThresholds []float64 `mapstructure:"atr_thresholds" validate:"dive,gt=0"`
	ADXPeriods    []int     `mapstructure:"adx_periods" validate:"dive,gt=0"`
	ADXThresholds []float64 `mapstructure:"adx_thresholds" validate:"dive,gt=0"`
	HigherFactors []int     `mapstructure:"higher_factors" validate:"dive,gt=1"`
	HigherShort   int       `mapstructure:"higher_short" validate:"gt=0"`
	HigherLong    int       `mapstructure:"higher_long" validate:"gt=0,gtfield=HigherShort"`
}

type Report struct {
	Dir string `mapstructure:"dir"`
}

func Load() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults mirrors the historical simulation conditions so the binary runs
// without a config file.
func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("api.port", 8080)

	viper.SetDefault("binance.base_url", "https://api.binance.com")
	viper.SetDefault("binance.timeout", "10s")
	viper.SetDefault("binance.max_request_per_min", 300)
	viper.SetDefault("binance.symbol", "BTCUSDT")
	viper.SetDefault("binance.interval", "1h")
	viper.SetDefault("binance.days", 365)
	viper.SetDefault("binance.cache_dir", "data")

	viper.SetDefault("cache.default_expiration", "30m")
	viper.SetDefault("cache.cleanup_interval", "1h")

	viper.SetDefault("simulation.initial_capital", 500.0)
	viper.SetDefault("simulation.position_size_pct", 0.35)
	viper.SetDefault("simulation.min_trade_unit", 0.0001)
	viper.SetDefault("simulation.stop_loss_pct", 0.10)
	viper.SetDefault("simulation.fee_rate", 0.001)

	viper.SetDefault("sweep.top_n", 5)
	viper.SetDefault("sweep.max_concurrency", 4)
	viper.SetDefault("sweep.train_ratio", 0.75)
	viper.SetDefault("sweep.overfit_gap_pct", 10.0)

	viper.SetDefault("sweep.grids.crossover.short_periods", []int{5, 10, 15, 20, 25})
	viper.SetDefault("sweep.grids.crossover.long_periods", []int{20, 30, 40, 50, 75, 100})

	viper.SetDefault("sweep.grids.rsi.periods", []int{7, 14, 21})
	viper.SetDefault("sweep.grids.rsi.oversold", []float64{20, 25, 30})
	viper.SetDefault("sweep.grids.rsi.overbought", []float64{70, 75, 80})

	viper.SetDefault("sweep.grids.trend_filter.short_period", 20)
	viper.SetDefault("sweep.grids.trend_filter.long_period", 50)
	viper.SetDefault("sweep.grids.trend_filter.atr_periods", []int{14, 20})
	viper.SetDefault("sweep.grids.trend_filter.atr_thresholds", []float64{1.0, 1.2, 1.5})
	viper.SetDefault("sweep.grids.trend_filter.adx_periods", []int{14, 20})
	viper.SetDefault("sweep.grids.trend_filter.adx_thresholds", []float64{20, 25, 30})
	viper.SetDefault("sweep.grids.trend_filter.higher_factors", []int{4, 24})
	viper.SetDefault("sweep.grids.trend_filter.higher_short", 10)
	viper.SetDefault("sweep.grids.trend_filter.higher_long", 20)

	viper.SetDefault("report.dir", "results")
}

// Validate fails fast on any static misconfiguration before a run starts.
func (c *Config) Validate() error {
	v := goValidator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, os := range c.Sweep.Grids.RSI.Oversold {
		for _, ob := range c.Sweep.Grids.RSI.Overbought {
			if os >= ob {
				return fmt.Errorf("invalid configuration: rsi oversold %.0f must be below overbought %.0f", os, ob)
			}
		}
	}

	if c.Sweep.SplitCutoff != "" {
		if _, err := time.Parse(time.RFC3339, c.Sweep.SplitCutoff); err != nil {
			return fmt.Errorf("invalid configuration: split_cutoff must be RFC3339: %w", err)
		}
	}

	return nil
}

// SplitCutoffTime parses the configured cutoff, reporting whether one is set.
func (c *Config) SplitCutoffTime() (time.Time, bool) {
	if c.Sweep.SplitCutoff == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, c.Sweep.SplitCutoff)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
