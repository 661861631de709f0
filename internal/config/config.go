package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"RRGSentinel/internal/calculator"
	"RRGSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Engine struct {
		EMASpan          int `yaml:"ema_span"`
		MomentumLookback int `yaml:"momentum_lookback"`
		TailCount        int `yaml:"tail_count"`
	} `yaml:"engine"`
	Timeframe  string              `yaml:"timeframe"`
	Periods    int                 `yaml:"periods"`
	Benchmark  model.SecurityRef   `yaml:"benchmark"`
	Securities []model.SecurityRef `yaml:"securities"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo, vstrader or mock
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Fetch struct {
		RatePerSecond   float64       `yaml:"rate_per_second"`
		Burst           int           `yaml:"burst"`
		Concurrency     int           `yaml:"concurrency"`
		BreakerFailures uint32        `yaml:"breaker_failures"`
		BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
	} `yaml:"fetch"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Session struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"session"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DefaultSecurities are the NIFTY sector indices tracked when none are configured.
var DefaultSecurities = []model.SecurityRef{
	{ID: "^CNXIT", Label: "NIFTY IT"},
	{ID: "^NSEBANK", Label: "NIFTY BANK"},
	{ID: "^CNXAUTO", Label: "NIFTY AUTO"},
	{ID: "^CNXPHARMA", Label: "NIFTY PHARMA"},
	{ID: "^CNXFMCG", Label: "NIFTY FMCG"},
	{ID: "^CNXMETAL", Label: "NIFTY METAL"},
	{ID: "^CNXREALTY", Label: "NIFTY REALTY"},
	{ID: "^CNXENERGY", Label: "NIFTY ENERGY"},
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", calculator.ErrInvalidParameter, name, v)
	}
	*dst = n
	return nil
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func (c *Config) applyEnv() error {
	if err := envInt("RRG_EMA_SPAN", &c.Engine.EMASpan); err != nil {
		return err
	}
	if err := envInt("RRG_MOMENTUM_LOOKBACK", &c.Engine.MomentumLookback); err != nil {
		return err
	}
	if err := envInt("RRG_TAIL_COUNT", &c.Engine.TailCount); err != nil {
		return err
	}
	envString("RRG_TIMEFRAME", &c.Timeframe)
	envString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	envString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	envString("DATA_PROVIDER", &c.DataSource.Provider)
	envString("VSTRADER_BASE_URL", &c.DataSource.BaseURL)
	envString("VSTRADER_API_KEY", &c.DataSource.APIKey)
	envString("HTTPS_PROXY", &c.Proxy)
	envString("SQLITE_PATH", &c.Database.SQLitePath)
	envString("METRICS_ADDR", &c.Metrics.Addr)
	envString("LOG_LEVEL", &c.Log.Level)
	envString("CRON_REFRESH", &c.Schedule.RefreshCron)
	return nil
}

// Zero engine values mean "unset"; negative ones are kept so Validate can reject them.
func (c *Config) applyDefaults() {
	if c.Engine.EMASpan == 0 {
		c.Engine.EMASpan = calculator.DefaultEMASpan
	}
	if c.Engine.MomentumLookback == 0 {
		c.Engine.MomentumLookback = calculator.DefaultMomentumLookback
	}
	if c.Engine.TailCount == 0 {
		c.Engine.TailCount = calculator.DefaultTailCount
	}
	if c.Timeframe == "" {
		c.Timeframe = string(model.TimeframeWeekly)
	}
	if c.Periods == 0 {
		c.Periods = 200
	}
	if c.Benchmark.ID == "" {
		c.Benchmark = model.SecurityRef{ID: "^NSEI", Label: "NIFTY 50"}
	}
	if len(c.Securities) == 0 {
		c.Securities = append([]model.SecurityRef(nil), DefaultSecurities...)
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = "vstrader"
		}
	}
	if c.Fetch.RatePerSecond == 0 {
		c.Fetch.RatePerSecond = 2
	}
	if c.Fetch.Burst == 0 {
		c.Fetch.Burst = 4
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = 4
	}
	if c.Fetch.BreakerFailures == 0 {
		c.Fetch.BreakerFailures = 5
	}
	if c.Fetch.BreakerTimeout == 0 {
		c.Fetch.BreakerTimeout = time.Minute
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 18 * * 1-5"
	}
	if c.Session.StateFile == "" {
		c.Session.StateFile = "data/session_state.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/rrg_sentinel.db"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9108"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Params returns the engine parameters.
func (c *Config) Params() calculator.Params {
	return calculator.Params{
		EMASpan:          c.Engine.EMASpan,
		MomentumLookback: c.Engine.MomentumLookback,
		TailCount:        c.Engine.TailCount,
	}
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if _, err := model.ParseTimeframe(c.Timeframe); err != nil {
		return fmt.Errorf("%w: %v", calculator.ErrInvalidParameter, err)
	}
	if c.Periods < c.Params().MinHistory() {
		return fmt.Errorf("%w: periods %d is below the minimum history %d",
			calculator.ErrInvalidParameter, c.Periods, c.Params().MinHistory())
	}
	seen := make(map[string]bool, len(c.Securities))
	for _, s := range c.Securities {
		if s.ID == "" {
			return fmt.Errorf("securities: every entry needs an id")
		}
		if s.ID == c.Benchmark.ID {
			return fmt.Errorf("securities: %s is also the benchmark", s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("securities: duplicate id %s", s.ID)
		}
		seen[s.ID] = true
	}
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "vstrader":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for vstrader")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TimeframeValue returns the parsed timeframe; call after Validate.
func (c *Config) TimeframeValue() model.Timeframe {
	tf, _ := model.ParseTimeframe(c.Timeframe)
	return tf
}
