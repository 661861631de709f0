package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"RRGSentinel/internal/collector"
	"RRGSentinel/internal/config"
	"RRGSentinel/internal/recorder"
	"RRGSentinel/internal/session"
)

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "rrgsentinel",
		Short:         "Relative Rotation Graph engine for sector rotation reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultPath, "path to the YAML config file")

	root.AddCommand(serveCmd(&cfgPath), computeCmd(&cfgPath))
	return root
}

// loadConfig loads and validates the config, then applies the log level.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "mock":
		return &collector.MockFetcher{}
	case "vstrader":
		fetcher = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")
	return collector.NewGuardedFetcher(fetcher, collector.GuardOptions{
		RatePerSecond:   cfg.Fetch.RatePerSecond,
		Burst:           cfg.Fetch.Burst,
		BreakerFailures: cfg.Fetch.BreakerFailures,
		BreakerTimeout:  cfg.Fetch.BreakerTimeout,
	})
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func defaultSelection(cfg *config.Config) session.Selection {
	return session.Selection{
		Benchmark:  cfg.Benchmark,
		Timeframe:  cfg.TimeframeValue(),
		Securities: cfg.Securities,
		Params:     cfg.Params(),
	}
}
