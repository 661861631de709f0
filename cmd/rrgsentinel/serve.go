package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"RRGSentinel/internal/cycle"
	"RRGSentinel/internal/notifier"
	"RRGSentinel/internal/observability"
	"RRGSentinel/internal/scheduler"
	"RRGSentinel/internal/session"
)

func serveCmd(cfgPath *string) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled refresh cycles, Telegram commands and the metrics endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log.Info().Msg("RRGSentinel starting")

			sess, err := session.NewManager(cfg.Session.StateFile, defaultSelection(cfg))
			if err != nil {
				return err
			}
			// Config decides the tracked universe; a tail set by /tail survives restarts.
			sel := defaultSelection(cfg)
			sel.Params.TailCount = sess.GetState().TailCount
			if err := sel.Params.Validate(); err != nil {
				sel.Params.TailCount = cfg.Engine.TailCount
			}
			sess.Apply(sel)

			rec := newRecorder(cfg)
			defer rec.Close()

			metrics := observability.NewMetrics("")
			metrics.Registry().MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			sinks := cycle.MultiSink{cycle.LogSink{}}
			var tn *notifier.TelegramNotifier
			if cfg.TelegramEnabled() {
				tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
				sinks = append(sinks, tn)
			} else {
				log.Warn().Msg("telegram not configured, snapshots go to the log only")
			}

			runner := cycle.NewRunner(cycle.Options{
				Fetcher:     newFetcher(cfg),
				Periods:     cfg.Periods,
				Concurrency: cfg.Fetch.Concurrency,
				Session:     sess,
				Sink:        sinks,
				Recorder:    rec,
				Metrics:     metrics,
			})

			sched := scheduler.NewScheduler(ctx, runner, sess)
			if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics endpoint listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("metrics server")
				}
			}()

			if runOnStart || os.Getenv("RUN_ON_START") == "true" {
				log.Info().Msg("running a refresh cycle on start")
				go func() {
					if _, err := sched.RunNow(); err != nil {
						log.Error().Err(err).Msg("start-up cycle failed")
					}
				}()
			}

			log.Info().Msg("RRGSentinel is running. Press Ctrl+C to stop.")
			<-ctx.Done()

			log.Info().Msg("shutdown signal received, stopping...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run one refresh cycle immediately")
	return cmd
}
