package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"RRGSentinel/internal/calculator"
	"RRGSentinel/internal/cycle"
	"RRGSentinel/internal/session"
)

func computeCmd(cfgPath *string) *cobra.Command {
	var (
		tail   int
		frames bool
		cutoff string
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Run one cycle and print the snapshot as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			sel := defaultSelection(cfg)
			if cmd.Flags().Changed("tail") {
				sel.Params.TailCount = tail
				if err := sel.Params.Validate(); err != nil {
					return err
				}
			}

			req := cycle.Request{Selection: sel, Trigger: "cli", Frames: frames}
			if cutoff != "" {
				at, err := time.Parse("2006-01-02", cutoff)
				if err != nil {
					return fmt.Errorf("%w: cutoff %q is not YYYY-MM-DD", calculator.ErrInvalidParameter, cutoff)
				}
				req.Cutoff = &at
			}

			// One-shot runs keep no session file.
			sess, err := session.NewManager("", sel)
			if err != nil {
				return err
			}
			runner := cycle.NewRunner(cycle.Options{
				Fetcher:     newFetcher(cfg),
				Periods:     cfg.Periods,
				Concurrency: cfg.Fetch.Concurrency,
				Session:     sess,
				Sink:        &cycle.JSONSink{W: cmd.OutOrStdout()},
			})
			_, err = runner.Run(cmd.Context(), req)
			return err
		},
	}
	cmd.Flags().IntVar(&tail, "tail", calculator.DefaultTailCount, "number of trailing points to print")
	cmd.Flags().BoolVar(&frames, "frames", false, "include animation frames over the slider horizon")
	cmd.Flags().StringVar(&cutoff, "cutoff", "", "end the window on this date (YYYY-MM-DD)")
	return cmd
}
