package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"RRGSentinel/internal/calculator"
	"RRGSentinel/internal/cycle"
	"RRGSentinel/internal/model"
	"RRGSentinel/internal/notifier"
	"RRGSentinel/internal/session"
)

// Scheduler manages the refresh cron task and user commands.
type Scheduler struct {
	Cron    *cron.Cron
	Runner  *cycle.Runner
	Session *session.Manager
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *cycle.Runner, sess *session.Manager) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Runner:  runner,
		Session: sess,
		Ctx:     ctx,
	}
}

// Register adds the periodic refresh task.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes a refresh cycle immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() (*model.Snapshot, error) {
	return s.Runner.Run(s.Ctx, cycle.Request{Trigger: "manual"})
}

func (s *Scheduler) refreshTask() {
	log.Info().Msg("running refresh task")
	if _, err := s.Runner.Run(s.Ctx, cycle.Request{Trigger: "cron"}); err != nil {
		log.Error().Err(err).Msg("refresh cycle failed")
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// "/tail@MyBot 5" in group chats
	name := strings.SplitN(fields[0], "@", 2)[0]
	args := fields[1:]

	switch name {
	case "/rrg":
		if _, err := s.Runner.Run(ctx, cycle.Request{Trigger: "command"}); err != nil {
			return fmt.Sprintf("❌ cycle failed: %v", err)
		}
		return ""
	case "/status":
		return notifier.FormatStoreStatus(s.Runner.Status())
	case "/history":
		cycles, err := s.Runner.History(5)
		if err != nil {
			return fmt.Sprintf("❌ history unavailable: %v", err)
		}
		return notifier.FormatCycleHistory(cycles)
	case "/reset":
		s.Runner.Reset()
		return "🧹 trajectory store cleared"
	case "/tail":
		if len(args) != 1 {
			return "usage: /tail N"
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Sprintf("❌ %v: tail must be an integer, got %q", calculator.ErrInvalidParameter, args[0])
		}
		if err := s.Session.SetTail(n); err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return fmt.Sprintf("✅ tail set to %d points", n)
	case "/cutoff":
		if len(args) != 1 {
			return "usage: /cutoff YYYY-MM-DD | /cutoff off"
		}
		if args[0] == "off" {
			s.Session.SetCutoff(nil)
			return "✅ following the latest date"
		}
		d, err := time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Sprintf("❌ %v: bad date %q", calculator.ErrInvalidParameter, args[0])
		}
		s.Session.SetCutoff(&d)
		return fmt.Sprintf("✅ cutoff set to %s", d.Format("2006-01-02"))
	default:
		return notifier.FormatHelp()
	}
}
