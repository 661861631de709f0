package notifier

import (
	"fmt"
	"html"
	"strings"

	"RRGSentinel/internal/model"
	"RRGSentinel/internal/recorder"
)

var quadrantIcons = map[model.Quadrant]string{
	model.QuadrantLeading:   "🟢",
	model.QuadrantWeakening: "🟡",
	model.QuadrantLagging:   "🔴",
	model.QuadrantImproving: "🔵",
}

// heading returns an arrow for the move between the last two points.
func heading(traj *model.Trajectory) string {
	n := traj.Len()
	if n < 2 {
		return "•"
	}
	prev, last := traj.Points[n-2], traj.Points[n-1]
	dx := last.RSRatio - prev.RSRatio
	dy := last.RSMomentum - prev.RSMomentum
	switch {
	case dx >= 0 && dy >= 0:
		return "↗"
	case dx >= 0:
		return "↘"
	case dy < 0:
		return "↙"
	default:
		return "↖"
	}
}

// FormatRotationReport formats a cycle snapshot into a Telegram message.
func FormatRotationReport(snap *model.Snapshot) string {
	var b strings.Builder

	asOf := "n/a"
	if n := len(snap.Dates); n > 0 {
		asOf = snap.Dates[n-1].Format("2006-01-02")
	}
	b.WriteString(fmt.Sprintf("📊 <b>Relative Rotation</b> | %s | %s | %s\n",
		html.EscapeString(snap.Benchmark.Name()), snap.Timeframe, asOf))
	b.WriteString(fmt.Sprintf("Tail: %d points\n\n", len(snap.Dates)))

	grouped := make(map[model.Quadrant][]*model.Trajectory)
	for _, traj := range snap.Trajectories {
		if last, ok := traj.Last(); ok {
			grouped[last.Quadrant] = append(grouped[last.Quadrant], traj)
		}
	}

	if len(grouped) == 0 {
		b.WriteString("No trajectories available.\n")
	}
	for _, q := range model.Quadrants {
		trajs := grouped[q]
		if len(trajs) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b>\n", quadrantIcons[q], q))
		for _, traj := range trajs {
			last, _ := traj.Last()
			b.WriteString(fmt.Sprintf("  %s %s: %.2f / %.2f\n",
				heading(traj), html.EscapeString(traj.Label), last.RSRatio, last.RSMomentum))
		}
		b.WriteString("\n")
	}

	if excluded := snap.Excluded(); len(excluded) > 0 {
		b.WriteString("⚠️ <b>Excluded:</b>\n")
		for _, st := range excluded {
			b.WriteString(fmt.Sprintf("  %s (%s)\n", html.EscapeString(st.Label), st.Reason))
		}
	}

	if snap.Source != model.WindowSourceFresh {
		b.WriteString(fmt.Sprintf("\nℹ️ window served from %s dates\n", snap.Source))
	}
	return b.String()
}

// FormatStoreStatus formats the trajectory store for display.
func FormatStoreStatus(st model.StoreStatus) string {
	var b strings.Builder
	b.WriteString("📦 <b>Store status</b>\n\n")
	b.WriteString(fmt.Sprintf("Benchmark: %s\n", html.EscapeString(st.Session.Benchmark.Name())))
	b.WriteString(fmt.Sprintf("Timeframe: %s\n", st.Session.Timeframe))
	b.WriteString(fmt.Sprintf("EMA span / lookback / tail: %d / %d / %d\n",
		st.Session.EMASpan, st.Session.MomentumLookback, st.Session.TailCount))
	b.WriteString(fmt.Sprintf("Securities stored: %d of %d\n", st.Securities, len(st.Session.Securities)))
	if st.Dates > 0 {
		b.WriteString(fmt.Sprintf("Available dates: %d (%s → %s)\n",
			st.Dates, st.First.Format("2006-01-02"), st.Last.Format("2006-01-02")))
	} else {
		b.WriteString("Available dates: none\n")
	}
	if st.Session.Cutoff != nil {
		b.WriteString(fmt.Sprintf("Cutoff: %s\n", st.Session.Cutoff.Format("2006-01-02")))
	}
	b.WriteString(fmt.Sprintf("Cycles: %d | Resets: %d | Last seq: %d\n", st.Session.Cycles, st.Session.Resets, st.LastSequence))
	if !st.Session.LastCycleAt.IsZero() {
		b.WriteString(fmt.Sprintf("Last cycle: %s\n", st.Session.LastCycleAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatCycleHistory lists recorded cycles, newest first.
func FormatCycleHistory(cycles []recorder.CycleSummary) string {
	if len(cycles) == 0 {
		return "No cycles recorded yet."
	}
	var b strings.Builder
	b.WriteString("🕑 <b>Recent cycles</b>\n\n")
	for _, c := range cycles {
		b.WriteString(fmt.Sprintf("#%d %s | %s | %d ok, %d excluded | %d dates (%s)\n",
			c.Sequence, c.GeneratedAt.Format("2006-01-02 15:04"), c.Timeframe, c.OK, c.Excluded, c.Dates, c.Source))
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /rrg - run a cycle now\n" +
		"• /status - store status\n" +
		"• /history - recent cycles\n" +
		"• /reset - clear accumulated trajectories\n" +
		"• /tail N - show the last N points\n" +
		"• /cutoff YYYY-MM-DD | off - pin the tail to a past date"
}
