package collector

import (
	"sort"
	"time"

	"RRGSentinel/internal/model"
)

const (
	minBarsAfterTodayCut  = 10
	incompleteWeekMaxDays = 2
)

// weekEnding returns the Friday closing the week that contains t.
func weekEnding(t time.Time) time.Time {
	d := model.Day(t)
	offset := (int(time.Friday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset)
}

// ResampleWeekly converts daily bars into weekly bars ending on Friday and
// labelled with that Friday. Today's bar is left out while at least 10 bars
// remain, and a trailing week whose Friday lies more than 2 days after the
// last trading day is dropped as incomplete.
func ResampleWeekly(daily []model.OHLCV, now time.Time) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}
	bars := append([]model.OHLCV(nil), daily...)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	today := model.Day(now)
	if model.Day(bars[len(bars)-1].Time).Equal(today) && len(bars) > 1 {
		cut := bars
		for len(cut) > 0 && model.Day(cut[len(cut)-1].Time).Equal(today) {
			cut = cut[:len(cut)-1]
		}
		if len(cut) >= minBarsAfterTodayCut {
			bars = cut
		}
	}

	var weekly []model.OHLCV
	var week model.OHLCV
	var current time.Time
	for _, d := range bars {
		end := weekEnding(d.Time)
		if !end.Equal(current) {
			if !current.IsZero() {
				weekly = append(weekly, week)
			}
			current = end
			week = model.OHLCV{Time: end, Open: d.Open, High: d.High, Low: d.Low, Close: d.Close, Volume: d.Volume}
			continue
		}
		if d.High > week.High {
			week.High = d.High
		}
		if d.Low < week.Low {
			week.Low = d.Low
		}
		week.Close = d.Close
		week.Volume += d.Volume
	}
	weekly = append(weekly, week)

	lastTrade := model.Day(bars[len(bars)-1].Time)
	if weekly[len(weekly)-1].Time.Sub(lastTrade) > incompleteWeekMaxDays*24*time.Hour {
		weekly = weekly[:len(weekly)-1]
	}
	return weekly
}
