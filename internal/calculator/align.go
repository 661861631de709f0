package calculator

import (
	"fmt"
	"sort"
	"time"

	"RRGSentinel/internal/model"
)

// NormalizeSeries truncates dates to the calendar day, drops repeated dates
// (the first occurrence wins) and sorts ascending. The input is not modified.
func NormalizeSeries(points []model.PricePoint) []model.PricePoint {
	seen := make(map[time.Time]struct{}, len(points))
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		d := model.Day(p.Date)
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, model.PricePoint{Date: d, Close: p.Close})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Align builds the shared date axis for one cycle: every benchmark date on
// which at least one security has a quote. No price is ever filled in; a
// security without a quote on an axis date is marked not present.
//
// Align fails with ErrAlignmentFailure when the benchmark is empty and with
// ErrInsufficientHistory when the axis is shorter than minHistory.
func Align(securities map[string][]model.PricePoint, benchmark []model.PricePoint, minHistory int) (*model.AlignedSeries, error) {
	bench := NormalizeSeries(benchmark)
	if len(bench) == 0 {
		return nil, fmt.Errorf("%w: benchmark series is empty", ErrAlignmentFailure)
	}

	lookup := make(map[string]map[time.Time]float64, len(securities))
	quoted := make(map[time.Time]struct{})
	for id, pts := range securities {
		byDate := make(map[time.Time]float64, len(pts))
		for _, p := range NormalizeSeries(pts) {
			byDate[p.Date] = p.Close
			quoted[p.Date] = struct{}{}
		}
		lookup[id] = byDate
	}

	as := &model.AlignedSeries{
		Closes:  make(map[string][]float64, len(securities)),
		Present: make(map[string][]bool, len(securities)),
	}
	for _, p := range bench {
		if len(securities) > 0 {
			if _, ok := quoted[p.Date]; !ok {
				continue
			}
		}
		as.Dates = append(as.Dates, p.Date)
		as.Benchmark = append(as.Benchmark, p.Close)
	}
	if len(as.Dates) == 0 {
		return nil, fmt.Errorf("%w: no security shares a date with the benchmark", ErrAlignmentFailure)
	}
	if len(as.Dates) < minHistory {
		return nil, fmt.Errorf("%w: %d aligned dates, need %d", ErrInsufficientHistory, len(as.Dates), minHistory)
	}

	for id, byDate := range lookup {
		closes := make([]float64, len(as.Dates))
		present := make([]bool, len(as.Dates))
		for i, d := range as.Dates {
			if c, ok := byDate[d]; ok {
				closes[i] = c
				present[i] = true
			} else {
				closes[i] = Absent
			}
		}
		as.Closes[id] = closes
		as.Present[id] = present
	}
	return as, nil
}

// Pair extracts the dates on which both the security and the benchmark
// quote, with the matching closes.
func Pair(as *model.AlignedSeries, id string, minHistory int) (dates []time.Time, security, benchmark []float64, err error) {
	present, ok := as.Present[id]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s not in aligned series", ErrAlignmentFailure, id)
	}
	closes := as.Closes[id]
	for i, p := range present {
		if !p {
			continue
		}
		dates = append(dates, as.Dates[i])
		security = append(security, closes[i])
		benchmark = append(benchmark, as.Benchmark[i])
	}
	if len(dates) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s shares no dates with the benchmark", ErrAlignmentFailure, id)
	}
	if len(dates) < minHistory {
		return nil, nil, nil, fmt.Errorf("%w: %s has %d aligned dates, need %d", ErrInsufficientHistory, id, len(dates), minHistory)
	}
	return dates, security, benchmark, nil
}
