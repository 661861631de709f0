package model

import (
	"fmt"
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricePoint is one close price on one calendar day.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// Security is a tradable instrument together with its raw close series.
// Points are owned by the fetch side and treated as read-only by the engine.
type Security struct {
	ID     string
	Label  string
	Points []PricePoint
}

// SecurityRef identifies a security without its data.
type SecurityRef struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

// Name returns the label, falling back to the id.
func (r SecurityRef) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// Timeframe controls how raw bars are bucketed upstream of the engine.
type Timeframe string

const (
	TimeframeDaily  Timeframe = "daily"
	TimeframeWeekly Timeframe = "weekly"
)

// ParseTimeframe accepts "daily" or "weekly" in any case.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(strings.ToLower(strings.TrimSpace(s))) {
	case TimeframeDaily:
		return TimeframeDaily, nil
	case TimeframeWeekly:
		return TimeframeWeekly, nil
	default:
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
}

// SliderHorizon is how far back from the latest date a date slider reaches.
func (tf Timeframe) SliderHorizon() time.Duration {
	if tf == TimeframeDaily {
		return 180 * 24 * time.Hour
	}
	return 365 * 24 * time.Hour
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PricePointsFromBars extracts close prices from bars.
func PricePointsFromBars(bars []OHLCV) []PricePoint {
	points := make([]PricePoint, len(bars))
	for i, b := range bars {
		points[i] = PricePoint{Date: b.Time, Close: b.Close}
	}
	return points
}
