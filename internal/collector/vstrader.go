package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"RRGSentinel/internal/model"
)

// VsTraderFetcher reads bars from a vstrader REST gateway. Gateways without
// a weekly endpoint get their daily bars resampled.
type VsTraderFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Now     func() time.Time
}

func NewVsTraderFetcher(baseURL, apiKey, proxyURL string) *VsTraderFetcher {
	return &VsTraderFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
		Now:     time.Now,
	}
}

func (f *VsTraderFetcher) Name() string { return "vstrader" }

type vsBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *VsTraderFetcher) FetchBars(ctx context.Context, symbol string, tf model.Timeframe, periods int) ([]model.OHLCV, error) {
	if tf == model.TimeframeDaily {
		return f.bars(ctx, "daily", symbol, periods)
	}

	weekly, err := f.bars(ctx, "weekly", symbol, periods)
	if err == nil {
		return weekly, nil
	}
	log.Warn().Err(err).Str("symbol", symbol).Msg("weekly bars unavailable, resampling daily")

	// One extra week covers the partial week ResampleWeekly drops.
	daily, dailyErr := f.bars(ctx, "daily", symbol, (periods+1)*5)
	if dailyErr != nil {
		return nil, fmt.Errorf("weekly: %w; daily fallback: %w", err, dailyErr)
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return lastN(ResampleWeekly(daily, now()), periods), nil
}

func (f *VsTraderFetcher) bars(ctx context.Context, interval, symbol string, limit int) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/%s?symbol=%s&limit=%d", f.BaseURL, interval, url.QueryEscape(symbol), limit)
	header := http.Header{}
	if f.APIKey != "" {
		header.Set("Authorization", "Bearer "+f.APIKey)
	}

	var raw []vsBar
	if err := getJSON(ctx, f.Client, "vstrader", endpoint, header, &raw); err != nil {
		return nil, err
	}
	out := make([]model.OHLCV, len(raw))
	for i, b := range raw {
		out[i] = model.OHLCV{
			Time:   time.Unix(b.Timestamp, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	slices.SortFunc(out, func(a, b model.OHLCV) int { return a.Time.Compare(b.Time) })
	return out, nil
}
