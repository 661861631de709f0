package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"RRGSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// yahooTickers maps short names used in configs to Yahoo index tickers.
var yahooTickers = map[string]string{
	"NIFTY":       "^NSEI",
	"NIFTY50":     "^NSEI",
	"BANKNIFTY":   "^NSEBANK",
	"NIFTYIT":     "^CNXIT",
	"NIFTYPHARMA": "^CNXPHARMA",
	"NIFTYFMCG":   "^CNXFMCG",
	"NIFTYAUTO":   "^CNXAUTO",
	"NIFTYMETAL":  "^CNXMETAL",
	"NIFTYREALTY": "^CNXREALTY",
	"NIFTYENERGY": "^CNXENERGY",
	"SPX":         "^GSPC",
	"SPX500":      "^GSPC",
}

// YahooFetcher reads bars from the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string
}

func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL:   yahooBaseURL,
		Client:    newHTTPClient(proxyURL),
		SymbolMap: yahooTickers,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) ticker(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// Missing quotes come back as JSON null.
type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []yahooQuote `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func value(vs []*float64, i int) float64 {
	if i >= len(vs) || vs[i] == nil {
		return 0
	}
	return *vs[i]
}

// yahooRange picks the smallest chart range covering periods bars.
func yahooRange(tf model.Timeframe, periods int) string {
	days := periods * 7
	if tf == model.TimeframeDaily {
		// ~250 sessions a year
		days = periods * 365 / 250
	}
	for _, r := range []struct {
		days int
		name string
	}{{30, "1mo"}, {90, "3mo"}, {180, "6mo"}, {365, "1y"}, {730, "2y"}, {1825, "5y"}} {
		if days <= r.days {
			return r.name
		}
	}
	return "10y"
}

func yahooInterval(tf model.Timeframe) string {
	if tf == model.TimeframeDaily {
		return "1d"
	}
	return "1wk"
}

func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, tf model.Timeframe, periods int) ([]model.OHLCV, error) {
	base := f.BaseURL
	if base == "" {
		base = yahooBaseURL
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		base, url.PathEscape(f.ticker(symbol)), yahooInterval(tf), yahooRange(tf, periods))

	var chart yahooChartResponse
	header := http.Header{"User-Agent": {"Mozilla/5.0"}}
	if err := getJSON(ctx, f.Client, "yahoo", endpoint, header, &chart); err != nil {
		return nil, err
	}
	if e := chart.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo: %s: %s", e.Code, e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	q := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := value(q.Close, i)
		if c == 0 {
			continue // holiday rows carry nulls
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   value(q.Open, i),
			High:   value(q.High, i),
			Low:    value(q.Low, i),
			Close:  c,
			Volume: value(q.Volume, i),
		})
	}
	slices.SortFunc(bars, func(a, b model.OHLCV) int { return a.Time.Compare(b.Time) })
	return lastN(bars, periods), nil
}
