package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RRGSentinel/internal/model"
)

func TestYahooFetcher_FetchBars(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"chart":{"result":[{
			"timestamp":[1704412800,1705017600,1705622400],
			"indicators":{"quote":[{
				"open":[100,null,102],
				"high":[101,null,103],
				"low":[99,null,101],
				"close":[100.5,null,102.5],
				"volume":[1000,null,1200]
			}]}
		}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	bars, err := f.FetchBars(context.Background(), "NIFTY", model.TimeframeWeekly, 10)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^NSEI", gotPath)
	assert.Equal(t, "interval=1wk&range=3mo", gotQuery)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 102.5, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchBars(context.Background(), "NOPE", model.TimeframeDaily, 10)
	assert.ErrorContains(t, err, "No data found")
}

func TestYahooRange(t *testing.T) {
	assert.Equal(t, "6mo", yahooRange(model.TimeframeWeekly, 20))
	assert.Equal(t, "5y", yahooRange(model.TimeframeWeekly, 200))
	assert.Equal(t, "1y", yahooRange(model.TimeframeDaily, 200))
	assert.Equal(t, "2y", yahooRange(model.TimeframeDaily, 300))
}

func TestVsTraderFetcher_WeeklyFallsBackToDaily(t *testing.T) {
	var daily []vsBar
	for _, d := range []int{1, 2, 3, 4, 5, 8, 9, 10, 11, 12} {
		daily = append(daily, vsBar{Timestamp: jan(d).Unix(), Open: 1, High: 2, Low: 1, Close: float64(d), Volume: 1})
	}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/v1/bars/weekly":
			http.Error(w, "not supported", http.StatusNotFound)
		case "/api/v1/bars/daily":
			assert.Equal(t, "^NSEI", r.URL.Query().Get("symbol"))
			_ = json.NewEncoder(w).Encode(daily)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewVsTraderFetcher(srv.URL, "secret", "")
	f.Now = func() time.Time { return jan(15) }

	bars, err := f.FetchBars(context.Background(), "^NSEI", model.TimeframeWeekly, 10)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth)
	require.Len(t, bars, 2)
	assert.Equal(t, jan(5), bars[0].Time)
	assert.Equal(t, 5.0, bars[0].Close)
	assert.Equal(t, jan(12), bars[1].Time)
	assert.Equal(t, 12.0, bars[1].Close)
}

func TestVsTraderFetcher_DailyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewVsTraderFetcher(srv.URL, "", "")
	_, err := f.FetchBars(context.Background(), "X", model.TimeframeDaily, 10)
	assert.ErrorContains(t, err, "status 500")

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "vstrader", se.Source)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}
