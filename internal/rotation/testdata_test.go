package rotation

import (
	"math"
	"time"

	"RRGSentinel/internal/model"
)

var baseDate = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

func benchmarkSeries(n int) model.Security {
	pts := make([]model.PricePoint, n)
	for i := 0; i < n; i++ {
		pts[i] = model.PricePoint{
			Date:  baseDate.AddDate(0, 0, 7*i),
			Close: 100 + 0.5*float64(i) + 3*math.Sin(float64(i)/5),
		}
	}
	return model.Security{ID: "BENCH", Label: "Benchmark", Points: pts}
}

// relativeSeries drifts against the benchmark with a slow oscillation.
func relativeSeries(id string, bench model.Security, drift, phase float64) model.Security {
	pts := make([]model.PricePoint, len(bench.Points))
	for i, b := range bench.Points {
		rel := 1 + drift*float64(i) + 0.03*math.Sin(float64(i)/7+phase)
		pts[i] = model.PricePoint{Date: b.Date, Close: b.Close * rel}
	}
	return model.Security{ID: id, Label: id + " Ltd", Points: pts}
}
