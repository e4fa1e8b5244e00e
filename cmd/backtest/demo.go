package main

import (
	"time"

	"signal_bot/internal/models"
)

// demoSeries: 120 свечей 15m: рост 100 -> 129.5, затем падение.
// Объём циклический, чтобы средние не были плоскими.
func demoSeries() *models.CandleSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, 120)
	for i := range candles {
		p := 100 + float64(i)*0.5
		if i >= 60 {
			p = 130 - float64(i-60)*0.7
		}
		candles[i] = models.Candle{
			Time:   start.Add(time.Duration(i) * 15 * time.Minute),
			Open:   p,
			High:   p + 1,
			Low:    p - 1,
			Close:  p,
			Volume: float64(100 + (i*37)%900),
		}
	}
	return models.MustCandleSeries(candles)
}
