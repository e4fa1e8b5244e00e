package main

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
)

var timeColumns = []string{"timestamp", "date", "time", "open_time"}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// loadCSV читает свечи с заголовком: время + open,high,low,close,volume.
// Порядок колонок любой, регистр не важен.
func loadCSV(r io.Reader) (*models.CandleSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	timeCol := -1
	for _, name := range timeColumns {
		if i, ok := idx[name]; ok {
			timeCol = i
			break
		}
	}
	if timeCol < 0 {
		return nil, errors.New("no time column (timestamp/date/time/open_time)")
	}
	cols := make([]int, 0, 5)
	for _, name := range []string{"open", "high", "low", "close", "volume"} {
		i, ok := idx[name]
		if !ok {
			return nil, errors.Errorf("no %q column", name)
		}
		cols = append(cols, i)
	}

	var candles []models.Candle
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		ts, err := parseTime(rec[timeCol])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		var v [5]float64
		for k, c := range cols {
			v[k], err = strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: %s", line, header[c])
			}
		}
		candles = append(candles, models.Candle{
			Time:   ts,
			Open:   v[0],
			High:   v[1],
			Low:    v[2],
			Close:  v[3],
			Volume: v[4],
		})
	}

	return models.NewCandleSeries(candles)
}

// parseTime: unix-миллисекунды (как у Binance) либо одна из текстовых раскладок.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("bad time %q", s)
}
