package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadCSV(t *testing.T) {
	data := "Date,Open,High,Low,Close,Volume\n" +
		"2024-01-01 00:00:00,1.0,1.2,0.9,1.1,100\n" +
		"2024-01-01 00:15:00,1.1,1.3,1.0,1.2,150\n"

	s, err := loadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC), s.At(1).Time)
	assert.Equal(t, 1.3, s.At(1).High)
	assert.Equal(t, 150.0, s.At(1).Volume)
}

func TestLoadCSV_UnixMillisAndColumnOrder(t *testing.T) {
	data := "volume,close,low,high,open,timestamp\n" +
		"10,101,99,102,100,1704067200000\n"

	s, err := loadCSV(strings.NewReader(data))
	require.NoError(t, err)
	c := s.At(0)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), c.Time)
	assert.Equal(t, 100.0, c.Open)
	assert.Equal(t, 101.0, c.Close)
}

func TestLoadCSV_Errors(t *testing.T) {
	cases := map[string]string{
		"no time column": "open,high,low,close,volume\n1,1,1,1,1\n",
		"no volume":      "timestamp,open,high,low,close\n1704067200000,1,1,1,1\n",
		"bad number":     "timestamp,open,high,low,close,volume\n1704067200000,x,1,1,1,1\n",
		"bad time":       "timestamp,open,high,low,close,volume\nyesterday,1,1,1,1,1\n",
		"unsorted": "timestamp,open,high,low,close,volume\n" +
			"1704067300000,1,1,1,1,1\n1704067200000,1,1,1,1,1\n",
		"empty": "",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadCSV(strings.NewReader(data))
			assert.Error(t, err)
		})
	}
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "demo", "--symbol", "DEMO")
	require.NoError(t, err)
	assert.Contains(t, out, "DEMO 15m: 120 candles")
	assert.Contains(t, out, "01) ")
	assert.Contains(t, out, "EMA_CROSS_BEARISH")
	assert.Contains(t, out, "candles=120")
}

func TestRun_File(t *testing.T) {
	var b strings.Builder
	b.WriteString("timestamp,open,high,low,close,volume\n")
	s := demoSeries()
	for _, c := range s.Candles() {
		b.WriteString(strings.Join([]string{
			c.Time.Format(time.RFC3339),
			ftoa(c.Open), ftoa(c.High), ftoa(c.Low), ftoa(c.Close), ftoa(c.Volume),
		}, ","))
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	out, err := execute(t, "run", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "XRPUSDT 15m: 120 candles")
	assert.Contains(t, out, "EMA_CROSS_BEARISH")
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func TestRun_Errors(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)

	_, err = execute(t, "run", "--file", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	// невалидный конфиг детектора
	_, err = execute(t, "demo", "--min-profit", "0")
	assert.Error(t, err)
}

func TestRun_TooShort(t *testing.T) {
	out, err := execute(t, "demo", "--min-candles", "500")
	require.NoError(t, err)
	assert.Contains(t, out, "no profitable signals")
	assert.Contains(t, out, "skipped")
}
