package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ohlcv: open, high, low, close, volume
type ohlcv [5]float64

func seriesOf(t *testing.T, rows []ohlcv) *models.CandleSeries {
	t.Helper()
	candles := make([]models.Candle, len(rows))
	for i, r := range rows {
		candles[i] = models.Candle{
			Time:   t0.Add(time.Duration(i) * 24 * time.Hour),
			Open:   r[0],
			High:   r[1],
			Low:    r[2],
			Close:  r[3],
			Volume: r[4],
		}
	}
	s, err := models.NewCandleSeries(candles)
	require.NoError(t, err)
	return s
}

// linePrices — свеча open=close=p, high=p+spread, low=p-spread.
func linePrices(t *testing.T, prices []float64, spread float64, volume func(i int) float64) *models.CandleSeries {
	t.Helper()
	rows := make([]ohlcv, len(prices))
	for i, p := range prices {
		v := 100.0
		if volume != nil {
			v = volume(i)
		}
		rows[i] = ohlcv{p, p + spread, p - spread, p, v}
	}
	return seriesOf(t, rows)
}

func cyclicVolume(i int) float64 { return float64(100 + (i*37)%900) }

// smallConfig — окно валидности 2 и никаких ограничений на длину серии,
// чтобы детекторы можно было гонять на десятке свечей.
func smallConfig(mod func(c *Config)) Config {
	c := DefaultConfig()
	c.ValidityCandles = 2
	c.MinCandles = 1
	if mod != nil {
		mod(&c)
	}
	return c
}

func newTestScan(t *testing.T, s *models.CandleSeries, cfg Config) *scan {
	t.Helper()
	require.NoError(t, cfg.Validate())
	sw, errs := AnnotateSwings(s, cfg.SwingLeft, cfg.SwingRight)
	require.Empty(t, errs)
	return &scan{
		cfg:    cfg,
		eval:   NewEvaluator(cfg),
		series: s,
		swings: sw,
	}
}

// riseThenFall — 120 свечей: рост 100 -> ~130 за 60 свечей, затем падение до ~89.
func riseThenFall() []float64 {
	out := make([]float64, 120)
	for i := range out {
		if i < 60 {
			out[i] = 100 + float64(i)*0.5
		} else {
			out[i] = 130 - float64(i-60)*0.7
		}
	}
	return out
}

// fallThenRise — зеркало riseThenFall: 130 -> 100.5, затем рост. 120 свечей.
func fallThenRise() []float64 {
	out := make([]float64, 120)
	for i := range out {
		if i < 60 {
			out[i] = 130 - float64(i)*0.5
		} else {
			out[i] = 100 + float64(i-60)*0.7
		}
	}
	return out
}

// dipRiseFall — спад 115 -> 100, рост до ~130, падение. 150 свечей.
func dipRiseFall() []float64 {
	out := make([]float64, 150)
	for i := range out {
		switch {
		case i < 30:
			out[i] = 115 - float64(i)*0.5
		case i < 90:
			out[i] = 100 + float64(i-30)*0.5
		default:
			out[i] = 130 - float64(i-90)*0.7
		}
	}
	return out
}

// randomWalk — детерминированное блуждание (LCG), чтобы не зависеть от math/rand.
func randomWalk(t *testing.T, n int, seed uint64) *models.CandleSeries {
	t.Helper()
	rows := make([]ohlcv, n)
	state := seed
	next := func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return float64(state>>11) / float64(1<<53)
	}
	price := 100.0
	for i := range rows {
		open := price
		cl := open * (1 + (next()-0.5)*0.06)
		hi := maxf(open, cl) * (1 + next()*0.01)
		lo := minf(open, cl) * (1 - next()*0.01)
		rows[i] = ohlcv{open, hi, lo, cl, 100 + next()*900}
		price = cl
	}
	return seriesOf(t, rows)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
