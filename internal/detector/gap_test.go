package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

func TestDetectGaps_Bullish(t *testing.T) {
	s := seriesOf(t, []ohlcv{
		{100, 101, 99, 100, 100},
		{102, 104, 101.5, 103.5, 100},
		{104, 105, 103, 104.5, 400},
		{104.5, 108, 104, 107, 100},
		{107, 109, 106, 108, 100},
		{108, 109, 107, 108, 100},
	})
	sc := newTestScan(t, s, smallConfig(nil))

	results, err := detectGaps(sc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	sig := results[0].Signal
	assert.Equal(t, 2, sig.Index)
	assert.Equal(t, models.KindFVGBullish, sig.Kind)
	assert.Equal(t, models.SideBuy, sig.Side())
	assert.Equal(t, 104.5, sig.EntryPrice)
	assert.Equal(t, s.At(2).Time, sig.Time)
	assert.InDelta(t, 3.960396, sig.Strength, 1e-6)

	meta, ok := sig.Meta.(models.GapMeta)
	require.True(t, ok)
	assert.InDelta(t, 1.980198, meta.GapPct, 1e-6)
	assert.Equal(t, 101.0, meta.RangeLow)
	assert.Equal(t, 103.0, meta.RangeHigh)
	// до 5-й свечи окна объёма нет: всплеск не засчитывается, хотя к двум свечам он есть
	assert.False(t, meta.VolumeSpike)
	assert.True(t, sc.volumeConfirmed(2, sc.cfg.GapVolumeLookback))
	assert.False(t, sig.VolumeConfirmed())

	p := sig.Profitability
	assert.True(t, p.IsProfitable)
	assert.InDelta(t, 4.30622, p.MaxProfitPct, 1e-5)
	assert.InDelta(t, -0.478469, p.MaxLossPct, 1e-6)
	assert.InDelta(t, 9.0, p.RiskReward, 1e-9)
	assert.True(t, p.HitTarget)
	assert.False(t, p.HitStop)
}

func TestDetectGaps_VolumeSpikeNeedsFullWindow(t *testing.T) {
	s := seriesOf(t, []ohlcv{
		{100, 100.5, 99.5, 100, 100},
		{100, 100.5, 99.5, 100, 100},
		{100, 100.5, 99.5, 100, 100},
		{100, 100.5, 99.5, 100, 100},
		{100, 101, 99.5, 100.8, 100},
		{101, 104, 101.5, 103.5, 100},
		{104, 105, 103, 104.5, 400},
		{104.5, 108, 104, 107, 100},
		{107, 109, 106, 108, 100},
	})
	sc := newTestScan(t, s, smallConfig(nil))

	results, err := detectGaps(sc)
	require.NoError(t, err)
	require.Len(t, results, 1)

	sig := results[0].Signal
	assert.Equal(t, 6, sig.Index)
	assert.InDelta(t, 1.980198, sig.Meta.(models.GapMeta).GapPct, 1e-6)
	assert.True(t, sig.Meta.(models.GapMeta).VolumeSpike)
}

func TestDetectGaps_Bearish(t *testing.T) {
	s := seriesOf(t, []ohlcv{
		{100, 101, 99, 100, 100},
		{98, 98.5, 96, 96.5, 100},
		{96, 96.8, 95, 95.5, 100},
		{95.5, 96, 93, 93.5, 100},
		{93.5, 94, 92, 92.5, 100},
		{92.5, 93, 92, 92.5, 100},
	})
	sc := newTestScan(t, s, smallConfig(nil))

	results, err := detectGaps(sc)
	require.NoError(t, err)
	require.Len(t, results, 1)

	sig := results[0].Signal
	assert.Equal(t, 2, sig.Index)
	assert.Equal(t, models.KindFVGBearish, sig.Kind)
	assert.InDelta(t, 4.545455, sig.Strength, 1e-6)

	meta := sig.Meta.(models.GapMeta)
	// делитель — high текущей свечи
	assert.InDelta(t, 2.272727, meta.GapPct, 1e-6)
	assert.Equal(t, 96.8, meta.RangeLow)
	assert.Equal(t, 99.0, meta.RangeHigh)
	assert.False(t, meta.VolumeSpike)

	assert.InDelta(t, 3.664921, sig.Profitability.MaxProfitPct, 1e-6)
	assert.InDelta(t, 7.0, sig.Profitability.RiskReward, 1e-6)
	assert.True(t, sig.Profitability.IsProfitable)
}

func TestDetectGaps_BelowMinGap(t *testing.T) {
	s := seriesOf(t, []ohlcv{
		{100, 101, 99, 100, 100},
		{101, 101.5, 101.1, 101.4, 100},
		{101.4, 101.8, 101.2, 101.6, 100},
		{101.6, 102, 101, 101.5, 100},
		{101.5, 102, 101, 101.5, 100},
	})
	sc := newTestScan(t, s, smallConfig(nil))

	results, err := detectGaps(sc)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDetectGaps_FlatSeries(t *testing.T) {
	prices := make([]float64, 120)
	for i := range prices {
		prices[i] = 100
	}
	sc := newTestScan(t, linePrices(t, prices, 1, nil), DefaultConfig())

	results, err := detectGaps(sc)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDetectGaps_Insufficient(t *testing.T) {
	s := linePrices(t, []float64{100, 101, 102, 103}, 0.5, nil)
	sc := newTestScan(t, s, smallConfig(nil))

	_, err := detectGaps(sc)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDetectGaps_ZeroPriceIsSoftError(t *testing.T) {
	// свеча i-2 с нулевым high: делить не на что
	s := seriesOf(t, []ohlcv{
		{0, 0, 0, 0, 100},
		{1, 2, 1, 2, 100},
		{2, 3, 2, 3, 100},
		{3, 4, 3, 4, 100},
		{4, 5, 4, 5, 100},
		{5, 6, 5, 6, 100},
	})
	sc := newTestScan(t, s, smallConfig(nil))

	results, err := detectGaps(sc)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	var ce *ComputationError
	require.ErrorAs(t, results[0].Err, &ce)
	assert.Equal(t, DetectorGap, ce.Detector)
	assert.Equal(t, 2, ce.Index)
}
