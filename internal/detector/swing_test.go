package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func highsLows(t *testing.T, highs, lows []float64) []ohlcv {
	t.Helper()
	require.Equal(t, len(highs), len(lows))
	rows := make([]ohlcv, len(highs))
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		rows[i] = ohlcv{mid, highs[i], lows[i], mid, 100}
	}
	return rows
}

func TestAnnotateSwings(t *testing.T) {
	highs := []float64{10, 11, 12, 15, 12, 11, 10, 11, 12}
	lows := make([]float64, len(highs))
	for i, h := range highs {
		lows[i] = h - 2
	}
	s := seriesOf(t, highsLows(t, highs, lows))

	sw, errs := AnnotateSwings(s, 2, 2)
	require.Empty(t, errs)
	assert.Equal(t, []int{3}, sw.HighIndices())
	assert.Equal(t, []int{6}, sw.LowIndices())
	assert.Len(t, sw.High, s.Len())
	assert.Len(t, sw.Low, s.Len())
}

func TestAnnotateSwings_Plateau(t *testing.T) {
	highs := []float64{10, 11, 15, 15, 11, 10}
	lows := []float64{9, 10, 14, 14, 10, 9}
	s := seriesOf(t, highsLows(t, highs, lows))

	sw, errs := AnnotateSwings(s, 1, 1)
	require.Empty(t, errs)
	assert.Empty(t, sw.HighIndices())
}

func TestAnnotateSwings_OutsideBar(t *testing.T) {
	highs := []float64{10, 11, 20, 11, 10}
	lows := []float64{9, 10, 1, 10, 9}
	s := seriesOf(t, highsLows(t, highs, lows))

	sw, errs := AnnotateSwings(s, 1, 1)
	require.Empty(t, errs)
	assert.False(t, sw.High[2])
	assert.False(t, sw.Low[2])
}

func TestAnnotateSwings_EdgesNeverFlagged(t *testing.T) {
	// максимум на первой и минимум на последней свече
	highs := []float64{20, 11, 12, 11, 10}
	lows := []float64{19, 10, 11, 10, 1}
	s := seriesOf(t, highsLows(t, highs, lows))

	sw, _ := AnnotateSwings(s, 1, 1)
	assert.False(t, sw.High[0])
	assert.False(t, sw.Low[4])
	assert.Equal(t, []int{2}, sw.HighIndices())
}

func TestAnnotateSwings_ShortSeries(t *testing.T) {
	s := linePrices(t, []float64{1, 2, 3, 4}, 0.5, nil)

	sw, errs := AnnotateSwings(s, 3, 3)
	assert.Empty(t, errs)
	assert.Empty(t, sw.HighIndices())
	assert.Empty(t, sw.LowIndices())
}

func TestAnnotateSwings_RiseThenFall(t *testing.T) {
	s := linePrices(t, riseThenFall(), 1, cyclicVolume)

	sw, errs := AnnotateSwings(s, 3, 3)
	require.Empty(t, errs)
	assert.Equal(t, []int{60}, sw.HighIndices())
	assert.Empty(t, sw.LowIndices())
}
