package detector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

func rankSignal(index int, rr, strength float64, prof bool, meta models.Meta) models.Signal {
	return models.Signal{
		Index:    index,
		Kind:     models.KindBOSBullish,
		Strength: strength,
		Meta:     meta,
		Profitability: models.Profitability{
			RiskReward:   rr,
			IsProfitable: prof,
		},
	}
}

func TestScore(t *testing.T) {
	plain := rankSignal(90, 2, 3, true, models.StructureMeta{})
	assert.InDelta(t, 6+1, Score(plain, 100), 1e-9)

	confirmed := rankSignal(90, 2, 3, true, models.StructureMeta{VolumeConfirmed: true})
	assert.InDelta(t, 7.2+1, Score(confirmed, 100), 1e-9)

	// всплеск объёма у FVG бонуса не даёт
	spike := rankSignal(95, 2, 3, true, models.GapMeta{VolumeSpike: true})
	assert.InDelta(t, 6+0.5, Score(spike, 100), 1e-9)

	// +Inf * 0 не должен давать NaN
	zero := rankSignal(50, math.Inf(1), 0, true, models.CrossMeta{})
	assert.InDelta(t, 5, Score(zero, 100), 1e-9)

	inf := rankSignal(50, math.Inf(1), 1, true, models.CrossMeta{})
	assert.True(t, math.IsInf(Score(inf, 100), 1))

	// индекс за пределами длины не даёт отрицательного бонуса
	late := rankSignal(120, 1, 1, true, nil)
	assert.InDelta(t, 1, Score(late, 100), 1e-9)
}

func TestRank(t *testing.T) {
	signals := []models.Signal{
		rankSignal(10, 1, 1, true, nil),   // 1 + 9
		rankSignal(20, 5, 2, true, nil),   // 10 + 8
		rankSignal(30, 9, 9, false, nil),  // неприбыльный
		rankSignal(40, 1, 4, true, nil),   // 4 + 6, как у первого
		rankSignal(50, 1, 5, true, nil),   // 5 + 5
		rankSignal(60, 0.5, 2, true, nil), // 1 + 4
	}

	ranked := Rank(signals, 100, 10)
	require.Len(t, ranked, 5)
	got := make([]int, len(ranked))
	for i, s := range ranked {
		got[i] = s.Index
	}
	// при равном счёте — порядок детекции
	assert.Equal(t, []int{20, 10, 40, 50, 60}, got)

	top := Rank(signals, 100, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 20, top[0].Index)
	assert.Equal(t, 10, top[1].Index)
}

func TestRank_Empty(t *testing.T) {
	ranked := Rank(nil, 100, 10)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}
