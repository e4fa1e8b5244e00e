package detector

import (
	"math"
	"sort"

	"signal_bot/internal/models"
)

const (
	volumeBonus   = 1.2
	recencyDivide = 10.0
)

// Score — RR * strength, x1.2 при подтверждении объёмом, плюс бонус (len-index)/10.
func Score(sig models.Signal, seriesLen int) float64 {
	base := sig.Profitability.RiskReward * sig.Strength
	if math.IsNaN(base) {
		// +Inf * 0
		base = 0
	}
	if sig.VolumeConfirmed() {
		base *= volumeBonus
	}
	return base + math.Max(0, float64(seriesLen-sig.Index)/recencyDivide)
}

// Rank оставляет прибыльные, сортирует по Score по убыванию и режет до topN.
// При равном счёте сохраняется порядок детекции.
func Rank(signals []models.Signal, seriesLen, topN int) []models.Signal {
	type scored struct {
		sig   models.Signal
		score float64
	}

	list := make([]scored, 0, len(signals))
	for _, s := range signals {
		if !s.Profitability.IsProfitable {
			continue
		}
		list = append(list, scored{sig: s, score: Score(s, seriesLen)})
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })

	if topN >= 0 && len(list) > topN {
		list = list[:topN]
	}
	out := make([]models.Signal, len(list))
	for i, s := range list {
		out[i] = s.sig
	}
	return out
}
