package detector

import (
	"math"

	"signal_bot/internal/models"
)

// detectCrosses — пересечение быстрой и медленной EMA по закрытиям.
// Трендовый фильтр (EMA TrendEMAPeriod) работает, только когда она прогрета на этом индексе.
func detectCrosses(sc *scan) ([]Result, error) {
	stop := sc.lastEvaluable()
	start := sc.cfg.EMASlow
	if start < 1 {
		start = 1
	}
	if start >= stop {
		return nil, ErrInsufficientData
	}

	closes := sc.series.Closes()
	fast := newEMALine(closes, sc.cfg.EMAFast)
	slow := newEMALine(closes, sc.cfg.EMASlow)

	var trend *emaLine
	if sc.cfg.TrendEMAPeriod > 0 {
		t := newEMALine(closes, sc.cfg.TrendEMAPeriod)
		trend = &t
	}

	var out []Result
	for i := start; i < stop; i++ {
		f, s := fast.values[i], slow.values[i]
		pf, ps := fast.values[i-1], slow.values[i-1]

		var kind models.SignalKind
		switch {
		case f > s && pf <= ps:
			kind = models.KindEMACrossBullish
		case f < s && pf >= ps:
			kind = models.KindEMACrossBearish
		default:
			continue
		}

		trendValue, pass := trendAllows(trend, i, closes[i], kind.Side())
		if !pass {
			continue
		}

		if s == 0 || !finite(s) || !finite(f) {
			out = append(out, reject(computeErr(DetectorCross, i, "bad ema values fast=%v slow=%v", f, s)))
			continue
		}
		strength := math.Min(math.Abs(f-s)/s*100, maxStrength)

		out = append(out, sc.candidate(DetectorCross, i, kind, strength, models.CrossMeta{
			EMAFast:  f,
			EMASlow:  s,
			EMATrend: trendValue,
		}))
	}
	return out, nil
}

// trendAllows: лонг только над трендовой EMA, шорт только под ней. Нет EMA — пропускаем.
func trendAllows(trend *emaLine, i int, price float64, side models.Side) (float64, bool) {
	if trend == nil || !trend.ready[i] {
		return 0, true
	}
	v := trend.values[i]
	if side == models.SideBuy {
		return v, price > v
	}
	return v, price < v
}
