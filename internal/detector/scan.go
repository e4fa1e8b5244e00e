package detector

import (
	"math"

	"signal_bot/internal/models"
)

// scan — всё, что детекторы читают за один прогон. Живёт ровно один вызов Analyze.
type scan struct {
	cfg    Config
	eval   Evaluator
	series *models.CandleSeries
	swings Swings
}

// lastEvaluable — первый индекс, для которого уже нет полного форвард-окна.
func (sc *scan) lastEvaluable() int {
	return sc.series.Len() - sc.cfg.ValidityCandles
}

// candidate собирает сигнал и сразу прогоняет его через Evaluator.
func (sc *scan) candidate(det Detector, index int, kind models.SignalKind, strength float64, meta models.Meta) Result {
	if !kind.Valid() {
		return reject(computeErr(det, index, "unknown kind %q", kind))
	}
	if !finite(strength) {
		return reject(computeErr(det, index, "strength %v", strength))
	}

	prof, err := sc.eval.Evaluate(sc.series, index, kind.Side())
	if err != nil {
		if ce, ok := err.(*ComputationError); ok {
			ce.Detector = det
		}
		return reject(err)
	}

	c := sc.series.At(index)
	return accept(models.Signal{
		Index:         index,
		Time:          c.Time,
		Kind:          kind,
		EntryPrice:    c.Close,
		Strength:      strength,
		Meta:          meta,
		Profitability: prof,
	})
}

// volumeConfirmed: объём свечи выше среднего за lookback свечей до неё в VolumeRatio раз.
func (sc *scan) volumeConfirmed(index, lookback int) bool {
	avg, ok := sc.series.MeanVolume(index-lookback, index)
	if !ok {
		return false
	}
	return sc.series.At(index).Volume > avg*sc.cfg.VolumeRatio
}

const (
	momentumBars = 5
	maxStrength  = 5.0
)

// momentumStrength — композит объём/импульс: 1 + 1 за подтверждение объёмом
// + изменение цены за 5 свечей в процентах, если оно по направлению. Не больше 5.
func (sc *scan) momentumStrength(det Detector, index int, side models.Side) (float64, error) {
	strength := 1.0
	if sc.volumeConfirmed(index, sc.cfg.VolumeLookback) {
		strength++
	}

	if index < momentumBars {
		return 1.0, computeErr(det, index, "momentum needs %d bars", momentumBars)
	}
	base := sc.series.At(index - momentumBars).Close
	if base == 0 {
		return 1.0, computeErr(det, index, "zero close at %d", index-momentumBars)
	}
	change := sc.series.At(index).Close/base - 1

	if (side == models.SideBuy && change > 0) || (side == models.SideSell && change < 0) {
		strength += math.Abs(change) * 100
	}
	return math.Min(strength, maxStrength), nil
}

// degraded помечает результат, если сила посчитана по умолчанию.
func degraded(r Result, strengthErr error) Result {
	if strengthErr != nil && r.Err == nil {
		r.Fallback = true
	}
	return r
}
