package detector

import (
	"signal_bot/internal/models"
)

// detectStructure — BOS по пробою swing high закрытием и CHoCH по пробою swing low.
// Для каждого свинга, кроме последнего, берётся только первый пробой.
func detectStructure(sc *scan) ([]Result, error) {
	highs := sc.swings.HighIndices()
	lows := sc.swings.LowIndices()
	if len(highs) < 2 || len(lows) < 2 {
		return nil, ErrInsufficientData
	}

	out := make([]Result, 0, len(highs)+len(lows))
	out = append(out, sc.breaks(highs, models.KindBOSBullish)...)
	out = append(out, sc.breaks(lows, models.KindCHoCHBearish)...)
	return out, nil
}

func (sc *scan) breaks(swings []int, kind models.SignalKind) []Result {
	side := kind.Side()
	stop := sc.lastEvaluable()
	out := make([]Result, 0, len(swings))

	for k, idx := range swings {
		// последний свинг ещё нечем пробивать
		if k == len(swings)-1 {
			continue
		}

		level := sc.series.At(idx).High
		if side == models.SideSell {
			level = sc.series.At(idx).Low
		}

		for j := idx + 1; j < stop; j++ {
			cl := sc.series.At(j).Close
			broken := (side == models.SideBuy && cl > level) || (side == models.SideSell && cl < level)
			if !broken {
				continue
			}

			strength, err := sc.momentumStrength(DetectorStructure, j, side)
			meta := models.StructureMeta{
				BrokenLevel:     level,
				VolumeConfirmed: sc.volumeConfirmed(j, sc.cfg.VolumeLookback),
			}
			out = append(out, degraded(sc.candidate(DetectorStructure, j, kind, strength, meta), err))
			break
		}
	}
	return out
}
