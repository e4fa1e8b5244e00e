package detector

import (
	"signal_bot/internal/models"
)

// detectLiquidityGrabs — тень пробивает один из последних свингов больше чем на LiquidityWickPct,
// а закрытие возвращается за уровень. По каждой стороне берётся первый подошедший уровень.
func detectLiquidityGrabs(sc *scan) ([]Result, error) {
	stop := sc.lastEvaluable()
	if sc.cfg.LiquidityStart >= stop {
		return nil, ErrInsufficientData
	}

	highs := lastN(sc.swings.HighIndices(), sc.cfg.LiquidityLevels)
	lows := lastN(sc.swings.LowIndices(), sc.cfg.LiquidityLevels)
	if len(highs) == 0 && len(lows) == 0 {
		return nil, ErrInsufficientData
	}

	margin := sc.cfg.LiquidityWickPct / 100

	var out []Result
	for i := sc.cfg.LiquidityStart; i < stop; i++ {
		cur := sc.series.At(i)

		for _, idx := range highs {
			level := sc.series.At(idx).High
			if cur.High > level*(1+margin) && cur.Close < level {
				out = append(out, sc.candidate(DetectorLiquidity, i, models.KindLiquidityGrabBearish,
					sc.cfg.GrabStrength, models.LiquidityMeta{GrabbedLevel: level}))
				break
			}
		}

		for _, idx := range lows {
			level := sc.series.At(idx).Low
			if cur.Low < level*(1-margin) && cur.Close > level {
				out = append(out, sc.candidate(DetectorLiquidity, i, models.KindLiquidityGrabBullish,
					sc.cfg.GrabStrength, models.LiquidityMeta{GrabbedLevel: level}))
				break
			}
		}
	}
	return out, nil
}

func lastN(xs []int, n int) []int {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
