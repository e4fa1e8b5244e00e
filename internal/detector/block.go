package detector

import (
	"math"

	"signal_bot/internal/models"
)

const obRangeCandles = 4 // зона блока: текущая + 3 предыдущие

// detectOrderBlocks — сильная свеча после серии свечей противоположного цвета.
func detectOrderBlocks(sc *scan) ([]Result, error) {
	stop := sc.lastEvaluable()
	start := sc.cfg.OBStartIndex
	if start >= stop {
		return nil, ErrInsufficientData
	}

	var out []Result
	for i := start; i < stop; i++ {
		kind, err := sc.orderBlockKind(i)
		if err != nil {
			out = append(out, reject(err))
			continue
		}
		if kind == "" {
			continue
		}

		lo, hi := sc.blockRange(i)
		strength, err := sc.momentumStrength(DetectorBlock, i, kind.Side())
		out = append(out, degraded(sc.candidate(DetectorBlock, i, kind, strength, models.BlockMeta{
			RangeLow:  lo,
			RangeHigh: hi,
		}), err))
	}
	return out, nil
}

func (sc *scan) orderBlockKind(i int) (models.SignalKind, error) {
	ok, err := sc.isOrderBlock(i, models.SideBuy)
	if err != nil || ok {
		return models.KindOrderBlockBullish, err
	}
	if ok, err = sc.isOrderBlock(i, models.SideSell); err != nil || ok {
		return models.KindOrderBlockBearish, err
	}
	return "", nil
}

// isOrderBlock: в окне [i-OBLookback, i] не меньше OBMinOpposite свечей против направления,
// а сама свеча i — по направлению с телом больше OBMinBodyPct от open.
// Нулевой open ошибка, только если до тела дошло дело.
func (sc *scan) isOrderBlock(i int, side models.Side) (bool, error) {
	cur := sc.series.At(i)
	if (side == models.SideBuy && !cur.Bullish()) || (side == models.SideSell && !cur.Bearish()) {
		return false, nil
	}

	opposite := 0
	for j := i - sc.cfg.OBLookback; j <= i; j++ {
		c := sc.series.At(j)
		if (side == models.SideBuy && c.Bearish()) || (side == models.SideSell && c.Bullish()) {
			opposite++
		}
	}
	if opposite < sc.cfg.OBMinOpposite {
		return false, nil
	}

	if cur.Open <= 0 {
		return false, computeErr(DetectorBlock, i, "open price %v", cur.Open)
	}
	body := (cur.Close - cur.Open) / cur.Open
	if side == models.SideBuy {
		return body > sc.cfg.OBMinBodyPct, nil
	}
	return -body > sc.cfg.OBMinBodyPct, nil
}

func (sc *scan) blockRange(i int) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for j := i - obRangeCandles + 1; j <= i; j++ {
		c := sc.series.At(j)
		lo = math.Min(lo, c.Low)
		hi = math.Max(hi, c.High)
	}
	return lo, hi
}
