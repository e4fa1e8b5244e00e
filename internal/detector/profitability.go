package detector

import (
	"fmt"
	"math"

	"signal_bot/internal/models"
)

// Evaluator прогоняет кандидата вперёд на ValidityCandles свечей и считает,
// дотянулась ли цена до цели и насколько глубокой была просадка.
type Evaluator struct {
	minProfitPct float64
	stopLossPct  float64
	validity     int
}

func NewEvaluator(cfg Config) Evaluator {
	return Evaluator{
		minProfitPct: cfg.MinProfitPct,
		stopLossPct:  cfg.StopLossPct,
		validity:     cfg.ValidityCandles,
	}
}

// Evaluate возвращает ErrInsufficientData, если после index осталось меньше validity свечей.
// Окно сканируется целиком: и цель, и стоп могут быть задеты в одном окне.
func (e Evaluator) Evaluate(s *models.CandleSeries, index int, side models.Side) (models.Profitability, error) {
	if index < 0 || index >= s.Len()-e.validity {
		return models.Profitability{}, fmt.Errorf("%w: index %d has no forward window of %d", ErrInsufficientData, index, e.validity)
	}

	entry := s.At(index).Close
	if !(entry > 0) || !finite(entry) {
		return models.Profitability{}, computeErr("profitability", index, "entry price %v", entry)
	}

	var target, stop float64
	switch side {
	case models.SideBuy:
		target = entry * (1 + e.minProfitPct/100)
		stop = entry * (1 - e.stopLossPct/100)
	case models.SideSell:
		target = entry * (1 - e.minProfitPct/100)
		stop = entry * (1 + e.stopLossPct/100)
	default:
		return models.Profitability{}, computeErr("profitability", index, "unknown side %q", side)
	}

	res := models.Profitability{
		EntryPrice:  entry,
		TargetPrice: target,
		StopPrice:   stop,
	}

	end := index + e.validity + 1
	if end > s.Len() {
		end = s.Len()
	}
	for j := index + 1; j < end; j++ {
		c := s.At(j)

		var profit, loss float64
		if side == models.SideBuy {
			if c.High >= target {
				res.HitTarget = true
			}
			if c.Low <= stop {
				res.HitStop = true
			}
			profit = (c.High - entry) / entry * 100
			loss = (c.Low - entry) / entry * 100
		} else {
			if c.Low <= target {
				res.HitTarget = true
			}
			if c.High >= stop {
				res.HitStop = true
			}
			profit = (entry - c.Low) / entry * 100
			loss = (entry - c.High) / entry * 100
		}

		res.MaxProfitPct = math.Max(res.MaxProfitPct, profit)
		res.MaxLossPct = math.Min(res.MaxLossPct, loss)
	}

	if res.MaxLossPct != 0 {
		res.RiskReward = res.MaxProfitPct / math.Abs(res.MaxLossPct)
	} else {
		res.RiskReward = math.Inf(1)
	}
	res.IsProfitable = res.MaxProfitPct >= e.minProfitPct

	return res, nil
}
