package detector

import (
	"math"

	"signal_bot/internal/models"
)

// Swings — флаги локальных экстремумов, индексированы как свечи серии.
type Swings struct {
	High []bool
	Low  []bool
}

func (s Swings) HighIndices() []int { return flagged(s.High) }
func (s Swings) LowIndices() []int  { return flagged(s.Low) }

func flagged(xs []bool) []int {
	out := make([]int, 0, len(xs)/4)
	for i, v := range xs {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// AnnotateSwings помечает swing high/low по окну left/right.
// Индекс i — swing high, если его high строго выше всех high на [i-left, i+right] кроме него самого
// (плато не считаем). Для swing low — зеркально по low.
// Края серии, где окна не хватает, не помечаются. Ошибка на индексе гасит только этот индекс.
//
// Если свеча поглощает всё окно с обеих сторон (outside bar), она одновременно и максимум, и минимум;
// такой индекс не помечается ни как high, ни как low.
func AnnotateSwings(s *models.CandleSeries, left, right int) (Swings, []error) {
	n := s.Len()
	sw := Swings{
		High: make([]bool, n),
		Low:  make([]bool, n),
	}
	if left < 1 || right < 1 || n < left+right+1 {
		return sw, nil
	}

	var errs []error
	for i := left; i <= n-right-1; i++ {
		hi, lo, err := swingAt(s, i, left, right)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if hi && lo {
			continue
		}
		sw.High[i] = hi
		sw.Low[i] = lo
	}
	return sw, errs
}

func swingAt(s *models.CandleSeries, i, left, right int) (bool, bool, error) {
	cur := s.At(i)
	if !finite(cur.High) || !finite(cur.Low) {
		return false, false, computeErr(DetectorSwing, i, "non-finite high/low")
	}

	maxHigh := math.Inf(-1)
	minLow := math.Inf(1)
	for j := i - left; j <= i+right; j++ {
		if j == i {
			continue
		}
		c := s.At(j)
		if !finite(c.High) || !finite(c.Low) {
			return false, false, computeErr(DetectorSwing, i, "non-finite neighbour at %d", j)
		}
		maxHigh = math.Max(maxHigh, c.High)
		minLow = math.Min(minLow, c.Low)
	}

	return cur.High > maxHigh, cur.Low < minLow, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
