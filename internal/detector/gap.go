package detector

import (
	"math"

	"signal_bot/internal/models"
)

const gapStrengthUnit = 0.5 // гэп 0.5% = сила 1

// detectGaps — Fair Value Gap: свечи i-2 и i не перекрываются, i-1 тоже не заходит в зону.
func detectGaps(sc *scan) ([]Result, error) {
	stop := sc.lastEvaluable()
	if stop <= 2 {
		return nil, ErrInsufficientData
	}

	var out []Result
	for i := 2; i < stop; i++ {
		prev2 := sc.series.At(i - 2)
		prev1 := sc.series.At(i - 1)
		cur := sc.series.At(i)

		switch {
		case cur.Low > prev2.High && prev1.Low > prev2.High:
			if prev2.High <= 0 {
				out = append(out, reject(computeErr(DetectorGap, i, "zero high at %d", i-2)))
				continue
			}
			gap := (cur.Low - prev2.High) / prev2.High * 100
			if gap < sc.cfg.MinGapPct {
				continue
			}
			out = append(out, sc.candidate(DetectorGap, i, models.KindFVGBullish, gapStrength(gap), models.GapMeta{
				GapPct:      gap,
				RangeLow:    prev2.High,
				RangeHigh:   cur.Low,
				VolumeSpike: sc.gapVolumeSpike(i),
			}))

		case cur.High < prev2.Low && prev1.High < prev2.Low:
			if cur.High <= 0 {
				out = append(out, reject(computeErr(DetectorGap, i, "zero high")))
				continue
			}
			gap := (prev2.Low - cur.High) / cur.High * 100
			if gap < sc.cfg.MinGapPct {
				continue
			}
			out = append(out, sc.candidate(DetectorGap, i, models.KindFVGBearish, gapStrength(gap), models.GapMeta{
				GapPct:      gap,
				RangeLow:    cur.High,
				RangeHigh:   prev2.Low,
				VolumeSpike: sc.gapVolumeSpike(i),
			}))
		}
	}
	return out, nil
}

// gapVolumeSpike: всплеск считается только при полном окне GapVolumeLookback свечей до i.
func (sc *scan) gapVolumeSpike(i int) bool {
	lb := sc.cfg.GapVolumeLookback
	return i >= lb && sc.volumeConfirmed(i, lb)
}

func gapStrength(gapPct float64) float64 {
	return math.Min(gapPct/gapStrengthUnit, maxStrength)
}
