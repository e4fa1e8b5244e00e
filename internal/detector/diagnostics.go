package detector

import (
	"errors"
	"fmt"
	"strings"

	"signal_bot/internal/models"
)

// Detector — имя источника кандидатов.
type Detector string

const (
	DetectorSwing     Detector = "swing"
	DetectorStructure Detector = "structure"
	DetectorGap       Detector = "gap"
	DetectorCross     Detector = "cross"
	DetectorBlock     Detector = "block"
	DetectorLiquidity Detector = "liquidity"
)

// Detectors в порядке запуска. Порядок влияет на tie-break при ранжировании.
var Detectors = []Detector{
	DetectorSwing,
	DetectorStructure,
	DetectorGap,
	DetectorCross,
	DetectorBlock,
	DetectorLiquidity,
}

// Result — кандидат либо мягкая ошибка вычисления.
type Result struct {
	Signal   models.Signal
	Err      error
	Fallback bool // сила посчитана по умолчанию из-за ошибки вычисления
}

func accept(sig models.Signal) Result { return Result{Signal: sig} }
func reject(err error) Result         { return Result{Err: err} }

// DetectorStats — сколько кандидатов детектор дал и сколько потеряно.
type DetectorStats struct {
	Candidates   int // прибыльные, прошли в ранжирование
	Unprofitable int
	NoWindow     int // не хватило свечей для форвард-оценки
	Errors       int // ComputationError
	Fallbacks    int // сила по умолчанию
	Insufficient bool
}

// Diagnostics — счётчики мягких отказов за один прогон.
type Diagnostics struct {
	Candles int
	Skipped bool // серия короче MinCandles
	Stats   map[Detector]*DetectorStats
}

func newDiagnostics(n int) Diagnostics {
	d := Diagnostics{Candles: n, Stats: make(map[Detector]*DetectorStats, len(Detectors))}
	for _, name := range Detectors {
		d.Stats[name] = &DetectorStats{}
	}
	return d
}

func (d Diagnostics) For(name Detector) DetectorStats {
	if st, ok := d.Stats[name]; ok {
		return *st
	}
	return DetectorStats{}
}

func (d Diagnostics) TotalErrors() int {
	n := 0
	for _, st := range d.Stats {
		n += st.Errors
	}
	return n
}

func (d Diagnostics) TotalCandidates() int {
	n := 0
	for _, st := range d.Stats {
		n += st.Candidates
	}
	return n
}

// collect раскладывает результаты детектора: ошибки в счётчики, прибыльные — наружу.
func (d Diagnostics) collect(name Detector, results []Result) []models.Signal {
	st := d.Stats[name]
	out := make([]models.Signal, 0, len(results))
	for _, r := range results {
		var ce *ComputationError
		switch {
		case r.Err == nil:
		case errors.As(r.Err, &ce):
			st.Errors++
			continue
		case errors.Is(r.Err, ErrInsufficientData):
			st.NoWindow++
			continue
		default:
			st.Errors++
			continue
		}
		if r.Fallback {
			st.Fallbacks++
		}
		if !r.Signal.Profitability.IsProfitable {
			st.Unprofitable++
			continue
		}
		st.Candidates++
		out = append(out, r.Signal)
	}
	return out
}

func (d Diagnostics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "candles=%d", d.Candles)
	if d.Skipped {
		b.WriteString(" skipped")
	}
	for _, name := range Detectors {
		st := d.Stats[name]
		if st == nil {
			continue
		}
		fmt.Fprintf(&b, " %s[ok=%d unprof=%d nowin=%d err=%d fb=%d",
			name, st.Candidates, st.Unprofitable, st.NoWindow, st.Errors, st.Fallbacks)
		if st.Insufficient {
			b.WriteString(" insufficient")
		}
		b.WriteString("]")
	}
	return b.String()
}
