package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidSeries = errors.New("invalid candle series")

// Candle: закрытая свеча OHLCV.
type Candle struct {
	Time   time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

func (c Candle) Bullish() bool { return c.Close > c.Open }
func (c Candle) Bearish() bool { return c.Close < c.Open }

// CandleSeries: неизменяемый упорядоченный срез свечей.
// Все детекторы читают только его, индексы сигналов — позиции в этом срезе.
type CandleSeries struct {
	candles []Candle
}

// NewCandleSeries копирует входные свечи и проверяет контракт апстрима:
// хотя бы одна свеча, значения конечны, время строго растёт, цены и объём неотрицательны, high >= low.
func NewCandleSeries(candles []Candle) (*CandleSeries, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSeries)
	}
	for i, c := range candles {
		if !finite(c.Open) || !finite(c.High) || !finite(c.Low) || !finite(c.Close) || !finite(c.Volume) {
			return nil, fmt.Errorf("%w: non-finite value at %d", ErrInvalidSeries, i)
		}
		if c.Open < 0 || c.High < 0 || c.Low < 0 || c.Close < 0 || c.Volume < 0 {
			return nil, fmt.Errorf("%w: negative value at %d", ErrInvalidSeries, i)
		}
		if c.High < c.Low {
			return nil, fmt.Errorf("%w: high < low at %d", ErrInvalidSeries, i)
		}
		if i > 0 && !c.Time.After(candles[i-1].Time) {
			return nil, fmt.Errorf("%w: timestamp not increasing at %d", ErrInvalidSeries, i)
		}
	}
	cp := make([]Candle, len(candles))
	copy(cp, candles)
	return &CandleSeries{candles: cp}, nil
}

// MustCandleSeries для тестов и демо.
func MustCandleSeries(candles []Candle) *CandleSeries {
	s, err := NewCandleSeries(candles)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *CandleSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.candles)
}

func (s *CandleSeries) At(i int) Candle { return s.candles[i] }

func (s *CandleSeries) Last() Candle { return s.candles[len(s.candles)-1] }

// Candles возвращает копию.
func (s *CandleSeries) Candles() []Candle {
	cp := make([]Candle, len(s.candles))
	copy(cp, s.candles)
	return cp
}

func (s *CandleSeries) Highs() []float64 { return s.column(func(c Candle) float64 { return c.High }) }
func (s *CandleSeries) Lows() []float64  { return s.column(func(c Candle) float64 { return c.Low }) }
func (s *CandleSeries) Closes() []float64 {
	return s.column(func(c Candle) float64 { return c.Close })
}
func (s *CandleSeries) Volumes() []float64 {
	return s.column(func(c Candle) float64 { return c.Volume })
}

func (s *CandleSeries) column(f func(Candle) float64) []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = f(c)
	}
	return out
}

// MeanVolume: средний объём на [from, to). Пустое окно -> (0, false).
func (s *CandleSeries) MeanVolume(from, to int) (float64, bool) {
	if from < 0 {
		from = 0
	}
	if to > len(s.candles) {
		to = len(s.candles)
	}
	if to <= from {
		return 0, false
	}
	sum := 0.0
	for i := from; i < to; i++ {
		sum += s.candles[i].Volume
	}
	mean := sum / float64(to-from)
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return 0, false
	}
	return mean, true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
