package detector

// emaState — EMA с нормировкой весов: value = Σ(1-α)^k·x_{t-k} / Σ(1-α)^k.
// Первые значения не тянутся к стартовой цене, как у рекурсивной формы.
type emaState struct {
	period int
	alpha  float64
	num    float64
	den    float64
	warmup int
}

func newEMA(period int) emaState {
	if period <= 1 {
		period = 1
	}
	return emaState{
		period: period,
		alpha:  2.0 / (float64(period) + 1),
	}
}

func (e *emaState) Update(price float64) {
	decay := 1 - e.alpha
	e.num = price + decay*e.num
	e.den = 1 + decay*e.den
	if e.warmup < e.period {
		e.warmup++
	}
}

func (e *emaState) Ready() bool { return e.warmup >= e.period }

func (e *emaState) Value() float64 {
	if e.den == 0 {
		return 0
	}
	return e.num / e.den
}

// emaLine — EMA по всей серии, параллельный массив к свечам.
// ready[i] == true когда на индексе i накоплено period значений.
type emaLine struct {
	values []float64
	ready  []bool
}

func newEMALine(prices []float64, period int) emaLine {
	e := newEMA(period)
	l := emaLine{
		values: make([]float64, len(prices)),
		ready:  make([]bool, len(prices)),
	}
	for i, p := range prices {
		e.Update(p)
		l.values[i] = e.Value()
		l.ready[i] = e.Ready()
	}
	return l
}
