package detector

import "math"

// Config — параметры детектора. Держится движком всё время жизни и не меняется.
type Config struct {
	MinProfitPct    float64 `yaml:"min_profit_pct"`   // цель, % от входа
	StopLossPct     float64 `yaml:"stop_loss_pct"`    // стоп, % от входа
	ValidityCandles int     `yaml:"validity_candles"` // окно форвард-оценки, свечей
	SwingLeft       int     `yaml:"swing_left"`
	SwingRight      int     `yaml:"swing_right"`
	MinGapPct       float64 `yaml:"min_gap_pct"`
	EMAFast         int     `yaml:"ema_fast"`
	EMASlow         int     `yaml:"ema_slow"`
	TrendEMAPeriod  int     `yaml:"trend_ema"` // 0 — фильтр тренда выключен

	// Подобраны эмпирически, поэтому настраиваются.
	VolumeRatio       float64 `yaml:"volume_ratio"`        // всплеск объёма: vol > avg*ratio
	VolumeLookback    int     `yaml:"volume_lookback"`     // окно среднего объёма для BOS/CHoCH
	GapVolumeLookback int     `yaml:"gap_volume_lookback"` // окно среднего объёма для FVG
	OBLookback        int     `yaml:"ob_lookback"`         // сколько свечей до текущей смотрим
	OBMinOpposite     int     `yaml:"ob_min_opposite"`     // минимум свечей противоположного цвета
	OBMinBodyPct      float64 `yaml:"ob_min_body_pct"`     // (close-open)/open, доля
	OBStartIndex      int     `yaml:"ob_start_index"`
	LiquidityWickPct  float64 `yaml:"liquidity_wick_pct"`  // пробой уровня тенью, %
	LiquidityLevels   int     `yaml:"liquidity_levels"`    // сколько последних свингов считаем уровнями
	LiquidityStart    int     `yaml:"liquidity_start"`
	GrabStrength      float64 `yaml:"grab_strength"`

	TopN       int `yaml:"top_n"`
	MinCandles int `yaml:"min_candles"`
}

func DefaultConfig() Config {
	return Config{
		MinProfitPct:    1.5,
		StopLossPct:     1.0,
		ValidityCandles: 10,
		SwingLeft:       3,
		SwingRight:      3,
		MinGapPct:       0.5,
		EMAFast:         20,
		EMASlow:         50,
		TrendEMAPeriod:  0, // фильтр включается явно, например 200

		VolumeRatio:       1.5,
		VolumeLookback:    20,
		GapVolumeLookback: 5,
		OBLookback:        5,
		OBMinOpposite:     3,
		OBMinBodyPct:      0.02,
		OBStartIndex:      20,
		LiquidityWickPct:  0.1,
		LiquidityLevels:   10,
		LiquidityStart:    50,
		GrabStrength:      3.0,

		TopN:       10,
		MinCandles: 100,
	}
}

// Validate проверяет конфиг до обработки первой свечи.
func (c Config) Validate() error {
	switch {
	case !positive(c.MinProfitPct):
		return configErr("min_profit_pct", "must be > 0")
	case !positive(c.StopLossPct):
		return configErr("stop_loss_pct", "must be > 0")
	case c.ValidityCandles < 1:
		return configErr("validity_candles", "must be >= 1")
	case c.SwingLeft < 1:
		return configErr("swing_left", "must be >= 1")
	case c.SwingRight < 1:
		return configErr("swing_right", "must be >= 1")
	case !nonNegative(c.MinGapPct):
		return configErr("min_gap_pct", "must be >= 0")
	case c.EMAFast < 1:
		return configErr("ema_fast", "must be >= 1")
	case c.EMAFast >= c.EMASlow:
		return configErr("ema_fast", "must be < ema_slow")
	case c.TrendEMAPeriod < 0:
		return configErr("trend_ema", "must be >= 0")
	case !positive(c.VolumeRatio):
		return configErr("volume_ratio", "must be > 0")
	case c.VolumeLookback < 1:
		return configErr("volume_lookback", "must be >= 1")
	case c.GapVolumeLookback < 1:
		return configErr("gap_volume_lookback", "must be >= 1")
	case c.OBLookback < 1:
		return configErr("ob_lookback", "must be >= 1")
	case c.OBMinOpposite < 1 || c.OBMinOpposite > c.OBLookback:
		return configErr("ob_min_opposite", "must be in [1, ob_lookback]")
	case !nonNegative(c.OBMinBodyPct):
		return configErr("ob_min_body_pct", "must be >= 0")
	case c.OBStartIndex < c.OBLookback:
		return configErr("ob_start_index", "must be >= ob_lookback")
	case !nonNegative(c.LiquidityWickPct):
		return configErr("liquidity_wick_pct", "must be >= 0")
	case c.LiquidityLevels < 1:
		return configErr("liquidity_levels", "must be >= 1")
	case c.LiquidityStart < 0:
		return configErr("liquidity_start", "must be >= 0")
	case !nonNegative(c.GrabStrength):
		return configErr("grab_strength", "must be >= 0")
	case c.TopN < 1:
		return configErr("top_n", "must be >= 1")
	case c.MinCandles < 1:
		return configErr("min_candles", "must be >= 1")
	}
	return nil
}

func positive(v float64) bool    { return v > 0 && !math.IsInf(v, 0) }
func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 0) }
