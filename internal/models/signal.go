package models

import (
	"fmt"
	"time"
)

// Side как у раннера: "BUY"/"SELL" или пустая строка.
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// SignalKind: фиксированный набор типов сигналов детектора.
type SignalKind string

const (
	KindBOSBullish           SignalKind = "BOS_BULLISH"
	KindCHoCHBearish         SignalKind = "CHOCH_BEARISH"
	KindFVGBullish           SignalKind = "FVG_BULLISH"
	KindFVGBearish           SignalKind = "FVG_BEARISH"
	KindEMACrossBullish      SignalKind = "EMA_CROSS_BULLISH"
	KindEMACrossBearish      SignalKind = "EMA_CROSS_BEARISH"
	KindOrderBlockBullish    SignalKind = "ORDER_BLOCK_BULLISH"
	KindOrderBlockBearish    SignalKind = "ORDER_BLOCK_BEARISH"
	KindLiquidityGrabBullish SignalKind = "LIQUIDITY_GRAB_BULLISH"
	KindLiquidityGrabBearish SignalKind = "LIQUIDITY_GRAB_BEARISH"
)

var AllKinds = []SignalKind{
	KindBOSBullish, KindCHoCHBearish,
	KindFVGBullish, KindFVGBearish,
	KindEMACrossBullish, KindEMACrossBearish,
	KindOrderBlockBullish, KindOrderBlockBearish,
	KindLiquidityGrabBullish, KindLiquidityGrabBearish,
}

// Side: направление входа для типа сигнала.
func (k SignalKind) Side() Side {
	switch k {
	case KindBOSBullish, KindFVGBullish, KindEMACrossBullish, KindOrderBlockBullish, KindLiquidityGrabBullish:
		return SideBuy
	case KindCHoCHBearish, KindFVGBearish, KindEMACrossBearish, KindOrderBlockBearish, KindLiquidityGrabBearish:
		return SideSell
	default:
		return SideNone
	}
}

func (k SignalKind) Valid() bool { return k.Side() != SideNone }

// Meta: payload, зависящий от типа сигнала. Реализации ниже, по одной на семейство.
type Meta interface {
	isMeta()
}

// StructureMeta: BOS / CHoCH.
type StructureMeta struct {
	BrokenLevel     float64
	VolumeConfirmed bool
}

// GapMeta: Fair Value Gap.
type GapMeta struct {
	GapPct      float64
	RangeLow    float64
	RangeHigh   float64
	VolumeSpike bool
}

// CrossMeta: пересечение EMA.
type CrossMeta struct {
	EMAFast  float64
	EMASlow  float64
	EMATrend float64 // 0 если трендовая EMA недоступна
}

// BlockMeta: order block.
type BlockMeta struct {
	RangeLow  float64
	RangeHigh float64
}

// LiquidityMeta: liquidity grab.
type LiquidityMeta struct {
	GrabbedLevel float64
}

func (StructureMeta) isMeta() {}
func (GapMeta) isMeta()       {}
func (CrossMeta) isMeta()     {}
func (BlockMeta) isMeta()     {}
func (LiquidityMeta) isMeta() {}

// Profitability: результат форвард-симуляции сигнала на окне валидности.
type Profitability struct {
	MaxProfitPct float64
	MaxLossPct   float64 // <= 0
	IsProfitable bool
	RiskReward   float64 // +Inf если просадки не было
	HitTarget    bool
	HitStop      bool
	EntryPrice   float64
	TargetPrice  float64
	StopPrice    float64
}

// Signal: ответ детектора. Создаётся ровно одним детектором и дальше не меняется.
type Signal struct {
	Index         int
	Time          time.Time
	Kind          SignalKind
	EntryPrice    float64
	Strength      float64
	Meta          Meta
	Profitability Profitability
}

func (s Signal) Side() Side { return s.Kind.Side() }

// VolumeConfirmed: есть только у структурных сигналов.
func (s Signal) VolumeConfirmed() bool {
	switch m := s.Meta.(type) {
	case StructureMeta:
		return m.VolumeConfirmed
	case GapMeta, CrossMeta, BlockMeta, LiquidityMeta, nil:
		return false
	default:
		return false
	}
}

func (s Signal) String() string {
	return fmt.Sprintf("%s %s idx=%d entry=%.6f strength=%.2f profit=%.2f%% rr=%.2f",
		s.Time.Format(time.RFC3339), s.Kind, s.Index, s.EntryPrice, s.Strength,
		s.Profitability.MaxProfitPct, s.Profitability.RiskReward)
}
