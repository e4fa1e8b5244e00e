package detector

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"signal_bot/internal/models"
)

// Engine — мульти-стратегийный детектор сигналов по одной серии свечей.
// Состояния между вызовами не держит, поэтому один Engine можно дёргать из разных горутин.
type Engine struct {
	cfg  Config
	eval Evaluator
	log  *zap.Logger
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New валидирует конфиг. Ошибка конфига — единственная фатальная ошибка детектора.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:  cfg,
		eval: NewEvaluator(cfg),
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Report — результат одного прогона.
type Report struct {
	Signals     []models.Signal // после ранжирования, не больше TopN
	Candidates  []models.Signal // все прибыльные кандидаты в порядке детекции
	Diagnostics Diagnostics
}

// Detect возвращает итоговый ранжированный список. Никогда не возвращает ошибку:
// отказы отдельных детекторов только уменьшают выдачу.
func (e *Engine) Detect(s *models.CandleSeries) []models.Signal {
	return e.Analyze(s).Signals
}

type detectFunc func(*scan) ([]Result, error)

func (e *Engine) Analyze(s *models.CandleSeries) Report {
	n := s.Len()
	diag := newDiagnostics(n)
	rep := Report{
		Signals:     []models.Signal{},
		Candidates:  []models.Signal{},
		Diagnostics: diag,
	}

	if n < e.cfg.MinCandles {
		diag.Skipped = true
		rep.Diagnostics = diag
		e.log.Debug("not enough candles", zap.Int("candles", n), zap.Int("need", e.cfg.MinCandles))
		return rep
	}

	swings, swingErrs := AnnotateSwings(s, e.cfg.SwingLeft, e.cfg.SwingRight)
	diag.Stats[DetectorSwing].Errors = len(swingErrs)
	if n < e.cfg.SwingLeft+e.cfg.SwingRight+1 {
		diag.Stats[DetectorSwing].Insufficient = true
	}

	sc := &scan{
		cfg:    e.cfg,
		eval:   e.eval,
		series: s,
		swings: swings,
	}

	steps := []struct {
		name Detector
		run  detectFunc
	}{
		{DetectorStructure, detectStructure},
		{DetectorGap, detectGaps},
		{DetectorCross, detectCrosses},
		{DetectorBlock, detectOrderBlocks},
		{DetectorLiquidity, detectLiquidityGrabs},
	}

	for _, step := range steps {
		results, err := runDetector(step.run, sc)
		if err != nil {
			if errors.Is(err, ErrInsufficientData) {
				diag.Stats[step.name].Insufficient = true
			} else {
				diag.Stats[step.name].Errors++
				e.log.Warn("detector failed", zap.String("detector", string(step.name)), zap.Error(err))
			}
		}
		rep.Candidates = append(rep.Candidates, diag.collect(step.name, results)...)
	}

	rep.Signals = Rank(rep.Candidates, n, e.cfg.TopN)
	rep.Diagnostics = diag

	e.log.Debug("scan finished",
		zap.Int("candles", n),
		zap.Int("candidates", len(rep.Candidates)),
		zap.Int("signals", len(rep.Signals)),
		zap.Int("errors", diag.TotalErrors()),
		zap.Stringer("diagnostics", diag),
	)
	return rep
}

// runDetector изолирует паники детектора: отказ одного детектора не роняет остальные.
func runDetector(fn detectFunc, sc *scan) (results []Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()
	return fn(sc)
}
