package detector

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig    = errors.New("invalid detector config")
	ErrInsufficientData = errors.New("insufficient data")
)

// ConfigError — жёсткая ошибка: движок не создаётся.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func configErr(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}

// ComputationError — мягкая ошибка на одном индексе/кандидате.
// Кандидат пропускается, детектор продолжает работу.
type ComputationError struct {
	Detector Detector
	Index    int
	Reason   string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: computation failed at %d: %s", e.Detector, e.Index, e.Reason)
}

func computeErr(d Detector, idx int, format string, args ...any) error {
	return &ComputationError{Detector: d, Index: idx, Reason: fmt.Sprintf(format, args...)}
}
