package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics: счётчики сканера. Регистр свой, без глобального DefaultRegisterer.
type Metrics struct {
	Registry *prometheus.Registry

	Scans          prometheus.Counter
	ScanDuration   prometheus.Histogram
	Signals        *prometheus.CounterVec
	DetectorErrors *prometheus.CounterVec
	FetchErrors    *prometheus.CounterVec
	NotifyErrors   prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		Scans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_scans_total",
			Help: "Total number of symbol scans",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signal_bot_scan_duration_seconds",
			Help:    "Duration of one symbol scan (fetch + detect + notify)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_bot_signals_total",
			Help: "Signals sent, by kind",
		}, []string{"kind"}),
		DetectorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_bot_detector_errors_total",
			Help: "Soft detector errors, by detector",
		}, []string{"detector"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_bot_fetch_errors_total",
			Help: "Candle fetch failures, by symbol",
		}, []string{"symbol"}),
		NotifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_notify_errors_total",
			Help: "Signals that could not be delivered",
		}),
	}

	m.Registry.MustRegister(
		m.Scans,
		m.ScanDuration,
		m.Signals,
		m.DetectorErrors,
		m.FetchErrors,
		m.NotifyErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveScan(d time.Duration) {
	m.Scans.Inc()
	m.ScanDuration.Observe(d.Seconds())
}
