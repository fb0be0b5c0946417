package metrics

import "github.com/prometheus/client_golang/prometheus"

// NopRegistry implements Registry by discarding every value.
type NopRegistry struct{}

// NewNopRegistry returns a Registry that records nothing.
func NewNopRegistry() NopRegistry {
	return NopRegistry{}
}

func (NopRegistry) NewGauge(prometheus.GaugeOpts) (Gauge, error) { return nopMetric{}, nil }

func (NopRegistry) NewGaugeVec(prometheus.GaugeOpts, []string) (GaugeVec, error) {
	return nopGaugeVec{}, nil
}

func (NopRegistry) NewCounter(prometheus.CounterOpts) (Counter, error) { return nopMetric{}, nil }

func (NopRegistry) NewCounterVec(prometheus.CounterOpts, []string) (CounterVec, error) {
	return nopCounterVec{}, nil
}

func (NopRegistry) NewHistogramVec(prometheus.HistogramOpts, []string) (HistogramVec, error) {
	return nopHistogramVec{}, nil
}

type nopMetric struct{}

func (nopMetric) Set(float64)     {}
func (nopMetric) Inc()            {}
func (nopMetric) Add(float64)     {}
func (nopMetric) Observe(float64) {}

type nopGaugeVec struct{}

func (nopGaugeVec) With(prometheus.Labels) Gauge { return nopMetric{} }

type nopCounterVec struct{}

func (nopCounterVec) With(prometheus.Labels) Counter { return nopMetric{} }

type nopHistogramVec struct{}

func (nopHistogramVec) With(prometheus.Labels) Histogram { return nopMetric{} }
