package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ccf-policy/core/templates"
)

type metrics struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newMetrics(tpls *templates.Registry) *metrics {
	reg := prometheus.NewRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ccf_uptime_seconds",
		Help: "Process uptime in seconds.",
	}, func() float64 {
		return time.Since(processStartedAt).Seconds()
	}))
	if tpls != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ccf_templates",
			Help: "Policy templates available, built-in and custom.",
		}, func() float64 {
			return float64(tpls.Count())
		}))
	}
	m := &metrics{
		registry: reg,
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ccf_policy_generations_total",
			Help: "Policy generation requests by format and outcome.",
		}, []string{"format", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ccf_policy_generation_seconds",
			Help:    "Policy generation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
	}
	reg.MustRegister(m.generations, m.duration)
	return m
}

func (m *metrics) ObserveGeneration(format, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(format, outcome).Inc()
	m.duration.WithLabelValues(format).Observe(d.Seconds())
}
