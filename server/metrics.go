package server

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const outcomeInvalid = "invalid"

type metrics struct {
	valuations     *prometheus.CounterVec
	lookups        *prometheus.CounterVec
	lookupDuration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		valuations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bobvalue",
			Name:      "valuations_total",
			Help:      "Number of valuation requests by outcome (gain, loss, invalid)",
		}, []string{"outcome"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bobvalue",
			Name:      "official_rate_lookups_total",
			Help:      "Number of official rate lookups by final state",
		}, []string{"state"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bobvalue",
			Name:      "official_rate_lookup_duration_seconds",
			Help:      "Time spent waiting on the official rate lookup",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	for _, c := range []prometheus.Collector{
		m.valuations,
		m.lookups,
		m.lookupDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("unable to register collector: %w", err)
		}
	}

	return m, nil
}
