// Package metrics exposes sign in outcomes to Prometheus and keeps the redis backed counters in step.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuelReschke/HarooHub/internal/pkg/metrics/counter"
)

// Collector holds the Prometheus metrics of the gateway
type Collector struct {
	authOutcomes *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "haroohub_auth_outcomes_total",
			Help: "Sign in results by provider and outcome",
		}, []string{"provider", "outcome"}),
	}
	reg.MustRegister(c.authOutcomes)
	return c
}

func (c *Collector) RecordAuthOutcome(provider, outcome string) {
	c.authOutcomes.WithLabelValues(provider, outcome).Inc()
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Outcomes records every sign in result in Prometheus and in the redis counters.
// Either side may be nil.
type Outcomes struct {
	counters  *counter.AuthOutcomes
	collector *Collector
}

func NewOutcomes(counters *counter.AuthOutcomes, collector *Collector) *Outcomes {
	return &Outcomes{counters: counters, collector: collector}
}

func (o *Outcomes) Record(ctx context.Context, provider, outcome string) error {
	if o.collector != nil {
		o.collector.RecordAuthOutcome(provider, outcome)
	}
	if o.counters == nil {
		return nil
	}
	return o.counters.Record(ctx, provider, outcome)
}

// Snapshot returns the redis counters, which survive restarts.
func (o *Outcomes) Snapshot(ctx context.Context) ([]counter.Entry, error) {
	if o.counters == nil {
		return []counter.Entry{}, nil
	}
	return o.counters.Snapshot(ctx)
}
