// Package metrics defines the custom Prometheus metrics of the ERP API. It is
// the single source of truth for metric names, labels, and help strings.
//
// Collectors are registered on the registerer handed to New, so every router
// (and every test) can own an isolated registry.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/synergia/erp-api/internal/core/domain"
	"github.com/synergia/erp-api/internal/core/ports"
)

const namespace = "erp"

// Metrics holds every custom collector. A nil *Metrics records nothing.
type Metrics struct {
	// AuthDecisions counts auth gate outcomes.
	// Label:
	//   - outcome: "allowed", "missing_token", "unauthenticated", "forbidden" or "error"
	AuthDecisions *prometheus.CounterVec

	// Mutations counts successful writes.
	// Labels:
	//   - entity: "client", "project" or "user"
	//   - action: "create", "update", "delete" or "invite"
	Mutations *prometheus.CounterVec

	// ProviderCalls counts identity provider round trips.
	// Labels:
	//   - operation: "sign_in", "verify", "sign_out", "create_account", "delete_account"
	//   - result: "ok", "rejected" or "error"
	ProviderCalls *prometheus.CounterVec

	// ProviderDuration measures identity provider latency per operation.
	ProviderDuration *prometheus.HistogramVec

	// DashboardDuration measures the full dashboard aggregate.
	DashboardDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AuthDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_decisions_total",
				Help:      "Total number of auth gate decisions, by outcome.",
			},
			[]string{"outcome"},
		),
		Mutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entity_mutations_total",
				Help:      "Total number of successful entity writes.",
			},
			[]string{"entity", "action"},
		),
		ProviderCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "identity_provider_calls_total",
				Help:      "Total number of identity provider calls, by operation and result.",
			},
			[]string{"operation", "result"},
		),
		ProviderDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "identity_provider_duration_seconds",
				Help:      "Duration of identity provider calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DashboardDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dashboard_duration_seconds",
				Help:      "Duration of the dashboard aggregate, all sub-queries included.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) AuthDecision(outcome string) {
	if m == nil {
		return
	}
	m.AuthDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Mutation(entity, action string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(entity, action).Inc()
}

func (m *Metrics) ObserveDashboard(d time.Duration) {
	if m == nil {
		return
	}
	m.DashboardDuration.Observe(d.Seconds())
}

func (m *Metrics) providerCall(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ProviderDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.ProviderCalls.WithLabelValues(op, providerResult(err)).Inc()
}

func providerResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrExternalProvider):
		return "error"
	default:
		return "rejected"
	}
}

// InstrumentIdentityProvider wraps idp so every call is counted and timed.
func InstrumentIdentityProvider(idp ports.IdentityProvider, m *Metrics) ports.IdentityProvider {
	if m == nil {
		return idp
	}
	return &instrumentedProvider{next: idp, m: m}
}

type instrumentedProvider struct {
	next ports.IdentityProvider
	m    *Metrics
}

func (p *instrumentedProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	start := time.Now()
	s, err := p.next.SignIn(ctx, email, password)
	p.m.providerCall("sign_in", start, err)
	return s, err
}

func (p *instrumentedProvider) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	start := time.Now()
	id, err := p.next.Verify(ctx, token)
	p.m.providerCall("verify", start, err)
	return id, err
}

func (p *instrumentedProvider) SignOut(ctx context.Context, token string) error {
	start := time.Now()
	err := p.next.SignOut(ctx, token)
	p.m.providerCall("sign_out", start, err)
	return err
}

func (p *instrumentedProvider) CreateAccount(ctx context.Context, email, password string) (*domain.Identity, error) {
	start := time.Now()
	id, err := p.next.CreateAccount(ctx, email, password)
	p.m.providerCall("create_account", start, err)
	return id, err
}

func (p *instrumentedProvider) DeleteAccount(ctx context.Context, subject string) error {
	start := time.Now()
	err := p.next.DeleteAccount(ctx, subject)
	p.m.providerCall("delete_account", start, err)
	return err
}
