package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SettlementMetrics counts settlement transitions and the money they move.
type SettlementMetrics struct {
	transitions *prometheus.CounterVec
	amountCents *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

func newSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	factory := promauto.With(reg)
	return &SettlementMetrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crewtrip_settlement_transitions_total",
			Help: "Settlement state transitions by resulting status and method",
		}, []string{"status", "method"}),
		amountCents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crewtrip_settlement_confirmed_cents_total",
			Help: "Cents discharged by confirmed settlements",
		}, []string{"method"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crewtrip_settlement_rejected_total",
			Help: "Settlement requests refused before creation",
		}, []string{"reason"}),
	}
}
