package signer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backplane_signer_requests_total",
			Help: "Total number of signing requests processed",
		},
		[]string{"endpoint", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backplane_signer_request_duration_seconds",
			Help:    "Signing request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backplane_signer_rate_limited_total",
			Help: "Requests rejected by the token bucket",
		},
	)
)
