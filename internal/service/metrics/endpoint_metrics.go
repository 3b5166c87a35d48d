package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    EndpointLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "salescast",
            Subsystem: "api",
            Name:      "latency_seconds",
            Help:      "Latency of forecast API endpoints",
            Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
        },
        []string{"endpoint"},
    )

    EndpointErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "salescast",
            Subsystem: "api",
            Name:      "errors_total",
            Help:      "Errors by endpoint and code",
        },
        []string{"endpoint", "code"},
    )

    CacheLookups = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "salescast",
            Subsystem: "cache",
            Name:      "lookups_total",
            Help:      "Forecast cache lookups by result",
        },
        []string{"result"},
    )

    RateLimited = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "salescast",
            Subsystem: "api",
            Name:      "rate_limited_total",
            Help:      "Requests rejected by the rate limiter",
        },
    )
)

func Register() {
    once.Do(func() {
        prometheus.MustRegister(EndpointLatency, EndpointErrors, CacheLookups, RateLimited)
    })
}
