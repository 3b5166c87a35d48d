package middleware

import (
	"strconv"
	"sync"
	"time"

	applogger "SalesCast/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// routes never recorded, scraping them would only measure the scraper
var unmeteredRoutes = map[string]bool{"/metrics": true, "/health": true}

type httpMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge
	size     *prometheus.HistogramVec
}

var (
	metricsOnce  sync.Once
	metricsReg   prometheus.Registerer = prometheus.DefaultRegisterer
	sharedHTTPMx *httpMetrics
)

// SetMetricsRegisterer must be called before the first Metrics call.
func SetMetricsRegisterer(reg prometheus.Registerer) { metricsReg = reg }

func loadHTTPMetrics() *httpMetrics {
	metricsOnce.Do(func() {
		m := &httpMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "salescast_http_requests_total",
				Help: "HTTP requests by route template, method and status",
			}, []string{"route", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "salescast_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			}, []string{"route", "class"}),
			inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "salescast_http_in_flight_requests",
				Help: "Requests currently being served",
			}),
			size: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "salescast_http_response_size_bytes",
				Help:    "Response body size",
				Buckets: prometheus.ExponentialBuckets(128, 4, 7),
			}, []string{"route"}),
		}
		metricsReg.MustRegister(m.requests, m.latency, m.inFlight, m.size)
		sharedHTTPMx = m
	})
	return sharedHTTPMx
}

// Metrics labels by the echo route template so product names in query
// strings never become label values. 5xx answers are logged as errors and
// requests slower than slowThreshold as warnings.
func Metrics(l *applogger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	m := loadHTTPMetrics()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if unmeteredRoutes[route] {
				return next(c)
			}
			if route == "" {
				route = "unmatched"
			}

			m.inFlight.Inc()
			defer m.inFlight.Dec()
			start := time.Now()

			if err := next(c); err != nil {
				// write the error now so the recorded status is final
				c.Error(err)
			}

			res := c.Response()
			elapsed := time.Since(start)
			status := strconv.Itoa(res.Status)
			m.requests.WithLabelValues(route, c.Request().Method, status).Inc()
			m.latency.WithLabelValues(route, statusClass(res.Status)).Observe(elapsed.Seconds())
			m.size.WithLabelValues(route).Observe(float64(res.Size))

			logRequest(l, c, route, res.Status, elapsed, slowThreshold)
			return nil
		}
	}
}

func logRequest(l *applogger.Logger, c echo.Context, route string, status int, elapsed, slow time.Duration) {
	if l == nil {
		return
	}
	fields := []applogger.Field{
		applogger.String("route", route),
		applogger.String("method", c.Request().Method),
		applogger.Int("status", status),
		applogger.Duration("duration_ms", elapsed),
	}
	switch {
	case status >= 500:
		l.Error("http request failed", fields...)
	case slow > 0 && elapsed >= slow:
		l.Warn("http request slow", fields...)
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "5xx"
	}
	return strconv.Itoa(code/100) + "xx"
}
