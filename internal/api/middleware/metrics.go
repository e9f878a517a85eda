// Package middleware provides Echo middleware for the deal engine API.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dealscout/deal-engine/internal/metrics"
)

// requestsExcluded lists operational endpoints kept out of the request
// histogram and counter: probes, the scrape target and the generated
// API docs. They are high-frequency noise with no scoring insight.
var requestsExcluded = map[string]struct{}{
	"/metrics":      {},
	"/healthz":      {},
	"/readyz":       {},
	"/docs":         {},
	"/openapi.json": {},
	"/openapi.yaml": {},
}

// probeGauges maps probe paths to a 0/1 gauge updated on every hit, so
// dashboards see liveness and readiness without scraping probe latency.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware that records request duration and
// status for API endpoints. Excluded operational paths only feed the
// probe gauges.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			if _, excluded := requestsExcluded[path]; excluded {
				err := next(c)
				if gauge, ok := probeGauges[path]; ok {
					setProbeGauge(gauge, c.Response().Status)
				}
				return err
			}

			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method

			metrics.HTTPRequestDuration.
				WithLabelValues(method, path, status).
				Observe(duration)
			metrics.HTTPRequestsTotal.
				WithLabelValues(method, path, status).
				Inc()

			return err
		}
	}
}

func setProbeGauge(gauge prometheus.Gauge, status int) {
	if status >= 200 && status < 300 {
		gauge.Set(1)
	} else {
		gauge.Set(0)
	}
}
