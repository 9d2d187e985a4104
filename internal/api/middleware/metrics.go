package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/metrics"
)

// Metrics records request count, latency and in-flight requests. Routes are
// labeled by their pattern to keep the label cardinality bounded.
func Metrics(m *metrics.Registry) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		route := ctx.FullPath()
		if route == "" {
			route = "unknown"
		}

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		start := time.Now()
		ctx.Next()

		m.HTTPRequestsTotal.WithLabelValues(route, ctx.Request.Method, strconv.Itoa(ctx.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, ctx.Request.Method).Observe(time.Since(start).Seconds())
	}
}
