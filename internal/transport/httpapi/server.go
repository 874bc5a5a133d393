package httpapi

import (
	"fenrir/internal/engine"
	"fenrir/internal/telemetry/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the full gin engine: engine routes plus a /metrics
// endpoint backed by the prometheus registry in telemetry/metrics.
func NewRouter(e *engine.MatchingEngine, defaultDepth int) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), LoggingMiddleware())

	handler := NewHandler(e, defaultDepth)
	handler.Register(router)

	reg := metrics.Registry()
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return router
}
