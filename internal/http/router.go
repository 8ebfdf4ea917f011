// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routeroll/internal/http/handlers"
	"routeroll/internal/http/middleware"
	"routeroll/internal/infra"
	"routeroll/internal/telemetry"
)

type RouterDeps struct {
	Routes      handlers.RouteGenerator
	History     handlers.HistoryService
	Preferences handlers.PreferenceService
	Weather     handlers.WeatherService
	Verifier    infra.TokenVerifier
	Gatherer    prometheus.Gatherer
	HTTPMetrics *telemetry.HTTPMetrics
	Logger      *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger), middleware.Logging(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	routeHandler := handlers.NewRouteHandler(deps.Routes, deps.History, deps.Preferences, deps.Weather)
	api.POST("/routes/generate", routeHandler.Generate)
	api.GET("/routes", routeHandler.List)
	api.POST("/routes/:id/walked", routeHandler.MarkWalked)
	api.DELETE("/routes/:id", routeHandler.Delete)
	api.GET("/stats", routeHandler.Stats)

	prefsHandler := handlers.NewPreferencesHandler(deps.Preferences)
	api.GET("/preferences", prefsHandler.Get)
	api.PUT("/preferences", prefsHandler.Put)

	api.GET("/weather", handlers.NewWeatherHandler(deps.Weather).Current)

	return r
}
