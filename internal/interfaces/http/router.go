package http

import (
	"io/fs"
	"net/http"

	"github.com/dreschagin/activity-globe/internal/infrastructure/metrics"
	"github.com/dreschagin/activity-globe/internal/interfaces/http/handler"
	"github.com/dreschagin/activity-globe/internal/interfaces/http/middleware"
	"github.com/dreschagin/activity-globe/pkg/config"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

// Handlers собирает все HTTP handlers приложения
type Handlers struct {
	Globe      *handler.GlobeHandler
	OAuth      *handler.OAuthHandler
	Activities *handler.ActivitiesAPIHandler
	WebSocket  *handler.WebSocketHandler
	Health     *handler.HealthHandler
}

// Router настраивает маршруты приложения
type Router struct {
	mux            *http.ServeMux
	handlers       Handlers
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	security       config.SecurityConfig
	logger         *logger.Logger
}

// NewRouter создает новый router. metrics и metricsHandler могут быть nil.
func NewRouter(
	handlers Handlers,
	metrics *metrics.Metrics,
	metricsHandler http.Handler,
	security config.SecurityConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		handlers:       handlers,
		metrics:        metrics,
		metricsHandler: metricsHandler,
		security:       security,
		logger:         logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	// Static assets are embedded into the binary.
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("failed to initialize embedded static assets: " + err.Error())
	}
	rt.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Health endpoints are unauthenticated for probes.
	rt.mux.HandleFunc("GET /healthz", rt.handlers.Health.Healthz)
	rt.mux.HandleFunc("GET /readyz", rt.handlers.Health.Readyz)
	if rt.metricsHandler != nil {
		rt.mux.Handle("GET /metrics", rt.metricsHandler)
	}

	var onDrop func()
	if rt.metrics != nil {
		onDrop = rt.metrics.RateLimitDropped.Inc
	}
	limiter := middleware.NewIPRateLimiter(rt.security.RateLimitRPS, rt.security.RateLimitBurst)
	rateLimit := middleware.RateLimit(limiter, onDrop)

	api := func(h http.HandlerFunc) http.Handler {
		return rateLimit(middleware.RequireAccessToken(h))
	}

	// Globe page and OAuth
	rt.mux.HandleFunc("GET /{$}", rt.handlers.Globe.ShowGlobe)
	rt.mux.Handle("GET /login", rateLimit(http.HandlerFunc(rt.handlers.OAuth.Login)))
	rt.mux.Handle("GET /strava_auth", rateLimit(http.HandlerFunc(rt.handlers.OAuth.StravaAuth)))

	// API endpoints
	rt.mux.Handle("GET /api/v1/activities", api(rt.handlers.Activities.ListActivities))
	rt.mux.Handle("DELETE /api/v1/activities/cache", api(rt.handlers.Activities.InvalidateCache))
	rt.mux.Handle("GET /api/v1/activities/{id}", api(rt.handlers.Activities.GetActivity))
	rt.mux.Handle("POST /api/v1/activities/{id}/export", api(rt.handlers.Activities.ExportActivity))

	// WebSocket
	rt.mux.Handle("GET /ws/activities", rateLimit(http.HandlerFunc(rt.handlers.WebSocket.StreamActivities)))

	// Применяем middleware
	var handler http.Handler = rt.mux
	handler = middleware.Compression("/metrics", "/ws/")(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = middleware.Logger(rt.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(rt.logger)(handler)

	return handler
}
