package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles prometheus collectors used by the service.
// It implements port.ActivityMetrics.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
	RateLimitDropped   prometheus.Counter
	CacheRequests      *prometheus.CounterVec
	ActivitiesTotal    prometheus.Counter
	TracksTotal        prometheus.Counter
	StravaRateLimit    *prometheus.GaugeVec
	StravaRateUsage    *prometheus.GaugeVec
}

func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_globe_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "activity_globe_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		RateLimitDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activity_globe_ratelimit_dropped_total",
			Help: "Total number of requests dropped by rate limiter.",
		}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_globe_cache_requests_total",
			Help: "Activity page cache lookups by result.",
		}, []string{"result"}),
		ActivitiesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activity_globe_activities_fetched_total",
			Help: "Total number of activities returned by Strava.",
		}),
		TracksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "activity_globe_tracks_built_total",
			Help: "Total number of tracks built from activity polylines.",
		}),
		StravaRateLimit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "activity_globe_strava_rate_limit",
			Help: "Strava API request limit as last reported by X-RateLimit-Limit.",
		}, []string{"window"}),
		StravaRateUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "activity_globe_strava_rate_usage",
			Help: "Strava API request usage as last reported by X-RateLimit-Usage.",
		}, []string{"window"}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSec,
		m.RateLimitDropped,
		m.CacheRequests,
		m.ActivitiesTotal,
		m.TracksTotal,
		m.StravaRateLimit,
		m.StravaRateUsage,
	)

	return m
}

// RegisterStreamGauge exposes the number of open activity streams.
func (m *Metrics) RegisterStreamGauge(registry prometheus.Registerer, count func() int) {
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "activity_globe_open_streams",
		Help: "Number of open websocket activity streams.",
	}, func() float64 {
		return float64(count())
	}))
}

func (m *Metrics) CacheHit() {
	m.CacheRequests.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	m.CacheRequests.WithLabelValues("miss").Inc()
}

func (m *Metrics) ActivitiesFetched(count int) {
	m.ActivitiesTotal.Add(float64(count))
}

func (m *Metrics) TracksBuilt(count int) {
	m.TracksTotal.Add(float64(count))
}

// ObserveRateLimits records Strava's short (15 min) and daily windows.
func (m *Metrics) ObserveRateLimits(shortLimit, dailyLimit, shortUsage, dailyUsage int) {
	m.StravaRateLimit.WithLabelValues("15m").Set(float64(shortLimit))
	m.StravaRateLimit.WithLabelValues("daily").Set(float64(dailyLimit))
	m.StravaRateUsage.WithLabelValues("15m").Set(float64(shortUsage))
	m.StravaRateUsage.WithLabelValues("daily").Set(float64(dailyUsage))
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		route := NormalizeRoute(r.URL.Path)
		m.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, r.Method, status).Observe(time.Since(startedAt).Seconds())
	})
}

// NormalizeRoute keeps label cardinality bounded: activity ids are collapsed.
func NormalizeRoute(path string) string {
	switch {
	case path == "/":
		return "/"
	case path == "/login" || path == "/strava_auth" || path == "/healthz" || path == "/readyz" || path == "/metrics":
		return path
	case path == "/ws/activities":
		return "/ws/activities"
	case path == "/api/v1/activities":
		return "/api/v1/activities"
	case strings.HasPrefix(path, "/api/v1/activities/") && strings.HasSuffix(path, "/export"):
		return "/api/v1/activities/{id}/export"
	case strings.HasPrefix(path, "/api/v1/activities/"):
		return "/api/v1/activities/{id}"
	case strings.HasPrefix(path, "/static/"):
		return "/static/*"
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Hijack passes websocket upgrades through wrapped ResponseWriter.
func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// Flush keeps streaming behavior for handlers that require it.
func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
