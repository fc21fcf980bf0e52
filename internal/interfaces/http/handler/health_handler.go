package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dreschagin/activity-globe/internal/interfaces/http/middleware"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

// ReadinessCheck проверяет внешнюю зависимость (Redis и т.п.)
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]ReadinessCheck
	logger *logger.Logger
}

func NewHealthHandler(checks map[string]ReadinessCheck, log *logger.Logger) *HealthHandler {
	if checks == nil {
		checks = make(map[string]ReadinessCheck)
	}
	return &HealthHandler{
		checks: checks,
		logger: log,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz возвращает 503, если хотя бы одна проверка не прошла
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", "check", name, "error", err.Error())
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	middleware.WriteJSON(w, status, map[string]any{
		"ready":  status == http.StatusOK,
		"checks": results,
	})
}
