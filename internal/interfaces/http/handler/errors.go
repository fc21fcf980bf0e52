package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/internal/application/usecase"
	"github.com/dreschagin/activity-globe/internal/domain/service"
	"github.com/dreschagin/activity-globe/internal/interfaces/http/middleware"
)

// statusFor сопоставляет ошибку use case с HTTP статусом и текстом для клиента
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrMissingAccessToken):
		return http.StatusUnauthorized, "missing access token"
	case errors.Is(err, port.ErrUnauthorized):
		return http.StatusUnauthorized, "access token rejected by Strava"
	case errors.Is(err, port.ErrRateLimited):
		return http.StatusTooManyRequests, "Strava rate limit exceeded"
	case errors.Is(err, port.ErrNotFound):
		return http.StatusNotFound, "activity not found"
	case errors.Is(err, usecase.ErrInvalidPage):
		return http.StatusBadRequest, "invalid page"
	case errors.Is(err, usecase.ErrMissingAuthCode):
		return http.StatusBadRequest, "missing authorization code"
	case errors.Is(err, usecase.ErrNoPath):
		return http.StatusUnprocessableEntity, "activity has no path"
	case errors.Is(err, usecase.ErrStorageDisabled):
		return http.StatusServiceUnavailable, "track export is not configured"
	case errors.Is(err, usecase.ErrCacheUnavailable):
		return http.StatusServiceUnavailable, "activity cache is unavailable"
	case errors.Is(err, service.ErrInvalidPolyline):
		return http.StatusBadGateway, "Strava returned a malformed polyline"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Strava request timed out"
	default:
		return http.StatusBadGateway, "Strava request failed"
	}
}

func writeUseCaseError(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	middleware.WriteError(w, status, message)
}

// parseHues читает параметр hue. Без него последовательность начинается со случайного оттенка.
func parseHues(r *http.Request) (*service.HueGenerator, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("hue"))
	if raw == "" {
		return service.NewHueGenerator(), nil
	}

	hue, err := strconv.ParseFloat(raw, 64)
	if err != nil || !service.ValidHue(hue) {
		return nil, errors.New("hue must be a number in [0, 1)")
	}
	return service.NewHueGeneratorFrom(hue), nil
}

func parseActivityID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid activity id")
	}
	return id, nil
}
