package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dreschagin/activity-globe/internal/application/usecase"
	"github.com/dreschagin/activity-globe/internal/interfaces/http/middleware"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

// ActivitiesAPIHandler обрабатывает API запросы для активностей и треков
type ActivitiesAPIHandler struct {
	listPageUC   *usecase.ListActivityPageUseCase
	getTrackUC   *usecase.GetActivityTrackUseCase
	exportUC     *usecase.ExportActivityTrackUseCase
	invalidateUC *usecase.InvalidateActivityCacheUseCase
	logger       *logger.Logger
}

// NewActivitiesAPIHandler создает новый handler
func NewActivitiesAPIHandler(
	listPageUC *usecase.ListActivityPageUseCase,
	getTrackUC *usecase.GetActivityTrackUseCase,
	exportUC *usecase.ExportActivityTrackUseCase,
	invalidateUC *usecase.InvalidateActivityCacheUseCase,
	logger *logger.Logger,
) *ActivitiesAPIHandler {
	return &ActivitiesAPIHandler{
		listPageUC:   listPageUC,
		getTrackUC:   getTrackUC,
		exportUC:     exportUC,
		invalidateUC: invalidateUC,
		logger:       logger,
	}
}

// ListActivities возвращает страницу активностей с готовыми треками.
// GET /api/v1/activities?page=N&hue=H
func (h *ActivitiesAPIHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.WriteError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}

	hues, err := parseHues(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.listPageUC.Execute(r.Context(), middleware.ExtractAccessToken(r), page, hues)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// GetActivity возвращает детальный трек одной активности
func (h *ActivitiesAPIHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := parseActivityID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	hues, err := parseHues(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.getTrackUC.Execute(r.Context(), middleware.ExtractAccessToken(r), id, hues)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// ExportActivity сохраняет трек в S3 как GeoJSON
func (h *ActivitiesAPIHandler) ExportActivity(w http.ResponseWriter, r *http.Request) {
	id, err := parseActivityID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.exportUC.Execute(r.Context(), middleware.ExtractAccessToken(r), id)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, result)
}

// InvalidateCache сбрасывает кеш страниц для токена запроса.
// DELETE /api/v1/activities/cache
func (h *ActivitiesAPIHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.invalidateUC.Execute(r.Context(), middleware.ExtractAccessToken(r)); err != nil {
		writeUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
