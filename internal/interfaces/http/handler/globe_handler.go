package handler

import (
	"net/http"

	"github.com/dreschagin/activity-globe/internal/interfaces/http/middleware"
	"github.com/dreschagin/activity-globe/internal/interfaces/view"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

type GlobeSettings struct {
	CesiumBaseURL  string
	CesiumIonToken string
	PathWidth      int
}

// GlobeHandler отображает главную страницу с глобусом
type GlobeHandler struct {
	settings GlobeSettings
	logger   *logger.Logger
}

// NewGlobeHandler создает новый handler
func NewGlobeHandler(settings GlobeSettings, logger *logger.Logger) *GlobeHandler {
	return &GlobeHandler{
		settings: settings,
		logger:   logger,
	}
}

// ShowGlobe рендерит страницу. ?access_token= авторизует ее, без него показывается ссылка на /login.
func (h *GlobeHandler) ShowGlobe(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractAccessToken(r)

	page := view.GlobePage{
		Authorized:    token != "",
		LoginURL:      "/login",
		CesiumBaseURL: h.settings.CesiumBaseURL,
		Config: view.GlobeConfig{
			AccessToken:    token,
			CesiumIonToken: h.settings.CesiumIonToken,
			ActivitiesURL:  "/api/v1/activities",
			StreamURL:      "/ws/activities",
			CacheURL:       "/api/v1/activities/cache",
			PathWidth:      h.settings.PathWidth,
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	// Рендерим страницу через templ
	if err := view.Globe(page).Render(r.Context(), w); err != nil {
		h.logger.Error("Failed to render globe page", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
}
