package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/internal/application/usecase"
	"github.com/dreschagin/activity-globe/internal/interfaces/http/middleware"
	"github.com/dreschagin/activity-globe/pkg/logger"
	"github.com/google/uuid"
)

const (
	StateCookieName = "oauth_state"
	stateCookieTTL  = 10 * 60
)

// OAuthHandler проводит браузер через OAuth Strava и возвращает токен на страницу
type OAuthHandler struct {
	exchangeUC    *usecase.ExchangeAuthCodeUseCase
	secureCookies bool
	logger        *logger.Logger
}

func NewOAuthHandler(exchangeUC *usecase.ExchangeAuthCodeUseCase, secureCookies bool, log *logger.Logger) *OAuthHandler {
	return &OAuthHandler{
		exchangeUC:    exchangeUC,
		secureCookies: secureCookies,
		logger:        log,
	}
}

// Login ставит cookie со state и отправляет браузер на страницу авторизации Strava
func (h *OAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   stateCookieTTL,
	})

	http.Redirect(w, r, h.exchangeUC.AuthCodeURL(state), http.StatusFound)
}

// StravaAuth меняет code на access token и редиректит на / с токеном в query string.
// Токен на сервере не хранится.
func (h *OAuthHandler) StravaAuth(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if denied := strings.TrimSpace(query.Get("error")); denied != "" {
		h.logger.Info("Strava authorization denied", "reason", denied)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if cookie, err := r.Cookie(StateCookieName); err == nil && cookie.Value != "" {
		if query.Get("state") != cookie.Value {
			h.logger.Warn("OAuth state mismatch", "remote_addr", r.RemoteAddr)
			middleware.WriteError(w, http.StatusBadRequest, "invalid oauth state")
			return
		}
	}
	h.clearStateCookie(w, r)

	token, err := h.exchangeUC.Execute(r.Context(), query.Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingAuthCode):
			middleware.WriteError(w, http.StatusBadRequest, "missing authorization code")
		case errors.Is(err, port.ErrRateLimited):
			middleware.WriteError(w, http.StatusTooManyRequests, "Strava rate limit exceeded")
		default:
			middleware.WriteError(w, http.StatusBadGateway, "token exchange failed")
		}
		return
	}

	target := url.URL{Path: "/", RawQuery: url.Values{middleware.AccessTokenParam: {token.AccessToken}}.Encode()}
	w.Header().Set("Referrer-Policy", "no-referrer")
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (h *OAuthHandler) clearStateCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
