package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// AccessTokenParam is the query parameter the page and the websocket carry
// the Strava token in. Browsers cannot set headers on new WebSocket().
const AccessTokenParam = "access_token"

// ExtractAccessToken reads the Strava access token from the Authorization
// header or, failing that, from the access_token query parameter.
func ExtractAccessToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	return strings.TrimSpace(r.URL.Query().Get(AccessTokenParam))
}

// RequireAccessToken rejects requests without a token before they reach the handler.
func RequireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ExtractAccessToken(r) == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="activity-globe"`)
			WriteError(w, http.StatusUnauthorized, "missing access token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError пишет ошибку в формате {"error": "..."}
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
