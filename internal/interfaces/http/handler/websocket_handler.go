package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dreschagin/activity-globe/internal/application/dto"
	"github.com/dreschagin/activity-globe/internal/application/usecase"
	wsInfra "github.com/dreschagin/activity-globe/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/activity-globe/internal/interfaces/http/middleware"
	"github.com/dreschagin/activity-globe/pkg/logger"
	"github.com/gorilla/websocket"
)

// WebSocketHandler стримит все страницы активностей в одно WebSocket соединение
type WebSocketHandler struct {
	streamUC       *usecase.StreamActivitiesUseCase
	hub            *wsInfra.Hub
	logger         *logger.Logger
	allowedOrigins map[string]struct{}
	upgrader       websocket.Upgrader
}

// NewWebSocketHandler создает новый handler
func NewWebSocketHandler(
	streamUC *usecase.StreamActivitiesUseCase,
	hub *wsInfra.Hub,
	allowedOrigins []string,
	logger *logger.Logger,
) *WebSocketHandler {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	handler := &WebSocketHandler{
		streamUC:       streamUC,
		hub:            hub,
		logger:         logger,
		allowedOrigins: originMap,
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     handler.checkOrigin,
	}

	return handler
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	// Страница и сокет на одном хосте
	if strings.EqualFold(parsed.Host, r.Host) {
		return true
	}

	normalized := parsed.Scheme + "://" + parsed.Host
	if _, ok := h.allowedOrigins[normalized]; ok {
		return true
	}
	if _, ok := h.allowedOrigins["*"]; ok {
		return true
	}

	return false
}

// StreamActivities обрабатывает GET /ws/activities?access_token=...&hue=H.
// Сообщения: page (по одному на страницу), затем done или error.
func (h *WebSocketHandler) StreamActivities(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractAccessToken(r)
	if token == "" {
		middleware.WriteError(w, http.StatusUnauthorized, "missing access token")
		return
	}

	hues, err := parseHues(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err.Error())
		return
	}

	client := wsInfra.NewClient(h.hub, conn, h.logger)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}

	// Запускаем pumps в отдельных goroutines
	go client.WritePump()
	go client.ReadPump()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-client.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	err = h.streamUC.Execute(ctx, token, hues, func(page *dto.ActivityPageDTO) error {
		return client.Send(ctx, wsInfra.Message{Type: wsInfra.MessageTypePage, Data: page})
	})

	switch {
	case err == nil:
		_ = client.Send(ctx, wsInfra.Message{Type: wsInfra.MessageTypeDone})
	case errors.Is(err, wsInfra.ErrClientGone) || ctx.Err() != nil:
		h.logger.Debug("Activity stream abandoned by client")
	default:
		status, message := statusFor(err)
		_ = client.Send(ctx, wsInfra.Message{
			Type: wsInfra.MessageTypeError,
			Data: map[string]any{"status": status, "message": message},
		})
	}

	client.Finish()
}
