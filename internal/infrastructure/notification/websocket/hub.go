package websocket

import (
	"context"
	"sync"

	"github.com/dreschagin/activity-globe/pkg/logger"
)

// Hub учитывает открытые потоки активностей и закрывает их при остановке сервера
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]struct{}

	// Каналы для регистрации и удаления клиентов
	register   chan *Client
	unregister chan *Client

	// Закрывается, когда Run завершился
	stopped chan struct{}

	mu     sync.RWMutex
	logger *logger.Logger
}

// NewHub создает новый WebSocket hub
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

// Run обслуживает регистрацию клиентов до отмены ctx, после чего
// закрывает все соединения. Запускается в отдельной goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket hub started")
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client registered", "total_clients", total)

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client unregistered", "total_clients", total)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				_ = client.conn.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("WebSocket hub stopped")
			return
		}
	}
}

// Register регистрирует нового клиента. Возвращает false, если hub уже остановлен.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopped:
		return false
	}
}

// Unregister удаляет клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopped:
	}
}

// ClientCount возвращает количество открытых потоков
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
