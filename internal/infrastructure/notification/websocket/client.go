package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dreschagin/activity-globe/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	// Время ожидания для write операций
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал ping сообщений (должен быть меньше pongWait)
	pingPeriod = 54 * time.Second

	// Максимальный размер сообщения от клиента
	maxMessageSize = 512
)

// Типы сообщений потока активностей
const (
	MessageTypePage  = "page"
	MessageTypeDone  = "done"
	MessageTypeError = "error"
)

// ErrClientGone is returned by Send once the peer has disconnected.
var ErrClientGone = errors.New("websocket client disconnected")

// Message представляет сообщение для отправки клиенту
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client представляет WebSocket клиента, которому стримятся страницы активностей
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	// Канал для отправки сообщений. Закрывается через Finish.
	send chan Message

	// Закрывается, когда ReadPump завершился (клиент отключился)
	done chan struct{}

	finishOnce sync.Once
	logger     *logger.Logger
}

// NewClient создает нового WebSocket клиента
func NewClient(hub *Hub, conn *websocket.Conn, logger *logger.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		send:   make(chan Message, 16),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send queues a message. It blocks while the queue is full, so a slow
// browser slows down paging instead of growing memory.
// Must not be called after Finish.
func (c *Client) Send(ctx context.Context, message Message) error {
	select {
	case <-c.done:
		return ErrClientGone
	default:
	}

	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return ErrClientGone
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Finish marks the end of the stream: WritePump flushes the queue and
// sends a normal close frame.
func (c *Client) Finish() {
	c.finishOnce.Do(func() {
		close(c.send)
	})
}

// Done is closed once the peer has gone away.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// ReadPump читает сообщения от клиента
// Запускается в отдельной goroutine
func (c *Client) ReadPump() {
	defer func() {
		close(c.done)
		if c.hub != nil {
			c.hub.Unregister(c)
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("WebSocket set read deadline error", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Браузер ничего не шлет, читаем только control frames
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error", err)
			}
			return
		}
	}
}

// WritePump отправляет сообщения клиенту
// Запускается в отдельной goroutine
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("WebSocket set write deadline error", err)
				return
			}
			if !ok {
				// Поток закончен, закрываем соединение и ждем ответный close frame
				closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
					return
				}
				select {
				case <-c.done:
				case <-time.After(writeWait):
				}
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("WebSocket write error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("WebSocket set write deadline error", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
