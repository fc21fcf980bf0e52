package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dreschagin/activity-globe/pkg/logger"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	messages []message
	err      error
	closed   bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, message{subject: subject, data: data})
	return nil
}

func (c *fakeConn) Close() {
	c.closed = true
}

func TestNATSPublisher_PublishEvent(t *testing.T) {
	conn := &fakeConn{}
	publisher := newPublisher(conn, logger.Nop())

	event := map[string]int{"page": 3, "activity_count": 200}
	if err := publisher.PublishEvent(context.Background(), "activity_globe.activities.page_fetched", event); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}

	if len(conn.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(conn.messages))
	}
	if conn.messages[0].subject != "activity_globe.activities.page_fetched" {
		t.Fatalf("unexpected subject %s", conn.messages[0].subject)
	}

	var decoded map[string]int
	if err := json.Unmarshal(conn.messages[0].data, &decoded); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if decoded["page"] != 3 {
		t.Fatalf("unexpected payload %v", decoded)
	}
}

func TestNATSPublisher_Errors(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	publisher := newPublisher(conn, logger.Nop())

	if err := publisher.PublishEvent(context.Background(), "subject", struct{}{}); err == nil {
		t.Fatal("expected publish error")
	}
	if err := publisher.PublishEvent(context.Background(), "subject", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := publisher.PublishEvent(ctx, "subject", struct{}{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if err := publisher.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !conn.closed {
		t.Fatal("expected connection to be closed")
	}
}
