package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dreschagin/activity-globe/pkg/logger"
	"github.com/nats-io/nats.go"
)

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher implements port.EventPublisher over core NATS.
// Events are fire-and-forget: nobody in the service reads them back.
type NATSPublisher struct {
	nc     conn
	logger *logger.Logger
}

// NewNATSPublisher creates a new NATS publisher
func NewNATSPublisher(natsURL string, log *logger.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("activity-globe"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Connected to NATS", "url", natsURL)

	return newPublisher(nc, log), nil
}

func newPublisher(nc conn, log *logger.Logger) *NATSPublisher {
	return &NATSPublisher{
		nc:     nc,
		logger: log,
	}
}

// PublishEvent marshals event to JSON and publishes it on subject
func (p *NATSPublisher) PublishEvent(ctx context.Context, subject string, event interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish event", err,
			"subject", subject,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published",
		"subject", subject,
		"size", len(data),
	)

	return nil
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() error {
	if p.nc != nil {
		p.logger.Info("Closing NATS connection")
		p.nc.Close()
	}
	return nil
}
