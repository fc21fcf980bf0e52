package usecase

import (
	"context"
	"strings"

	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

func subject(prefix, name string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// publish отправляет событие, если брокер настроен. Ошибки только логируются.
func publish(ctx context.Context, publisher port.EventPublisher, log *logger.Logger, subj string, event interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishEvent(ctx, subj, event); err != nil {
		log.Warn("Failed to publish event", "subject", subj, "error", err.Error())
	}
}
