package port

import "context"

// EventPublisher отправляет доменные события (загрузка страниц, экспорт треков,
// вход через OAuth) во внешнюю шину. Реализация может быть nil, тогда события не публикуются.
type EventPublisher interface {
	// PublishEvent сериализует event и отправляет его в subject.
	// Ошибка публикации не должна ломать запрос пользователя.
	PublishEvent(ctx context.Context, subject string, event interface{}) error

	Close() error
}
