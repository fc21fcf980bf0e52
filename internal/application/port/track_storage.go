package port

import "context"

// TrackStorage определяет интерфейс для хранения экспортированных треков.
type TrackStorage interface {
	// PutObject загружает объект и возвращает URL для чтения.
	PutObject(ctx context.Context, key, contentType string, body []byte) (string, error)

	// GetObjectURL возвращает URL для чтения уже загруженного объекта.
	GetObjectURL(ctx context.Context, key string) (string, error)
}
