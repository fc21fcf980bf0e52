package port

import (
	"context"
	"errors"

	"github.com/dreschagin/activity-globe/internal/domain/entity"
)

// Errors reported by ActivityProvider and TokenExchanger implementations.
// Handlers map them to HTTP statuses with errors.Is.
var (
	ErrUnauthorized    = errors.New("access token rejected")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrNotFound        = errors.New("not found")
	ErrInvalidAuthCode = errors.New("invalid authorization code")
)

// ActivityProvider определяет доступ к активностям атлета на фитнес-платформе (Port)
type ActivityProvider interface {
	// ListActivities returns one page (1-based) of the athlete's activities, newest first.
	// fetched is the number of items the platform sent for the page, including
	// ones dropped as malformed. fetched == 0 means there are no more pages.
	ListActivities(ctx context.Context, accessToken string, page, perPage int) (activities []*entity.Activity, fetched int, err error)

	// GetActivity returns a single activity with its detailed polyline.
	GetActivity(ctx context.Context, accessToken string, id int64) (*entity.Activity, error)
}
