package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

// InvalidateActivityCacheUseCase сбрасывает закешированные страницы одного токена,
// чтобы следующий обход заново сходил в Strava
type InvalidateActivityCacheUseCase struct {
	cache  port.Cache
	logger *logger.Logger
}

// NewInvalidateActivityCacheUseCase создает use case. cache может быть nil.
func NewInvalidateActivityCacheUseCase(cache port.Cache, log *logger.Logger) *InvalidateActivityCacheUseCase {
	return &InvalidateActivityCacheUseCase{cache: cache, logger: log}
}

func (uc *InvalidateActivityCacheUseCase) Execute(ctx context.Context, accessToken string) error {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return ErrMissingAccessToken
	}
	if uc.cache == nil {
		return nil
	}

	if err := uc.cache.DeletePattern(ctx, ActivityPageCachePattern(accessToken)); err != nil {
		uc.logger.Error("Failed to invalidate activity cache", err)
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	uc.logger.Info("Activity cache invalidated", "token_digest", TokenDigest(accessToken))
	return nil
}
