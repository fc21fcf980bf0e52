package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dreschagin/activity-globe/internal/application/dto"
	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/internal/domain/entity"
	"github.com/dreschagin/activity-globe/internal/domain/service"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

type ListActivityPageConfig struct {
	PerPage       int
	SubjectPrefix string
}

// ListActivityPageUseCase загружает одну страницу активностей и строит для нее треки
type ListActivityPageUseCase struct {
	provider  port.ActivityProvider
	builder   *service.TrackBuilder
	cache     port.Cache
	publisher port.EventPublisher
	metrics   port.ActivityMetrics
	config    ListActivityPageConfig
	logger    *logger.Logger
}

// NewListActivityPageUseCase создает новый use case. cache и publisher могут быть nil.
func NewListActivityPageUseCase(
	provider port.ActivityProvider,
	builder *service.TrackBuilder,
	cache port.Cache,
	publisher port.EventPublisher,
	metrics port.ActivityMetrics,
	config ListActivityPageConfig,
	log *logger.Logger,
) *ListActivityPageUseCase {
	if config.PerPage <= 0 {
		config.PerPage = 200
	}
	if metrics == nil {
		metrics = port.NopActivityMetrics{}
	}

	return &ListActivityPageUseCase{
		provider:  provider,
		builder:   builder,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		config:    config,
		logger:    log,
	}
}

// PerPage returns the page size used for Strava requests.
func (uc *ListActivityPageUseCase) PerPage() int {
	return uc.config.PerPage
}

// Execute возвращает страницу page (начиная с 1). Оттенки треков продолжают
// последовательность hues, после вызова hues указывает на последний выданный оттенок.
func (uc *ListActivityPageUseCase) Execute(
	ctx context.Context,
	accessToken string,
	page int,
	hues *service.HueGenerator,
) (*dto.ActivityPageDTO, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if hues == nil {
		hues = service.NewHueGenerator()
	}

	activities, fetched, fromCache, err := uc.fetch(ctx, accessToken, page)
	if err != nil {
		return nil, err
	}

	tracks, buildErr := uc.builder.Build(activities, hues)
	if buildErr != nil {
		uc.logger.Warn("Skipped activities with malformed polylines",
			"page", page,
			"error", buildErr.Error(),
		)
	}

	// Страница только из битых активностей не конец списка
	nextPage := 0
	if fetched > 0 {
		nextPage = page + 1
	}

	uc.metrics.ActivitiesFetched(len(activities))
	uc.metrics.TracksBuilt(len(tracks))

	uc.logger.Debug("Activity page loaded",
		"page", page,
		"activities", len(activities),
		"fetched", fetched,
		"tracks", len(tracks),
		"from_cache", fromCache,
	)

	publish(ctx, uc.publisher, uc.logger, subject(uc.config.SubjectPrefix, dto.SubjectActivitiesPageFetched), dto.ActivitiesPageFetchedEvent{
		Page:          page,
		PerPage:       uc.config.PerPage,
		ActivityCount: len(activities),
		TrackCount:    len(tracks),
		FromCache:     fromCache,
		FetchedAt:     time.Now().UTC(),
	})

	return &dto.ActivityPageDTO{
		Page:       page,
		NextPage:   nextPage,
		PerPage:    uc.config.PerPage,
		Activities: dto.FromActivities(activities),
		Tracks:     dto.FromTracks(tracks),
		NextHue:    hues.Current(),
	}, nil
}

func (uc *ListActivityPageUseCase) fetch(ctx context.Context, accessToken string, page int) ([]*entity.Activity, int, bool, error) {
	if uc.cache == nil {
		activities, fetched, err := uc.listFromProvider(ctx, accessToken, page)
		return activities, fetched, false, err
	}

	cacheKey := ActivityPageCacheKey(accessToken, page, uc.config.PerPage)

	var cached dto.CachedActivityPageDTO
	err := uc.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		activities, convErr := dto.FromCachedActivities(cached.Activities)
		if convErr == nil && cached.Fetched >= len(activities) {
			uc.metrics.CacheHit()
			return activities, cached.Fetched, true, nil
		}
		if convErr == nil {
			convErr = fmt.Errorf("fetched count %d below %d activities", cached.Fetched, len(activities))
		}
		uc.logger.Warn("Dropping unreadable cached page", "page", page, "error", convErr.Error())
		if delErr := uc.cache.Delete(ctx, cacheKey); delErr != nil {
			uc.logger.Warn("Failed to drop cached page", "page", page, "error", delErr.Error())
		}
	} else if !errors.Is(err, port.ErrCacheMiss) {
		uc.logger.Warn("Cache read failed", "page", page, "error", err.Error())
	}
	uc.metrics.CacheMiss()

	activities, fetched, err := uc.listFromProvider(ctx, accessToken, page)
	if err != nil {
		return nil, 0, false, err
	}

	entry := dto.CachedActivityPageDTO{Fetched: fetched, Activities: dto.ToCachedActivities(activities)}
	if err := uc.cache.Set(ctx, cacheKey, entry); err != nil {
		uc.logger.Warn("Failed to cache activity page", "page", page, "error", err.Error())
	}

	return activities, fetched, false, nil
}

func (uc *ListActivityPageUseCase) listFromProvider(ctx context.Context, accessToken string, page int) ([]*entity.Activity, int, error) {
	activities, fetched, err := uc.provider.ListActivities(ctx, accessToken, page, uc.config.PerPage)
	if err != nil {
		uc.logger.Error("Failed to list activities", err, "page", page)
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, fetched, nil
}

// ActivityPageCacheKey builds the cache key for a page. The token is hashed
// so that it never reaches the cache in clear text.
func ActivityPageCacheKey(accessToken string, page, perPage int) string {
	return fmt.Sprintf("activities:page:%s:%d:%d", TokenDigest(accessToken), page, perPage)
}

// ActivityPageCachePattern matches every cached page of one token.
func ActivityPageCachePattern(accessToken string) string {
	return fmt.Sprintf("activities:page:%s:*", TokenDigest(accessToken))
}

// TokenDigest returns a short stable digest of an access token.
func TokenDigest(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:16])
}
