package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/dreschagin/activity-globe/internal/application/dto"
	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/internal/domain/service"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

// GetActivityTrackUseCase загружает активность целиком, чтобы получить детальную polyline
type GetActivityTrackUseCase struct {
	provider port.ActivityProvider
	builder  *service.TrackBuilder
	logger   *logger.Logger
}

func NewGetActivityTrackUseCase(
	provider port.ActivityProvider,
	builder *service.TrackBuilder,
	log *logger.Logger,
) *GetActivityTrackUseCase {
	return &GetActivityTrackUseCase{
		provider: provider,
		builder:  builder,
		logger:   log,
	}
}

func (uc *GetActivityTrackUseCase) Execute(
	ctx context.Context,
	accessToken string,
	id int64,
	hues *service.HueGenerator,
) (*dto.ActivityTrackDTO, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrMissingAccessToken
	}
	if hues == nil {
		hues = service.NewHueGenerator()
	}

	activity, err := uc.provider.GetActivity(ctx, accessToken, id)
	if err != nil {
		uc.logger.Error("Failed to get activity", err, "activity_id", id)
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	track, err := uc.builder.BuildOne(activity, hues)
	if err != nil {
		return nil, err
	}

	result := &dto.ActivityTrackDTO{
		Activity: dto.FromActivity(activity),
		NextHue:  hues.Current(),
	}
	if track != nil {
		trackDTO := dto.FromTrack(track)
		result.Track = &trackDTO
	}

	return result, nil
}
