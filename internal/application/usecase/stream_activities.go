package usecase

import (
	"context"

	"github.com/dreschagin/activity-globe/internal/application/dto"
	"github.com/dreschagin/activity-globe/internal/domain/service"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

// PageEmitter receives pages as they are loaded. Returning an error stops the walk.
type PageEmitter func(page *dto.ActivityPageDTO) error

// StreamActivitiesUseCase проходит по всем страницам активностей, пока Strava
// не вернет пустую страницу
type StreamActivitiesUseCase struct {
	listPage *ListActivityPageUseCase
	maxPages int
	logger   *logger.Logger
}

// NewStreamActivitiesUseCase создает новый use case. maxPages <= 0 снимает ограничение.
func NewStreamActivitiesUseCase(listPage *ListActivityPageUseCase, maxPages int, log *logger.Logger) *StreamActivitiesUseCase {
	return &StreamActivitiesUseCase{
		listPage: listPage,
		maxPages: maxPages,
		logger:   log,
	}
}

// Execute emits pages 1..N in order. The last emitted page has NextPage == 0
// unless the walk was cut by maxPages. No retries: the first error ends the walk.
func (uc *StreamActivitiesUseCase) Execute(
	ctx context.Context,
	accessToken string,
	hues *service.HueGenerator,
	emit PageEmitter,
) error {
	if hues == nil {
		hues = service.NewHueGenerator()
	}

	page := 1
	for emitted := 0; uc.maxPages <= 0 || emitted < uc.maxPages; emitted++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := uc.listPage.Execute(ctx, accessToken, page, hues)
		if err != nil {
			return err
		}

		if err := emit(result); err != nil {
			return err
		}

		if result.NextPage == 0 {
			uc.logger.Debug("Activity stream finished", "pages", emitted+1)
			return nil
		}
		page = result.NextPage
	}

	uc.logger.Warn("Activity stream stopped at page limit", "max_pages", uc.maxPages)
	return nil
}
