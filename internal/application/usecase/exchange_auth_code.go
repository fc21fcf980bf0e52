package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dreschagin/activity-globe/internal/application/dto"
	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/pkg/logger"
)

// ExchangeAuthCodeUseCase обменивает OAuth код на access token
type ExchangeAuthCodeUseCase struct {
	exchanger     port.TokenExchanger
	publisher     port.EventPublisher
	subjectPrefix string
	logger        *logger.Logger
}

func NewExchangeAuthCodeUseCase(
	exchanger port.TokenExchanger,
	publisher port.EventPublisher,
	subjectPrefix string,
	log *logger.Logger,
) *ExchangeAuthCodeUseCase {
	return &ExchangeAuthCodeUseCase{
		exchanger:     exchanger,
		publisher:     publisher,
		subjectPrefix: subjectPrefix,
		logger:        log,
	}
}

// AuthCodeURL returns where /login sends the browser.
func (uc *ExchangeAuthCodeUseCase) AuthCodeURL(state string) string {
	return uc.exchanger.AuthCodeURL(state)
}

// Execute обменивает код. Повторных попыток нет: ошибка платформы возвращается как есть.
func (uc *ExchangeAuthCodeUseCase) Execute(ctx context.Context, code string) (*port.AuthToken, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingAuthCode
	}

	token, err := uc.exchanger.Exchange(ctx, code)
	if err != nil {
		uc.logger.Error("Token exchange failed", err)
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("token exchange failed: empty access token")
	}

	uc.logger.Info("Token exchanged", "athlete_id", token.AthleteID)

	publish(ctx, uc.publisher, uc.logger, subject(uc.subjectPrefix, dto.SubjectAuthTokenExchanged), dto.AuthTokenExchangedEvent{
		AthleteID:   token.AthleteID,
		ExchangedAt: time.Now().UTC(),
	})

	return token, nil
}
