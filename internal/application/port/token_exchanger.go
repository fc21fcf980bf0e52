package port

import (
	"context"
	"time"
)

// AuthToken is the result of an OAuth code exchange.
type AuthToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	AthleteID    int64
}

// TokenExchanger определяет OAuth обмен кода на токен (Port)
type TokenExchanger interface {
	// AuthCodeURL returns the platform authorize URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (*AuthToken, error)
}
