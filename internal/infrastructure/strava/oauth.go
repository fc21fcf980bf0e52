package strava

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dreschagin/activity-globe/internal/application/port"
	"golang.org/x/oauth2"
)

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
	HTTPClient   *http.Client
}

// OAuth реализует port.TokenExchanger. Strava принимает client credentials
// только в теле запроса и scopes через запятую.
type OAuth struct {
	config     *oauth2.Config
	scope      string
	httpClient *http.Client
}

func NewOAuth(cfg OAuthConfig) *OAuth {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &OAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		scope:      strings.Join(cfg.Scopes, ","),
		httpClient: cfg.HTTPClient,
	}
}

func (o *OAuth) AuthCodeURL(state string) string {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("approval_prompt", "auto")}
	if o.scope != "" {
		opts = append(opts, oauth2.SetAuthURLParam("scope", o.scope))
	}
	return o.config.AuthCodeURL(state, opts...)
}

func (o *OAuth) Exchange(ctx context.Context, code string) (*port.AuthToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)

	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			switch retrieveErr.Response.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized:
				return nil, fmt.Errorf("%w: %v", port.ErrInvalidAuthCode, err)
			case http.StatusTooManyRequests:
				return nil, fmt.Errorf("%w: %v", port.ErrRateLimited, err)
			}
		}
		return nil, err
	}

	result := &port.AuthToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if expiresAt, ok := token.Extra("expires_at").(float64); ok && result.ExpiresAt.IsZero() {
		result.ExpiresAt = time.Unix(int64(expiresAt), 0).UTC()
	}
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			result.AthleteID = int64(id)
		}
	}

	return result, nil
}
