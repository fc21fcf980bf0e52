package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dreschagin/activity-globe/internal/domain/entity"
	"github.com/dreschagin/activity-globe/internal/domain/valueobject"
	"github.com/dreschagin/activity-globe/pkg/logger"
	"golang.org/x/oauth2"
)

const maxErrorBody = 64 << 10

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient is the base transport. nil means http.DefaultClient.
	HTTPClient *http.Client
	// OnRateLimits receives the rate limit headers of every response.
	OnRateLimits func(RateLimits)
}

// Client реализует port.ActivityProvider поверх Strava API v3
type Client struct {
	baseURL      string
	timeout      time.Duration
	httpClient   *http.Client
	onRateLimits func(RateLimits)
	logger       *logger.Logger
}

func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		timeout:      cfg.Timeout,
		httpClient:   cfg.HTTPClient,
		onRateLimits: cfg.OnRateLimits,
		logger:       log,
	}
}

type polylineMap struct {
	ID              string `json:"id"`
	Polyline        string `json:"polyline"`
	SummaryPolyline string `json:"summary_polyline"`
}

// activity covers both the summary and the detailed representation.
type activity struct {
	ID                 int64       `json:"id"`
	Name               string      `json:"name"`
	Type               string      `json:"type"`
	SportType          string      `json:"sport_type"`
	StartDateLocal     string      `json:"start_date_local"`
	Distance           float64     `json:"distance"`
	TotalElevationGain float64     `json:"total_elevation_gain"`
	Map                polylineMap `json:"map"`
}

func (a activity) toEntity() (*entity.Activity, error) {
	activityType := a.Type
	if activityType == "" {
		activityType = a.SportType
	}

	var startDate time.Time
	if a.StartDateLocal != "" {
		parsed, err := time.Parse(time.RFC3339, a.StartDateLocal)
		if err != nil {
			return nil, fmt.Errorf("activity %d: invalid start_date_local: %w", a.ID, err)
		}
		startDate = parsed
	}

	return entity.NewActivity(
		a.ID,
		a.Name,
		valueobject.ActivityType(activityType),
		startDate,
		a.Distance,
		a.TotalElevationGain,
		a.Map.Polyline,
		a.Map.SummaryPolyline,
	)
}

// ListActivities returns one page of the authenticated athlete's activities.
// Malformed items are skipped but still counted in fetched.
func (c *Client) ListActivities(ctx context.Context, accessToken string, page, perPage int) ([]*entity.Activity, int, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var raw []activity
	if err := c.get(ctx, accessToken, "/athlete/activities", query, &raw); err != nil {
		return nil, 0, err
	}

	activities := make([]*entity.Activity, 0, len(raw))
	for _, item := range raw {
		converted, err := item.toEntity()
		if err != nil {
			c.logger.Warn("Skipping malformed activity", "activity_id", item.ID, "error", err.Error())
			continue
		}
		activities = append(activities, converted)
	}

	return activities, len(raw), nil
}

// GetActivity returns a detailed activity, including map.polyline.
func (c *Client) GetActivity(ctx context.Context, accessToken string, id int64) (*entity.Activity, error) {
	var raw activity
	if err := c.get(ctx, accessToken, "/activities/"+strconv.FormatInt(id, 10), nil, &raw); err != nil {
		return nil, err
	}
	return raw.toEntity()
}

func (c *Client) get(ctx context.Context, accessToken, path string, query url.Values, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, c.httpClient),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	)

	startedAt := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("strava request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Strava request",
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)

	if limits, ok := ParseRateLimits(resp.Header); ok && c.onRateLimits != nil {
		c.onRateLimits(limits)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode strava response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(body) > 0 {
		if json.Unmarshal(body, apiErr) != nil {
			apiErr.Message = strings.TrimSpace(string(body))
		}
	}
	return apiErr
}
