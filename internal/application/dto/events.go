package dto

import "time"

// Event subjects, relative to the configured prefix.
const (
	SubjectActivitiesPageFetched = "activities.page_fetched"
	SubjectAuthTokenExchanged    = "auth.token_exchanged"
	SubjectTrackExported         = "tracks.exported"
)

// ActivitiesPageFetchedEvent never carries the access token.
type ActivitiesPageFetchedEvent struct {
	Page          int       `json:"page"`
	PerPage       int       `json:"per_page"`
	ActivityCount int       `json:"activity_count"`
	TrackCount    int       `json:"track_count"`
	FromCache     bool      `json:"from_cache"`
	FetchedAt     time.Time `json:"fetched_at"`
}

type AuthTokenExchangedEvent struct {
	AthleteID   int64     `json:"athlete_id,omitempty"`
	ExchangedAt time.Time `json:"exchanged_at"`
}

type TrackExportedEvent struct {
	ActivityID int64     `json:"activity_id"`
	Key        string    `json:"key"`
	PointCount int       `json:"point_count"`
	ExportedAt time.Time `json:"exported_at"`
}
