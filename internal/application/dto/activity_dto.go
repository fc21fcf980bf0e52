package dto

import (
	"time"

	"github.com/dreschagin/activity-globe/internal/domain/entity"
	"github.com/dreschagin/activity-globe/internal/domain/valueobject"
)

// ActivityDTO представляет активность для списка в UI
type ActivityDTO struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	Icon               string    `json:"icon"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Distance           float64   `json:"distance"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	HasPath            bool      `json:"has_path"`
}

// TrackDTO is what the browser turns into a Cesium polyline entity.
type TrackDTO struct {
	ActivityID     int64                       `json:"activity_id"`
	Positions      []float64                   `json:"positions"`
	Color          string                      `json:"color"`
	Hue            float64                     `json:"hue"`
	Width          int                         `json:"width"`
	Bounds         *valueobject.Bounds         `json:"bounds,omitempty"`
	BoundingSphere *valueobject.BoundingSphere `json:"bounding_sphere,omitempty"`
}

// ActivityPageDTO is one page of the athlete's activities.
// NextPage is 0 once Strava returned an empty page.
type ActivityPageDTO struct {
	Page       int           `json:"page"`
	NextPage   int           `json:"next_page"`
	PerPage    int           `json:"per_page"`
	Activities []ActivityDTO `json:"activities"`
	Tracks     []TrackDTO    `json:"tracks"`
	NextHue    float64       `json:"next_hue"`
}

// ActivityTrackDTO is a single activity with its detailed track (nil without a path).
type ActivityTrackDTO struct {
	Activity ActivityDTO `json:"activity"`
	Track    *TrackDTO   `json:"track"`
	NextHue  float64     `json:"next_hue"`
}

// TrackExportDTO describes a stored GeoJSON export.
type TrackExportDTO struct {
	ActivityID int64  `json:"activity_id"`
	Key        string `json:"key"`
	URL        string `json:"url"`
	PointCount int    `json:"point_count"`
}

// FromActivity конвертирует Domain Entity в DTO
func FromActivity(activity *entity.Activity) ActivityDTO {
	return ActivityDTO{
		ID:                 activity.ID(),
		Name:               activity.Name(),
		Type:               activity.Type().String(),
		Icon:               activity.Type().Icon(),
		StartDateLocal:     activity.StartDateLocal(),
		Distance:           activity.Distance(),
		TotalElevationGain: activity.TotalElevationGain(),
		HasPath:            activity.HasPath(),
	}
}

// FromActivities конвертирует слайс Entity в слайс DTO
func FromActivities(activities []*entity.Activity) []ActivityDTO {
	dtos := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		dtos[i] = FromActivity(a)
	}
	return dtos
}

// FromTrack конвертирует трек в DTO
func FromTrack(track *entity.Track) TrackDTO {
	out := TrackDTO{
		ActivityID: track.Activity().ID(),
		Positions:  track.Positions(),
		Color:      track.Color(),
		Hue:        track.Hue(),
		Width:      track.Width(),
	}
	if bounds, ok := track.Bounds(); ok {
		out.Bounds = &bounds
	}
	if sphere, ok := track.BoundingSphere(); ok {
		out.BoundingSphere = &sphere
	}
	return out
}

func FromTracks(tracks []*entity.Track) []TrackDTO {
	dtos := make([]TrackDTO, len(tracks))
	for i, t := range tracks {
		dtos[i] = FromTrack(t)
	}
	return dtos
}
