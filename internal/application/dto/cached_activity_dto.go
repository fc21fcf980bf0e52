package dto

import (
	"time"

	"github.com/dreschagin/activity-globe/internal/domain/entity"
	"github.com/dreschagin/activity-globe/internal/domain/valueobject"
)

// CachedActivityPageDTO is the cached value of one listing page.
// Fetched keeps the raw item count so paging survives a page of malformed items.
type CachedActivityPageDTO struct {
	Fetched    int                 `json:"fetched"`
	Activities []CachedActivityDTO `json:"activities"`
}

// CachedActivityDTO keeps everything needed to rebuild an Activity,
// including the encoded paths, so a cached page can be turned into tracks again.
type CachedActivityDTO struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Distance           float64   `json:"distance"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	Polyline           string    `json:"polyline,omitempty"`
	SummaryPolyline    string    `json:"summary_polyline,omitempty"`
}

func ToCachedActivities(activities []*entity.Activity) []CachedActivityDTO {
	out := make([]CachedActivityDTO, len(activities))
	for i, a := range activities {
		out[i] = CachedActivityDTO{
			ID:                 a.ID(),
			Name:               a.Name(),
			Type:               a.Type().String(),
			StartDateLocal:     a.StartDateLocal(),
			Distance:           a.Distance(),
			TotalElevationGain: a.TotalElevationGain(),
			Polyline:           a.Polyline(),
			SummaryPolyline:    a.SummaryPolyline(),
		}
	}
	return out
}

// FromCachedActivities восстанавливает сущности из кеша
func FromCachedActivities(cached []CachedActivityDTO) ([]*entity.Activity, error) {
	activities := make([]*entity.Activity, 0, len(cached))
	for _, c := range cached {
		activity, err := entity.NewActivity(
			c.ID,
			c.Name,
			valueobject.ActivityType(c.Type),
			c.StartDateLocal,
			c.Distance,
			c.TotalElevationGain,
			c.Polyline,
			c.SummaryPolyline,
		)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, nil
}
