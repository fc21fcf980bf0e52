package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/dreschagin/activity-globe/internal/domain/valueobject"
)

var ErrInvalidActivity = errors.New("invalid activity")

// Activity is an athlete activity as received from Strava.
// It is never persisted locally.
type Activity struct {
	id                 int64
	name               string
	activityType       valueobject.ActivityType
	startDateLocal     time.Time
	distance           float64
	totalElevationGain float64
	polyline           string
	summaryPolyline    string
}

// NewActivity создает активность и проверяет обязательные поля
func NewActivity(
	id int64,
	name string,
	activityType valueobject.ActivityType,
	startDateLocal time.Time,
	distance, totalElevationGain float64,
	polyline, summaryPolyline string,
) (*Activity, error) {
	if id <= 0 {
		return nil, ErrInvalidActivity
	}
	if distance < 0 {
		distance = 0
	}

	return &Activity{
		id:                 id,
		name:               strings.TrimSpace(name),
		activityType:       activityType,
		startDateLocal:     startDateLocal,
		distance:           distance,
		totalElevationGain: totalElevationGain,
		polyline:           polyline,
		summaryPolyline:    summaryPolyline,
	}, nil
}

func (a *Activity) ID() int64 {
	return a.id
}

func (a *Activity) Name() string {
	return a.name
}

func (a *Activity) Type() valueobject.ActivityType {
	return a.activityType
}

func (a *Activity) StartDateLocal() time.Time {
	return a.startDateLocal
}

// Distance in meters.
func (a *Activity) Distance() float64 {
	return a.distance
}

// TotalElevationGain in meters.
func (a *Activity) TotalElevationGain() float64 {
	return a.totalElevationGain
}

func (a *Activity) Polyline() string {
	return a.polyline
}

func (a *Activity) SummaryPolyline() string {
	return a.summaryPolyline
}

// EncodedPath returns the detailed polyline when Strava sent one,
// otherwise the summary polyline. Empty when the activity has no map.
func (a *Activity) EncodedPath() string {
	if a.polyline != "" {
		return a.polyline
	}
	return a.summaryPolyline
}

// HasPath сообщает, есть ли у активности трек (например, у тренировки на станке его нет)
func (a *Activity) HasPath() bool {
	return a.EncodedPath() != ""
}
