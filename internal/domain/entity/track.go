package entity

import "github.com/dreschagin/activity-globe/internal/domain/valueobject"

// Track is an activity path ready to be drawn on the globe.
type Track struct {
	activity *Activity
	points   []valueobject.LatLng
	hue      float64
	color    string
	width    int
}

// NewTrack создает трек для активности с уже декодированными точками
func NewTrack(activity *Activity, points []valueobject.LatLng, hue float64, color string, width int) *Track {
	return &Track{
		activity: activity,
		points:   points,
		hue:      hue,
		color:    color,
		width:    width,
	}
}

func (t *Track) Activity() *Activity {
	return t.activity
}

func (t *Track) Points() []valueobject.LatLng {
	return t.points
}

// Positions returns the flat [lng, lat, ...] array for the browser.
func (t *Track) Positions() []float64 {
	return valueobject.FlattenDegrees(t.points)
}

func (t *Track) Bounds() (valueobject.Bounds, bool) {
	return valueobject.BoundsOf(t.points)
}

func (t *Track) BoundingSphere() (valueobject.BoundingSphere, bool) {
	return valueobject.BoundingSphereOf(t.points)
}

func (t *Track) Hue() float64 {
	return t.hue
}

// Color is a CSS hex color, e.g. "#f2a079".
func (t *Track) Color() string {
	return t.color
}

func (t *Track) Width() int {
	return t.width
}
