package service

import (
	"errors"
	"fmt"

	"github.com/dreschagin/activity-globe/internal/domain/entity"
)

// TrackBuilder превращает активности в цветные треки для глобуса (Domain Service)
type TrackBuilder struct {
	decoder    *PolylineDecoder
	width      int
	saturation float64
	value      float64
}

// NewTrackBuilder создает новый TrackBuilder
func NewTrackBuilder(decoder *PolylineDecoder, width int, saturation, value float64) *TrackBuilder {
	if width <= 0 {
		width = 5
	}
	return &TrackBuilder{
		decoder:    decoder,
		width:      width,
		saturation: saturation,
		value:      value,
	}
}

// BuildOne строит трек одной активности.
// Для активности без трека возвращает (nil, nil) и не сдвигает оттенок.
func (b *TrackBuilder) BuildOne(activity *entity.Activity, hues *HueGenerator) (*entity.Track, error) {
	if activity == nil {
		return nil, errors.New("activity cannot be nil")
	}
	if !activity.HasPath() {
		return nil, nil
	}

	points, err := b.decoder.Decode(activity.EncodedPath())
	if err != nil {
		return nil, fmt.Errorf("activity %d: %w", activity.ID(), err)
	}
	if len(points) == 0 {
		return nil, nil
	}

	hue := hues.Next()
	return entity.NewTrack(activity, points, hue, ColorFromHSV(hue, b.saturation, b.value), b.width), nil
}

// Build строит треки в порядке активностей. Активности с битой polyline
// пропускаются, их ошибки объединяются во втором результате.
func (b *TrackBuilder) Build(activities []*entity.Activity, hues *HueGenerator) ([]*entity.Track, error) {
	tracks := make([]*entity.Track, 0, len(activities))
	var errs []error

	for _, activity := range activities {
		track, err := b.BuildOne(activity, hues)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if track != nil {
			tracks = append(tracks, track)
		}
	}

	return tracks, errors.Join(errs...)
}
