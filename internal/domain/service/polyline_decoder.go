package service

import (
	"errors"
	"fmt"

	"github.com/dreschagin/activity-globe/internal/domain/entity"
	"github.com/dreschagin/activity-globe/internal/domain/valueobject"
	"github.com/twpayne/go-polyline"
)

var ErrInvalidPolyline = errors.New("invalid encoded polyline")

// PolylineDecoder декодирует encoded polyline (precision 5) в точки пути (Domain Service)
type PolylineDecoder struct {
	codec polyline.Codec
}

// NewPolylineDecoder создает новый PolylineDecoder
func NewPolylineDecoder() *PolylineDecoder {
	return &PolylineDecoder{
		codec: polyline.Codec{Dim: 2, Scale: 1e5},
	}
}

// Decode декодирует строку в последовательность (lat, lng).
// Пустая строка дает пустую последовательность.
func (d *PolylineDecoder) Decode(encoded string) ([]valueobject.LatLng, error) {
	if encoded == "" {
		return []valueobject.LatLng{}, nil
	}

	coords, rest, err := d.codec.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolyline, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidPolyline, len(rest))
	}

	points := make([]valueobject.LatLng, 0, len(coords))
	for _, coord := range coords {
		point := valueobject.LatLng{Lat: coord[0], Lng: coord[1]}
		if err := point.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPolyline, err)
		}
		points = append(points, point)
	}

	return points, nil
}

// Positions возвращает плоский массив [lng, lat, ...] для активности.
// Активность без трека дает пустой массив.
func (d *PolylineDecoder) Positions(activity *entity.Activity) ([]float64, error) {
	points, err := d.Decode(activity.EncodedPath())
	if err != nil {
		return nil, err
	}
	return valueobject.FlattenDegrees(points), nil
}
