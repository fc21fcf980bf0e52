package valueobject

import (
	"fmt"
	"math"
)

// LatLng is a decoded path point in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate проверяет, что координаты лежат в допустимых пределах
func (p LatLng) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return fmt.Errorf("coordinate is NaN")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude out of range: %f", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude out of range: %f", p.Lng)
	}
	return nil
}

// FlattenDegrees returns points as [lng0, lat0, lng1, lat1, ...],
// the layout Cesium.Cartesian3.fromDegreesArray expects.
func FlattenDegrees(points []LatLng) []float64 {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p.Lng, p.Lat)
	}
	return flat
}

// WGS84 ellipsoid radii in meters, as used by Cesium.
const (
	wgs84RadiusX = 6378137.0
	wgs84RadiusZ = 6356752.3142451793
)

// Cartesian3 is an earth-centered, earth-fixed position in meters.
type Cartesian3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the straight-line distance in meters.
func (c Cartesian3) Distance(other Cartesian3) float64 {
	dx, dy, dz := c.X-other.X, c.Y-other.Y, c.Z-other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Cartesian3FromDegrees converts geodetic coordinates on the WGS84
// ellipsoid to ECEF, matching Cesium.Cartesian3.fromDegrees.
func Cartesian3FromDegrees(lng, lat, height float64) Cartesian3 {
	lambda := lng * math.Pi / 180
	phi := lat * math.Pi / 180
	cosPhi := math.Cos(phi)

	// geodetic surface normal
	nx := cosPhi * math.Cos(lambda)
	ny := cosPhi * math.Sin(lambda)
	nz := math.Sin(phi)
	norm := math.Sqrt(nx*nx + ny*ny + nz*nz)
	nx, ny, nz = nx/norm, ny/norm, nz/norm

	kx := wgs84RadiusX * wgs84RadiusX * nx
	ky := wgs84RadiusX * wgs84RadiusX * ny
	kz := wgs84RadiusZ * wgs84RadiusZ * nz
	gamma := math.Sqrt(nx*kx + ny*ky + nz*kz)

	return Cartesian3{
		X: kx/gamma + nx*height,
		Y: ky/gamma + ny*height,
		Z: kz/gamma + nz*height,
	}
}

// Bounds is the bounding box of a path, used to fly the camera.
type Bounds struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// BoundsOf returns the bounding box of points; ok is false for an empty path.
func BoundsOf(points []LatLng) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{West: points[0].Lng, East: points[0].Lng, South: points[0].Lat, North: points[0].Lat}
	for _, p := range points[1:] {
		b.West = math.Min(b.West, p.Lng)
		b.East = math.Max(b.East, p.Lng)
		b.South = math.Min(b.South, p.Lat)
		b.North = math.Max(b.North, p.Lat)
	}
	return b, true
}

// BoundingSphere encloses a path in ECEF coordinates. The browser flies the
// camera to it with Camera.flyToBoundingSphere.
type BoundingSphere struct {
	Center Cartesian3 `json:"center"`
	Radius float64    `json:"radius"`
}

// BoundingSphereOf centres the sphere on the middle of the bounding box at
// ground level; ok is false for an empty path.
func BoundingSphereOf(points []LatLng) (BoundingSphere, bool) {
	bounds, ok := BoundsOf(points)
	if !ok {
		return BoundingSphere{}, false
	}
	center := Cartesian3FromDegrees((bounds.West+bounds.East)/2, (bounds.South+bounds.North)/2, 0)

	sphere := BoundingSphere{Center: center}
	for _, p := range points {
		sphere.Radius = math.Max(sphere.Radius, center.Distance(Cartesian3FromDegrees(p.Lng, p.Lat, 0)))
	}
	return sphere, true
}
