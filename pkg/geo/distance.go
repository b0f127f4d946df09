// Package geo computes great-circle distances between WGS84 coordinates.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula
const EarthRadiusMeters = 6371000.0

var (
	// ErrInvalidLatitude indicates a latitude outside [-90, 90]
	ErrInvalidLatitude = errors.New("latitude must be between -90 and 90")

	// ErrInvalidLongitude indicates a longitude outside [-180, 180]
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// NewPoint validates lat/lon and returns them as an XY point (X = longitude, Y = latitude)
func NewPoint(lat, lon float64) (*geom.Point, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLatitude, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLongitude, lon)
	}
	return geom.NewPointFlat(geom.XY, []float64{lon, lat}), nil
}

// DistanceBetween returns the haversine distance in meters between two XY points
func DistanceBetween(a, b *geom.Point) float64 {
	lat1, lon1 := a.Y(), a.X()
	lat2, lon2 := b.Y(), b.X()

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Distance returns the distance in meters between two lat/lon pairs
func Distance(lat1, lon1, lat2, lon2 float64) (float64, error) {
	a, err := NewPoint(lat1, lon1)
	if err != nil {
		return 0, err
	}
	b, err := NewPoint(lat2, lon2)
	if err != nil {
		return 0, err
	}
	return DistanceBetween(a, b), nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
