// Package geo holds the geographic primitives shared by the place service:
// validated points, viewport bounds and the rectangle approximation used for
// radius lookups.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry signals out-of-range coordinates or a malformed rectangle.
var ErrInvalidGeometry = errors.New("invalid geometry")

const (
	// earthRadiusMeters is the WGS 84 equatorial radius.
	earthRadiusMeters = 6378137.0

	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Point is a WGS 84 coordinate pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether the point lies within valid geographic ranges.
func (p Point) Validate() error {
	if p.Latitude < MinLatitude || p.Latitude > MaxLatitude {
		return fmt.Errorf("%w: latitude %v out of range [%v, %v]", ErrInvalidGeometry, p.Latitude, MinLatitude, MaxLatitude)
	}
	if p.Longitude < MinLongitude || p.Longitude > MaxLongitude {
		return fmt.Errorf("%w: longitude %v out of range [%v, %v]", ErrInvalidGeometry, p.Longitude, MinLongitude, MaxLongitude)
	}
	return nil
}

// Bounds is a rectangle defined by its southwest and northeast corners.
// Rectangles never cross the antimeridian: SW must be component-wise less
// than or equal to NE.
type Bounds struct {
	SW Point `json:"sw"`
	NE Point `json:"ne"`
}

// NewBounds validates both corners and their ordering.
func NewBounds(sw, ne Point) (Bounds, error) {
	if err := sw.Validate(); err != nil {
		return Bounds{}, fmt.Errorf("southwest corner: %w", err)
	}
	if err := ne.Validate(); err != nil {
		return Bounds{}, fmt.Errorf("northeast corner: %w", err)
	}
	if sw.Latitude > ne.Latitude {
		return Bounds{}, fmt.Errorf("%w: southwest latitude %v exceeds northeast latitude %v", ErrInvalidGeometry, sw.Latitude, ne.Latitude)
	}
	if sw.Longitude > ne.Longitude {
		return Bounds{}, fmt.Errorf("%w: southwest longitude %v exceeds northeast longitude %v", ErrInvalidGeometry, sw.Longitude, ne.Longitude)
	}
	return Bounds{SW: sw, NE: ne}, nil
}

// Contains reports closed-interval containment of p.
func (b Bounds) Contains(p Point) bool {
	return p.Latitude >= b.SW.Latitude && p.Latitude <= b.NE.Latitude &&
		p.Longitude >= b.SW.Longitude && p.Longitude <= b.NE.Longitude
}

// BoundsAround returns the rectangle enclosing a circle of radiusMeters
// around center. Corners of the rectangle lie up to ~41% farther away than
// the radius; callers accept that in exchange for plain range queries.
// The result is clamped to valid latitude/longitude ranges.
func BoundsAround(center Point, radiusMeters float64) Bounds {
	latDelta := (radiusMeters / earthRadiusMeters) * (180 / math.Pi)

	lonDelta := 180.0
	if cos := math.Cos(center.Latitude * math.Pi / 180); cos > 0 {
		lonDelta = (radiusMeters / (earthRadiusMeters * cos)) * (180 / math.Pi)
	}

	return Bounds{
		SW: Point{
			Latitude:  math.Max(center.Latitude-latDelta, MinLatitude),
			Longitude: math.Max(center.Longitude-lonDelta, MinLongitude),
		},
		NE: Point{
			Latitude:  math.Min(center.Latitude+latDelta, MaxLatitude),
			Longitude: math.Min(center.Longitude+lonDelta, MaxLongitude),
		},
	}
}
