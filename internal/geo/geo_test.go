package geo

import (
	"errors"
	"testing"
)

func TestPointValidate(t *testing.T) {
	tests := []struct {
		name    string
		point   Point
		wantErr bool
	}{
		{name: "valid", point: Point{Latitude: 37.5, Longitude: 127.0}},
		{name: "equator antimeridian", point: Point{Latitude: 0, Longitude: 180}},
		{name: "south pole", point: Point{Latitude: -90, Longitude: -180}},
		{name: "latitude too high", point: Point{Latitude: 90.001, Longitude: 0}, wantErr: true},
		{name: "latitude too low", point: Point{Latitude: -91, Longitude: 0}, wantErr: true},
		{name: "longitude too high", point: Point{Latitude: 0, Longitude: 180.5}, wantErr: true},
		{name: "longitude too low", point: Point{Latitude: 0, Longitude: -200}, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.point.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidGeometry) {
					t.Fatalf("expected ErrInvalidGeometry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewBounds(t *testing.T) {
	tests := []struct {
		name    string
		sw, ne  Point
		wantErr bool
	}{
		{
			name: "valid",
			sw:   Point{Latitude: 37, Longitude: 126},
			ne:   Point{Latitude: 38, Longitude: 128},
		},
		{
			name: "degenerate point rectangle",
			sw:   Point{Latitude: 37, Longitude: 126},
			ne:   Point{Latitude: 37, Longitude: 126},
		},
		{
			name:    "latitudes swapped",
			sw:      Point{Latitude: 38, Longitude: 126},
			ne:      Point{Latitude: 37, Longitude: 128},
			wantErr: true,
		},
		{
			name:    "longitudes swapped",
			sw:      Point{Latitude: 37, Longitude: 128},
			ne:      Point{Latitude: 38, Longitude: 126},
			wantErr: true,
		},
		{
			name:    "southwest corner out of range",
			sw:      Point{Latitude: -95, Longitude: 126},
			ne:      Point{Latitude: 38, Longitude: 128},
			wantErr: true,
		},
		{
			name:    "northeast corner out of range",
			sw:      Point{Latitude: 37, Longitude: 126},
			ne:      Point{Latitude: 38, Longitude: 181},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBounds(tc.sw, tc.ne)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidGeometry) {
					t.Fatalf("expected ErrInvalidGeometry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBoundsContains(t *testing.T) {
	b, err := NewBounds(Point{Latitude: 37, Longitude: 126}, Point{Latitude: 38, Longitude: 128})
	if err != nil {
		t.Fatalf("NewBounds: %v", err)
	}

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{name: "inside", point: Point{Latitude: 37.5, Longitude: 127}, want: true},
		{name: "on southwest corner", point: Point{Latitude: 37, Longitude: 126}, want: true},
		{name: "on northeast corner", point: Point{Latitude: 38, Longitude: 128}, want: true},
		{name: "north of rectangle", point: Point{Latitude: 39, Longitude: 127}, want: false},
		{name: "west of rectangle", point: Point{Latitude: 37.5, Longitude: 125}, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Contains(tc.point); got != tc.want {
				t.Fatalf("Contains(%v) = %v, want %v", tc.point, got, tc.want)
			}
		})
	}
}

func TestBoundsAround(t *testing.T) {
	center := Point{Latitude: 37.5, Longitude: 127.0}
	b := BoundsAround(center, 10000)

	if !b.Contains(center) {
		t.Fatalf("rectangle %+v does not contain its center %+v", b, center)
	}
	if b.SW.Latitude >= center.Latitude || b.NE.Latitude <= center.Latitude {
		t.Fatalf("latitude span %v..%v does not straddle %v", b.SW.Latitude, b.NE.Latitude, center.Latitude)
	}
	if b.SW.Longitude >= center.Longitude || b.NE.Longitude <= center.Longitude {
		t.Fatalf("longitude span %v..%v does not straddle %v", b.SW.Longitude, b.NE.Longitude, center.Longitude)
	}

	// 10 km is roughly 0.09 degrees of latitude.
	latDelta := b.NE.Latitude - center.Latitude
	if latDelta < 0.08 || latDelta > 0.1 {
		t.Fatalf("latitude delta %v outside expected range for 10km", latDelta)
	}
	// Away from the equator a degree of longitude is shorter, so the
	// longitude delta must be wider than the latitude delta.
	if lonDelta := b.NE.Longitude - center.Longitude; lonDelta <= latDelta {
		t.Fatalf("longitude delta %v should exceed latitude delta %v at lat 37.5", lonDelta, latDelta)
	}
}

func TestBoundsAroundClampsAtPole(t *testing.T) {
	b := BoundsAround(Point{Latitude: 89.99, Longitude: 0}, 50000)
	if b.NE.Latitude > MaxLatitude {
		t.Fatalf("latitude %v not clamped to %v", b.NE.Latitude, MaxLatitude)
	}
	if b.NE.Longitude > MaxLongitude || b.SW.Longitude < MinLongitude {
		t.Fatalf("longitude span %v..%v not clamped", b.SW.Longitude, b.NE.Longitude)
	}
}
