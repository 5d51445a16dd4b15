package georef

import (
	"math"
	"testing"
)

func TestUTMZone(t *testing.T) {
	tests := []struct {
		lon  float64
		want int
	}{
		{-180, 1},
		{-77.03, 18},
		{-0.1, 30},
		{0, 31},
		{3, 31},
		{24.9, 35},
		{179.9, 60},
		{180, 60},
	}
	for _, tt := range tests {
		if got := UTMZone(tt.lon); got != tt.want {
			t.Errorf("UTMZone(%g) = %d, want %d", tt.lon, got, tt.want)
		}
	}
}

func TestLatLonToUTMCentralMeridian(t *testing.T) {
	// On the equator at a zone's central meridian the projection is exact:
	// false easting, zero northing.
	easting, northing, zone, isNorth := WGS84Mapper{}.LatLonToUTM(0, 3)
	if zone != 31 || !isNorth {
		t.Fatalf("zone = %d north = %v, want 31 north", zone, isNorth)
	}
	if math.Abs(easting-500000) > 1e-6 {
		t.Errorf("easting = %.9f, want 500000", easting)
	}
	if math.Abs(northing) > 1e-6 {
		t.Errorf("northing = %.9f, want 0", northing)
	}
}

func TestUTMRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{name: "turin", lat: 45.07, lon: 7.69},
		{name: "washington dc", lat: 38.9, lon: -77.03},
		{name: "helsinki", lat: 60.17, lon: 24.94},
		{name: "cape town", lat: -33.92, lon: 18.42},
		{name: "near equator south", lat: -0.5, lon: 36.8},
	}

	m := WGS84Mapper{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			easting, northing, zone, isNorth := m.LatLonToUTM(tt.lat, tt.lon)
			if isNorth != (tt.lat >= 0) {
				t.Fatalf("hemisphere flag = %v for lat %g", isNorth, tt.lat)
			}
			if northing < 0 || northing > utmFalseNorth {
				t.Fatalf("northing %g out of range", northing)
			}
			lat, lon := m.UTMToLatLon(easting, northing, zone, isNorth)
			if math.Abs(lat-tt.lat) > 1e-7 || math.Abs(lon-tt.lon) > 1e-7 {
				t.Errorf("round trip (%g, %g) -> (%.9f, %.9f)", tt.lat, tt.lon, lat, lon)
			}
		})
	}
}

func TestUTMLocalDistances(t *testing.T) {
	// Two points 0.01 degrees of latitude apart are roughly 1.11 km apart;
	// the projected northing difference must agree to within projection
	// distortion (well under a meter at scale factor 0.9996).
	m := WGS84Mapper{}
	_, n1, _, _ := m.LatLonToUTM(45.00, 7.69)
	_, n2, _, _ := m.LatLonToUTM(45.01, 7.69)
	d := n2 - n1
	if d < 1100 || d > 1120 {
		t.Errorf("0.01 deg latitude spans %g m northing, want ~1110", d)
	}
}
