package georef

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// LocalFrame holds the geographic anchor of the local Cartesian frame.
// It starts Unanchored and becomes Anchored the first time an origin is
// established; re-anchoring is allowed (last call wins) but the frame
// never reverts to Unanchored within a run.
type LocalFrame struct {
	mapper GeoMapper
	origin LocalOrigin
}

// NewLocalFrame creates an unanchored frame backed by the given mapper.
func NewLocalFrame(mapper GeoMapper) *LocalFrame {
	return &LocalFrame{mapper: mapper}
}

// Anchored reports whether an origin has been established.
func (f *LocalFrame) Anchored() bool {
	return f.origin.Zone != 0
}

// Origin returns the current local origin. Zone is 0 while Unanchored.
func (f *LocalFrame) Origin() LocalOrigin {
	return f.origin
}

// Zone returns the UTM zone of the origin, 0 while Unanchored.
func (f *LocalFrame) Zone() int {
	return f.origin.Zone
}

// IsNorthHemisphere reports the origin hemisphere. Only meaningful once
// Anchored.
func (f *LocalFrame) IsNorthHemisphere() bool {
	return f.origin.IsNorthHemisphere
}

// Mapper exposes the projection service for collaborators that must
// project additional points.
func (f *LocalFrame) Mapper() GeoMapper {
	return f.mapper
}

// AnchorFromGeo establishes (or replaces) the origin from a geographic
// point and transitions the frame to Anchored.
func (f *LocalFrame) AnchorFromGeo(p GeoPoint) LocalOrigin {
	easting, northing, zone, isNorth := f.mapper.LatLonToUTM(p.Latitude, p.Longitude)
	f.origin = LocalOrigin{
		Easting:           easting,
		Northing:          northing,
		Altitude:          p.Altitude,
		Zone:              zone,
		IsNorthHemisphere: isNorth,
	}
	return f.origin
}

// AnchorAtOrigin installs an already-projected origin, used when the
// reference loader has averaged UTM coordinates itself.
func (f *LocalFrame) AnchorAtOrigin(origin LocalOrigin) {
	f.origin = origin
}

// ToGeo converts the origin back to a geographic point. It fails while
// the frame is Unanchored.
func (f *LocalFrame) ToGeo() (GeoPoint, error) {
	if !f.Anchored() {
		return GeoPoint{}, fmt.Errorf("local frame has no origin yet")
	}
	lat, lon := f.mapper.UTMToLatLon(f.origin.Easting, f.origin.Northing,
		f.origin.Zone, f.origin.IsNorthHemisphere)
	return GeoPoint{Latitude: lat, Longitude: lon, Altitude: f.origin.Altitude}, nil
}

// LocalToGeo converts a local Cartesian point (x east, y north, z up, in
// meters relative to the origin) to a geographic point. It fails while the
// frame is Unanchored.
func (f *LocalFrame) LocalToGeo(p r3.Vector) (GeoPoint, error) {
	if !f.Anchored() {
		return GeoPoint{}, fmt.Errorf("local frame has no origin yet")
	}
	lat, lon := f.mapper.UTMToLatLon(f.origin.Easting+p.X, f.origin.Northing+p.Y,
		f.origin.Zone, f.origin.IsNorthHemisphere)
	return GeoPoint{Latitude: lat, Longitude: lon, Altitude: f.origin.Altitude + p.Z}, nil
}

// GeoToLocal converts a geographic point into local Cartesian coordinates
// relative to the origin. It fails while the frame is Unanchored.
func (f *LocalFrame) GeoToLocal(p GeoPoint) (r3.Vector, error) {
	if !f.Anchored() {
		return r3.Vector{}, fmt.Errorf("local frame has no origin yet")
	}
	easting, northing, _, _ := f.mapper.LatLonToUTM(p.Latitude, p.Longitude)
	return r3.Vector{
		X: easting - f.origin.Easting,
		Y: northing - f.origin.Northing,
		Z: p.Altitude - f.origin.Altitude,
	}, nil
}
