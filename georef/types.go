package georef

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// GeoPoint is a geographic position in degrees (lat/lon) and meters (alt).
// Immutable once read; used only for origin exchange.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// LocalOrigin anchors the local Cartesian frame to a UTM position.
// Zone 0 means the origin has not been established yet.
type LocalOrigin struct {
	Easting           float64 `json:"easting"`
	Northing          float64 `json:"northing"`
	Altitude          float64 `json:"altitude"`
	Zone              int     `json:"zone"`
	IsNorthHemisphere bool    `json:"isNorthHemisphere"`
}

// Camera is a calibrated pinhole camera pose. Rotation maps world
// coordinates into the camera frame; Center is the camera position in
// world coordinates. Distortion coefficients are carried through I/O but
// not applied during projection.
type Camera struct {
	Intrinsics *mat.Dense // 3x3 K
	Rotation   *mat.Dense // 3x3 world-to-camera R
	Center     r3.Vector
	Distortion []float64
}

// NewCamera builds a camera from a K matrix, world-to-camera rotation and
// a world-space center.
func NewCamera(k, r *mat.Dense, center r3.Vector) *Camera {
	return &Camera{Intrinsics: k, Rotation: r, Center: center}
}

// Clone returns a deep copy of the camera.
func (c *Camera) Clone() *Camera {
	out := &Camera{
		Intrinsics: mat.DenseCopyOf(c.Intrinsics),
		Rotation:   mat.DenseCopyOf(c.Rotation),
		Center:     c.Center,
	}
	if c.Distortion != nil {
		out.Distortion = append([]float64(nil), c.Distortion...)
	}
	return out
}

// Translation returns t = -R*C, the translation column of the extrinsics.
func (c *Camera) Translation() r3.Vector {
	return mulVec3(c.Rotation, c.Center).Mul(-1)
}

// ProjectionMatrix returns the 3x4 projection P = K [R | -R*C].
func (c *Camera) ProjectionMatrix() *mat.Dense {
	t := c.Translation()
	ext := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ext.Set(i, j, c.Rotation.At(i, j))
		}
	}
	ext.Set(0, 3, t.X)
	ext.Set(1, 3, t.Y)
	ext.Set(2, 3, t.Z)
	p := mat.NewDense(3, 4, nil)
	p.Mul(c.Intrinsics, ext)
	return p
}

// Project maps a world point to pixel coordinates. ok is false when the
// point lies on or behind the camera plane.
func (c *Camera) Project(p r3.Vector) (u, v float64, ok bool) {
	pc := mulVec3(c.Rotation, p.Sub(c.Center))
	if pc.Z <= 1e-12 {
		return 0, 0, false
	}
	img := mulVec3(c.Intrinsics, pc)
	return img.X / img.Z, img.Y / img.Z, true
}

// CameraMap holds cameras keyed by dense zero-based frame ID.
type CameraMap map[int64]*Camera

// Clone deep-copies the camera collection.
func (cm CameraMap) Clone() CameraMap {
	out := make(CameraMap, len(cm))
	for id, c := range cm {
		out[id] = c.Clone()
	}
	return out
}

// Landmark is a reconstructed 3-D point. Color is optional RGB (nil when
// the source carried no color).
type Landmark struct {
	Position r3.Vector
	Color    *[3]uint8
}

// Clone returns a copy of the landmark.
func (l *Landmark) Clone() *Landmark {
	out := &Landmark{Position: l.Position}
	if l.Color != nil {
		c := *l.Color
		out.Color = &c
	}
	return out
}

// LandmarkMap holds landmarks keyed by integer identifier.
type LandmarkMap map[int64]*Landmark

// Clone deep-copies the landmark collection.
func (lm LandmarkMap) Clone() LandmarkMap {
	out := make(LandmarkMap, len(lm))
	for id, l := range lm {
		out[id] = l.Clone()
	}
	return out
}

// TrackState is a single 2-D observation of a landmark on a frame.
type TrackState struct {
	Frame int64
	U, V  float64
}

// Track is an ordered set of observations of one landmark, keyed to the
// landmark by ID.
type Track struct {
	ID     int64
	States []TrackState
}

// TrackSet is an ordered collection of tracks. Order follows the source
// reference file so downstream estimation stays deterministic.
type TrackSet []*Track

// mulVec3 multiplies a 3x3 matrix with an r3 vector.
func mulVec3(m *mat.Dense, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

// identity3 returns a new 3x3 identity matrix.
func identity3() *mat.Dense {
	m := mat.NewDense(3, 3, nil)
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	m.Set(2, 2, 1)
	return m
}

// vectorsAlmostEqual reports whether two vectors match within eps.
func vectorsAlmostEqual(a, b r3.Vector, eps float64) bool {
	return math.Abs(a.X-b.X) < eps &&
		math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.Z-b.Z) < eps
}
