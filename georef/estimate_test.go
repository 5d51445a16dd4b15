package georef

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

func TestUmeyamaRecoversKnownSimilarity(t *testing.T) {
	want := SimilarityTransform{
		Scale:       2.0,
		Rotation:    rotZDeg(30),
		Translation: r3.Vector{X: 5, Y: -3, Z: 2},
	}
	source := LandmarkMap{
		0: {Position: r3.Vector{}},
		1: {Position: r3.Vector{X: 1}},
		2: {Position: r3.Vector{Y: 1}},
		3: {Position: r3.Vector{Z: 1}},
		4: {Position: r3.Vector{X: 1, Y: 2, Z: 3}},
	}
	target := TransformLandmarks(source, want)

	got, err := UmeyamaEstimator{}.EstimateTransform(source, target)
	if err != nil {
		t.Fatalf("EstimateTransform: %v", err)
	}

	if math.Abs(got.Scale-want.Scale) > 1e-9 {
		t.Errorf("scale = %g, want %g", got.Scale, want.Scale)
	}
	if !matricesEqual(got.Rotation, want.Rotation) {
		t.Errorf("rotation =\n%v\nwant\n%v",
			mat.Formatted(got.Rotation), mat.Formatted(want.Rotation))
	}
	if !vectorsAlmostEqual(got.Translation, want.Translation, 1e-9) {
		t.Errorf("translation = %v, want %v", got.Translation, want.Translation)
	}
	// The fitted transform maps every source point onto its target.
	for id, lm := range source {
		if p := got.Apply(lm.Position); !vectorsAlmostEqual(p, target[id].Position, 1e-9) {
			t.Errorf("point %d maps to %v, want %v", id, p, target[id].Position)
		}
	}
}

func TestUmeyamaIgnoresUnsharedIDs(t *testing.T) {
	want := SimilarityTransform{Scale: 1.5, Rotation: rotZDeg(-45), Translation: r3.Vector{Y: 10}}
	source := LandmarkMap{
		0: {Position: r3.Vector{X: 1}},
		1: {Position: r3.Vector{Y: 2}},
		2: {Position: r3.Vector{Z: 3}},
		3: {Position: r3.Vector{X: -1, Y: 1}},
		// Only in the source, must not influence the fit.
		99: {Position: r3.Vector{X: 1e6}},
	}
	target := LandmarkMap{}
	for id, lm := range source {
		if id == 99 {
			continue
		}
		target[id] = &Landmark{Position: want.Apply(lm.Position)}
	}
	// Only in the target.
	target[42] = &Landmark{Position: r3.Vector{X: -1e6}}

	got, err := UmeyamaEstimator{}.EstimateTransform(source, target)
	if err != nil {
		t.Fatalf("EstimateTransform: %v", err)
	}
	if math.Abs(got.Scale-want.Scale) > 1e-9 {
		t.Errorf("scale = %g, want %g", got.Scale, want.Scale)
	}
}

func TestUmeyamaDegenerateInput(t *testing.T) {
	tests := []struct {
		name   string
		source LandmarkMap
		target LandmarkMap
	}{
		{
			name:   "too few shared landmarks",
			source: LandmarkMap{0: {Position: r3.Vector{X: 1}}, 1: {Position: r3.Vector{Y: 1}}},
			target: LandmarkMap{0: {Position: r3.Vector{X: 2}}, 1: {Position: r3.Vector{Y: 2}}},
		},
		{
			name:   "disjoint identifiers",
			source: LandmarkMap{0: {}, 1: {}, 2: {}},
			target: LandmarkMap{3: {}, 4: {}, 5: {}},
		},
		{
			name: "coincident source points",
			source: LandmarkMap{
				0: {Position: r3.Vector{X: 1, Y: 1, Z: 1}},
				1: {Position: r3.Vector{X: 1, Y: 1, Z: 1}},
				2: {Position: r3.Vector{X: 1, Y: 1, Z: 1}},
			},
			target: LandmarkMap{
				0: {Position: r3.Vector{X: 1}},
				1: {Position: r3.Vector{Y: 1}},
				2: {Position: r3.Vector{Z: 1}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UmeyamaEstimator{}.EstimateTransform(tt.source, tt.target)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			// Failure hands back the identity, never a half-built transform.
			if got.Scale != 1 || !matricesEqual(got.Rotation, identity3()) {
				t.Errorf("failed estimate returned %+v, want identity", got)
			}
		})
	}
}

func TestPCACanonicalProperties(t *testing.T) {
	// A loose plane of landmarks, widest along one direction, with the
	// cameras hovering off to one side of it.
	landmarks := LandmarkMap{}
	positions := []r3.Vector{
		{X: -10, Y: -2, Z: 1}, {X: -5, Y: 3, Z: 0.5}, {X: 0, Y: -1, Z: 0},
		{X: 4, Y: 2, Z: -0.5}, {X: 9, Y: -3, Z: 0.2}, {X: 12, Y: 1, Z: -1},
	}
	for i, p := range positions {
		landmarks[int64(i)] = &Landmark{Position: p}
	}
	cameras := CameraMap{
		0: testCameraAt(r3.Vector{X: -2, Y: 0, Z: 30}),
		1: testCameraAt(r3.Vector{X: 2, Y: 1, Z: 32}),
	}

	tr, err := PCACanonicalEstimator{}.EstimateTransform(cameras, landmarks)
	if err != nil {
		t.Fatalf("EstimateTransform: %v", err)
	}

	// Proper rotation.
	if det := mat.Det(tr.Rotation); math.Abs(det-1) > 1e-9 {
		t.Errorf("rotation determinant = %g, want 1", det)
	}
	rrt := mat.NewDense(3, 3, nil)
	rrt.Mul(tr.Rotation, tr.Rotation.T())
	if !matricesEqual(rrt, identity3()) {
		t.Error("rotation is not orthonormal")
	}

	moved := TransformLandmarks(landmarks, tr)

	// Centered on the landmark centroid.
	var sum r3.Vector
	for _, lm := range moved {
		sum = sum.Add(lm.Position)
	}
	if mean := sum.Mul(1 / float64(len(moved))); !vectorsAlmostEqual(mean, r3.Vector{}, 1e-9) {
		t.Errorf("canonical centroid = %v, want origin", mean)
	}

	// Unit RMS spread.
	ss := 0.0
	for _, lm := range moved {
		ss += lm.Position.Norm2()
	}
	if rms := math.Sqrt(ss / float64(len(moved))); math.Abs(rms-1) > 1e-9 {
		t.Errorf("canonical RMS spread = %g, want 1", rms)
	}

	// Largest variance along x, smallest along z.
	var vx, vy, vz float64
	for _, lm := range moved {
		vx += lm.Position.X * lm.Position.X
		vy += lm.Position.Y * lm.Position.Y
		vz += lm.Position.Z * lm.Position.Z
	}
	if vx < vy || vy < vz {
		t.Errorf("axis variances not descending: x=%g y=%g z=%g", vx, vy, vz)
	}

	// Cameras end up on the +z side.
	movedCams := TransformCameras(cameras, tr)
	var camZ float64
	for _, cam := range movedCams {
		camZ += cam.Center.Z
	}
	if camZ <= 0 {
		t.Errorf("mean canonical camera height = %g, want positive", camZ/2)
	}
}

func TestPCACanonicalDegenerateInput(t *testing.T) {
	tests := []struct {
		name      string
		landmarks LandmarkMap
	}{
		{
			name:      "too few landmarks",
			landmarks: LandmarkMap{0: {}, 1: {}},
		},
		{
			name: "coincident landmarks",
			landmarks: LandmarkMap{
				0: {Position: r3.Vector{X: 2}},
				1: {Position: r3.Vector{X: 2}},
				2: {Position: r3.Vector{X: 2}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (PCACanonicalEstimator{}).EstimateTransform(nil, tt.landmarks); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
