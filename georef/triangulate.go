package georef

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Triangulator recovers 3-D landmark positions from 2-D tracks and camera
// poses. The returned map contains only the landmarks that triangulated;
// entries that fail are simply absent.
type Triangulator interface {
	Triangulate(cameras CameraMap, tracks TrackSet, seed LandmarkMap) LandmarkMap
}

// DLTTriangulator triangulates each track with the direct linear
// transform: stack two rows per observation and take the null space of
// the stacked system via SVD.
type DLTTriangulator struct{}

// Triangulate solves every track independently. A track needs at least
// two observations on frames with known cameras; tracks that fall short
// or produce a degenerate solution are dropped. Output order follows the
// track's landmark identifier, so results are deterministic regardless of
// any future per-track parallelism.
func (DLTTriangulator) Triangulate(cameras CameraMap, tracks TrackSet, seed LandmarkMap) LandmarkMap {
	out := make(LandmarkMap)
	for _, track := range tracks {
		pos, ok := triangulateTrack(cameras, track)
		if !ok {
			continue
		}
		lm := &Landmark{Position: pos}
		if s, exists := seed[track.ID]; exists && s.Color != nil {
			c := *s.Color
			lm.Color = &c
		}
		out[track.ID] = lm
	}
	return out
}

func triangulateTrack(cameras CameraMap, track *Track) (r3.Vector, bool) {
	var rows []float64
	observations := 0
	for _, state := range track.States {
		cam, ok := cameras[state.Frame]
		if !ok {
			continue
		}
		p := cam.ProjectionMatrix()
		// u * P.row2 - P.row0 and v * P.row2 - P.row1
		for j := 0; j < 4; j++ {
			rows = append(rows, state.U*p.At(2, j)-p.At(0, j))
		}
		for j := 0; j < 4; j++ {
			rows = append(rows, state.V*p.At(2, j)-p.At(1, j))
		}
		observations++
	}
	if observations < 2 {
		return r3.Vector{}, false
	}

	a := mat.NewDense(observations*2, 4, rows)
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return r3.Vector{}, false
	}
	var v mat.Dense
	svd.VTo(&v)

	// Homogeneous solution is the right singular vector for the smallest
	// singular value, i.e. the last column of V.
	w := v.At(3, 3)
	if math.Abs(w) < 1e-12 {
		return r3.Vector{}, false
	}
	return r3.Vector{
		X: v.At(0, 3) / w,
		Y: v.At(1, 3) / w,
		Z: v.At(2, 3) / w,
	}, true
}
