package georef

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// SimilarityTransform maps points between Cartesian frames with an
// isotropic scale, a rotation and a translation:
//
//	x' = scale * R * x + t
//
// A transform is never mutated after creation; pipeline stages replace it
// with a new one instead.
type SimilarityTransform struct {
	Scale       float64
	Rotation    *mat.Dense // 3x3 orthonormal
	Translation r3.Vector
}

// IdentityTransform returns the identity similarity transform.
func IdentityTransform() SimilarityTransform {
	return SimilarityTransform{Scale: 1, Rotation: identity3()}
}

// Apply maps a single point through the transform.
func (s SimilarityTransform) Apply(p r3.Vector) r3.Vector {
	return mulVec3(s.Rotation, p).Mul(s.Scale).Add(s.Translation)
}

// Compose returns the transform equivalent to applying other first, then s.
func (s SimilarityTransform) Compose(other SimilarityTransform) SimilarityTransform {
	r := mat.NewDense(3, 3, nil)
	r.Mul(s.Rotation, other.Rotation)
	return SimilarityTransform{
		Scale:       s.Scale * other.Scale,
		Rotation:    r,
		Translation: mulVec3(s.Rotation, other.Translation).Mul(s.Scale).Add(s.Translation),
	}
}

// Inverse returns the inverse transform. The rotation inverse is its
// transpose, so no matrix solve is needed.
func (s SimilarityTransform) Inverse() SimilarityTransform {
	rt := mat.DenseCopyOf(s.Rotation.T())
	inv := SimilarityTransform{Scale: 1 / s.Scale, Rotation: rt}
	inv.Translation = mulVec3(rt, s.Translation).Mul(-inv.Scale)
	return inv
}

func (s SimilarityTransform) String() string {
	return fmt.Sprintf("similarity{scale=%.6g rot=%v t=(%.6g %.6g %.6g)}",
		s.Scale, mat.Formatted(s.Rotation, mat.FormatMATLAB()),
		s.Translation.X, s.Translation.Y, s.Translation.Z)
}

// TransformLandmarks maps every landmark through the transform, returning
// a new collection. The input is left untouched.
func TransformLandmarks(landmarks LandmarkMap, t SimilarityTransform) LandmarkMap {
	out := make(LandmarkMap, len(landmarks))
	for id, lm := range landmarks {
		moved := lm.Clone()
		moved.Position = t.Apply(lm.Position)
		out[id] = moved
	}
	return out
}

// TransformCameras maps every camera pose through the transform, returning
// a new collection. The center moves through the full similarity; the
// orientation composes with the rotation only, since scale does not change
// viewing directions.
func TransformCameras(cameras CameraMap, t SimilarityTransform) CameraMap {
	rotT := mat.DenseCopyOf(t.Rotation.T())
	out := make(CameraMap, len(cameras))
	for id, cam := range cameras {
		moved := cam.Clone()
		moved.Center = t.Apply(cam.Center)
		r := mat.NewDense(3, 3, nil)
		r.Mul(cam.Rotation, rotT)
		moved.Rotation = r
		out[id] = moved
	}
	return out
}
