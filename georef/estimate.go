package georef

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// SimilarityEstimator fits a similarity transform mapping source landmarks
// onto target landmarks, matched by shared identifier.
type SimilarityEstimator interface {
	EstimateTransform(source, target LandmarkMap) (SimilarityTransform, error)
}

// CanonicalEstimator produces a convention-based normalization transform
// for a reconstruction with no geographic ground truth.
type CanonicalEstimator interface {
	EstimateTransform(cameras CameraMap, landmarks LandmarkMap) (SimilarityTransform, error)
}

// UmeyamaEstimator is the least-squares similarity fit between two point
// sets: centroids, cross-covariance, SVD, determinant-corrected rotation,
// isotropic scale from the singular values.
type UmeyamaEstimator struct{}

// EstimateTransform fits source -> target. Identifiers present in only
// one of the maps are ignored; at least 3 shared landmarks are required.
func (UmeyamaEstimator) EstimateTransform(source, target LandmarkMap) (SimilarityTransform, error) {
	ids := make([]int64, 0, len(source))
	for id := range source {
		if _, ok := target[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) < 3 {
		return IdentityTransform(), fmt.Errorf("similarity estimation needs at least 3 shared landmarks, have %d", len(ids))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	n := float64(len(ids))
	var muS, muT r3.Vector
	for _, id := range ids {
		muS = muS.Add(source[id].Position)
		muT = muT.Add(target[id].Position)
	}
	muS = muS.Mul(1 / n)
	muT = muT.Mul(1 / n)

	// Cross-covariance of the centered sets and the source variance.
	cov := mat.NewDense(3, 3, nil)
	varS := 0.0
	for _, id := range ids {
		s := source[id].Position.Sub(muS)
		t := target[id].Position.Sub(muT)
		varS += s.Norm2()
		sv := []float64{s.X, s.Y, s.Z}
		tv := []float64{t.X, t.Y, t.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cov.Set(i, j, cov.At(i, j)+tv[i]*sv[j]/n)
			}
		}
	}
	varS /= n
	if varS < 1e-18 {
		return IdentityTransform(), fmt.Errorf("similarity estimation: source landmarks are degenerate")
	}

	var svd mat.SVD
	if !svd.Factorize(cov, mat.SVDFull) {
		return IdentityTransform(), fmt.Errorf("similarity estimation: SVD failed to converge")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	d := svd.Values(nil)

	// Correct for reflection so the rotation stays proper.
	sign := 1.0
	if mat.Det(&u)*mat.Det(&v) < 0 {
		sign = -1
	}
	s3 := mat.NewDense(3, 3, nil)
	s3.Set(0, 0, 1)
	s3.Set(1, 1, 1)
	s3.Set(2, 2, sign)

	us := mat.NewDense(3, 3, nil)
	us.Mul(&u, s3)
	rot := mat.NewDense(3, 3, nil)
	rot.Mul(us, v.T())

	scale := (d[0] + d[1] + sign*d[2]) / varS
	if scale <= 0 {
		return IdentityTransform(), fmt.Errorf("similarity estimation: non-positive scale %g", scale)
	}

	st := SimilarityTransform{Scale: scale, Rotation: rot}
	st.Translation = muT.Sub(mulVec3(rot, muS).Mul(scale))
	return st, nil
}

// PCACanonicalEstimator normalizes a reconstruction by convention: center
// on the landmark centroid, orient principal axes (largest variance along
// x, z chosen so the mean camera sits above the landmarks), scale to unit
// RMS landmark spread.
type PCACanonicalEstimator struct{}

// EstimateTransform returns the canonicalizing transform.
func (PCACanonicalEstimator) EstimateTransform(cameras CameraMap, landmarks LandmarkMap) (SimilarityTransform, error) {
	if len(landmarks) < 3 {
		return IdentityTransform(), fmt.Errorf("canonical estimation needs at least 3 landmarks, have %d", len(landmarks))
	}

	var centroid r3.Vector
	for _, lm := range landmarks {
		centroid = centroid.Add(lm.Position)
	}
	centroid = centroid.Mul(1 / float64(len(landmarks)))

	cov := mat.NewSymDense(3, nil)
	for _, lm := range landmarks {
		p := lm.Position.Sub(centroid)
		pv := []float64{p.X, p.Y, p.Z}
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				cov.SetSym(i, j, cov.At(i, j)+pv[i]*pv[j])
			}
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return IdentityTransform(), fmt.Errorf("canonical estimation: eigendecomposition failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	vals := eig.Values(nil)

	// EigenSym sorts ascending; rotation rows are principal axes with the
	// largest variance along x and the smallest (scene normal) along z.
	rot := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		rot.Set(0, i, vecs.At(i, 2))
		rot.Set(1, i, vecs.At(i, 1))
		rot.Set(2, i, vecs.At(i, 0))
	}
	if mat.Det(rot) < 0 {
		for i := 0; i < 3; i++ {
			rot.Set(2, i, -rot.At(2, i))
		}
	}

	// Flip the frame so cameras end up on the +z side of the landmarks.
	if len(cameras) > 0 {
		var meanCam r3.Vector
		for _, cam := range cameras {
			meanCam = meanCam.Add(cam.Center)
		}
		meanCam = meanCam.Mul(1 / float64(len(cameras)))
		if mulVec3(rot, meanCam.Sub(centroid)).Z < 0 {
			for i := 0; i < 3; i++ {
				rot.Set(0, i, -rot.At(0, i))
				rot.Set(2, i, -rot.At(2, i))
			}
		}
	}

	rms := math.Sqrt((vals[0] + vals[1] + vals[2]) / float64(len(landmarks)))
	if rms < 1e-12 {
		return IdentityTransform(), fmt.Errorf("canonical estimation: landmarks are degenerate")
	}
	scale := 1 / rms

	st := SimilarityTransform{Scale: scale, Rotation: rot}
	st.Translation = mulVec3(rot, centroid).Mul(-scale)
	return st, nil
}
