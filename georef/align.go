package georef

import (
	"fmt"
	"io"
	"log"
)

// Aligner estimates the single similarity transform that maps the local
// reconstruction frame into the reference frame. Strategies are tried in
// priority order and the first viable one wins; the terminal fallback is
// the identity transform, which is a valid outcome rather than an error.
type Aligner struct {
	Triangulator Triangulator
	Similarity   SimilarityEstimator
	Canonical    CanonicalEstimator
	Log          *log.Logger
}

// NewAligner wires an aligner with its capabilities. Either estimator may
// be nil; logger may be nil to discard diagnostics.
func NewAligner(tri Triangulator, sim SimilarityEstimator, can CanonicalEstimator, logger *log.Logger) *Aligner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Aligner{Triangulator: tri, Similarity: sim, Canonical: can, Log: logger}
}

// alignStrategy attempts one way of producing a transform. ok is false
// when the strategy is not viable with the available inputs, which moves
// evaluation to the next strategy.
type alignStrategy struct {
	name string
	run  func(cameras CameraMap, landmarks LandmarkMap, refLandmarks LandmarkMap, refTracks TrackSet) (SimilarityTransform, bool)
}

// Estimate walks the strategy chain top-down. Reference correspondences
// always outrank the canonical heuristic when both are available.
func (a *Aligner) Estimate(cameras CameraMap, landmarks LandmarkMap, refLandmarks LandmarkMap, refTracks TrackSet) SimilarityTransform {
	strategies := []alignStrategy{
		{name: "reference", run: a.estimateFromReference},
		{name: "canonical", run: a.estimateCanonical},
	}
	for _, s := range strategies {
		if t, ok := s.run(cameras, landmarks, refLandmarks, refTracks); ok {
			a.Log.Printf("alignment: using %s transform: %v", s.name, t)
			return t
		}
	}
	a.Log.Printf("alignment: no estimator produced a transform, using identity")
	return IdentityTransform()
}

// estimateFromReference triangulates the reference tracks against the
// local cameras and fits a similarity from the triangulated local points
// to the reference ground truth.
func (a *Aligner) estimateFromReference(cameras CameraMap, _ LandmarkMap, refLandmarks LandmarkMap, refTracks TrackSet) (SimilarityTransform, bool) {
	if len(refLandmarks) == 0 || len(refTracks) == 0 {
		return SimilarityTransform{}, false
	}
	if a.Similarity == nil || a.Triangulator == nil {
		a.Log.Printf("alignment: reference points supplied but no similarity estimator configured")
		return SimilarityTransform{}, false
	}

	a.Log.Printf("alignment: triangulating %d reference tracks in the local frame", len(refTracks))
	localRef := a.Triangulator.Triangulate(cameras, refTracks, refLandmarks)
	if len(localRef) < len(refLandmarks) {
		a.Log.Printf("alignment: only %d of %d reference points triangulated", len(localRef), len(refLandmarks))
	}

	rmse := ReprojectionRMSE(cameras, localRef, refTracks)
	a.Log.Printf("alignment: post-triangulation reprojection RMSE: %g", rmse)

	t, err := a.Similarity.EstimateTransform(localRef, refLandmarks)
	if err != nil {
		a.Log.Printf("alignment: reference transform estimation failed: %v", err)
		return SimilarityTransform{}, false
	}
	return t, true
}

// estimateCanonical normalizes the reconstruction by convention when no
// ground truth is available.
func (a *Aligner) estimateCanonical(cameras CameraMap, landmarks LandmarkMap, _ LandmarkMap, _ TrackSet) (SimilarityTransform, bool) {
	if a.Canonical == nil {
		return SimilarityTransform{}, false
	}
	t, err := a.Canonical.EstimateTransform(cameras, landmarks)
	if err != nil {
		a.Log.Printf("alignment: canonical transform estimation failed: %v", err)
		return SimilarityTransform{}, false
	}
	return t, true
}

// SimilarityEstimatorByName selects a similarity estimator implementation.
func SimilarityEstimatorByName(name string) (SimilarityEstimator, error) {
	switch name {
	case "umeyama":
		return UmeyamaEstimator{}, nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown similarity estimator %q", name)
	}
}

// CanonicalEstimatorByName selects a canonical estimator implementation.
func CanonicalEstimatorByName(name string) (CanonicalEstimator, error) {
	switch name {
	case "pca":
		return PCACanonicalEstimator{}, nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown canonical estimator %q", name)
	}
}
