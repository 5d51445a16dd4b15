package main

import (
	"fmt"
	"log"

	"github.com/kwv/georef/georef"
)

// App encapsulates one georeferencing run: configuration, the local
// coordinate frame and the capability implementations selected from it.
type App struct {
	Config *georef.Config
	Frame  *georef.LocalFrame
	Log    *log.Logger

	// originFromFile guards the origin file against being overwritten
	// when this run's anchor came from a previous run.
	originFromFile bool
}

// NewApp wires an App around a validated configuration.
func NewApp(cfg *georef.Config, logger *log.Logger) *App {
	return &App{
		Config: cfg,
		Frame:  georef.NewLocalFrame(georef.WGS84Mapper{}),
		Log:    logger,
	}
}

// Run executes the pipeline: load inputs, establish the origin, estimate
// and apply the alignment transform, write outputs. Input faults abort at
// the point of failure; output faults skip that artifact and continue.
func (a *App) Run() error {
	cfg := a.Config

	images, err := georef.LoadImageList(cfg.ImageList)
	if err != nil {
		return err
	}
	a.Log.Printf("loaded %d image frames from %s", images.Len(), cfg.ImageList)

	if err := a.loadOrigin(); err != nil {
		return err
	}

	cameras := make(georef.CameraMap)
	if cfg.InputKRTD != "" {
		cameras, err = georef.LoadCameras(cfg.InputKRTD, images, a.Log)
		if err != nil {
			return err
		}
		a.Log.Printf("loaded %d KRTD cameras", len(cameras))
	}

	landmarks := make(georef.LandmarkMap)
	if cfg.InputPLY != "" {
		landmarks, err = georef.ReadPLY(cfg.InputPLY)
		if err != nil {
			return err
		}
		a.Log.Printf("loaded %d landmarks from %s", len(landmarks), cfg.InputPLY)
	}

	refLandmarks := make(georef.LandmarkMap)
	var refTracks georef.TrackSet
	if cfg.ReferencePoints != "" {
		refLandmarks, refTracks, err = georef.LoadReferencePoints(cfg.ReferencePoints, a.Frame)
		if err != nil {
			return err
		}
		a.Log.Printf("loaded %d reference points from %s", len(refLandmarks), cfg.ReferencePoints)
	}

	a.saveOrigin()

	simEst, err := georef.SimilarityEstimatorByName(cfg.SimilarityEstimator)
	if err != nil {
		return err
	}
	canEst, err := georef.CanonicalEstimatorByName(cfg.CanonicalEstimator)
	if err != nil {
		return err
	}

	aligner := georef.NewAligner(georef.DLTTriangulator{}, simEst, canEst, a.Log)
	transform := aligner.Estimate(cameras, landmarks, refLandmarks, refTracks)

	cameras = georef.TransformCameras(cameras, transform)
	landmarks = georef.TransformLandmarks(landmarks, transform)

	a.writeOutputs(cameras, landmarks, images)
	return nil
}

// loadOrigin anchors the frame from a persisted origin file when one
// exists. Absence is not a fault; a later reference file or nothing at
// all may anchor the frame instead.
func (a *App) loadOrigin() error {
	origin, err := georef.LoadOrigin(a.Config.GeoOriginFile)
	if err != nil {
		return err
	}
	if origin == nil {
		return nil
	}
	a.Frame.AnchorFromGeo(*origin)
	a.originFromFile = true
	a.Log.Printf("loaded origin point: %.12g, %.12g, %.12g",
		origin.Latitude, origin.Longitude, origin.Altitude)
	return nil
}

// saveOrigin persists a freshly computed origin. Origins loaded from file
// are never written back, keeping an operator-curated anchor intact.
func (a *App) saveOrigin() {
	if !a.Frame.Anchored() || a.originFromFile || a.Config.GeoOriginFile == "" {
		return
	}
	geo, err := a.Frame.ToGeo()
	if err != nil {
		a.Log.Printf("origin not saved: %v", err)
		return
	}
	if err := georef.SaveOrigin(a.Config.GeoOriginFile, geo); err != nil {
		a.Log.Printf("origin not saved: %v", err)
		return
	}
	a.Log.Printf("saved local coordinate origin to %s: %.12g, %.12g, %.12g",
		a.Config.GeoOriginFile, geo.Latitude, geo.Longitude, geo.Altitude)
}

// writeOutputs attempts every configured artifact. A failure skips that
// artifact only.
func (a *App) writeOutputs(cameras georef.CameraMap, landmarks georef.LandmarkMap, images *georef.ImageList) {
	cfg := a.Config

	if cfg.OutputPLY != "" {
		if err := georef.WritePLY(cfg.OutputPLY, landmarks); err != nil {
			a.Log.Printf("skipping PLY output: %v", err)
		}
	}
	if cfg.OutputKRTDDir != "" && len(cameras) > 0 {
		if err := georef.WriteCameras(cfg.OutputKRTDDir, cameras, images); err != nil {
			a.Log.Printf("skipping KRTD output: %v", err)
		}
	}
	if cfg.OutputPOSDir != "" && len(cameras) > 0 {
		if !a.Frame.Anchored() {
			a.Log.Printf("skipping POS output: local frame has no geographic origin")
		} else if err := georef.WritePOSDir(cfg.OutputPOSDir, cameras, images, a.Frame); err != nil {
			a.Log.Printf("skipping POS output: %v", err)
		}
	}
	if cfg.OutputGeoJSON != "" {
		if !a.Frame.Anchored() {
			a.Log.Printf("skipping GeoJSON output: local frame has no geographic origin")
		} else if err := georef.WriteSceneGeoJSON(cfg.OutputGeoJSON, cameras, landmarks, a.Frame); err != nil {
			a.Log.Printf("skipping GeoJSON output: %v", err)
		}
	}
	if cfg.OutputOverviewPNG != "" {
		if err := georef.NewOverviewRenderer().SavePNG(cfg.OutputOverviewPNG, cameras, landmarks); err != nil {
			a.Log.Printf("skipping overview PNG: %v", err)
		}
	}
}

// validateConfig runs the exhaustive configuration check and reports
// every problem before failing.
func validateConfig(cfg *georef.Config, logger *log.Logger) error {
	problems := cfg.Validate()
	for _, p := range problems {
		logger.Printf("config check failed: %v", p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("configuration not valid (%d problems)", len(problems))
	}
	return nil
}
