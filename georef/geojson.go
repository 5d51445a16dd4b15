package georef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SceneFeatureCollection builds a GeoJSON view of the georeferenced
// scene: one Point feature per landmark and one LineString feature
// tracing the camera path in frame order. Coordinates are WGS84 lon/lat;
// altitude rides along as a property. The frame must be anchored.
func SceneFeatureCollection(cameras CameraMap, landmarks LandmarkMap, frame *LocalFrame) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()

	lmIDs := make([]int64, 0, len(landmarks))
	for id := range landmarks {
		lmIDs = append(lmIDs, id)
	}
	sort.Slice(lmIDs, func(i, j int) bool { return lmIDs[i] < lmIDs[j] })
	for _, id := range lmIDs {
		geo, err := frame.LocalToGeo(landmarks[id].Position)
		if err != nil {
			return nil, err
		}
		f := geojson.NewFeature(orb.Point{geo.Longitude, geo.Latitude})
		f.Properties["type"] = "landmark"
		f.Properties["id"] = id
		f.Properties["altitude"] = geo.Altitude
		fc.Append(f)
	}

	camIDs := make([]int64, 0, len(cameras))
	for id := range cameras {
		camIDs = append(camIDs, id)
	}
	sort.Slice(camIDs, func(i, j int) bool { return camIDs[i] < camIDs[j] })
	// A LineString needs at least two positions.
	if len(camIDs) > 1 {
		path := make(orb.LineString, 0, len(camIDs))
		for _, id := range camIDs {
			geo, err := frame.LocalToGeo(cameras[id].Center)
			if err != nil {
				return nil, err
			}
			path = append(path, orb.Point{geo.Longitude, geo.Latitude})
		}
		f := geojson.NewFeature(path)
		f.Properties["type"] = "camera_path"
		f.Properties["frames"] = len(camIDs)
		fc.Append(f)
	}

	return fc, nil
}

// WriteSceneGeoJSON writes the scene feature collection to path.
func WriteSceneGeoJSON(path string, cameras CameraMap, landmarks LandmarkMap, frame *LocalFrame) error {
	fc, err := SceneFeatureCollection(cameras, landmarks, frame)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling scene GeoJSON: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating GeoJSON output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing scene GeoJSON %s: %w", path, err)
	}
	return nil
}
