package georef

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
)

// INSRecord is one georeferenced camera pose for POS export: platform
// angles in degrees plus the geographic position.
type INSRecord struct {
	Yaw, Pitch, Roll float64
	Position         GeoPoint
}

// INSFromCamera derives an INS record from a camera in the local frame.
// The local frame is east-north-up; yaw is measured from north, clockwise
// positive, pitch is the elevation of the viewing direction above the
// horizon, roll the rotation of the image x axis off the horizontal.
func INSFromCamera(cam *Camera, frame *LocalFrame) (INSRecord, error) {
	geo, err := frame.LocalToGeo(cam.Center)
	if err != nil {
		return INSRecord{}, err
	}

	// Rows of the world-to-camera rotation are the camera axes expressed
	// in world coordinates.
	r := cam.Rotation
	xAxis := r3.Vector{X: r.At(0, 0), Y: r.At(0, 1), Z: r.At(0, 2)}
	view := r3.Vector{X: r.At(2, 0), Y: r.At(2, 1), Z: r.At(2, 2)}

	yaw := math.Atan2(view.X, view.Y) * 180 / math.Pi
	pitch := math.Asin(clamp(view.Z, -1, 1)) * 180 / math.Pi

	// Horizontal right vector for the current heading.
	rightH := r3.Vector{X: view.Y, Y: -view.X}
	roll := 0.0
	if n := rightH.Norm(); n > 1e-12 {
		rightH = rightH.Mul(1 / n)
		roll = math.Atan2(xAxis.Z, xAxis.Dot(rightH)) * 180 / math.Pi
	}

	return INSRecord{Yaw: yaw, Pitch: pitch, Roll: roll, Position: geo}, nil
}

// WritePOS writes one INS record as a POS file: a single CSV line of
// yaw, pitch, roll, latitude, longitude, altitude.
func WritePOS(path string, rec INSRecord) error {
	line := fmt.Sprintf("%.12g, %.12g, %.12g, %.12g, %.12g, %.12g\n",
		rec.Yaw, rec.Pitch, rec.Roll,
		rec.Position.Latitude, rec.Position.Longitude, rec.Position.Altitude)
	if err := os.WriteFile(path, []byte(line), 0644); err != nil {
		return fmt.Errorf("writing POS file %s: %w", path, err)
	}
	return nil
}

// WritePOSDir exports every camera as <stem>.pos under dir. The frame
// must be anchored; the caller checks that and skips with a warning
// otherwise.
func WritePOSDir(dir string, cameras CameraMap, images *ImageList, frame *LocalFrame) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating POS output directory: %w", err)
	}
	for id, cam := range cameras {
		rec, err := INSFromCamera(cam, frame)
		if err != nil {
			return err
		}
		stem := images.Stem(id)
		if stem == "" {
			stem = fmt.Sprintf("frame_%05d", id)
		}
		if err := WritePOS(filepath.Join(dir, stem+".pos"), rec); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
