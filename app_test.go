package main

import (
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/kwv/georef/georef"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

func TestRunIdentityPassThrough(t *testing.T) {
	dir := t.TempDir()
	imageList := writeFixture(t, dir, "images.txt", "frame_000.png\nframe_001.png\n")
	inputPLY := writeFixture(t, dir, "in.ply", `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
end_header
1 2 3
-4 5 6
7 -8 9
`)

	cfg := &georef.Config{
		ImageList:           imageList,
		InputPLY:            inputPLY,
		GeoOriginFile:       filepath.Join(dir, "geo_origin.txt"),
		OutputPLY:           filepath.Join(dir, "out.ply"),
		SimilarityEstimator: "none",
		CanonicalEstimator:  "none",
	}

	if err := NewApp(cfg, testLogger()).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	in, err := georef.ReadPLY(inputPLY)
	if err != nil {
		t.Fatalf("ReadPLY input: %v", err)
	}
	out, err := georef.ReadPLY(cfg.OutputPLY)
	if err != nil {
		t.Fatalf("ReadPLY output: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("output has %d landmarks, want %d", len(out), len(in))
	}
	for id := range in {
		if in[id].Position != out[id].Position {
			t.Errorf("landmark %d moved under identity: %v -> %v", id, in[id].Position, out[id].Position)
		}
	}

	// Nothing anchored the frame, so no origin may be written.
	if _, err := os.Stat(cfg.GeoOriginFile); !os.IsNotExist(err) {
		t.Error("origin file written for an unanchored run")
	}
}

func TestRunPreservesLoadedOrigin(t *testing.T) {
	dir := t.TempDir()
	imageList := writeFixture(t, dir, "images.txt", "frame_000.png\n")
	originFile := writeFixture(t, dir, "geo_origin.txt", "10 20 5\n")
	refFile := writeFixture(t, dir, "gcp.txt",
		"38.9000 -77.0300 12.0 0 100 200\n38.9002 -77.0302 14.0 0 300 400\n38.8998 -77.0298 10.0 0 500 600\n")

	cfg := &georef.Config{
		ImageList:           imageList,
		GeoOriginFile:       originFile,
		ReferencePoints:     refFile,
		SimilarityEstimator: "none",
		CanonicalEstimator:  "none",
	}

	if err := NewApp(cfg, testLogger()).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// An operator-supplied origin is never overwritten, even though the
	// reference file re-anchored the frame.
	data, err := os.ReadFile(originFile)
	if err != nil {
		t.Fatalf("read origin file: %v", err)
	}
	if string(data) != "10 20 5\n" {
		t.Errorf("origin file rewritten to %q", string(data))
	}
}

func TestRunSavesComputedOrigin(t *testing.T) {
	dir := t.TempDir()
	imageList := writeFixture(t, dir, "images.txt", "frame_000.png\n")
	refFile := writeFixture(t, dir, "gcp.txt",
		"38.9000 -77.0300 12.0 0 100 200\n38.9002 -77.0302 14.0 0 300 400\n38.8998 -77.0298 10.0 0 500 600\n")

	cfg := &georef.Config{
		ImageList:           imageList,
		GeoOriginFile:       filepath.Join(dir, "nested", "geo_origin.txt"),
		ReferencePoints:     refFile,
		SimilarityEstimator: "umeyama",
		CanonicalEstimator:  "none",
	}

	if err := NewApp(cfg, testLogger()).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	origin, err := georef.LoadOrigin(cfg.GeoOriginFile)
	if err != nil {
		t.Fatalf("LoadOrigin: %v", err)
	}
	if origin == nil {
		t.Fatal("reference-anchored run did not persist an origin")
	}
	if math.Abs(origin.Latitude-38.9) > 1e-3 || math.Abs(origin.Longitude+77.03) > 1e-3 {
		t.Errorf("origin = (%g, %g), want near (38.9, -77.03)", origin.Latitude, origin.Longitude)
	}
	if math.Abs(origin.Altitude-12) > 1e-9 {
		t.Errorf("origin altitude = %g, want 12", origin.Altitude)
	}
}

func TestRunMissingImageList(t *testing.T) {
	cfg := &georef.Config{ImageList: filepath.Join(t.TempDir(), "nope.txt")}
	if err := NewApp(cfg, testLogger()).Run(); err == nil {
		t.Error("expected error for missing image list, got nil")
	}
}

func TestValidateConfigReportsAllProblems(t *testing.T) {
	cfg := &georef.Config{SimilarityEstimator: "bogus"}
	if err := validateConfig(cfg, testLogger()); err == nil {
		t.Error("expected error for invalid configuration, got nil")
	}

	dir := t.TempDir()
	good := georef.DefaultConfig()
	good.ImageList = writeFixture(t, dir, "images.txt", "frame_000.png\n")
	if err := validateConfig(good, testLogger()); err != nil {
		t.Errorf("validateConfig on runnable config: %v", err)
	}
}
