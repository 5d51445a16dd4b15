package georef

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOriginAbsent(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "empty path", path: ""},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadOrigin(tt.path)
			if err != nil {
				t.Fatalf("LoadOrigin: %v", err)
			}
			if p != nil {
				t.Errorf("LoadOrigin = %+v, want nil", p)
			}
		})
	}
}

func TestOriginRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "geo_origin.txt")
	want := GeoPoint{Latitude: 38.900123456789, Longitude: -77.030987654321, Altitude: 12.25}

	if err := SaveOrigin(path, want); err != nil {
		t.Fatalf("SaveOrigin: %v", err)
	}
	got, err := LoadOrigin(path)
	if err != nil {
		t.Fatalf("LoadOrigin: %v", err)
	}
	if got == nil {
		t.Fatal("LoadOrigin returned nil for an existing file")
	}
	// 12 significant digits survive the file format.
	if math.Abs(got.Latitude-want.Latitude) > 1e-9 ||
		math.Abs(got.Longitude-want.Longitude) > 1e-9 ||
		math.Abs(got.Altitude-want.Altitude) > 1e-9 {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestSaveOriginOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geo_origin.txt")
	if err := SaveOrigin(path, GeoPoint{Latitude: 1, Longitude: 2, Altitude: 3}); err != nil {
		t.Fatalf("SaveOrigin: %v", err)
	}
	if err := SaveOrigin(path, GeoPoint{Latitude: 4, Longitude: 5, Altitude: 6}); err != nil {
		t.Fatalf("SaveOrigin overwrite: %v", err)
	}
	got, err := LoadOrigin(path)
	if err != nil {
		t.Fatalf("LoadOrigin: %v", err)
	}
	if got.Latitude != 4 {
		t.Errorf("latitude = %g after overwrite, want 4", got.Latitude)
	}
}

func TestLoadOriginMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "too few values", content: "38.9 -77.03\n"},
		{name: "not numbers", content: "lat lon alt\n"},
		{name: "empty file", content: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "origin.txt")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}
			if _, err := LoadOrigin(path); err == nil {
				t.Error("expected error for malformed origin file, got nil")
			}
		})
	}
}

func TestLoadOriginIgnoresTrailingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "origin.txt")
	if err := os.WriteFile(path, []byte("10 20 5\nsome trailing note\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	got, err := LoadOrigin(path)
	if err != nil {
		t.Fatalf("LoadOrigin: %v", err)
	}
	if got.Latitude != 10 || got.Longitude != 20 || got.Altitude != 5 {
		t.Errorf("LoadOrigin = %+v, want 10 20 5", got)
	}
}
