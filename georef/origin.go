package georef

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadOrigin reads a persisted geographic origin. It returns (nil, nil)
// when the path is empty or the file does not exist, so a fresh run can
// compute its own origin. Malformed content is an error carrying the path.
func LoadOrigin(path string) (*GeoPoint, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading origin file %s: %w", path, err)
	}

	line := data
	if idx := strings.IndexByte(string(data), '\n'); idx >= 0 {
		line = data[:idx]
	}
	fields := strings.Fields(string(line))
	if len(fields) < 3 {
		return nil, fmt.Errorf("origin file %s: expected \"lat lon alt\", got %q", path, strings.TrimSpace(string(line)))
	}

	vals := make([]float64, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("origin file %s: bad value %q: %w", path, fields[i], err)
		}
		vals[i] = v
	}
	return &GeoPoint{Latitude: vals[0], Longitude: vals[1], Altitude: vals[2]}, nil
}

// SaveOrigin writes the origin as "lat lon alt" with 12 significant
// digits, creating the parent directory and overwriting any existing file.
func SaveOrigin(path string, p GeoPoint) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating origin directory: %w", err)
		}
	}
	record := fmt.Sprintf("%.12g %.12g %.12g\n", p.Latitude, p.Longitude, p.Altitude)
	if err := os.WriteFile(path, []byte(record), 0644); err != nil {
		return fmt.Errorf("writing origin file %s: %w", path, err)
	}
	return nil
}
