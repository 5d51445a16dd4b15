package georef

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
)

// ReadPLY loads landmarks from an ASCII PLY point file. Vertices must
// carry x/y/z float properties; uchar red/green/blue are picked up when
// present. Landmark IDs follow vertex order.
func ReadPLY(path string) (LandmarkMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PLY file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	vertexCount := -1
	hasColor := false
	inHeader := true

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "ply" {
		return nil, fmt.Errorf("PLY file %s: missing ply magic", path)
	}
	for inHeader && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) > 1 && fields[1] != "ascii" {
				return nil, fmt.Errorf("PLY file %s: only ascii format supported, got %s", path, fields[1])
			}
		case "element":
			if len(fields) == 3 && fields[1] == "vertex" {
				vertexCount, err = strconv.Atoi(fields[2])
				if err != nil {
					return nil, fmt.Errorf("PLY file %s: bad vertex count %q", path, fields[2])
				}
			}
		case "property":
			if len(fields) == 3 && fields[2] == "red" {
				hasColor = true
			}
		case "end_header":
			inHeader = false
		}
	}
	if vertexCount < 0 {
		return nil, fmt.Errorf("PLY file %s: no vertex element in header", path)
	}

	landmarks := make(LandmarkMap, vertexCount)
	for i := 0; i < vertexCount && scanner.Scan(); i++ {
		fields := strings.Fields(scanner.Text())
		want := 3
		if hasColor {
			want = 6
		}
		if len(fields) < want {
			return nil, fmt.Errorf("PLY file %s: vertex %d has %d values, want %d", path, i, len(fields), want)
		}
		var pos r3.Vector
		if pos.X, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return nil, fmt.Errorf("PLY file %s: vertex %d: %w", path, i, err)
		}
		if pos.Y, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, fmt.Errorf("PLY file %s: vertex %d: %w", path, i, err)
		}
		if pos.Z, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, fmt.Errorf("PLY file %s: vertex %d: %w", path, i, err)
		}
		lm := &Landmark{Position: pos}
		if hasColor {
			var rgb [3]uint8
			for c := 0; c < 3; c++ {
				v, err := strconv.Atoi(fields[3+c])
				if err != nil {
					return nil, fmt.Errorf("PLY file %s: vertex %d color: %w", path, i, err)
				}
				rgb[c] = uint8(v)
			}
			lm.Color = &rgb
		}
		landmarks[int64(i)] = lm
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PLY file %s: %w", path, err)
	}
	if len(landmarks) != vertexCount {
		return nil, fmt.Errorf("PLY file %s: header promised %d vertices, found %d", path, vertexCount, len(landmarks))
	}
	return landmarks, nil
}

// WritePLY writes landmarks as an ASCII PLY point cloud in ascending ID
// order. Color properties are emitted when every landmark has a color.
func WritePLY(path string, landmarks LandmarkMap) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating PLY output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating PLY file %s: %w", path, err)
	}
	defer f.Close()

	ids := make([]int64, 0, len(landmarks))
	withColor := len(landmarks) > 0
	for id, lm := range landmarks {
		ids = append(ids, id)
		if lm.Color == nil {
			withColor = false
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "ply")
	fmt.Fprintln(w, "format ascii 1.0")
	fmt.Fprintf(w, "element vertex %d\n", len(ids))
	fmt.Fprintln(w, "property float x")
	fmt.Fprintln(w, "property float y")
	fmt.Fprintln(w, "property float z")
	if withColor {
		fmt.Fprintln(w, "property uchar red")
		fmt.Fprintln(w, "property uchar green")
		fmt.Fprintln(w, "property uchar blue")
	}
	fmt.Fprintln(w, "end_header")
	for _, id := range ids {
		lm := landmarks[id]
		if withColor {
			fmt.Fprintf(w, "%.12g %.12g %.12g %d %d %d\n",
				lm.Position.X, lm.Position.Y, lm.Position.Z,
				lm.Color[0], lm.Color[1], lm.Color[2])
		} else {
			fmt.Fprintf(w, "%.12g %.12g %.12g\n",
				lm.Position.X, lm.Position.Y, lm.Position.Z)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing PLY file %s: %w", path, err)
	}
	return nil
}
