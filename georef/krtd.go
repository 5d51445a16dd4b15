package georef

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ReadKRTD parses one KRTD camera file: a 3x3 intrinsic matrix K, a 3x3
// world-to-camera rotation R, a translation t and an optional row of
// distortion coefficients, as whitespace-separated numbers. The camera
// center is recovered as -R'*t.
func ReadKRTD(path string) (*Camera, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading KRTD file %s: %w", path, err)
	}
	fields := strings.Fields(string(data))
	if len(fields) < 21 {
		return nil, fmt.Errorf("KRTD file %s: expected at least 21 values (K, R, t), got %d", path, len(fields))
	}
	vals := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("KRTD file %s: bad value %q: %w", path, s, err)
		}
		vals[i] = v
	}

	k := mat.NewDense(3, 3, vals[0:9])
	r := mat.NewDense(3, 3, vals[9:18])
	t := vals[18:21]

	// C = -R' * t
	cam := &Camera{Intrinsics: k, Rotation: r}
	cam.Center.X = -(r.At(0, 0)*t[0] + r.At(1, 0)*t[1] + r.At(2, 0)*t[2])
	cam.Center.Y = -(r.At(0, 1)*t[0] + r.At(1, 1)*t[1] + r.At(2, 1)*t[2])
	cam.Center.Z = -(r.At(0, 2)*t[0] + r.At(1, 2)*t[1] + r.At(2, 2)*t[2])
	if len(vals) > 21 {
		cam.Distortion = vals[21:]
	}
	return cam, nil
}

// WriteKRTD writes a camera in KRTD layout, blank lines between blocks.
func WriteKRTD(path string, cam *Camera) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating KRTD file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	writeMat3 := func(m *mat.Dense) {
		for i := 0; i < 3; i++ {
			fmt.Fprintf(w, "%.12g %.12g %.12g\n", m.At(i, 0), m.At(i, 1), m.At(i, 2))
		}
	}
	writeMat3(cam.Intrinsics)
	fmt.Fprintln(w)
	writeMat3(cam.Rotation)
	fmt.Fprintln(w)
	t := cam.Translation()
	fmt.Fprintf(w, "%.12g %.12g %.12g\n\n", t.X, t.Y, t.Z)
	for i, d := range cam.Distortion {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%.12g", d)
	}
	fmt.Fprintln(w)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing KRTD file %s: %w", path, err)
	}
	return nil
}

// LoadCameras reads KRTD cameras from a directory or a newline-separated
// list file and associates them to frames by file stem. A camera set
// sparser than the image list is a warning; an empty match is an error.
func LoadCameras(krtdPath string, images *ImageList, logger *log.Logger) (CameraMap, error) {
	files, err := resolveFiles(krtdPath)
	if err != nil {
		return nil, err
	}

	cameras := make(CameraMap)
	for _, fpath := range files {
		frame, ok := images.StemToFrame[FileStem(fpath)]
		if !ok {
			continue
		}
		cam, err := ReadKRTD(fpath)
		if err != nil {
			return nil, err
		}
		cameras[frame] = cam
	}

	if len(cameras) == 0 {
		return nil, fmt.Errorf("no KRTD files in %s match the input image frames", krtdPath)
	}
	if len(cameras) != images.Len() {
		logger.Printf("KRTD camera set is sparse: %d cameras for %d images", len(cameras), images.Len())
	}
	return cameras, nil
}

// WriteCameras writes one KRTD file per camera into dir, named by the
// frame's image stem.
func WriteCameras(dir string, cameras CameraMap, images *ImageList) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating KRTD output directory: %w", err)
	}
	for frame, cam := range cameras {
		stem := images.Stem(frame)
		if stem == "" {
			stem = fmt.Sprintf("frame_%05d", frame)
		}
		if err := WriteKRTD(filepath.Join(dir, stem+".krtd"), cam); err != nil {
			return err
		}
	}
	return nil
}

// resolveFiles expands a directory into its sorted file paths, or reads a
// list file with one path per line.
func resolveFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if !info.IsDir() {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening file list %s: %w", path, err)
		}
		defer f.Close()
		var files []string
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				files = append(files, line)
			}
		}
		return files, scanner.Err()
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
