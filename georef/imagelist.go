package georef

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageList assigns dense zero-based frame IDs to an ordered list of
// image files, the same order tracking followed. Stems (file names without
// directory or final extension) key the association with per-frame files
// such as KRTD cameras and POS records.
type ImageList struct {
	Stems       []string
	StemToFrame map[string]int64
}

// LoadImageList reads an image list file, one path per line, skipping
// blank lines. Frame IDs are dense and gap-free by construction.
func LoadImageList(path string) (*ImageList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image list %s: %w", path, err)
	}
	defer f.Close()

	list := &ImageList{StemToFrame: make(map[string]int64)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		stem := FileStem(line)
		list.StemToFrame[stem] = int64(len(list.Stems))
		list.Stems = append(list.Stems, stem)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading image list %s: %w", path, err)
	}
	if len(list.Stems) == 0 {
		return nil, fmt.Errorf("image list %s is empty", path)
	}
	return list, nil
}

// Len returns the number of frames.
func (l *ImageList) Len() int {
	return len(l.Stems)
}

// Stem returns the file stem for a frame ID, or empty when out of range.
func (l *ImageList) Stem(frame int64) string {
	if frame < 0 || frame >= int64(len(l.Stems)) {
		return ""
	}
	return l.Stems[frame]
}

// FileStem strips the directory and the last extension from a path.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
