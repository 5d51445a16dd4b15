package georef

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverviewRenderer draws a top-down (x/y plane) view of the aligned
// scene: landmarks as dots, the camera path as a polyline with one marker
// per frame.
type OverviewRenderer struct {
	Width, Height int
	Margin        int
}

// NewOverviewRenderer returns a renderer with the default canvas size.
func NewOverviewRenderer() *OverviewRenderer {
	return &OverviewRenderer{Width: 1200, Height: 900, Margin: 40}
}

var (
	overviewBackground = color.RGBA{18, 18, 24, 255}
	landmarkColor      = color.RGBA{120, 200, 120, 255}
	cameraColor        = color.RGBA{240, 170, 60, 255}
	pathColor          = color.RGBA{120, 120, 160, 255}
	labelColor         = color.RGBA{220, 220, 220, 255}
)

// Render produces the overview image.
func (r *OverviewRenderer) Render(cameras CameraMap, landmarks LandmarkMap) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			img.Set(x, y, overviewBackground)
		}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	expand := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	for _, lm := range landmarks {
		expand(lm.Position.X, lm.Position.Y)
	}
	for _, cam := range cameras {
		expand(cam.Center.X, cam.Center.Y)
	}
	if math.IsInf(minX, 1) {
		drawText(img, r.Margin, r.Margin, "empty scene", labelColor)
		return img
	}

	spanX := maxX - minX
	spanY := maxY - minY
	if spanX < 1e-9 {
		spanX = 1
	}
	if spanY < 1e-9 {
		spanY = 1
	}
	scale := math.Min(
		float64(r.Width-2*r.Margin)/spanX,
		float64(r.Height-2*r.Margin)/spanY)

	// y flipped so north is up.
	toImage := func(x, y float64) (int, int) {
		ix := r.Margin + int((x-minX)*scale)
		iy := r.Height - r.Margin - int((y-minY)*scale)
		return ix, iy
	}

	for _, lm := range landmarks {
		ix, iy := toImage(lm.Position.X, lm.Position.Y)
		drawSquare(img, ix, iy, 1, landmarkColor)
	}

	camIDs := make([]int64, 0, len(cameras))
	for id := range cameras {
		camIDs = append(camIDs, id)
	}
	sort.Slice(camIDs, func(i, j int) bool { return camIDs[i] < camIDs[j] })
	prevX, prevY := 0, 0
	for i, id := range camIDs {
		ix, iy := toImage(cameras[id].Center.X, cameras[id].Center.Y)
		if i > 0 {
			drawLine(img, prevX, prevY, ix, iy, pathColor)
		}
		drawSquare(img, ix, iy, 2, cameraColor)
		prevX, prevY = ix, iy
	}

	drawText(img, r.Margin, r.Margin-20,
		fmt.Sprintf("%d cameras, %d landmarks", len(cameras), len(landmarks)), labelColor)
	return img
}

// SavePNG renders and writes the overview to path.
func (r *OverviewRenderer) SavePNG(path string, cameras CameraMap, landmarks LandmarkMap) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating overview output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating overview PNG %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return png.Encode(f, r.Render(cameras, landmarks))
}

func drawSquare(img *image.RGBA, cx, cy, half int, c color.RGBA) {
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			x, y := cx+dx, cy+dy
			if image.Pt(x, y).In(img.Bounds()) {
				img.Set(x, y, c)
			}
		}
	}
}

// drawLine draws a 1px line with the integer Bresenham walk.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.Set(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawText renders text onto an image at the specified position.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
