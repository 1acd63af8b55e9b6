package omr

import (
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/camera-omr/internal/detection"
	"github.com/ironsheep/camera-omr/internal/imaging"
)

func TestCornerTiles_EvenDimensions(t *testing.T) {
	tiles := cornerTiles(image.Rect(0, 0, 100, 140))
	want := [4]image.Rectangle{tileTL, tileTR, tileBR, tileBL}
	for i, tile := range tiles {
		if tile.rect != want[i] {
			t.Errorf("%s tile: got %v, want %v", Corner(i), tile.rect, want[i])
		}
	}
}

func TestCornerTiles_OddDimensionsOverlap(t *testing.T) {
	tiles := cornerTiles(image.Rect(0, 0, 101, 51))

	// ceil halves: 51 x 26, offset 50 x 25
	want := [4]image.Rectangle{
		image.Rect(0, 0, 51, 26),
		image.Rect(50, 0, 101, 26),
		image.Rect(50, 25, 101, 51),
		image.Rect(0, 25, 51, 51),
	}
	for i, tile := range tiles {
		if tile.rect != want[i] {
			t.Errorf("%s tile: got %v, want %v", Corner(i), tile.rect, want[i])
		}
	}

	// Every pixel is covered by at least one tile.
	for y := 0; y < 51; y++ {
		for x := 0; x < 101; x++ {
			p := image.Pt(x, y)
			covered := false
			for _, tile := range tiles {
				if p.In(tile.rect) {
					covered = true
				}
			}
			if !covered {
				t.Fatalf("pixel %v not covered", p)
			}
		}
	}
}

func TestLocateCorners_OrderingAndQuadrants(t *testing.T) {
	det := newFakeDetector().
		on(tileTL, detection.Blob{X: 5, Y: 6, Size: 20}).
		on(tileTR, detection.Blob{X: 44, Y: 4, Size: 20}).
		on(tileBR, detection.Blob{X: 46, Y: 66, Size: 20}).
		on(tileBL, detection.Blob{X: 3, Y: 65, Size: 20})

	corners, err := LocateCorners(whiteSheet(sheetW, sheetH), det)
	if err != nil {
		t.Fatalf("LocateCorners failed: %v", err)
	}
	if !corners.AllFound() {
		t.Fatalf("expected all corners found, missing %v", corners.Missing())
	}

	want := [4]imaging.Point{{X: 5, Y: 6}, {X: 94, Y: 4}, {X: 96, Y: 136}, {X: 3, Y: 135}}
	if corners.Points != want {
		t.Errorf("points: got %v, want %v", corners.Points, want)
	}

	// Each corner lies in its own quadrant.
	mid := imaging.Point{X: sheetW / 2, Y: sheetH / 2}
	p := corners.Points
	if !(p[TopLeft].X <= mid.X && p[TopLeft].Y <= mid.Y) ||
		!(p[TopRight].X >= mid.X && p[TopRight].Y <= mid.Y) ||
		!(p[BottomRight].X >= mid.X && p[BottomRight].Y >= mid.Y) ||
		!(p[BottomLeft].X <= mid.X && p[BottomLeft].Y >= mid.Y) {
		t.Errorf("corners not in their quadrants: %v", p)
	}

	for _, r := range []image.Rectangle{tileTL, tileTR, tileBR, tileBL} {
		if det.params[r] != detection.MarkerParams() {
			t.Errorf("tile %v scanned without marker params", r)
		}
	}
}

func TestLocateCorners_PicksNearestToTileCorner(t *testing.T) {
	det := withIdentityCorners(newFakeDetector())
	// Extra blobs farther from each tile's own corner.
	det.on(tileTL, detection.Blob{X: 25, Y: 30, Size: 40})
	det.on(tileBR, detection.Blob{X: 10, Y: 10, Size: 40})

	corners, err := LocateCorners(whiteSheet(sheetW, sheetH), det)
	if err != nil {
		t.Fatalf("LocateCorners failed: %v", err)
	}
	want := [4]imaging.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 140}, {X: 0, Y: 140}}
	if corners.Points != want {
		t.Errorf("points: got %v, want %v", corners.Points, want)
	}
}

func TestLocateCorners_MissingTile(t *testing.T) {
	det := newFakeDetector().
		on(tileTL, detection.Blob{X: 5, Y: 5}).
		on(tileTR, detection.Blob{X: 45, Y: 5}).
		on(tileBL, detection.Blob{X: 5, Y: 65})

	corners, err := LocateCorners(whiteSheet(sheetW, sheetH), det)
	if err != nil {
		t.Fatalf("missing marker should not be an error: %v", err)
	}
	if corners.Found[BottomRight] {
		t.Error("bottom-right should not be found")
	}
	// Top-left pixel of the bottom-right tile.
	if corners.Points[BottomRight] != (imaging.Point{X: 50, Y: 70}) {
		t.Errorf("missing corner position: got %v", corners.Points[BottomRight])
	}
	if m := corners.Missing(); len(m) != 1 || m[0] != BottomRight {
		t.Errorf("Missing: got %v", m)
	}
}

func TestLocateCorners_DetectorError(t *testing.T) {
	det := newFakeDetector()
	det.err = errDetector
	if _, err := LocateCorners(whiteSheet(10, 10), det); !errors.Is(err, errDetector) {
		t.Errorf("expected detector error, got %v", err)
	}
}

func TestLocateCorners_EmptyImage(t *testing.T) {
	if _, err := LocateCorners(image.NewGray(image.Rectangle{}), newFakeDetector()); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestCornerString(t *testing.T) {
	if TopLeft.String() != "top-left" || BottomLeft.String() != "bottom-left" {
		t.Error("unexpected corner names")
	}
	if Corner(7).String() != "corner(7)" {
		t.Errorf("out of range: got %s", Corner(7))
	}
}
