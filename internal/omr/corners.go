package omr

import (
	"fmt"
	"image"

	"github.com/ironsheep/camera-omr/internal/detection"
	"github.com/ironsheep/camera-omr/internal/imaging"
)

// Corner indexes a corner marker. Order is clockwise from top-left.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
)

var cornerNames = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

// String returns the corner name, e.g. "top-left".
func (c Corner) String() string {
	if c < TopLeft || c > BottomLeft {
		return fmt.Sprintf("corner(%d)", int(c))
	}
	return cornerNames[c]
}

// Corners holds the four located corner markers in image coordinates.
//
// Points are ordered TopLeft, TopRight, BottomRight, BottomLeft. A corner
// whose tile had no qualifying blob is the top-left pixel of its tile,
// relative to the image origin, and its Found flag is false.
type Corners struct {
	Points [4]imaging.Point `json:"points"`
	Found  [4]bool          `json:"found"`
}

// AllFound reports whether every corner marker was detected.
func (c Corners) AllFound() bool {
	return c.Found[0] && c.Found[1] && c.Found[2] && c.Found[3]
}

// Missing returns the corners that were not detected.
func (c Corners) Missing() []Corner {
	var out []Corner
	for i, ok := range c.Found {
		if !ok {
			out = append(out, Corner(i))
		}
	}
	return out
}

// cornerTile is one quadrant search region
type cornerTile struct {
	rect   image.Rectangle // absolute, inside the image bounds
	origin imaging.Point   // reference corner in tile-local coordinates
}

// cornerTiles splits bounds into four tiles anchored at each image corner.
// Tiles are ceil(W/2) x ceil(H/2), so odd dimensions overlap by one
// column or row at the midline.
func cornerTiles(bounds image.Rectangle) [4]cornerTile {
	w, h := bounds.Dx(), bounds.Dy()
	tw, th := (w+1)/2, (h+1)/2
	ox, oy := w-tw, h-th

	local := [4]image.Rectangle{
		image.Rect(0, 0, tw, th),
		image.Rect(ox, 0, w, th),
		image.Rect(ox, oy, w, h),
		image.Rect(0, oy, tw, h),
	}
	origins := [4]imaging.Point{
		{X: 0, Y: 0},
		{X: float64(tw), Y: 0},
		{X: float64(tw), Y: float64(th)},
		{X: 0, Y: float64(th)},
	}

	var tiles [4]cornerTile
	for i := range tiles {
		tiles[i] = cornerTile{rect: local[i].Add(bounds.Min), origin: origins[i]}
	}
	return tiles
}

// LocateCorners finds the four printed corner markers.
//
// Parameters:
//   - img: The oriented frame.
//   - det: Blob detector, run once per tile with detection.MarkerParams.
//
// Returns corners in img coordinates (relative to img.Bounds().Min).
//
// # Algorithm
//
//  1. Split the image into four tiles anchored at its corners.
//  2. Detect marker blobs in each tile.
//  3. Keep the blob closest to the tile's own image corner, e.g. the
//     bottom-right tile keeps the blob nearest its bottom-right.
//  4. Translate tile-local positions back into image coordinates.
//
// A tile with no blobs does not fail the call; the corner is reported
// with Found=false. Only detector errors are returned.
func LocateCorners(img *image.Gray, det detection.Detector) (Corners, error) {
	var corners Corners
	b := img.Bounds()
	if b.Empty() {
		return corners, fmt.Errorf("cannot locate corners in empty image")
	}

	params := detection.MarkerParams()
	for i, tile := range cornerTiles(b) {
		sub := img.SubImage(tile.rect).(*image.Gray)
		blobs, err := det.Detect(sub, params)
		if err != nil {
			return corners, fmt.Errorf("failed to detect %s marker: %w", Corner(i), err)
		}

		local := imaging.Point{}
		if best, ok := nearestBlob(blobs, tile.origin); ok {
			local = imaging.Point{X: best.X, Y: best.Y}
			corners.Found[i] = true
		}

		offX := float64(tile.rect.Min.X - b.Min.X)
		offY := float64(tile.rect.Min.Y - b.Min.Y)
		corners.Points[i] = local.Add(offX, offY)
	}

	Logger().Debug("corners located",
		"tl", corners.Points[TopLeft], "tr", corners.Points[TopRight],
		"br", corners.Points[BottomRight], "bl", corners.Points[BottomLeft],
		"all_found", corners.AllFound())

	return corners, nil
}

// nearestBlob returns the blob closest to p; ties keep the earlier blob
func nearestBlob(blobs []detection.Blob, p imaging.Point) (detection.Blob, bool) {
	if len(blobs) == 0 {
		return detection.Blob{}, false
	}
	best := blobs[0]
	bestDist := imaging.Distance(p, imaging.Point{X: best.X, Y: best.Y})
	for _, blob := range blobs[1:] {
		d := imaging.Distance(p, imaging.Point{X: blob.X, Y: blob.Y})
		if d < bestDist {
			best, bestDist = blob, d
		}
	}
	return best, true
}
