package omr

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/makiuchi-d/gozxing/common"

	"github.com/ironsheep/camera-omr/internal/imaging"
)

// Corner geometry errors reported by CheckCorners.
var (
	ErrMissingCorner     = errors.New("corner marker not found")
	ErrDegenerateCorners = errors.New("corner markers do not form a convex quadrilateral")
)

// DefaultMinCornerArea is the smallest corner triangle area, in square
// pixels, CheckCorners accepts.
const DefaultMinCornerArea = 1.0

// snapEpsilon absorbs floating point noise in mapped coordinates so exact
// pixel positions are not blended with their neighbours.
const snapEpsilon = 1e-6

// CheckCorners reports whether corners can define a usable projective
// transform: every marker found, and the quadrilateral they form convex with
// each corner triangle larger than minArea.
func CheckCorners(c Corners, minArea float64) error {
	if missing := c.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = m.String()
		}
		return fmt.Errorf("%w: %s", ErrMissingCorner, strings.Join(names, ", "))
	}
	if !imaging.IsConvexQuad(c.Points, minArea) {
		return fmt.Errorf("%w: %v", ErrDegenerateCorners, c.Points)
	}
	return nil
}

// Rectify warps the quadrilateral bounded by corners into a canonical
// rectangle of size dims.
//
// The transform maps (0,0), (w,0), (w,h), (0,h) onto the corner points in
// order TopLeft, TopRight, BottomRight, BottomLeft. Each destination pixel is
// mapped back into img and sampled bilinearly; samples falling outside img
// read as black. Corner coordinates are relative to img.Bounds().Min.
//
// When corners are the four image corners and img already has size dims, the
// output equals the input pixel for pixel. Degenerate corners produce an
// unspecified (but bounded) image rather than a panic; use CheckCorners first.
func Rectify(img *image.Gray, corners Corners, dims TemplateDimensions) *image.Gray {
	w, h := float64(dims.Width), float64(dims.Height)
	tl, tr := corners.Points[TopLeft], corners.Points[TopRight]
	br, bl := corners.Points[BottomRight], corners.Points[BottomLeft]

	// dst -> src
	transform := common.PerspectiveTransform_QuadrilateralToQuadrilateral(
		0, 0, w, 0, w, h, 0, h,
		tl.X, tl.Y, tr.X, tr.Y, br.X, br.Y, bl.X, bl.Y,
	)

	out := image.NewGray(dims.Rect())
	row := make([]float64, 2*dims.Width)
	for y := 0; y < dims.Height; y++ {
		for x := 0; x < dims.Width; x++ {
			row[2*x] = float64(x)
			row[2*x+1] = float64(y)
		}
		transform.TransformPoints(row)

		offset := y * out.Stride
		for x := 0; x < dims.Width; x++ {
			out.Pix[offset+x] = sampleBilinear(img, row[2*x], row[2*x+1])
		}
	}
	return out
}

// snap rounds v to the nearest integer when within snapEpsilon of it
func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < snapEpsilon {
		return r
	}
	return v
}

// grayAt returns the pixel at local (x, y), or 0 outside the image
func grayAt(img *image.Gray, x, y int) float64 {
	b := img.Bounds()
	x += b.Min.X
	y += b.Min.Y
	if x < b.Min.X || y < b.Min.Y || x >= b.Max.X || y >= b.Max.Y {
		return 0
	}
	return float64(img.Pix[img.PixOffset(x, y)])
}

// sampleBilinear interpolates img at local coordinates (x, y)
func sampleBilinear(img *image.Gray, x, y float64) uint8 {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0
	}
	x, y = snap(x), snap(y)

	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	v := grayAt(img, ix, iy)*(1-fx)*(1-fy) +
		grayAt(img, ix+1, iy)*fx*(1-fy) +
		grayAt(img, ix, iy+1)*(1-fx)*fy +
		grayAt(img, ix+1, iy+1)*fx*fy

	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
