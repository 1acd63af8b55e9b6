package imaging

import (
	"math"
)

// Point represents a 2D point in pixel coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy)
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Distance returns the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Angle returns the direction from a to b in degrees (0 = right, 90 = down)
func Angle(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
}

// cross returns the z component of (b-a) x (c-a)
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// TriangleArea returns the signed area of triangle abc.
// Positive when a, b, c turn clockwise in image coordinates (Y down).
func TriangleArea(a, b, c Point) float64 {
	return cross(a, b, c) / 2
}

// QuadArea returns the absolute area of a simple quadrilateral using the
// shoelace formula. Vertices must be given in boundary order.
func QuadArea(q [4]Point) float64 {
	var sum float64
	for i := range q {
		j := (i + 1) % 4
		sum += q[i].X*q[j].Y - q[j].X*q[i].Y
	}
	return math.Abs(sum) / 2
}

// IsConvexQuad reports whether q, taken in boundary order, is a strictly
// convex quadrilateral whose four corner triangles each exceed minArea.
//
// # Algorithm
//
// For each vertex the signed area of the triangle formed with its two
// neighbours is computed. A convex, non-self-intersecting quadrilateral has
// all four areas of the same sign. Collinear or coincident vertices produce
// an area at or near zero and fail the minArea check.
func IsConvexQuad(q [4]Point, minArea float64) bool {
	var sign float64
	for i := range q {
		prev := q[(i+3)%4]
		next := q[(i+1)%4]
		a := TriangleArea(prev, q[i], next)
		if math.Abs(a) <= minArea {
			return false
		}
		if sign == 0 {
			sign = math.Copysign(1, a)
		} else if math.Copysign(1, a) != sign {
			return false
		}
	}
	return true
}

// AlignmentResult contains alignment check information
type AlignmentResult struct {
	HorizontallyAligned bool    `json:"horizontally_aligned"`
	VerticallyAligned   bool    `json:"vertically_aligned"`
	HorizontalVariance  float64 `json:"horizontal_variance"`
	VerticalVariance    float64 `json:"vertical_variance"`
	AverageY            float64 `json:"average_y"`
	AverageX            float64 `json:"average_x"`
}

// CheckAlignment checks if points are aligned horizontally or vertically.
// Used to report how square a detected marker set sits in the frame.
func CheckAlignment(points []Point, tolerance float64) *AlignmentResult {
	if len(points) < 2 {
		return &AlignmentResult{
			HorizontallyAligned: true,
			VerticallyAligned:   true,
		}
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	avgX := sumX / float64(len(points))
	avgY := sumY / float64(len(points))

	var varX, varY float64
	for _, p := range points {
		dx := p.X - avgX
		dy := p.Y - avgY
		varX += dx * dx
		varY += dy * dy
	}
	varX = math.Sqrt(varX / float64(len(points)))
	varY = math.Sqrt(varY / float64(len(points)))

	return &AlignmentResult{
		HorizontallyAligned: varY <= tolerance,
		VerticallyAligned:   varX <= tolerance,
		HorizontalVariance:  math.Round(varY*100) / 100,
		VerticalVariance:    math.Round(varX*100) / 100,
		AverageY:            math.Round(avgY*100) / 100,
		AverageX:            math.Round(avgX*100) / 100,
	}
}
