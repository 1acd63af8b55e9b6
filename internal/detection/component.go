package detection

import (
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/parallel"
)

// pixel is an integer pixel coordinate local to a binary mask.
type pixel struct {
	X, Y int
}

// vertex is a real-valued polygon vertex used for hull computations.
type vertex struct {
	X, Y float64
}

// component holds the shape statistics of one connected dark region.
type component struct {
	area      float64
	cx, cy    float64
	inertia   float64
	circ      float64
	convexity float64
	diameter  float64
}

// darkMask marks the pixels of img strictly darker than level.
//
// Raw gray values are compared, so a pixel equal to level is never dark.
// The mask is indexed [y][x] relative to img.Bounds().Min and rows are
// filled concurrently.
func darkMask(img *image.Gray, level uint8) [][]bool {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	mask := make([][]bool, height)
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			mask[y] = make([]bool, width)
			row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < width; x++ {
				mask[y][x] = row[x] < level
			}
		}
	})
	return mask
}

// labelComponents groups 8-connected true pixels of mask into regions.
//
// Uses an explicit stack rather than recursion so large regions cannot
// overflow the goroutine stack. Regions smaller than minPixels are dropped.
func labelComponents(mask [][]bool, minPixels int) [][]pixel {
	height := len(mask)
	if height == 0 {
		return nil
	}
	width := len(mask[0])

	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	regions := make([][]pixel, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y][x] || visited[y][x] {
				continue
			}
			region := make([]pixel, 0, 16)
			stack := []pixel{{X: x, Y: y}}
			visited[y][x] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				region = append(region, p)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= width || ny < 0 || ny >= height {
							continue
						}
						if mask[ny][nx] && !visited[ny][nx] {
							visited[ny][nx] = true
							stack = append(stack, pixel{X: nx, Y: ny})
						}
					}
				}
			}
			if len(region) >= minPixels {
				regions = append(regions, region)
			}
		}
	}
	return regions
}

// measureComponent computes area, centroid and the three shape descriptors
// used by the blob filters.
//
// # Descriptors
//
//   - Inertia ratio: minor/major eigenvalue ratio of the second central
//     moments, (mu20+mu02-d)/(mu20+mu02+d) with d = sqrt((mu20-mu02)² + 4·mu11²).
//     1.0 for a disc, approaching 0 for a line.
//   - Circularity: 4π·area/perimeter². The perimeter is the Crofton estimate
//     π/4 × (number of pixel edges shared with the background), which is
//     unbiased for digital discs. Capped at 1.0.
//   - Convexity: area / convex hull area, where the hull is built over the
//     corners of the boundary pixels.
func measureComponent(region []pixel, mask [][]bool) component {
	height := len(mask)
	width := len(mask[0])

	var sumX, sumY, sumXX, sumYY, sumXY float64
	edges := 0
	corners := make([]vertex, 0, len(region))

	for _, p := range region {
		fx, fy := float64(p.X), float64(p.Y)
		sumX += fx
		sumY += fy
		sumXX += fx * fx
		sumYY += fy * fy
		sumXY += fx * fy

		onBoundary := false
		for _, d := range [4]pixel{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || nx >= width || ny < 0 || ny >= height || !mask[ny][nx] {
				edges++
				onBoundary = true
			}
		}
		if onBoundary {
			corners = append(corners,
				vertex{fx - 0.5, fy - 0.5}, vertex{fx + 0.5, fy - 0.5},
				vertex{fx + 0.5, fy + 0.5}, vertex{fx - 0.5, fy + 0.5})
		}
	}

	n := float64(len(region))
	cx, cy := sumX/n, sumY/n
	mu20 := sumXX/n - cx*cx
	mu02 := sumYY/n - cy*cy
	mu11 := sumXY/n - cx*cy

	inertia := 1.0
	if trace := mu20 + mu02; trace > 1e-9 {
		d := math.Sqrt((mu20-mu02)*(mu20-mu02) + 4*mu11*mu11)
		inertia = (trace - d) / (trace + d)
	}

	perimeter := float64(edges) * math.Pi / 4
	circ := 0.0
	if perimeter > 0 {
		circ = math.Min(4*math.Pi*n/(perimeter*perimeter), 1.0)
	}

	convexity := 0.0
	if hullArea := polygonArea(convexHull(corners)); hullArea > 0 {
		convexity = math.Min(n/hullArea, 1.0)
	}

	return component{
		area:      n,
		cx:        cx,
		cy:        cy,
		inertia:   inertia,
		circ:      circ,
		convexity: convexity,
		diameter:  2 * math.Sqrt(n/math.Pi),
	}
}

// passes reports whether the component satisfies every enabled filter.
func (c component) passes(p Params) bool {
	if p.FilterByArea {
		if c.area < p.MinArea {
			return false
		}
		if p.MaxArea > 0 && c.area >= p.MaxArea {
			return false
		}
	}
	if p.FilterByCircularity && c.circ < p.MinCircularity {
		return false
	}
	if p.FilterByInertia && c.inertia < p.MinInertiaRatio {
		return false
	}
	if p.FilterByConvexity && c.convexity < p.MinConvexity {
		return false
	}
	return true
}

// convexHull returns the convex hull of pts in counter-clockwise order
// using Andrew's monotone chain.
func convexHull(pts []vertex) []vertex {
	if len(pts) < 3 {
		return pts
	}
	sorted := make([]vertex, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b vertex) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]vertex, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// polygonArea returns the absolute shoelace area of a closed polygon.
func polygonArea(poly []vertex) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return math.Abs(sum) / 2
}
