package detection

import (
	"image"
	"math"
	"sort"
)

// SimpleDetector is a pure-Go blob detector modelled on OpenCV's
// SimpleBlobDetector.
//
// The zero value is not usable; create instances with NewSimpleDetector.
// A SimpleDetector holds no mutable state and is safe for concurrent use.
type SimpleDetector struct {
	// MinThreshold, MaxThreshold and ThresholdStep define the binarization
	// ladder. Levels run from MinThreshold up to (excluding) MaxThreshold.
	MinThreshold  uint8
	MaxThreshold  uint8
	ThresholdStep uint8

	// MinRepeatability is the number of ladder levels a blob must appear at.
	MinRepeatability int

	// MinDistBetweenBlobs merges centres from different levels that are
	// closer than this many pixels.
	MinDistBetweenBlobs float64

	// MinPixels discards regions smaller than this before measuring them.
	MinPixels int
}

// NewSimpleDetector creates a detector with the OpenCV default ladder
// (50..220 step 10, repeatability 2, min distance 10).
func NewSimpleDetector() *SimpleDetector {
	return &SimpleDetector{
		MinThreshold:        50,
		MaxThreshold:        220,
		ThresholdStep:       10,
		MinRepeatability:    2,
		MinDistBetweenBlobs: 10,
		MinPixels:           4,
	}
}

// candidate is one blob centre found at a single threshold level.
type candidate struct {
	x, y     float64
	diameter float64
}

// Detect finds dark blobs in img that pass the enabled filters in params.
//
// # Algorithm
//
//  1. Binarize img at every ladder level; pixels strictly darker than the
//     level are foreground.
//  2. Label 8-connected foreground regions and measure each one.
//  3. Keep regions that pass the filters and whose centroid pixel is itself
//     foreground, which rejects hollow rings such as unfilled bubbles.
//  4. Merge candidates across levels whose centres are closer than
//     MinDistBetweenBlobs or closer than either radius.
//  5. Report groups seen at MinRepeatability levels or more, at the mean
//     centre with the median diameter as Size.
//
// Returned positions are relative to img.Bounds().Min.
func (d *SimpleDetector) Detect(img *image.Gray, params Params) ([]Blob, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, nil
	}

	step := d.ThresholdStep
	if step == 0 {
		step = 10
	}

	groups := make([][]candidate, 0)
	for level := int(d.MinThreshold); level < int(d.MaxThreshold); level += int(step) {
		mask := darkMask(img, uint8(level))

		levelCandidates := make([]candidate, 0)
		for _, region := range labelComponents(mask, d.MinPixels) {
			c := measureComponent(region, mask)
			if !c.passes(params) {
				continue
			}
			px, py := int(math.Round(c.cx)), int(math.Round(c.cy))
			if py < 0 || py >= len(mask) || px < 0 || px >= len(mask[py]) || !mask[py][px] {
				continue
			}
			levelCandidates = append(levelCandidates, candidate{x: c.cx, y: c.cy, diameter: c.diameter})
		}

		groups = d.mergeCandidates(groups, levelCandidates)
	}

	blobs := make([]Blob, 0, len(groups))
	for _, g := range groups {
		if len(g) < d.MinRepeatability {
			continue
		}
		var sx, sy float64
		diameters := make([]float64, len(g))
		for i, c := range g {
			sx += c.x
			sy += c.y
			diameters[i] = c.diameter
		}
		sort.Float64s(diameters)
		blobs = append(blobs, Blob{
			X:    sx / float64(len(g)),
			Y:    sy / float64(len(g)),
			Size: diameters[len(diameters)/2],
		})
	}

	sort.Slice(blobs, func(i, j int) bool {
		if blobs[i].Y != blobs[j].Y {
			return blobs[i].Y < blobs[j].Y
		}
		return blobs[i].X < blobs[j].X
	})
	return blobs, nil
}

// mergeCandidates adds one level's candidates to the running groups.
func (d *SimpleDetector) mergeCandidates(groups [][]candidate, level []candidate) [][]candidate {
	for _, c := range level {
		merged := false
		for i, g := range groups {
			ref := g[len(g)/2]
			dist := math.Hypot(ref.x-c.x, ref.y-c.y)
			if dist < d.MinDistBetweenBlobs || dist < ref.diameter/2 || dist < c.diameter/2 {
				groups[i] = insertByDiameter(g, c)
				merged = true
				break
			}
		}
		if !merged {
			groups = append(groups, []candidate{c})
		}
	}
	return groups
}

// insertByDiameter keeps each group ordered by diameter so the middle
// element is the median.
func insertByDiameter(g []candidate, c candidate) []candidate {
	i := sort.Search(len(g), func(i int) bool { return g[i].diameter >= c.diameter })
	g = append(g, candidate{})
	copy(g[i+1:], g[i:])
	g[i] = c
	return g
}
