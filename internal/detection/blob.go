package detection

import (
	"fmt"
	"image"
)

// Blob is one detected roughly-circular mark.
//
// X and Y are the blob centre relative to the top-left corner of the image
// that was passed to Detect (its Bounds().Min), not absolute sub-image
// coordinates. Size is the effective blob diameter in pixels.
type Blob struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Params selects which shape filters a Detector applies.
//
// A filter is only applied when its FilterBy flag is set; the matching Min
// value is then the inclusive lower bound. MaxArea is an optional upper bound
// on area used together with FilterByArea; zero means unlimited.
type Params struct {
	FilterByArea bool    `json:"filter_by_area"`
	MinArea      float64 `json:"min_area"`
	MaxArea      float64 `json:"max_area,omitempty"`

	FilterByCircularity bool    `json:"filter_by_circularity"`
	MinCircularity      float64 `json:"min_circularity"`

	FilterByInertia bool    `json:"filter_by_inertia"`
	MinInertiaRatio float64 `json:"min_inertia_ratio"`

	FilterByConvexity bool    `json:"filter_by_convexity"`
	MinConvexity      float64 `json:"min_convexity"`
}

// MarkerParams returns the parameters tuned for the printed corner markers.
func MarkerParams() Params {
	return Params{
		FilterByArea:        true,
		MinArea:             200,
		FilterByCircularity: true,
		MinCircularity:      0.4,
		FilterByInertia:     true,
		MinInertiaRatio:     0.5,
		FilterByConvexity:   true,
		MinConvexity:        0.5,
	}
}

// OptionParams returns the parameters tuned for filled answer bubbles.
// Marks are smaller and lighter than the corner markers, so there is no area filter.
func OptionParams() Params {
	return Params{
		FilterByCircularity: true,
		MinCircularity:      0.4,
		FilterByInertia:     true,
		MinInertiaRatio:     0.7,
		FilterByConvexity:   true,
		MinConvexity:        0.5,
	}
}

// Detector finds dark blobs in a grayscale image.
//
// Implementations must be safe for concurrent use when the grader runs
// sections in parallel.
type Detector interface {
	Detect(img *image.Gray, params Params) ([]Blob, error)
}

// NewDetector creates a detector backend by name.
//
// Supported variants:
//   - "" or "simple": the pure-Go SimpleDetector
//   - "gocv": the OpenCV SimpleBlobDetector, available when built with -tags gocv
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "simple", "":
		return NewSimpleDetector(), nil
	case "gocv":
		return newGoCVDetector()
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
