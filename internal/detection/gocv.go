//go:build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// GoCVDetector runs OpenCV's SimpleBlobDetector through gocv.
//
// A fresh native detector is created per call, so a GoCVDetector is safe
// for concurrent use.
type GoCVDetector struct{}

func newGoCVDetector() (Detector, error) {
	return &GoCVDetector{}, nil
}

// Detect converts img to a Mat and runs SimpleBlobDetector with params.
// Keypoint positions are already relative to the Mat origin.
func (d *GoCVDetector) Detect(img *image.Gray, params Params) ([]Blob, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, nil
	}

	mat, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer mat.Close()

	p := gocv.NewSimpleBlobDetectorParams()
	p.SetFilterByArea(params.FilterByArea)
	if params.FilterByArea {
		p.SetMinArea(params.MinArea)
		if params.MaxArea > 0 {
			p.SetMaxArea(params.MaxArea)
		}
	}
	p.SetFilterByCircularity(params.FilterByCircularity)
	p.SetMinCircularity(params.MinCircularity)
	p.SetFilterByInertia(params.FilterByInertia)
	p.SetMinInertiaRatio(params.MinInertiaRatio)
	p.SetFilterByConvexity(params.FilterByConvexity)
	p.SetMinConvexity(params.MinConvexity)

	detector := gocv.NewSimpleBlobDetectorWithParams(p)
	defer detector.Close()

	keypoints := detector.Detect(mat)
	blobs := make([]Blob, 0, len(keypoints))
	for _, k := range keypoints {
		blobs = append(blobs, Blob{X: k.X, Y: k.Y, Size: k.Size})
	}
	return blobs, nil
}
