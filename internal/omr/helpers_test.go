package omr

import (
	"errors"
	"image"
	"sync"

	"github.com/ironsheep/camera-omr/internal/detection"
)

// fakeDetector returns canned blobs keyed by the bounds of the image it is
// asked to scan, and counts calls per bounds.
type fakeDetector struct {
	mu     sync.Mutex
	blobs  map[image.Rectangle][]detection.Blob
	calls  map[image.Rectangle]int
	params map[image.Rectangle]detection.Params
	err    error
}

func newFakeDetector() *fakeDetector {
	return &fakeDetector{
		blobs:  make(map[image.Rectangle][]detection.Blob),
		calls:  make(map[image.Rectangle]int),
		params: make(map[image.Rectangle]detection.Params),
	}
}

func (f *fakeDetector) on(r image.Rectangle, blobs ...detection.Blob) *fakeDetector {
	f.blobs[r] = append(f.blobs[r], blobs...)
	return f
}

func (f *fakeDetector) Detect(img *image.Gray, params detection.Params) ([]detection.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := img.Bounds()
	f.calls[b]++
	f.params[b] = params
	if f.err != nil {
		return nil, f.err
	}
	return append([]detection.Blob(nil), f.blobs[b]...), nil
}

func (f *fakeDetector) callsFor(r image.Rectangle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[r]
}

var errDetector = errors.New("detector exploded")

// Test sheet layout: 100x140 template with corner tiles of 50x70.
const (
	sheetW = 100
	sheetH = 140
)

var (
	tileTL = image.Rect(0, 0, 50, 70)
	tileTR = image.Rect(50, 0, 100, 70)
	tileBR = image.Rect(50, 70, 100, 140)
	tileBL = image.Rect(0, 70, 50, 140)
)

// withIdentityCorners places one marker blob at each frame corner so the
// rectification is the identity on a sheetW x sheetH frame.
func withIdentityCorners(f *fakeDetector) *fakeDetector {
	return f.
		on(tileTL, detection.Blob{X: 0, Y: 0, Size: 20}).
		on(tileTR, detection.Blob{X: 50, Y: 0, Size: 20}).
		on(tileBR, detection.Blob{X: 50, Y: 70, Size: 20}).
		on(tileBL, detection.Blob{X: 0, Y: 70, Size: 20})
}

// whiteSheet returns a white w x h image
func whiteSheet(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// fillRect paints r with value v
func fillRect(img *image.Gray, r image.Rectangle, v uint8) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[img.PixOffset(x, y)] = v
		}
	}
}

// drawPattern paints a signature into the fiducial strip at the bottom of img
func drawPattern(img *image.Gray, sig string) {
	b := img.Bounds()
	midX := b.Dx() / 2
	for k := 0; k < len(sig); k++ {
		left := b.Min.X + midX - 30 + 10*k
		r := image.Rect(left, b.Max.Y-10, left+10, b.Max.Y)
		if sig[k] == 'b' {
			fillRect(img, r, 0)
		} else {
			fillRect(img, r, 255)
		}
	}
}

// validSheet is a white sheet with the expected fiducial pattern
func validSheet() *image.Gray {
	img := whiteSheet(sheetW, sheetH)
	drawPattern(img, ExpectedPattern)
	return img
}

// rotateCounterClockwise undoes the clockwise sensor rotation
func rotateCounterClockwise(src *image.Gray) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetGray(y, w-1-x, src.GrayAt(x, y))
		}
	}
	return dst
}
