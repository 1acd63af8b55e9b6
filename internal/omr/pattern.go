package omr

import (
	"image"
	"strings"
)

const (
	// ExpectedPattern is the fiducial signature printed along the bottom edge.
	ExpectedPattern = "wbwbwb"

	patternSquare    = 10  // side of each sampled square
	patternOffset    = -30 // left edge of the first square relative to midX
	patternThreshold = 127 // pixels above are white
)

// PatternSignature samples the fiducial strip and returns its signature,
// one 'w' or 'b' per square. ok is false when the image is too small to
// hold the strip.
//
// Six 10x10 squares are read with left edges at midX-30 .. midX+20 in steps
// of 10 and top edge H-10. A square is 'w' when more than half of its pixels
// are brighter than 127.
func PatternSignature(img *image.Gray) (sig string, ok bool) {
	r, ok := PatternStrip(img.Bounds())
	if !ok {
		return "", false
	}
	n := len(ExpectedPattern)

	var sb strings.Builder
	half := patternSquare * patternSquare / 2
	for k := 0; k < n; k++ {
		white := 0
		for y := 0; y < patternSquare; y++ {
			for x := k * patternSquare; x < (k+1)*patternSquare; x++ {
				if img.Pix[img.PixOffset(r.Min.X+x, r.Min.Y+y)] > patternThreshold {
					white++
				}
			}
		}
		if white > half {
			sb.WriteByte('w')
		} else {
			sb.WriteByte('b')
		}
	}
	return sb.String(), true
}

// PatternStrip returns the rectangle of bounds covered by the fiducial
// squares. ok is false when the strip does not fit.
func PatternStrip(bounds image.Rectangle) (r image.Rectangle, ok bool) {
	w, h := bounds.Dx(), bounds.Dy()
	left := w/2 + patternOffset
	right := left + len(ExpectedPattern)*patternSquare
	top := h - patternSquare
	if left < 0 || right > w || top < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(left, top, right, h).Add(bounds.Min), true
}

// HasValidPattern reports whether the rectified sheet carries the expected
// fiducial signature. Images too small to hold the strip are invalid.
func HasValidPattern(img *image.Gray) bool {
	sig, ok := PatternSignature(img)
	return ok && sig == ExpectedPattern
}
