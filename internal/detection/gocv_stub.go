//go:build !gocv

package detection

import "errors"

// ErrGoCVNotEnabled is returned when the OpenCV backend is requested but was
// not compiled in. Rebuild with -tags gocv to enable it.
var ErrGoCVNotEnabled = errors.New("gocv detector not enabled; rebuild with -tags gocv")

func newGoCVDetector() (Detector, error) {
	return nil, ErrGoCVNotEnabled
}
