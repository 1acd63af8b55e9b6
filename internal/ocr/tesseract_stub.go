//go:build !ocr

package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR is requested but support was not
// compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Tesseract is unavailable in this build.
type Tesseract struct{}

// NewTesseract returns ErrOCRNotEnabled.
func NewTesseract(language string) (*Tesseract, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op.
func (t *Tesseract) Close() error { return nil }

// Recognize returns ErrOCRNotEnabled.
func (t *Tesseract) Recognize(pngData []byte) (string, float64, error) {
	return "", 0, ErrOCRNotEnabled
}

// Available reports whether OCR support is compiled in.
func Available() bool { return false }

// Version returns an empty string.
func Version() string { return "" }
