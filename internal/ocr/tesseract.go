//go:build ocr

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes label text with the Tesseract engine.
// A Tesseract holds one engine handle and is not safe for concurrent use.
type Tesseract struct {
	client *gosseract.Client
}

// NewTesseract creates a recognizer for language (e.g. "eng", "eng+fra").
// The recognizer should be closed when no longer needed.
func NewTesseract(language string) (*Tesseract, error) {
	if language == "" {
		language = DefaultLanguage
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	// Labels are short single blocks of text.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	return &Tesseract{client: client}, nil
}

// Close releases OCR resources.
func (t *Tesseract) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}

// Recognize performs OCR on PNG data.
//
// Confidence is the mean of Tesseract's word confidences scaled to 0..1. If
// word boxes cannot be extracted the text is still returned with confidence 0.
func (t *Tesseract) Recognize(pngData []byte) (string, float64, error) {
	if err := t.client.SetImageFromBytes(pngData); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return text, 0, nil
	}

	var sum float64
	n := 0
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		sum += float64(box.Confidence)
		n++
	}
	if n == 0 {
		return text, 0, nil
	}
	return text, sum / float64(n) / 100.0, nil
}

// Available reports whether OCR support is compiled in.
func Available() bool { return true }

// Version returns the Tesseract library version.
func Version() string { return gosseract.Version() }
