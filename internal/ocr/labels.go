package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// minLabelHeight is the height shorter label crops are upscaled to
const minLabelHeight = 64

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Region is a named rectangle of the rectified sheet to read.
type Region struct {
	Name string
	Rect image.Rectangle
}

// LabelText is the recognized content of one region.
type LabelText struct {
	Name string `json:"name"`

	// Text is the recognized text with surrounding whitespace trimmed.
	Text string `json:"text"`

	// Confidence is the mean word confidence (0.0 to 1.0), 0 when no words
	// were found.
	Confidence float64 `json:"confidence"`

	// Bounds is the region in sheet coordinates.
	Bounds Bounds `json:"bounds"`
}

// Recognizer turns an encoded image into text and a confidence score.
type Recognizer interface {
	Recognize(pngData []byte) (text string, confidence float64, err error)
}

// ReadLabels crops each region from sheet and runs rec over it.
//
// Regions are read in order. A region outside the sheet is an error; an
// empty recognition result is not.
func ReadLabels(sheet image.Image, regions []Region, rec Recognizer) ([]LabelText, error) {
	out := make([]LabelText, 0, len(regions))
	for _, r := range regions {
		data, err := encodeRegion(sheet, r.Rect)
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", r.Name, err)
		}

		text, conf, err := rec.Recognize(data)
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", r.Name, err)
		}

		out = append(out, LabelText{
			Name:       r.Name,
			Text:       strings.TrimSpace(text),
			Confidence: conf,
			Bounds: Bounds{
				X1: r.Rect.Min.X,
				Y1: r.Rect.Min.Y,
				X2: r.Rect.Max.X,
				Y2: r.Rect.Max.Y,
			},
		})
	}
	return out, nil
}

// encodeRegion crops rect (relative to sheet.Bounds().Min), upscales short
// crops and encodes them as PNG
func encodeRegion(sheet image.Image, rect image.Rectangle) ([]byte, error) {
	b := sheet.Bounds()
	abs := rect.Add(b.Min)
	if rect.Empty() || !abs.In(b) {
		return nil, fmt.Errorf("region %v outside sheet %v", rect, image.Rect(0, 0, b.Dx(), b.Dy()))
	}

	var crop image.Image = imaging.Crop(sheet, abs)
	if rect.Dy() < minLabelHeight {
		crop = imaging.Resize(crop, 0, minLabelHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		return nil, fmt.Errorf("failed to encode region: %w", err)
	}
	return buf.Bytes(), nil
}
