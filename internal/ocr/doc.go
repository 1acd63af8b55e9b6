// Package ocr reads free-text label regions, such as a candidate name or
// student ID box, from a rectified answer sheet.
//
// ReadLabels crops each region, upscales short crops, and hands the PNG to a
// Recognizer. The Tesseract recognizer wraps the Tesseract engine via
// gosseract/v2 and is only compiled with the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// Without the tag NewTesseract returns ErrOCRNotEnabled and Available reports
// false, so hosts can degrade gracefully.
//
// # Prerequisites
//
// With the ocr tag, Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Coordinates
//
// Region rectangles are relative to the sheet's Bounds().Min. Returned Bounds
// echo the region in sheet coordinates.
package ocr
