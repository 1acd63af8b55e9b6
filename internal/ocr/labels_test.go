package ocr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// createSheet returns a white sheet with text drawn at each given baseline
func createSheet(width, height int, texts map[image.Point]string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for at, text := range texts {
		drawText(img, at.X, at.Y, text, color.Black)
	}
	return img
}

// fakeRecognizer records the decoded image sizes it was given
type fakeRecognizer struct {
	sizes []image.Point
	text  string
	err   error
}

func (f *fakeRecognizer) Recognize(data []byte) (string, float64, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", 0, err
	}
	f.sizes = append(f.sizes, img.Bounds().Size())
	if f.err != nil {
		return "", 0, f.err
	}
	return "  " + f.text + "\n", 0.9, nil
}

func TestReadLabels(t *testing.T) {
	sheet := createSheet(300, 200, nil)
	rec := &fakeRecognizer{text: "JANE DOE"}
	regions := []Region{
		{Name: "name", Rect: image.Rect(10, 10, 210, 90)},
		{Name: "id", Rect: image.Rect(10, 100, 110, 116)},
	}

	labels, err := ReadLabels(sheet, regions, rec)
	if err != nil {
		t.Fatalf("ReadLabels failed: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("labels: got %d, want 2", len(labels))
	}
	if labels[0].Name != "name" || labels[0].Text != "JANE DOE" {
		t.Errorf("first label: got %+v", labels[0])
	}
	if labels[1].Bounds != (Bounds{X1: 10, Y1: 100, X2: 110, Y2: 116}) {
		t.Errorf("bounds: got %+v", labels[1].Bounds)
	}

	// Tall regions are passed through, short ones upscaled.
	if rec.sizes[0] != image.Pt(200, 80) {
		t.Errorf("first crop: got %v, want 200x80", rec.sizes[0])
	}
	if rec.sizes[1].Y != minLabelHeight {
		t.Errorf("short crop height: got %d, want %d", rec.sizes[1].Y, minLabelHeight)
	}
	if rec.sizes[1].X != 400 {
		t.Errorf("short crop width should keep aspect ratio, got %d", rec.sizes[1].X)
	}
}

func TestReadLabels_Errors(t *testing.T) {
	sheet := createSheet(100, 100, nil)

	_, err := ReadLabels(sheet, []Region{{Name: "off", Rect: image.Rect(50, 50, 150, 80)}}, &fakeRecognizer{})
	if err == nil {
		t.Error("expected error for region outside sheet")
	}

	_, err = ReadLabels(sheet, []Region{{Name: "empty", Rect: image.Rect(10, 10, 10, 20)}}, &fakeRecognizer{})
	if err == nil {
		t.Error("expected error for empty region")
	}

	boom := errors.New("engine failure")
	_, err = ReadLabels(sheet, []Region{{Name: "x", Rect: image.Rect(0, 0, 50, 50)}}, &fakeRecognizer{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("expected recognizer error, got %v", err)
	}
}

func TestEncodeRegion_SubImageSheet(t *testing.T) {
	full := createSheet(200, 200, nil)
	sheet := full.SubImage(image.Rect(100, 100, 200, 200))

	data, err := encodeRegion(sheet, image.Rect(0, 0, 100, 100))
	if err != nil {
		t.Fatalf("encodeRegion failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if img.Bounds().Dx() != 100 {
		t.Errorf("width: got %d", img.Bounds().Dx())
	}

	if _, err := encodeRegion(sheet, image.Rect(50, 50, 101, 60)); err == nil {
		t.Error("region relative to sub-image origin should be bounds-checked")
	}
}
