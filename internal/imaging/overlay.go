package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Mark is a selected answer mark to draw on an overlay.
// X, Y and Size are in the coordinates of the base image passed to MarkOverlay.
type Mark struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Label   string  `json:"label,omitempty"`
	Outcome Outcome `json:"outcome"`
}

// minRingRadius keeps tiny marks visible on the overlay
const minRingRadius = 3.0

// MarkOverlay draws a ring around each mark and its label beside it.
//
// Parameters:
//   - base: The image the marks were detected on. Any origin is accepted;
//     mark coordinates are relative to base.Bounds().Min.
//   - marks: Marks to draw. Ring radius is Size/2 and colour follows Outcome.
//   - scale: Output scale factor. Values <= 0 are treated as 1.
//   - palette: Ring and label colour per outcome.
//
// Returns a new RGBA image with origin (0,0); base is not modified.
func MarkOverlay(base image.Image, marks []Mark, scale float64, palette Palette) (*image.RGBA, error) {
	if scale <= 0 {
		scale = 1
	}
	b := base.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("cannot draw overlay on empty image")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), base, b.Min, draw.Src)

	var src image.Image = canvas
	if scale != 1 {
		w := int(math.Round(float64(b.Dx()) * scale))
		h := int(math.Round(float64(b.Dy()) * scale))
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %.3f too small for %dx%d image", scale, b.Dx(), b.Dy())
		}
		src = imaging.Resize(canvas, w, h, imaging.Linear)
	}

	dc := gg.NewContextForImage(src)
	defer dc.Close()

	dc.SetLineWidth(2)
	for _, m := range marks {
		r := math.Max(m.Size/2*scale, minRingRadius)
		dc.SetColor(palette.For(m.Outcome))
		dc.DrawCircle(m.X*scale, m.Y*scale, r)
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("failed to draw mark ring: %w", err)
		}
	}

	rendered := dc.Image()
	out := image.NewRGBA(image.Rect(0, 0, rendered.Bounds().Dx(), rendered.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), rendered, rendered.Bounds().Min, draw.Src)

	for _, m := range marks {
		if m.Label == "" {
			continue
		}
		r := math.Max(m.Size/2*scale, minRingRadius)
		drawLabel(out, int(m.X*scale+r)+2, int(m.Y*scale)+4, m.Label, palette.For(m.Outcome))
	}

	return out, nil
}

// drawLabel renders text with its baseline at (x, y) using the 7x13 bitmap face
func drawLabel(img *image.RGBA, x, y int, text string, fg color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
