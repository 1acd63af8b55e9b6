package imaging

import (
	"image"
	"testing"

	"github.com/disintegration/imaging"
)

func TestRotateClockwise(t *testing.T) {
	src := createGrayRamp(4, 3)
	out := RotateClockwise(src)

	if out.Bounds() != image.Rect(0, 0, 3, 4) {
		t.Fatalf("bounds: got %v, want 3x4", out.Bounds())
	}

	// Clockwise: dst(x, y) = src(y, H-1-x)
	for y := 0; y < 4; y++ {
		for x := 0; x < 3; x++ {
			want := src.GrayAt(y, 2-x)
			if got := out.GrayAt(x, y); got != want {
				t.Errorf("dst(%d,%d): got %d, want %d", x, y, got.Y, want.Y)
			}
		}
	}
}

func TestRotateClockwise_TopLeftMovesToTopRight(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 6, 4))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	src.Pix[0] = 0

	out := RotateClockwise(src)
	if out.GrayAt(3, 0).Y != 0 {
		t.Error("top-left pixel should land top-right after clockwise rotation")
	}
}

func TestRotateRoundTrip(t *testing.T) {
	src := createGrayRamp(7, 5)
	back := ToGray(imaging.Rotate90(RotateClockwise(src)))

	if back.Bounds() != src.Bounds() {
		t.Fatalf("bounds: got %v, want %v", back.Bounds(), src.Bounds())
	}
	for i := range src.Pix {
		if back.Pix[i] != src.Pix[i] {
			t.Fatalf("pixel %d differs after round trip", i)
		}
	}
}

func TestRotateClockwise_DoesNotModifyInput(t *testing.T) {
	src := createGrayRamp(5, 5)
	before := append([]uint8(nil), src.Pix...)
	_ = RotateClockwise(src)
	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatal("input frame was modified")
		}
	}
}
