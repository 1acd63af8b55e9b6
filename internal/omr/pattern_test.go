package omr

import (
	"image"
	"testing"
)

func TestHasValidPattern(t *testing.T) {
	if !HasValidPattern(validSheet()) {
		sig, _ := PatternSignature(validSheet())
		t.Fatalf("expected valid pattern, signature %q", sig)
	}
}

func TestHasValidPattern_EverySingleFlip(t *testing.T) {
	for k := 0; k < len(ExpectedPattern); k++ {
		sig := []byte(ExpectedPattern)
		if sig[k] == 'w' {
			sig[k] = 'b'
		} else {
			sig[k] = 'w'
		}

		img := whiteSheet(sheetW, sheetH)
		drawPattern(img, string(sig))

		got, ok := PatternSignature(img)
		if !ok || got != string(sig) {
			t.Errorf("flip %d: signature got %q, want %q", k, got, sig)
		}
		if HasValidPattern(img) {
			t.Errorf("flip %d: %q should be rejected", k, sig)
		}
	}
}

func TestHasValidPattern_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name  string
		white uint8
		black uint8
		want  string
	}{
		{"128 is white", 128, 0, "wbwbwb"},
		{"127 is black", 127, 0, "bbbbbb"},
		{"127 and 128", 128, 127, "wbwbwb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewGray(image.Rect(0, 0, sheetW, sheetH))
			fillRect(img, img.Bounds(), tt.white)
			b := img.Bounds()
			for k := 1; k < len(ExpectedPattern); k += 2 {
				left := b.Dx()/2 - 30 + 10*k
				fillRect(img, image.Rect(left, b.Max.Y-10, left+10, b.Max.Y), tt.black)
			}

			got, ok := PatternSignature(img)
			if !ok || got != tt.want {
				t.Errorf("signature: got %q, want %q", got, tt.want)
			}
			if HasValidPattern(img) != (tt.want == ExpectedPattern) {
				t.Errorf("HasValidPattern disagrees with signature %q", got)
			}
		})
	}
}

func TestHasValidPattern_BlankAndInverted(t *testing.T) {
	if HasValidPattern(whiteSheet(sheetW, sheetH)) {
		t.Error("blank sheet should be rejected")
	}

	img := whiteSheet(sheetW, sheetH)
	drawPattern(img, "bwbwbw")
	if HasValidPattern(img) {
		t.Error("inverted pattern should be rejected")
	}
}

func TestHasValidPattern_MajorityRule(t *testing.T) {
	img := validSheet()
	midX := sheetW / 2

	// Half of a white square darkened: 50 white of 100 is not a majority.
	fillRect(img, image.Rect(midX-30, sheetH-10, midX-25, sheetH), 0)
	if sig, _ := PatternSignature(img); sig[0] != 'b' {
		t.Errorf("half-dark square: got %q, want 'b' first", sig)
	}

	// One column fewer darkened keeps it white.
	img = validSheet()
	fillRect(img, image.Rect(midX-30, sheetH-10, midX-26, sheetH), 0)
	if !HasValidPattern(img) {
		t.Error("square with 60% white should stay white")
	}
}

func TestHasValidPattern_TooSmall(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"narrow", 50, 100},
		{"short", 100, 9},
		{"empty", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if HasValidPattern(whiteSheet(tt.w, tt.h)) {
				t.Error("too-small image should be invalid")
			}
		})
	}
}

func TestHasValidPattern_SubImage(t *testing.T) {
	full := whiteSheet(200, 200)
	sub := full.SubImage(image.Rect(50, 30, 150, 170)).(*image.Gray)
	drawPattern(sub, ExpectedPattern)

	if !HasValidPattern(sub) {
		sig, _ := PatternSignature(sub)
		t.Errorf("pattern in sub-image not found, signature %q", sig)
	}
}

func TestPatternStrip(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		want   image.Rectangle
		ok     bool
	}{
		{"origin", image.Rect(0, 0, 100, 140), image.Rect(20, 130, 80, 140), true},
		{"offset", image.Rect(10, 5, 110, 145), image.Rect(30, 135, 90, 145), true},
		{"too narrow", image.Rect(0, 0, 50, 140), image.Rectangle{}, false},
		{"too short", image.Rect(0, 0, 100, 5), image.Rectangle{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PatternStrip(tt.bounds)
			if ok != tt.ok || got != tt.want {
				t.Errorf("got %v %v, want %v %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
