package imaging

import (
	"image/color"
	"testing"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()

	tests := []struct {
		outcome Outcome
		wantHex string
	}{
		{OutcomeCorrect, DefaultCorrectHex},
		{OutcomeIncorrect, DefaultIncorrectHex},
		{OutcomeUnkeyed, DefaultUnkeyedHex},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			got := p.For(tt.outcome)
			if got.A != 255 {
				t.Errorf("alpha: got %d, want 255", got.A)
			}
			if hex := Hex(got); hex != tt.wantHex {
				t.Errorf("hex: got %s, want %s", hex, tt.wantHex)
			}
		})
	}
}

func TestParsePalette_Invalid(t *testing.T) {
	if _, err := ParsePalette("#00ff00", "red", "#0000ff"); err == nil {
		t.Error("expected error for non-hex colour")
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeCorrect.String() != "correct" || OutcomeIncorrect.String() != "incorrect" || OutcomeUnkeyed.String() != "unkeyed" {
		t.Error("unexpected outcome names")
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		c    color.Color
		want string
	}{
		{color.Gray{Y: 255}, "#ffffff"},
		{color.RGBA{R: 255, A: 255}, "#ff0000"},
		{color.Transparent, "#000000"},
	}
	for _, tt := range tests {
		if got := Hex(tt.c); got != tt.want {
			t.Errorf("Hex(%v): got %s, want %s", tt.c, got, tt.want)
		}
	}
}
