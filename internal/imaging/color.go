package imaging

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Outcome classifies a selected mark for colouring.
type Outcome int

const (
	// OutcomeUnkeyed marks a selection with no expected answer to compare to.
	OutcomeUnkeyed Outcome = iota
	// OutcomeCorrect marks a selection matching the answer key.
	OutcomeCorrect
	// OutcomeIncorrect marks a selection that differs from the answer key.
	OutcomeIncorrect
)

// String returns the lower-case outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "unkeyed"
	}
}

// Palette holds the overlay colours per outcome.
//
// Colours are stored as go-colorful values so they can be blended and
// converted to hex for JSON reports without loss.
type Palette struct {
	Correct   colorful.Color
	Incorrect colorful.Color
	Unkeyed   colorful.Color
}

// Default palette colours in "#RRGGBB" form
const (
	DefaultCorrectHex   = "#2ecc71"
	DefaultIncorrectHex = "#e74c3c"
	DefaultUnkeyedHex   = "#3498db"
)

// DefaultPalette returns green for correct, red for incorrect and blue for
// selections without a key.
func DefaultPalette() Palette {
	p, err := ParsePalette(DefaultCorrectHex, DefaultIncorrectHex, DefaultUnkeyedHex)
	if err != nil {
		panic(err) // constants above are valid
	}
	return p
}

// ParsePalette builds a Palette from three hex colour strings like "#FF0000".
func ParsePalette(correctHex, incorrectHex, unkeyedHex string) (Palette, error) {
	var p Palette
	var err error

	if p.Correct, err = colorful.Hex(correctHex); err != nil {
		return Palette{}, fmt.Errorf("invalid correct colour %q: %w", correctHex, err)
	}
	if p.Incorrect, err = colorful.Hex(incorrectHex); err != nil {
		return Palette{}, fmt.Errorf("invalid incorrect colour %q: %w", incorrectHex, err)
	}
	if p.Unkeyed, err = colorful.Hex(unkeyedHex); err != nil {
		return Palette{}, fmt.Errorf("invalid unkeyed colour %q: %w", unkeyedHex, err)
	}
	return p, nil
}

// For returns the colour for an outcome as an opaque color.RGBA.
func (p Palette) For(o Outcome) color.RGBA {
	var c colorful.Color
	switch o {
	case OutcomeCorrect:
		c = p.Correct
	case OutcomeIncorrect:
		c = p.Incorrect
	default:
		c = p.Unkeyed
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Hex returns the "#rrggbb" form of any colour
func Hex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}
