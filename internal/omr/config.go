package omr

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/camera-omr/internal/imaging"
)

// NumOptions is the number of lettered answer options per row, 'A'..'E'.
const NumOptions = 5

// Configuration errors returned by NewConfig. Section errors are wrapped
// with the offending section's index and name; test with errors.Is.
var (
	ErrInvalidDimensions   = errors.New("template dimensions must be positive")
	ErrSectionOutOfBounds  = errors.New("section lies outside the template")
	ErrAnswerKeyLength     = errors.New("answer key length does not match row count")
	ErrInvalidAnswerLetter = errors.New("answer key letters must be A-E")
	ErrSectionTooSmall     = errors.New("section too small for its rows and options")
)

// TemplateDimensions is the canonical size of the rectified sheet.
type TemplateDimensions struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect returns the template rectangle anchored at the origin.
func (d TemplateDimensions) Rect() image.Rectangle {
	return image.Rect(0, 0, d.Width, d.Height)
}

// SectionSpec is one graded region of the rectified sheet.
type SectionSpec struct {
	Name      string `json:"name,omitempty"`
	Left      int    `json:"left"`
	Top       int    `json:"top"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Rows      int    `json:"rows"`
	AnswerKey string `json:"answer_key"`
}

// Rect returns the section rectangle in rectified-sheet coordinates.
func (s SectionSpec) Rect() image.Rectangle {
	return image.Rect(s.Left, s.Top, s.Left+s.Width, s.Top+s.Height)
}

// label names a section in errors and logs
func (s SectionSpec) label(i int) string {
	if s.Name != "" {
		return fmt.Sprintf("section %d (%s)", i, s.Name)
	}
	return fmt.Sprintf("section %d", i)
}

// TieBreak selects which mark wins when several fall in one row.
type TieBreak int

const (
	// TieBreakSmallest picks the smallest mark in the row.
	TieBreakSmallest TieBreak = iota
	// TieBreakLargest picks the largest mark in the row.
	TieBreakLargest
)

// String returns the policy name used in form files.
func (t TieBreak) String() string {
	if t == TieBreakLargest {
		return "largest"
	}
	return "smallest"
}

// ParseTieBreak parses "smallest" or "largest". Empty selects smallest.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "smallest":
		return TieBreakSmallest, nil
	case "largest":
		return TieBreakLargest, nil
	default:
		return TieBreakSmallest, fmt.Errorf("unknown tie break %q (want smallest or largest)", s)
	}
}

// Config is a validated, immutable grading configuration.
//
// Build it with NewConfig; the zero value is not usable. A Config is never
// modified after construction and may be shared between goroutines.
type Config struct {
	dims             TemplateDimensions
	sections         []SectionSpec
	tieBreak         TieBreak
	rotate           bool
	rejectDegenerate bool
	parallel         bool
	palette          imaging.Palette
}

// Option customises a Config at construction time.
type Option func(*Config)

// WithTieBreak sets the per-row mark selection policy.
func WithTieBreak(t TieBreak) Option {
	return func(c *Config) { c.tieBreak = t }
}

// WithRotation enables or disables the 90° clockwise sensor rotation.
func WithRotation(on bool) Option {
	return func(c *Config) { c.rotate = on }
}

// WithDegenerateRejection controls whether frames whose corner markers are
// missing or do not form a convex quadrilateral are rejected before
// rectification.
func WithDegenerateRejection(on bool) Option {
	return func(c *Config) { c.rejectDegenerate = on }
}

// WithParallelSections grades sections concurrently.
func WithParallelSections(on bool) Option {
	return func(c *Config) { c.parallel = on }
}

// WithPalette sets the debug overlay colours.
func WithPalette(p imaging.Palette) Option {
	return func(c *Config) { c.palette = p }
}

// NewConfig validates dims and sections and returns an immutable Config.
//
// Rotation and degenerate-corner rejection default to on, tie break to
// smallest, parallel grading to off.
//
// # Errors
//
//   - ErrInvalidDimensions: width or height not positive
//   - ErrSectionTooSmall: rows < 1, width < 5 or height < rows
//   - ErrSectionOutOfBounds: section not inside the template rectangle
//   - ErrAnswerKeyLength: len(answer key) != rows
//   - ErrInvalidAnswerLetter: answer key contains anything but A-E
func NewConfig(dims TemplateDimensions, sections []SectionSpec, opts ...Option) (*Config, error) {
	if dims.Width <= 0 || dims.Height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, dims.Width, dims.Height)
	}

	owned := make([]SectionSpec, len(sections))
	copy(owned, sections)

	bounds := dims.Rect()
	for i, s := range owned {
		s.AnswerKey = strings.ToUpper(s.AnswerKey)
		owned[i] = s

		if s.Rows < 1 || s.Width < NumOptions || s.Height < s.Rows {
			return nil, fmt.Errorf("%s: %w: %dx%d with %d rows",
				s.label(i), ErrSectionTooSmall, s.Width, s.Height, s.Rows)
		}
		if !s.Rect().In(bounds) {
			return nil, fmt.Errorf("%s: %w: %v not in %v",
				s.label(i), ErrSectionOutOfBounds, s.Rect(), bounds)
		}
		if len(s.AnswerKey) != s.Rows {
			return nil, fmt.Errorf("%s: %w: %d letters for %d rows",
				s.label(i), ErrAnswerKeyLength, len(s.AnswerKey), s.Rows)
		}
		for j := 0; j < len(s.AnswerKey); j++ {
			if s.AnswerKey[j] < 'A' || s.AnswerKey[j] >= 'A'+NumOptions {
				return nil, fmt.Errorf("%s: %w: %q at row %d",
					s.label(i), ErrInvalidAnswerLetter, s.AnswerKey[j], j)
			}
		}
	}

	cfg := &Config{
		dims:             dims,
		sections:         owned,
		tieBreak:         TieBreakSmallest,
		rotate:           true,
		rejectDegenerate: true,
		palette:          imaging.DefaultPalette(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

// Dimensions returns the rectified template size.
func (c *Config) Dimensions() TemplateDimensions { return c.dims }

// Sections returns a copy of the configured sections in order.
func (c *Config) Sections() []SectionSpec {
	out := make([]SectionSpec, len(c.sections))
	copy(out, c.sections)
	return out
}

// NumSections returns the number of configured sections.
func (c *Config) NumSections() int { return len(c.sections) }

// Section returns section i.
func (c *Config) Section(i int) SectionSpec { return c.sections[i] }

// TotalRows returns the maximum achievable score.
func (c *Config) TotalRows() int {
	n := 0
	for _, s := range c.sections {
		n += s.Rows
	}
	return n
}

// TieBreak returns the row mark selection policy.
func (c *Config) TieBreak() TieBreak { return c.tieBreak }

// Rotate reports whether frames are rotated 90° clockwise before processing.
func (c *Config) Rotate() bool { return c.rotate }

// RejectDegenerate reports whether degenerate corner sets reject the frame.
func (c *Config) RejectDegenerate() bool { return c.rejectDegenerate }

// Palette returns the debug overlay colours.
func (c *Config) Palette() imaging.Palette { return c.palette }

// ParallelSections reports whether sections are graded concurrently.
func (c *Config) ParallelSections() bool { return c.parallel }
