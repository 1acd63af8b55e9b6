package form

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/camera-omr/internal/imaging"
	"github.com/ironsheep/camera-omr/internal/omr"
)

// Form is the on-disk description of an answer sheet layout
type Form struct {
	Name             string                 `yaml:"name,omitempty"`
	Template         omr.TemplateDimensions `yaml:"template"`
	Sections         []Section              `yaml:"sections"`
	Labels           []Label                `yaml:"labels,omitempty"`
	TieBreak         string                 `yaml:"tie_break,omitempty"`          // smallest | largest
	Rotate           *bool                  `yaml:"rotate,omitempty"`             // default true
	RejectDegenerate *bool                  `yaml:"reject_degenerate,omitempty"` // default true
	Parallel         bool                   `yaml:"parallel,omitempty"`
	Colors           *Colors                `yaml:"colors,omitempty"`
}

// Colors overrides the debug overlay palette with "#rrggbb" values. Empty
// fields keep the default colour.
type Colors struct {
	Correct   string `yaml:"correct,omitempty"`
	Incorrect string `yaml:"incorrect,omitempty"`
	Unkeyed   string `yaml:"unkeyed,omitempty"`
}

// palette resolves the overrides against the default palette
func (c *Colors) palette() (imaging.Palette, error) {
	correct, incorrect, unkeyed := imaging.DefaultCorrectHex, imaging.DefaultIncorrectHex, imaging.DefaultUnkeyedHex
	if c.Correct != "" {
		correct = c.Correct
	}
	if c.Incorrect != "" {
		incorrect = c.Incorrect
	}
	if c.Unkeyed != "" {
		unkeyed = c.Unkeyed
	}
	return imaging.ParsePalette(correct, incorrect, unkeyed)
}

// Section is one graded block of questions
type Section struct {
	Name    string `yaml:"name,omitempty"`
	Left    int    `yaml:"left"`
	Top     int    `yaml:"top"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Rows    int    `yaml:"rows,omitempty"` // defaults to len(answers)
	Answers string `yaml:"answers"`
}

// Label is a free-text field on the sheet, such as a candidate name box
type Label struct {
	Name   string `yaml:"name"`
	Left   int    `yaml:"left"`
	Top    int    `yaml:"top"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Rect returns the label rectangle in rectified-sheet coordinates
func (l Label) Rect() image.Rectangle {
	return image.Rect(l.Left, l.Top, l.Left+l.Width, l.Top+l.Height)
}

// Load reads a form from a YAML file
func Load(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a form from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Form, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f Form
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}
	return &f, nil
}

// Save writes a form to a YAML file
func Save(f *Form, path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode form: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write form: %w", err)
	}
	return nil
}

// Config validates the form and builds the grading configuration
func (f *Form) Config() (*omr.Config, error) {
	tb, err := omr.ParseTieBreak(f.TieBreak)
	if err != nil {
		return nil, err
	}

	opts := []omr.Option{
		omr.WithTieBreak(tb),
		omr.WithParallelSections(f.Parallel),
	}
	if f.Rotate != nil {
		opts = append(opts, omr.WithRotation(*f.Rotate))
	}
	if f.RejectDegenerate != nil {
		opts = append(opts, omr.WithDegenerateRejection(*f.RejectDegenerate))
	}
	if f.Colors != nil {
		p, err := f.Colors.palette()
		if err != nil {
			return nil, err
		}
		opts = append(opts, omr.WithPalette(p))
	}

	specs := make([]omr.SectionSpec, len(f.Sections))
	for i, s := range f.Sections {
		rows := s.Rows
		if rows == 0 {
			rows = len(s.Answers)
		}
		specs[i] = omr.SectionSpec{
			Name:      s.Name,
			Left:      s.Left,
			Top:       s.Top,
			Width:     s.Width,
			Height:    s.Height,
			Rows:      rows,
			AnswerKey: s.Answers,
		}
	}

	cfg, err := omr.NewConfig(f.Template, specs, opts...)
	if err != nil {
		return nil, err
	}

	bounds := f.Template.Rect()
	for i, l := range f.Labels {
		if l.Rect().Empty() || !l.Rect().In(bounds) {
			return nil, fmt.Errorf("label %d (%s): %w: %v not in %v",
				i, l.Name, omr.ErrSectionOutOfBounds, l.Rect(), bounds)
		}
	}
	return cfg, nil
}

// FromConfig describes a configuration as a form, e.g. to save a session
func FromConfig(cfg *omr.Config) *Form {
	rotate := cfg.Rotate()
	reject := cfg.RejectDegenerate()

	f := &Form{
		Template:         cfg.Dimensions(),
		TieBreak:         cfg.TieBreak().String(),
		Rotate:           &rotate,
		RejectDegenerate: &reject,
		Parallel:         cfg.ParallelSections(),
	}
	if p := cfg.Palette(); p != imaging.DefaultPalette() {
		f.Colors = &Colors{
			Correct:   imaging.Hex(p.Correct),
			Incorrect: imaging.Hex(p.Incorrect),
			Unkeyed:   imaging.Hex(p.Unkeyed),
		}
	}
	for _, s := range cfg.Sections() {
		f.Sections = append(f.Sections, Section{
			Name:    s.Name,
			Left:    s.Left,
			Top:     s.Top,
			Width:   s.Width,
			Height:  s.Height,
			Rows:    s.Rows,
			Answers: s.AnswerKey,
		})
	}
	return f
}
