package omr

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/camera-omr/internal/detection"
	"github.com/ironsheep/camera-omr/internal/imaging"
)

// RejectedScore is the score reported for a rejected frame. Hosts should ask
// for a new capture rather than treat it as a grade.
const RejectedScore = -1

// DebugLevel selects what FrameResult.Display holds.
type DebugLevel int

const (
	// DebugOff returns the rectified sheet as Display.
	DebugOff DebugLevel = 0
	// DebugRectified is an alias of DebugOff kept for host compatibility.
	DebugRectified DebugLevel = 1
	// DebugOverlay returns the last section with its selected marks drawn.
	DebugOverlay DebugLevel = 2
)

// RejectReason explains why a frame was not graded.
type RejectReason string

const (
	ReasonNone    RejectReason = ""
	ReasonCorners RejectReason = "corners"
	ReasonPattern RejectReason = "pattern"
)

// FrameResult is the outcome of processing one camera frame.
type FrameResult struct {
	TotalScore int             `json:"total_score"`
	MaxScore   int             `json:"max_score"`
	Rejected   bool            `json:"rejected"`
	Reason     RejectReason    `json:"reason,omitempty"`
	Detail     string          `json:"detail,omitempty"`
	Corners    Corners         `json:"corners"`
	Sections   []SectionResult `json:"sections,omitempty"`

	// Rectified is the warped sheet, nil when corners were rejected.
	Rectified *image.Gray `json:"-"`
	// Display is the image a preview should show, chosen by debug level.
	Display image.Image `json:"-"`
}

// Score returns TotalScore, or RejectedScore when the frame was rejected.
func (r *FrameResult) Score() int {
	if r.Rejected {
		return RejectedScore
	}
	return r.TotalScore
}

// Alignment is the geometric front half of the pipeline.
type Alignment struct {
	Oriented  *image.Gray // frame after the optional rotation
	Corners   Corners
	Geometry  error       // CheckCorners result, nil when usable
	Rectified *image.Gray // nil when Geometry is set and rejection is on
}

// Processor grades frames against a fixed Config.
//
// A Processor is read-only after construction and safe for concurrent
// ProcessFrame calls provided its Detector is.
type Processor struct {
	cfg *Config
	det detection.Detector
}

// NewProcessor binds a configuration to a detector.
func NewProcessor(cfg *Config, det detection.Detector) (*Processor, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if det == nil {
		return nil, errors.New("detector is required")
	}
	return &Processor{cfg: cfg, det: det}, nil
}

// Config returns the processor's configuration.
func (p *Processor) Config() *Config { return p.cfg }

// Align rotates the frame when configured, locates the corner markers and
// rectifies the sheet to the template size.
func (p *Processor) Align(frame *image.Gray) (*Alignment, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, errors.New("empty frame")
	}

	oriented := frame
	if p.cfg.Rotate() {
		oriented = imaging.RotateClockwise(frame)
	}

	corners, err := LocateCorners(oriented, p.det)
	if err != nil {
		return nil, err
	}

	a := &Alignment{
		Oriented: oriented,
		Corners:  corners,
		Geometry: CheckCorners(corners, DefaultMinCornerArea),
	}
	if a.Geometry != nil && p.cfg.RejectDegenerate() {
		return a, nil
	}
	a.Rectified = Rectify(oriented, corners, p.cfg.Dimensions())
	return a, nil
}

// ProcessFrame runs the full pipeline on one grayscale frame.
//
// # Pipeline
//
//  1. Rotate 90° clockwise when the config asks for it.
//  2. Locate the corner markers and rectify to the template size. Missing
//     or degenerate corners reject the frame with ReasonCorners when the
//     config enables degenerate rejection.
//  3. Check the fiducial pattern. A mismatch rejects with ReasonPattern and
//     no section is graded.
//  4. Grade every section on its sub-rectangle and sum the scores.
//
// Rejections are results, not errors. Errors are only returned for empty
// frames and detector failures.
func (p *Processor) ProcessFrame(frame *image.Gray, debug DebugLevel) (*FrameResult, error) {
	a, err := p.Align(frame)
	if err != nil {
		return nil, err
	}

	result := &FrameResult{
		Corners:   a.Corners,
		Rectified: a.Rectified,
		MaxScore:  p.cfg.TotalRows(),
	}

	if a.Rectified == nil {
		result.Rejected = true
		result.Reason = ReasonCorners
		result.Detail = a.Geometry.Error()
		result.Display = a.Oriented
		Logger().Info("frame rejected", "reason", result.Reason, "detail", result.Detail)
		return result, nil
	}
	result.Display = a.Rectified

	if !HasValidPattern(a.Rectified) {
		sig, _ := PatternSignature(a.Rectified)
		result.Rejected = true
		result.Reason = ReasonPattern
		result.Detail = fmt.Sprintf("signature %q, want %q", sig, ExpectedPattern)
		Logger().Info("frame rejected", "reason", result.Reason, "signature", sig)
		return result, nil
	}

	sections, err := p.gradeSections(a.Rectified)
	if err != nil {
		return nil, err
	}
	result.Sections = sections
	for _, s := range sections {
		result.TotalScore += s.Score
	}

	if debug >= DebugOverlay && len(sections) > 0 {
		overlay, err := p.sectionOverlay(a.Rectified, sections[len(sections)-1])
		if err != nil {
			return nil, err
		}
		result.Display = overlay
	}

	Logger().Debug("frame graded", "score", result.TotalScore, "max", result.MaxScore)
	return result, nil
}

// gradeSections grades every section, in parallel when configured. Results
// are stored by index so the order and the sum never depend on scheduling.
func (p *Processor) gradeSections(rectified *image.Gray) ([]SectionResult, error) {
	n := p.cfg.NumSections()
	results := make([]SectionResult, n)

	grade := func(i int) error {
		spec := p.cfg.Section(i)
		sub, err := imaging.CropGray(rectified, spec.Rect())
		if err != nil {
			return fmt.Errorf("%s: %w", spec.label(i), err)
		}
		r, err := GradeSection(sub, spec, p.det, p.cfg.TieBreak())
		if err != nil {
			return fmt.Errorf("failed to grade %s: %w", spec.label(i), err)
		}
		r.Index = i
		results[i] = r
		return nil
	}

	if !p.cfg.ParallelSections() {
		for i := 0; i < n; i++ {
			if err := grade(i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error { return grade(i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// sectionOverlay draws the selected marks of one section on its sub-image
func (p *Processor) sectionOverlay(rectified *image.Gray, s SectionResult) (image.Image, error) {
	spec := p.cfg.Section(s.Index)
	sub, err := imaging.CropGray(rectified, spec.Rect())
	if err != nil {
		return nil, err
	}

	marks := make([]imaging.Mark, 0, len(s.Rows))
	for _, row := range s.Rows {
		if row.Mark == nil {
			continue
		}
		outcome := imaging.OutcomeIncorrect
		if row.Correct {
			outcome = imaging.OutcomeCorrect
		}
		marks = append(marks, imaging.Mark{
			X:       row.Mark.X,
			Y:       row.Mark.Y,
			Size:    row.Mark.Size,
			Label:   row.Letter,
			Outcome: outcome,
		})
	}

	out, err := imaging.MarkOverlay(sub, marks, 1, p.cfg.Palette())
	if err != nil {
		return nil, fmt.Errorf("failed to render overlay: %w", err)
	}
	return out, nil
}
