package server

import (
	"errors"
	"fmt"

	"github.com/ironsheep/camera-omr/internal/form"
	"github.com/ironsheep/camera-omr/internal/ocr"
	"github.com/ironsheep/camera-omr/internal/omr"
)

var (
	errNoTemplate = errors.New("template not set; call omr_set_template or omr_load_form first")
	errNoSections = errors.New("no sections configured; call omr_set_sections or omr_load_form first")
)

// session is an immutable snapshot of the grading setup. Updates build a
// new session and swap it in, so frames in flight keep the one they started
// with.
type session struct {
	form *form.Form
	cfg  *omr.Config
	proc *omr.Processor
}

// sessionSummary describes the active configuration
type sessionSummary struct {
	Configured       bool                   `json:"configured"`
	Template         omr.TemplateDimensions `json:"template"`
	Sections         []omr.SectionSpec      `json:"sections"`
	Labels           []string               `json:"labels,omitempty"`
	TotalRows        int                    `json:"total_rows"`
	TieBreak         string                 `json:"tie_break,omitempty"`
	Rotate           bool                   `json:"rotate"`
	RejectDegenerate bool                   `json:"reject_degenerate"`
	Parallel         bool                   `json:"parallel"`
	OCRAvailable     bool                   `json:"ocr_available"`
	OCRVersion       string                 `json:"ocr_version,omitempty"`
}

func (s *session) summary() *sessionSummary {
	if s == nil || s.cfg == nil {
		return &sessionSummary{
			Sections:     []omr.SectionSpec{},
			OCRAvailable: ocr.Available(),
			OCRVersion:   ocr.Version(),
		}
	}
	out := &sessionSummary{
		Configured:       s.cfg.NumSections() > 0,
		Template:         s.cfg.Dimensions(),
		Sections:         s.cfg.Sections(),
		TotalRows:        s.cfg.TotalRows(),
		TieBreak:         s.cfg.TieBreak().String(),
		Rotate:           s.cfg.Rotate(),
		RejectDegenerate: s.cfg.RejectDegenerate(),
		Parallel:         s.cfg.ParallelSections(),
		OCRAvailable:     ocr.Available(),
		OCRVersion:       ocr.Version(),
	}
	for _, l := range s.form.Labels {
		out.Labels = append(out.Labels, l.Name)
	}
	return out
}

// current returns the active session snapshot
func (s *Server) current() *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

// processor returns the active processor, or an error when the session has
// no template or no sections yet
func (s *Server) processor() (*session, error) {
	sess := s.current()
	if sess.cfg == nil {
		return nil, errNoTemplate
	}
	if sess.cfg.NumSections() == 0 {
		return nil, errNoSections
	}
	return sess, nil
}

// updateSession applies edit to a copy of the current form, validates the
// result and swaps it in. The session is unchanged when validation fails.
func (s *Server) updateSession(edit func(f *form.Form) error) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &form.Form{}
	if s.sess.form != nil {
		copied := *s.sess.form
		copied.Sections = append([]form.Section(nil), s.sess.form.Sections...)
		copied.Labels = append([]form.Label(nil), s.sess.form.Labels...)
		next = &copied
	}
	if err := edit(next); err != nil {
		return nil, err
	}

	sess, err := s.buildSession(next)
	if err != nil {
		return nil, err
	}
	s.sess = sess
	return sess, nil
}

// replaceSession installs a complete form
func (s *Server) replaceSession(f *form.Form) (*session, error) {
	sess, err := s.buildSession(f)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *Server) buildSession(f *form.Form) (*session, error) {
	cfg, err := f.Config()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	proc, err := omr.NewProcessor(cfg, s.det)
	if err != nil {
		return nil, err
	}
	return &session{form: f, cfg: cfg, proc: proc}, nil
}
