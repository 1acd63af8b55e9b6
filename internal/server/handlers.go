package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/camera-omr/internal/form"
	"github.com/ironsheep/camera-omr/internal/imaging"
	"github.com/ironsheep/camera-omr/internal/ocr"
	"github.com/ironsheep/camera-omr/internal/omr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_process_frame").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Session configuration
	case "omr_set_template":
		return s.handleSetTemplate(args)
	case "omr_set_sections":
		return s.handleSetSections(args)
	case "omr_load_form":
		return s.handleLoadForm(args)
	case "omr_save_form":
		return s.handleSaveForm(args)
	case "omr_session":
		return s.current().summary(), nil

	// Frame processing
	case "omr_process_frame":
		return s.handleProcessFrame(args)
	case "omr_locate_corners":
		return s.handleLocateCorners(args)
	case "omr_check_pattern":
		return s.handleCheckPattern(args)
	case "omr_read_labels":
		return s.handleReadLabels(args)
	case "omr_clear_cache":
		return s.handleClearCache(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Session Handlers ===

type setTemplateArgs struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleSetTemplate(args json.RawMessage) (interface{}, error) {
	var a setTemplateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.updateSession(func(f *form.Form) error {
		f.Template = omr.TemplateDimensions{Width: a.Width, Height: a.Height}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess.summary(), nil
}

type sectionArgs struct {
	Name    string `json:"name,omitempty"`
	Left    int    `json:"left"`
	Top     int    `json:"top"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Rows    int    `json:"rows"`
	Answers string `json:"answers"`
}

type setSectionsArgs struct {
	Sections         []sectionArgs `json:"sections"`
	TieBreak         *string       `json:"tie_break"`
	Rotate           *bool         `json:"rotate"`
	RejectDegenerate *bool         `json:"reject_degenerate"`
	Parallel         *bool         `json:"parallel"`
}

func (s *Server) handleSetSections(args json.RawMessage) (interface{}, error) {
	var a setSectionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.updateSession(func(f *form.Form) error {
		if f.Template.Width == 0 && f.Template.Height == 0 {
			return errNoTemplate
		}
		f.Sections = make([]form.Section, len(a.Sections))
		for i, sec := range a.Sections {
			f.Sections[i] = form.Section(sec)
		}
		if a.TieBreak != nil {
			f.TieBreak = *a.TieBreak
		}
		if a.Rotate != nil {
			f.Rotate = a.Rotate
		}
		if a.RejectDegenerate != nil {
			f.RejectDegenerate = a.RejectDegenerate
		}
		if a.Parallel != nil {
			f.Parallel = *a.Parallel
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sess.summary(), nil
}

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoadForm(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := form.Load(a.Path)
	if err != nil {
		return nil, err
	}
	sess, err := s.replaceSession(f)
	if err != nil {
		return nil, err
	}
	return sess.summary(), nil
}

func (s *Server) handleSaveForm(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sess := s.current()
	if sess.cfg == nil {
		return nil, errNoTemplate
	}

	f := form.FromConfig(sess.cfg)
	f.Name = sess.form.Name
	f.Labels = sess.form.Labels
	if err := form.Save(f, a.Path); err != nil {
		return nil, err
	}
	return map[string]interface{}{"path": a.Path, "sections": len(f.Sections)}, nil
}

// === Frame Handlers ===

type processFrameArgs struct {
	Path       string  `json:"path"`
	DebugLevel int     `json:"debug_level"`
	Scale      float64 `json:"scale"`
}

// frameResponse is a FrameResult with the derived fields a host reads first
type frameResponse struct {
	Score int `json:"score"`
	*omr.FrameResult
	Answers []string             `json:"answers,omitempty"`
	Display *imaging.ImageResult `json:"display,omitempty"`
}

func (s *Server) handleProcessFrame(args json.RawMessage) (interface{}, error) {
	var a processFrameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	sess, err := s.processor()
	if err != nil {
		return nil, err
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := sess.proc.ProcessFrame(frame, omr.DebugLevel(a.DebugLevel))
	if err != nil {
		return nil, err
	}

	out := &frameResponse{Score: res.Score(), FrameResult: res}
	for _, sec := range res.Sections {
		out.Answers = append(out.Answers, sec.Answers())
	}
	if a.DebugLevel > 0 && res.Display != nil {
		out.Display, err = imaging.Encode(res.Display, a.Scale)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// align loads a frame and runs the geometric half of the pipeline. Only a
// template is required, sections may still be unset.
func (s *Server) align(path string) (*session, *omr.Alignment, error) {
	sess := s.current()
	if sess.cfg == nil {
		return nil, nil, errNoTemplate
	}
	frame, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}
	a, err := sess.proc.Align(frame)
	if err != nil {
		return nil, nil, err
	}
	return sess, a, nil
}

type locateCornersArgs struct {
	Path      string  `json:"path"`
	Tolerance float64 `json:"tolerance"`
}

type cornersResponse struct {
	Corners      omr.Corners              `json:"corners"`
	AllFound     bool                     `json:"all_found"`
	Missing      []string                 `json:"missing,omitempty"`
	Geometry     string                   `json:"geometry_error,omitempty"`
	Area         float64                  `json:"area"`
	FrameWidth   int                      `json:"frame_width"`
	FrameHeight  int                      `json:"frame_height"`
	TopEdge      *imaging.AlignmentResult `json:"top_edge"`
	LeftEdge     *imaging.AlignmentResult `json:"left_edge"`
	TopEdgeAngle float64                  `json:"top_edge_angle"`
}

func (s *Server) handleLocateCorners(args json.RawMessage) (interface{}, error) {
	var a locateCornersArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Tolerance == 0 {
		a.Tolerance = 5
	}
	_, al, err := s.align(a.Path)
	if err != nil {
		return nil, err
	}

	c := al.Corners
	p := c.Points
	out := &cornersResponse{
		Corners:      c,
		AllFound:     c.AllFound(),
		Area:         imaging.QuadArea(p),
		FrameWidth:   al.Oriented.Bounds().Dx(),
		FrameHeight:  al.Oriented.Bounds().Dy(),
		TopEdge:      imaging.CheckAlignment([]imaging.Point{p[omr.TopLeft], p[omr.TopRight]}, a.Tolerance),
		LeftEdge:     imaging.CheckAlignment([]imaging.Point{p[omr.TopLeft], p[omr.BottomLeft]}, a.Tolerance),
		TopEdgeAngle: imaging.Angle(p[omr.TopLeft], p[omr.TopRight]),
	}
	for _, m := range c.Missing() {
		out.Missing = append(out.Missing, m.String())
	}
	if al.Geometry != nil {
		out.Geometry = al.Geometry.Error()
	}
	return out, nil
}

type checkPatternArgs struct {
	Path         string  `json:"path"`
	IncludeImage bool    `json:"include_image"`
	Scale        float64 `json:"scale"`
}

type patternResponse struct {
	Valid     bool                 `json:"valid"`
	Signature string               `json:"signature"`
	Expected  string               `json:"expected"`
	Rectified *imaging.ImageResult `json:"rectified,omitempty"`
	Strip     *imaging.ImageResult `json:"strip,omitempty"`
}

func (s *Server) handleCheckPattern(args json.RawMessage) (interface{}, error) {
	var a checkPatternArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	_, al, err := s.align(a.Path)
	if err != nil {
		return nil, err
	}
	if al.Rectified == nil {
		return nil, fmt.Errorf("frame not rectified: %w", al.Geometry)
	}

	sig, _ := omr.PatternSignature(al.Rectified)
	out := &patternResponse{
		Valid:     omr.HasValidPattern(al.Rectified),
		Signature: sig,
		Expected:  omr.ExpectedPattern,
	}
	if a.IncludeImage {
		out.Rectified, err = imaging.Encode(al.Rectified, a.Scale)
		if err != nil {
			return nil, err
		}
		if r, ok := omr.PatternStrip(al.Rectified.Bounds()); ok {
			strip, err := imaging.Crop(al.Rectified, r, a.Scale)
			if err != nil {
				return nil, err
			}
			if out.Strip, err = imaging.Encode(strip, 1); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

type readLabelsArgs struct {
	Path     string `json:"path"`
	Language string `json:"language"`
}

func (s *Server) handleReadLabels(args json.RawMessage) (interface{}, error) {
	var a readLabelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = ocr.DefaultLanguage
	}
	sess, al, err := s.align(a.Path)
	if err != nil {
		return nil, err
	}
	if len(sess.form.Labels) == 0 {
		return nil, errors.New("the active form defines no labels")
	}
	if al.Rectified == nil {
		return nil, fmt.Errorf("frame not rectified: %w", al.Geometry)
	}

	regions := make([]ocr.Region, len(sess.form.Labels))
	for i, l := range sess.form.Labels {
		regions[i] = ocr.Region{Name: l.Name, Rect: l.Rect()}
	}

	rec, err := s.newRecognizer(a.Language)
	if err != nil {
		return nil, err
	}
	defer rec.Close()

	labels, err := ocr.ReadLabels(al.Rectified, regions, rec)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"labels": labels}, nil
}

type clearCacheArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleClearCache(args json.RawMessage) (interface{}, error) {
	var a clearCacheArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		s.cache.Clear()
	} else {
		s.cache.Evict(a.Path)
	}
	return map[string]interface{}{"cached": s.cache.Len()}, nil
}

// labelReader is an OCR engine that holds native resources
type labelReader interface {
	ocr.Recognizer
	Close() error
}

func newTesseractReader(language string) (labelReader, error) {
	t, err := ocr.NewTesseract(language)
	if err != nil {
		return nil, err
	}
	return t, nil
}
