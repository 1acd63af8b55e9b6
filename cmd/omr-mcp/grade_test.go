package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/camera-omr/internal/detection"
	"github.com/ironsheep/camera-omr/internal/omr"
)

// cornerDetector reports one marker at the outer corner of each 50x70 tile
// of a 100x140 frame and nothing anywhere else
type cornerDetector struct{}

func (cornerDetector) Detect(img *image.Gray, _ detection.Params) ([]detection.Blob, error) {
	b := img.Bounds()
	if b.Dx() != 50 || b.Dy() != 70 {
		return nil, nil
	}
	return []detection.Blob{{X: float64(b.Min.X), Y: float64(b.Min.Y), Size: 20}}, nil
}

func writeFrame(t *testing.T, dir, name string, withPattern bool) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 100, 140))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	if withPattern {
		for k := 1; k < 6; k += 2 {
			left := 20 + 10*k
			for y := 130; y < 140; y++ {
				for x := left; x < left+10; x++ {
					img.Pix[img.PixOffset(x, y)] = 0
				}
			}
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create frame: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	return path
}

func testProcessor(t *testing.T) *omr.Processor {
	t.Helper()
	cfg, err := omr.NewConfig(omr.TemplateDimensions{Width: 100, Height: 140},
		[]omr.SectionSpec{{Name: "A", Width: 50, Height: 30, Rows: 3, AnswerKey: "ABC"}},
		omr.WithRotation(false))
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	p, err := omr.NewProcessor(cfg, cornerDetector{})
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	return p
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "notes.txt", "c.webp"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}
	single := filepath.Join(t.TempDir(), "frame.data")
	if err := os.WriteFile(single, nil, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := expandInputs([]string{single, dir})
	if err != nil {
		t.Fatalf("expandInputs failed: %v", err)
	}
	want := []string{
		single,
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.webp"),
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := expandInputs([]string{filepath.Join(dir, "missing.png")}); err == nil {
		t.Error("expected error for missing path")
	}
	if _, err := expandInputs([]string{t.TempDir()}); err == nil {
		t.Error("expected error for a directory without images")
	}
}

func TestGradeAll_Text(t *testing.T) {
	dir := t.TempDir()
	good := writeFrame(t, dir, "good.png", true)
	blank := writeFrame(t, dir, "blank.png", false)

	var out bytes.Buffer
	if err := gradeAll([]string{good, blank}, gradeOptions{proc: testProcessor(t)}, &out); err != nil {
		t.Fatalf("gradeAll failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2\n%s", len(lines), out.String())
	}
	if lines[0] != good+"\t0/3\t---" {
		t.Errorf("graded line: got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], blank+"\trejected (pattern)") {
		t.Errorf("rejected line: got %q", lines[1])
	}
}

func TestGradeAll_JSONAndDebugImages(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "debug")
	good := writeFrame(t, dir, "good.png", true)
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := gradeAll([]string{good, broken}, gradeOptions{
		proc:   testProcessor(t),
		debug:  omr.DebugOverlay,
		outDir: outDir,
		asJSON: true,
	}, &out)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("expected one failed frame, got %v", err)
	}

	dec := json.NewDecoder(&out)
	var recs []gradeRecord
	for dec.More() {
		var rec gradeRecord
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		recs = append(recs, rec)
	}
	if len(recs) != 2 {
		t.Fatalf("records: got %d, want 2", len(recs))
	}

	if recs[0].Rejected || recs[0].MaxScore != 3 || len(recs[0].Answers) != 1 {
		t.Errorf("graded record: %+v", recs[0])
	}
	if recs[0].DebugImage != filepath.Join(outDir, "good.png") {
		t.Errorf("debug image path: got %q", recs[0].DebugImage)
	}
	if _, err := os.Stat(recs[0].DebugImage); err != nil {
		t.Errorf("debug image not written: %v", err)
	}
	if recs[1].Error == "" {
		t.Error("broken frame should carry an error")
	}
}

func TestRunGrade_Usage(t *testing.T) {
	formPath := filepath.Join(t.TempDir(), "form.yaml")
	formYAML := "template: {width: 100, height: 140}\nsections:\n  - {left: 0, top: 0, width: 50, height: 30, answers: ABC}\n"
	if err := os.WriteFile(formPath, []byte(formYAML), 0644); err != nil {
		t.Fatal(err)
	}
	frame := writeFrame(t, t.TempDir(), "f.png", true)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing form", []string{frame}, "-form is required"},
		{"no images", []string{"-form", formPath}, "no images"},
		{"bad form path", []string{"-form", "/nonexistent.yaml", frame}, "form"},
		{"unknown detector", []string{"-form", formPath, "-detector", "magic", frame}, "magic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runGrade(tt.args, &out)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		rec  gradeRecord
		want string
	}{
		{gradeRecord{Path: "a.png", Score: 4, MaxScore: 7, Answers: []string{"ABD", "DEE-"}}, "a.png\t4/7\tABD DEE-"},
		{gradeRecord{Path: "b.png", Score: -1, Rejected: true, Reason: "corners", Detail: "missing"}, "b.png\trejected (corners): missing"},
		{gradeRecord{Path: "c.png", Error: "boom"}, "c.png\terror: boom"},
	}
	for _, tt := range tests {
		if got := formatRecord(tt.rec); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("OMR_TEST_VALUE", "gocv")
	if got := getEnv("OMR_TEST_VALUE", "simple"); got != "gocv" {
		t.Errorf("got %q, want gocv", got)
	}
	if got := getEnv("OMR_TEST_UNSET", "simple"); got != "simple" {
		t.Errorf("got %q, want simple", got)
	}
}
