package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/camera-omr/internal/detection"
	"github.com/ironsheep/camera-omr/internal/form"
	"github.com/ironsheep/camera-omr/internal/imaging"
	"github.com/ironsheep/camera-omr/internal/omr"
)

// imageExts are the file types picked up when a directory is given
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

type gradeOptions struct {
	proc   *omr.Processor
	debug  omr.DebugLevel
	outDir string
	asJSON bool
}

// gradeRecord is one line of -json output
type gradeRecord struct {
	Path       string   `json:"path"`
	Score      int      `json:"score"`
	MaxScore   int      `json:"max_score"`
	Rejected   bool     `json:"rejected"`
	Reason     string   `json:"reason,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Answers    []string `json:"answers,omitempty"`
	DebugImage string   `json:"debug_image,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// runGrade implements the grade subcommand
func runGrade(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("grade", flag.ContinueOnError)
	formPath := fs.String("form", "", "form file describing the sheet")
	debug := fs.Int("debug", 0, "debug image level (0, 1, 2)")
	outDir := fs.String("out", "", "directory for debug images")
	parallel := fs.Bool("parallel", false, "grade sections concurrently")
	detName := fs.String("detector", getEnv("OMR_DETECTOR", "simple"), "blob detector (simple, gocv)")
	asJSON := fs.Bool("json", false, "print one JSON object per frame")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *formPath == "" {
		return errors.New("-form is required")
	}
	if fs.NArg() == 0 {
		return errors.New("no images given")
	}

	f, err := form.Load(*formPath)
	if err != nil {
		return err
	}
	if *parallel {
		f.Parallel = true
	}
	cfg, err := f.Config()
	if err != nil {
		return fmt.Errorf("%s: %w", *formPath, err)
	}

	det, err := detection.NewDetector(*detName)
	if err != nil {
		return err
	}
	proc, err := omr.NewProcessor(cfg, det)
	if err != nil {
		return err
	}

	paths, err := expandInputs(fs.Args())
	if err != nil {
		return err
	}

	return gradeAll(paths, gradeOptions{
		proc:   proc,
		debug:  omr.DebugLevel(*debug),
		outDir: *outDir,
		asJSON: *asJSON,
	}, w)
}

// expandInputs replaces each directory argument by the image files it
// contains, in name order. Other arguments are kept as given.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			paths = append(paths, filepath.Join(arg, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, errors.New("no image files found")
	}
	return paths, nil
}

// gradeAll grades every frame and reports one line per frame. A frame that
// cannot be read or graded is reported and counted, the rest still run.
func gradeAll(paths []string, opts gradeOptions, w io.Writer) error {
	enc := json.NewEncoder(w)
	failed := 0

	for _, path := range paths {
		rec := gradeOne(path, opts)
		if rec.Error != "" {
			failed++
		}

		if opts.asJSON {
			if err := enc.Encode(rec); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(w, formatRecord(rec))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d frames failed", failed, len(paths))
	}
	return nil
}

func gradeOne(path string, opts gradeOptions) gradeRecord {
	rec := gradeRecord{Path: path}

	frame, err := imaging.LoadGray(path)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	res, err := opts.proc.ProcessFrame(frame, opts.debug)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	rec.Score = res.Score()
	rec.MaxScore = res.MaxScore
	rec.Rejected = res.Rejected
	rec.Reason = string(res.Reason)
	rec.Detail = res.Detail
	for _, s := range res.Sections {
		rec.Answers = append(rec.Answers, s.Answers())
	}

	if opts.outDir != "" && res.Display != nil {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out := filepath.Join(opts.outDir, base+".png")
		if err := imaging.SaveImage(res.Display, out); err != nil {
			rec.Error = err.Error()
			return rec
		}
		rec.DebugImage = out
	}
	return rec
}

func formatRecord(rec gradeRecord) string {
	switch {
	case rec.Error != "":
		return fmt.Sprintf("%s\terror: %s", rec.Path, rec.Error)
	case rec.Rejected:
		return fmt.Sprintf("%s\trejected (%s): %s", rec.Path, rec.Reason, rec.Detail)
	default:
		return fmt.Sprintf("%s\t%d/%d\t%s", rec.Path, rec.Score, rec.MaxScore, strings.Join(rec.Answers, " "))
	}
}
