package omr

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/camera-omr/internal/detection"
)

// RowAnswer is the outcome of one question row.
type RowAnswer struct {
	Row        int             `json:"row"`
	Letter     string          `json:"letter"` // "" when unanswered
	Expected   string          `json:"expected"`
	Correct    bool            `json:"correct"`
	Candidates int             `json:"candidates"`
	Mark       *detection.Blob `json:"mark,omitempty"`
}

// Answered reports whether a mark was selected for the row.
func (r RowAnswer) Answered() bool { return r.Letter != "" }

// SectionResult is the graded outcome of one section.
type SectionResult struct {
	Index    int              `json:"index"`
	Name     string           `json:"name,omitempty"`
	Rows     []RowAnswer      `json:"rows"`
	Score    int              `json:"score"`
	Detected int              `json:"detected"`
	Marks    []detection.Blob `json:"marks"`
}

// Answers returns the chosen letters in row order, '-' for unanswered rows.
func (r SectionResult) Answers() string {
	b := make([]byte, len(r.Rows))
	for i, row := range r.Rows {
		if row.Answered() {
			b[i] = row.Letter[0]
		} else {
			b[i] = '-'
		}
	}
	return string(b)
}

// GradeSection detects filled bubbles in a section image and scores them
// against spec.AnswerKey.
//
// Parameters:
//   - img: The section's sub-image of the rectified sheet. Blob positions are
//     interpreted relative to img.Bounds().Min.
//   - spec: Row count and answer key. Only Rows, AnswerKey and Name are read.
//   - det: Blob detector, run once with detection.OptionParams.
//   - policy: Which mark wins when a row holds several.
//
// # Algorithm
//
//  1. Detect marks and sort them by ascending Y.
//  2. Partition into spec.Rows half-open bands of height H/Rows. Marks in
//     the remainder strip below the last band are ignored.
//  3. In each band pick one mark by size per policy. Its letter is
//     'A' + X/(W/5), clamped to 'A'..'E'.
//  4. Score one point per letter matching the key.
//
// The result always holds exactly spec.Rows answers. A section with no
// detections scores zero; that is not an error.
func GradeSection(img *image.Gray, spec SectionSpec, det detection.Detector, policy TieBreak) (SectionResult, error) {
	result := SectionResult{Name: spec.Name, Rows: make([]RowAnswer, spec.Rows)}
	for i := range result.Rows {
		result.Rows[i] = RowAnswer{Row: i, Expected: expectedAt(spec.AnswerKey, i)}
	}

	b := img.Bounds()
	if spec.Rows < 1 || b.Dy() < spec.Rows || b.Dx() < NumOptions {
		return result, fmt.Errorf("%w: %dx%d image for %d rows", ErrSectionTooSmall, b.Dx(), b.Dy(), spec.Rows)
	}

	blobs, err := det.Detect(img, detection.OptionParams())
	if err != nil {
		return result, fmt.Errorf("failed to detect marks: %w", err)
	}
	result.Detected = len(blobs)
	if len(blobs) == 0 {
		Logger().Debug("no marks detected", "section", spec.Name)
		return result, nil
	}

	sorted := make([]detection.Blob, len(blobs))
	copy(sorted, blobs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	rowHeight := b.Dy() / spec.Rows
	colWidth := b.Dx() / NumOptions

	for i, bucket := range partitionRows(sorted, spec.Rows, rowHeight) {
		row := &result.Rows[i]
		row.Candidates = len(bucket)
		if len(bucket) == 0 {
			continue
		}

		mark := selectMark(bucket, policy)
		row.Mark = &mark
		row.Letter = columnLetter(mark.X, colWidth)
		row.Correct = row.Letter == row.Expected
		if row.Correct {
			result.Score++
		}
		result.Marks = append(result.Marks, mark)

		Logger().Debug("row graded", "section", spec.Name, "row", i,
			"letter", row.Letter, "expected", row.Expected, "candidates", len(bucket))
	}

	Logger().Debug("section graded", "section", spec.Name, "score", result.Score, "rows", spec.Rows)
	return result, nil
}

// expectedAt returns key[i] as a string, or "" past the end of key
func expectedAt(key string, i int) string {
	if i < len(key) {
		return key[i : i+1]
	}
	return ""
}

// partitionRows folds blobs sorted by Y into rows buckets over half-open
// bands [i*rowHeight, (i+1)*rowHeight). Blobs with Y < 0, NaN or beyond the
// last band are dropped. Order within each bucket follows the input order.
func partitionRows(sorted []detection.Blob, rows, rowHeight int) [][]detection.Blob {
	buckets := make([][]detection.Blob, rows)
	if rowHeight <= 0 {
		return buckets
	}
	for _, blob := range sorted {
		if !(blob.Y >= 0) {
			continue
		}
		row := int(math.Floor(blob.Y / float64(rowHeight)))
		if row < 0 || row >= rows {
			continue
		}
		buckets[row] = append(buckets[row], blob)
	}
	return buckets
}

// selectMark orders a bucket by ascending size and takes the first
// (TieBreakSmallest) or last (TieBreakLargest) element
func selectMark(bucket []detection.Blob, policy TieBreak) detection.Blob {
	bySize := make([]detection.Blob, len(bucket))
	copy(bySize, bucket)
	sort.SliceStable(bySize, func(i, j int) bool { return bySize[i].Size < bySize[j].Size })

	if policy == TieBreakLargest {
		return bySize[len(bySize)-1]
	}
	return bySize[0]
}

// columnLetter maps a horizontal position to 'A'..'E'
func columnLetter(x float64, colWidth int) string {
	col := 0
	if colWidth > 0 && x > 0 {
		col = int(math.Floor(x / float64(colWidth)))
	}
	if col >= NumOptions {
		col = NumOptions - 1
	}
	return string(rune('A' + col))
}
