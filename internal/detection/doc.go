// Package detection provides blob detection for answer-sheet images.
//
// Blob detection is consumed by the grading pipeline as an injected
// capability: callers depend on the Detector interface and choose a backend
// at start-up. Grading and corner location can therefore be tested against a
// deterministic fake without any vision backend.
//
// # Backends
//
//   - SimpleDetector: pure Go, always available. Follows the OpenCV
//     SimpleBlobDetector model (threshold ladder, connected regions, shape
//     filters, repeatability across levels).
//   - GoCVDetector: OpenCV's SimpleBlobDetector via gocv. Only compiled with
//     the "gocv" build tag; NewDetector("gocv") returns ErrGoCVNotEnabled
//     otherwise.
//
// # Parameters
//
// Params enumerates the tunable filters: area, circularity, inertia ratio and
// convexity, each with an enable flag. MarkerParams and OptionParams return
// the two presets used by the grader (corner markers and filled bubbles).
//
// # Coordinate System
//
// Blob positions are relative to the Bounds().Min of the image passed to
// Detect, so detecting on a sub-image yields coordinates local to that
// sub-image. Origin is top-left, X increases rightward, Y increases downward.
//
// # Limitations
//
// Only dark blobs on a light background are reported, and a blob's centre
// pixel must be dark: printed, unfilled bubble outlines are ignored.
package detection
