// Package imaging provides the image plumbing around answer-sheet grading.
//
// It loads photographs as 8-bit grayscale frames, rotates sensor output into
// portrait orientation, crops and encodes images for transport, and renders
// debug overlays of the marks a grader selected. Geometry helpers used to
// sanity-check detected corner quadrilaterals live here as well.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left), Max is exclusive (bottom-right)
//
// Mark coordinates passed to MarkOverlay are relative to the base image's
// Bounds().Min, matching the coordinates blob detectors report.
//
// # Thread Safety
//
// The FrameCache type is safe for concurrent use. All other operations are
// stateless and return new images, so they can be called concurrently.
//
// # Colours
//
// Overlay colours come from a Palette keyed by Outcome (correct, incorrect,
// unkeyed). Palettes parse from and print to "#rrggbb" hex strings.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Regions outside image bounds or empty regions
//   - File I/O errors during image loading
//   - Encoding errors during image output
package imaging
