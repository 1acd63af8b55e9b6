// Package omr grades photographed multiple-choice answer sheets.
//
// A Processor takes a grayscale camera frame through a fixed pipeline:
// rotate into portrait, locate the four printed corner markers, warp the
// sheet to the template size, verify the fiducial pattern along the bottom
// edge, then grade each configured section and sum the scores.
//
// # Configuration
//
// Config is built once with NewConfig, validated, and never modified. Sections
// are rectangles of the rectified sheet with a row count and an answer key of
// letters 'A'..'E', one per row. Five answer options per row are assumed.
//
// # Rejections
//
// A frame is rejected, not failed, when its corners are missing or do not
// form a convex quadrilateral (ReasonCorners) or when the fiducial pattern
// does not read "wbwbwb" (ReasonPattern). FrameResult.Score reports
// RejectedScore for rejected frames. Errors are reserved for empty input and
// detector failures.
//
// # Blob Detection
//
// All detection goes through detection.Detector, so the pipeline can be
// tested with deterministic fakes. Detector coordinates are relative to the
// scanned sub-image.
//
// # Logging
//
// The package logs through log/slog and is silent until SetLogger is called.
package omr
