// Package server implements the MCP (Model Context Protocol) server for
// answer sheet grading.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line, and
// exposes the grading pipeline as tools so an MCP client can configure a
// sheet layout, grade captured frames and inspect why a frame was rejected.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session configuration:
//   - omr_set_template: Set the rectified sheet size
//   - omr_set_sections: Replace the graded sections and grading options
//   - omr_load_form: Load a YAML form file
//   - omr_save_form: Write the session as a YAML form file
//   - omr_session: Describe the active configuration
//
// Frame processing:
//   - omr_process_frame: Grade a frame, optionally returning a debug image
//   - omr_locate_corners: Report corner marker positions
//   - omr_check_pattern: Read the fiducial pattern strip
//   - omr_read_labels: OCR the form's label regions
//   - omr_clear_cache: Drop cached frames
//
// # Sessions
//
// The grading configuration is an immutable snapshot. Every update builds
// and validates a new snapshot and swaps it in under a lock; a failed update
// leaves the previous one active. Tool calls take the snapshot once, so a
// frame being graded is never affected by a concurrent update.
//
// # Frame Caching
//
// Frames are decoded to grayscale once and cached by path for the lifetime
// of the process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data. A rejected frame is not an error:
// omr_process_frame reports it with score -1 and a reason.
//
// # Usage
//
//	srv := server.New(detector, version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
