// Package form loads and saves answer sheet layouts as YAML.
//
// A form file names the rectified template size, the graded sections with
// their answer keys, optional free-text label regions for OCR, and the
// grading policies. Example:
//
//	template: {width: 600, height: 800}
//	tie_break: smallest
//	sections:
//	  - name: part-1
//	    left: 40
//	    top: 120
//	    width: 250
//	    height: 400
//	    answers: ABCDEABCDE
//	labels:
//	  - {name: candidate, left: 40, top: 20, width: 400, height: 60}
//	colors: {correct: "#2ecc71", incorrect: "#e74c3c"}
//
// Form.Config validates the layout and returns an immutable omr.Config.
package form
