// Package errors provides coded, structured errors for floatkit.
//
// Every condition floatkit can report has a code (e.g. "F003") that maps to a
// category, a short message and a longer explanation. None of the positioning
// or interaction codes is fatal: callers log them and degrade (the floating
// element stays hidden or falls back to default timing).
//
// # Categories
//
//   - mount: reference or floating element missing or disconnected
//   - ref: a caller-supplied element reference could not be assigned
//   - middleware: unknown or malformed middleware configuration
//   - placement: an unparsable placement name
//   - config: floatkit.json loading and validation
//   - protocol: malformed layout-sync messages
//
// # Usage
//
//	err := errors.New("F003").
//	    WithDetail(`middleware "autoPlacement" is not supported`).
//	    WithSuggestion("Use one of offset, flip, shift, size, arrow, hide")
//
//	fmt.Println(err.Format())
package errors
