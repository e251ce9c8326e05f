// Package constants centralizes defaults shared across the CLI.
//
// File permissions, the export filename, the verdict threshold and the
// request limits used when talking to the analysis engine live here so that
// cmd/ and internal/ packages agree on them without import cycles.
package constants
