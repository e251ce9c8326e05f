// Package dashboard maps an analysis report to presentation values.
//
// Everything here is a pure function of its input: no I/O, no state. Render
// adapters (terminal, HTML, PDF) consume the returned values and decide how
// a Classification or LineKind looks on their surface.
package dashboard
