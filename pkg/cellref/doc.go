// Package cellref converts between A1 text, domain spans and ranges, and
// rewrites formulas between A1 and relative R1C1 notation.
package cellref
