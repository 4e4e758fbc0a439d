// Package secretdata implements C2: parsing of .env, YAML, and properties
// source files into a flat map of logical_key -> value, tracking disabled
// (commented-out) entries per spec §4.2.
package secretdata

import "fmt"

// Route selects which provider path an Entry is synced through. Secret is
// the default; Property is used only when configs.enabled routes a
// properties-style file separately (spec §9, Open Question 3 — GCP and
// every other provider route identically through the same Provider
// interface regardless of Route).
type Route int

const (
	RouteSecret Route = iota
	RouteProperty
)

// Entry is the merged representation of SecretEntry/PropertyEntry (spec §3)
// — the two data-model entities collapse to one struct distinguished by
// Route, since nothing else differs between them at this layer.
type Entry struct {
	LogicalKey string
	RawValue   string
	Enabled    bool
	OriginFile string
	Route      Route
}

// ParseError reports a malformed source file (spec §4.2/§7: Parse{file,line?}).
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s", e.File, e.Reason)
}
