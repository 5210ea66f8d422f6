// Package resolver implements the layered effect resolver (spec §4.3):
// built-in catalog, per-type manifest entries, namespace defaults, and
// finally Unknown.
package resolver

import "github.com/calor-lang/effects/internal/effect"

// Outcome classifies how a resolution was produced.
type Outcome uint8

const (
	// Resolved means a concrete, possibly non-empty effect set was found.
	Resolved Outcome = iota
	// PureExplicit means an empty set was explicitly declared (the built-in
	// or manifest entry exists and names no effects).
	PureExplicit
	// Unknown means no declaration was found at any tier.
	Unknown
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case PureExplicit:
		return "pure_explicit"
	case Unknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Result is the outcome of a single resolution query.
type Result struct {
	Outcome Outcome
	Effects effect.Set
}

var (
	resultPureExplicit = Result{Outcome: PureExplicit, Effects: effect.Empty()}
	resultUnknown      = Result{Outcome: Unknown, Effects: effect.Unknown()}
)

func resolved(set effect.Set) Result {
	if set.IsEmpty() {
		return resultPureExplicit
	}
	return Result{Outcome: Resolved, Effects: set}
}
