// Package effect implements the effect value model: a closed set of effect
// kinds, the (kind, value) effect pair, effect sets with a worst-case
// unknown element, and the fixed subtyping lattice between effect values.
package effect

import "strings"

// Kind is a closed enumeration of effect categories.
type Kind uint8

const (
	KindIO Kind = iota
	KindMutation
	KindMemory
	KindException
	KindNondeterminism
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindMutation:
		return "mutation"
	case KindMemory:
		return "memory"
	case KindException:
		return "exception"
	case KindNondeterminism:
		return "nondeterminism"
	case KindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// less orders kinds for deterministic Display output: by kind, then value.
func (k Kind) less(other Kind) bool {
	return k < other
}

// ParseKind recognizes a namespace-qualified category token used by surface
// codes of the form "kind:value" (case-insensitive).
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "io":
		return KindIO, true
	case "mut", "mutation":
		return KindMutation, true
	case "mem", "memory":
		return KindMemory, true
	case "throw", "exception":
		return KindException, true
	case "rand", "nondeterminism":
		return KindNondeterminism, true
	case "unknown":
		return KindUnknown, true
	default:
		return KindUnknown, false
	}
}
