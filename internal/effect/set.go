package effect

import (
	"sort"
	"strings"
)

// Set is an immutable collection of effects with a distinguished unknown
// value denoting worst-case (top of the subtyping lattice). The zero value
// is the empty set.
//
// Invariant: an unknown set never carries concrete members — union eagerly
// absorbs into the unknown marker rather than accumulating alongside it.
type Set struct {
	unknown bool
	members map[Effect]struct{}
}

// Empty returns the empty effect set (bottom of the lattice).
func Empty() Set {
	return Set{}
}

// Unknown returns the worst-case effect set (top of the lattice).
func Unknown() Set {
	return Set{unknown: true}
}

// Single returns a set containing exactly one effect.
func Single(kind Kind, value string) Set {
	return of(Effect{kind, value})
}

// From parses each surface code with Parse and unions the results.
func From(codes ...string) Set {
	s := Empty()
	for _, c := range codes {
		s = Union(s, of(Parse(c)))
	}
	return s
}

// of lifts a single Effect value into a one-element Set.
func of(e Effect) Set {
	return Set{members: map[Effect]struct{}{e: {}}}
}

// IsUnknown reports whether this set is the worst-case unknown set.
func (s Set) IsUnknown() bool {
	return s.unknown
}

// IsEmpty reports whether this set is the bottom (empty, not unknown) set.
func (s Set) IsEmpty() bool {
	return !s.unknown && len(s.members) == 0
}

// Effects returns the concrete effects in this set. Returns nil for the
// unknown set.
func (s Set) Effects() []Effect {
	if s.unknown {
		return nil
	}
	out := make([]Effect, 0, len(s.members))
	for e := range s.members {
		out = append(out, e)
	}
	sortEffects(out)
	return out
}

func sortEffects(effects []Effect) {
	sort.Slice(effects, func(i, j int) bool {
		a, b := effects[i], effects[j]
		if a.Kind != b.Kind {
			return a.Kind.less(b.Kind)
		}
		return a.Value < b.Value
	})
}

// Union returns the least upper bound of a and b: unknown absorbs eagerly,
// otherwise the member-wise set union. Idempotent, commutative, associative.
func Union(a, b Set) Set {
	if a.unknown || b.unknown {
		return Unknown()
	}
	out := make(map[Effect]struct{}, len(a.members)+len(b.members))
	for e := range a.members {
		out[e] = struct{}{}
	}
	for e := range b.members {
		out[e] = struct{}{}
	}
	return Set{members: out}
}

// IsSubset reports whether every effect required by a is satisfied by some
// effect in b under subtyping. is_subset(a, unknown()) always holds;
// is_subset(unknown(), a) holds only when a is also unknown.
func IsSubset(a, b Set) bool {
	if b.unknown {
		return true
	}
	if a.unknown {
		return false
	}
	for required := range a.members {
		if !satisfiedBy(required, b) {
			return false
		}
	}
	return true
}

func satisfiedBy(required Effect, b Set) bool {
	for declared := range b.members {
		if declared.Satisfies(required) {
			return true
		}
	}
	return false
}

// Difference returns the effects of a not satisfied by any effect of b
// under subtyping. difference(a, b) ∪ (a ∩ b under subtyping) = a.
func Difference(a, b Set) Set {
	if a.unknown {
		// The unknown set cannot be reduced by a concrete b: there is no
		// way to name "every effect except these" as a concrete set.
		return Unknown()
	}
	if b.unknown {
		return Empty()
	}
	out := make(map[Effect]struct{}, len(a.members))
	for e := range a.members {
		if !satisfiedBy(e, b) {
			out[e] = struct{}{}
		}
	}
	return Set{members: out}
}

// Equal reports set-equality on the underlying pairs; two unknown sets are
// always equal to each other.
func Equal(a, b Set) bool {
	if a.unknown != b.unknown {
		return false
	}
	if a.unknown {
		return true
	}
	if len(a.members) != len(b.members) {
		return false
	}
	for e := range a.members {
		if _, ok := b.members[e]; !ok {
			return false
		}
	}
	return true
}

// Display renders a deterministic sorted compact string: "[pure]" for the
// empty set, "[unknown]" for the unknown set, or a comma-separated,
// kind-then-value sorted list of surface codes otherwise.
func Display(s Set) string {
	if s.unknown {
		return "[unknown]"
	}
	effects := s.Effects()
	if len(effects) == 0 {
		return "[pure]"
	}
	codes := make([]string, len(effects))
	for i, e := range effects {
		codes[i] = e.SurfaceCode()
	}
	return strings.Join(codes, ",")
}
