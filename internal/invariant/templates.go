package invariant

import (
	"fmt"
	"strconv"
	"strings"
)

// Invariant is one synthesized candidate, described the way a prover goal
// is: a human-readable relation plus the template that produced it.
type Invariant struct {
	Template    string
	Description string
}

// accumulatorNames is spec §4.10's literal list of accumulator-pattern
// names: "count", "sum", "total", "result", "acc", …
var accumulatorNames = []string{"count", "sum", "total", "result", "acc"}

func looksLikeAccumulator(name string) bool {
	lower := strings.ToLower(name)
	for _, a := range accumulatorNames {
		if strings.Contains(lower, a) {
			return true
		}
	}
	return false
}

func boundDescription(bnd Bound) string {
	if bnd.Known {
		return strconv.FormatInt(bnd.Literal, 10)
	}
	if bnd.Name != "" {
		return bnd.Name
	}
	return "?"
}

// BoundedVariable yields `lo <= i <= hi` when both bounds are statically
// known literals.
func BoundedVariable(ctx Context) (Invariant, bool) {
	if ctx.InductionVar == "" || !ctx.Lower.Known || !ctx.Upper.Known {
		return Invariant{}, false
	}
	return Invariant{
		Template:    "bounded-variable",
		Description: fmt.Sprintf("%d <= %s <= %d", ctx.Lower.Literal, ctx.InductionVar, ctx.Upper.Literal),
	}, true
}

// MonotonicIncrease yields a non-decreasing claim for any written variable
// matching the accumulator naming convention.
func MonotonicIncrease(ctx Context) (Invariant, bool) {
	for name := range ctx.Written {
		if looksLikeAccumulator(name) {
			return Invariant{
				Template:    "monotonic-increase",
				Description: fmt.Sprintf("%s is non-decreasing across iterations", name),
			}, true
		}
	}
	return Invariant{}, false
}

// AccumulatorNonNegative yields `acc >= 0` for an accumulator-named
// variable whose preheader initial value (when found as a literal) is
// itself non-negative.
func AccumulatorNonNegative(ctx Context, preheaderLiteral func(name string) (int64, bool)) (Invariant, bool) {
	for name := range ctx.Written {
		if !looksLikeAccumulator(name) {
			continue
		}
		v, ok := preheaderLiteral(name)
		if !ok || v < 0 {
			continue
		}
		return Invariant{
			Template:    "accumulator-non-negative",
			Description: fmt.Sprintf("%s >= 0", name),
		}, true
	}
	return Invariant{}, false
}

// ArrayIndexWithinBounds yields `0 <= i < len(arr)` when the loop indexes
// at least one array and reads the induction variable anywhere (the
// header's test counts). It does not check that the induction variable is
// the index expression, and with several indexed arrays which one is named
// is not defined.
func ArrayIndexWithinBounds(ctx Context) (Invariant, bool) {
	if ctx.InductionVar == "" || len(ctx.Indexed) == 0 {
		return Invariant{}, false
	}
	if _, used := ctx.Read[ctx.InductionVar]; !used {
		return Invariant{}, false
	}
	for arr := range ctx.Indexed {
		return Invariant{
			Template:    "array-index-within-bounds",
			Description: fmt.Sprintf("0 <= %s < len(%s)", ctx.InductionVar, arr),
		}, true
	}
	return Invariant{}, false
}

// TerminationMeasure yields `hi - i >= 0`, the standard decreasing
// measure for an upward-counting loop with a known (or named) upper
// bound.
func TerminationMeasure(ctx Context) (Invariant, bool) {
	if ctx.InductionVar == "" || (!ctx.Upper.Known && ctx.Upper.Name == "") {
		return Invariant{}, false
	}
	return Invariant{
		Template:    "termination-measure",
		Description: fmt.Sprintf("%s - %s >= 0", boundDescription(ctx.Upper), ctx.InductionVar),
	}, true
}

// Synthesize composes every template that yields a candidate by
// conjunction, producing the strongest composite plus the individual
// list a caller (e.g. the k-induction driver) can validate one at a time.
func Synthesize(ctx Context, preheaderLiteral func(name string) (int64, bool)) (Invariant, []Invariant) {
	var candidates []Invariant
	if inv, ok := BoundedVariable(ctx); ok {
		candidates = append(candidates, inv)
	}
	if inv, ok := MonotonicIncrease(ctx); ok {
		candidates = append(candidates, inv)
	}
	if inv, ok := AccumulatorNonNegative(ctx, preheaderLiteral); ok {
		candidates = append(candidates, inv)
	}
	if inv, ok := ArrayIndexWithinBounds(ctx); ok {
		candidates = append(candidates, inv)
	}
	if inv, ok := TerminationMeasure(ctx); ok {
		candidates = append(candidates, inv)
	}
	if len(candidates) == 0 {
		return Invariant{}, nil
	}
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = c.Description
	}
	composite := Invariant{
		Template:    "conjunction",
		Description: strings.Join(parts, " && "),
	}
	return composite, candidates
}
