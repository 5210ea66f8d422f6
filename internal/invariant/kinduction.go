package invariant

import (
	"context"
	"fmt"
	"time"

	"github.com/calor-lang/effects/internal/prover"
)

// KInductionResult is spec §4.10's driver output: proved, refuted, or
// unknown for one candidate invariant.
type KInductionResult struct {
	Invariant Invariant
	Verdict   prover.Verdict
}

// RunKInduction validates one candidate up to unrolling depth k within
// timeout, per spec §4.10: "the driver is specified only by its inputs
// (CFG, loop, candidate invariants, k, timeout) and outputs (proved /
// refuted / unknown)". It is a thin client of prover.Prover — defining
// the decision procedure itself is explicitly out of scope, so this
// function only shapes the goal and applies the time budget; p may be
// prover.NopProver{}, which always answers Unknown.
func RunKInduction(ctx context.Context, p prover.Prover, l Loop, candidate Invariant, k int, timeout time.Duration) KInductionResult {
	if p == nil {
		p = prover.NopProver{}
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	goal := prover.Goal{
		Description: candidate.Description,
		Facts: []string{
			fmt.Sprintf("loop header block %d", l.Header),
			fmt.Sprintf("unrolling depth k=%d", k),
		},
	}
	return KInductionResult{Invariant: candidate, Verdict: p.Prove(cctx, goal)}
}

// RunAll validates every candidate independently, returning one result
// per candidate in the same order.
func RunAll(ctx context.Context, p prover.Prover, l Loop, candidates []Invariant, k int, timeout time.Duration) []KInductionResult {
	out := make([]KInductionResult, len(candidates))
	for i, c := range candidates {
		out[i] = RunKInduction(ctx, p, l, c, k, timeout)
	}
	return out
}
