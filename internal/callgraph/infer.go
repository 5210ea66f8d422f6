package callgraph

import (
	"fmt"

	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/effect"
	"github.com/calor-lang/effects/internal/resolver"
)

// maxFixpointIterations bounds the recursive-SCC round-robin (spec §4.4
// phase 3: "a hard iteration cap (>=100) guards against divergence").
const maxFixpointIterations = 100

// Options configures one Infer run.
type Options struct {
	Resolver *resolver.Resolver
	Policy   UnknownCallPolicy
	Stubs    map[string]effect.Set
	Bag      *diag.Bag
}

// Infer computes the effect set of every function in module by walking
// SCCs of the call graph in reverse topological (leaves-first) order,
// running a round-robin fixpoint within any SCC with more than one member
// or a self-loop (spec §4.4 phases 2-3).
func Infer(b *bast.Builder, module *bast.Module, opts Options) map[bast.FunctionID]effect.Set {
	g := Build(b, module)
	sccs := Condense(g)
	internalNames := nameTable(b, module, allFunctions(b, module))

	computed := make(map[bast.FunctionID]effect.Set, len(g.Functions))
	ctx := &InferenceContext{
		Builder:       b,
		Resolver:      opts.Resolver,
		Computed:      computed,
		Policy:        opts.Policy,
		Stubs:         opts.Stubs,
		Bag:           opts.Bag,
		internalNames: internalNames,
	}

	for _, scc := range sccs {
		inferSCC(ctx, b, g, scc, opts.Bag)
	}
	return computed
}

func inferSCC(ctx *InferenceContext, b *bast.Builder, g *Graph, scc SCC, bag *diag.Bag) {
	for _, fid := range scc.Members {
		ctx.Computed[fid] = effect.Empty()
	}

	if !isRecursive(g, scc) {
		for _, fid := range scc.Members {
			fn := b.Function(fid)
			if fn == nil {
				continue
			}
			ctx.Computed[fid] = InferFunction(ctx, fn)
		}
		return
	}

	for round := 0; round < maxFixpointIterations; round++ {
		changed := false
		for _, fid := range scc.Members {
			fn := b.Function(fid)
			if fn == nil {
				continue
			}
			next := InferFunction(ctx, fn)
			prev := ctx.Computed[fid]
			if !effect.Equal(prev, next) {
				changed = true
			}
			ctx.Computed[fid] = next
		}
		if !changed {
			return
		}
		if round == maxFixpointIterations-1 && bag != nil {
			bag.Add(&diag.Diagnostic{
				Severity: diag.SevWarning,
				Code:     diag.EffectInferenceDiverged,
				Message:  fmt.Sprintf("effect inference for a recursive clique of %d function(s) did not converge within %d iterations; using the last estimate", len(scc.Members), maxFixpointIterations),
			})
		}
	}
}

// isRecursive reports whether scc has more than one member, or its single
// member has a self-loop (an internal edge back to itself).
func isRecursive(g *Graph, scc SCC) bool {
	if len(scc.Members) > 1 {
		return true
	}
	if len(scc.Members) == 0 {
		return false
	}
	only := scc.Members[0]
	for _, site := range g.Edges[only] {
		if site.Callee == only {
			return true
		}
	}
	return false
}
