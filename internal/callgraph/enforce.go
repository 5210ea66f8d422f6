package callgraph

import (
	"fmt"
	"strings"

	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/effect"
	"github.com/calor-lang/effects/internal/resolver"
)

// ParseDeclaredEffects splits a function's raw DeclaredEffects surface
// syntax ("fs:rw,throw") into an effect.Set. An empty string declares
// purity explicitly (the empty set, not "no declaration").
func ParseDeclaredEffects(raw string) effect.Set {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return effect.Empty()
	}
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			codes = append(codes, p)
		}
	}
	return effect.From(codes...)
}

// Enforce runs phase 4 of spec §4.4: for every function, checks computed ⊆
// declared under subtyping (a function with DeclaredEffects == "" is checked
// as declaring the empty set, i.e. pure), emitting one diagnostic per
// uncovered effect naming the effect's surface code and the shortest call chain witnessing it, plus an
// info-severity diagnostic per unused declared effect.
func Enforce(b *bast.Builder, g *Graph, computed map[bast.FunctionID]effect.Set, res *resolver.Resolver, bag *diag.Bag) {
	for _, fid := range g.Functions {
		fn := b.Function(fid)
		if fn == nil {
			continue
		}
		declared := ParseDeclaredEffects(fn.DeclaredEffects)
		got := computed[fid]

		for _, missing := range effect.Difference(got, declared).Effects() {
			chain := WitnessChain(b, g, computed, res, fid, missing)
			bag.Add(&diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.EffectForbidden,
				Primary:  fn.Span,
				Message:  fmt.Sprintf("function %q performs undeclared effect %q (call chain: %s)", fn.Name, missing.SurfaceCode(), strings.Join(chain, " -> ")),
			})
		}

		for _, unused := range effect.Difference(declared, got).Effects() {
			bag.Add(&diag.Diagnostic{
				Severity: diag.SevInfo,
				Code:     diag.EffectUnusedDeclaration,
				Primary:  fn.Span,
				Message:  fmt.Sprintf("function %q declares effect %q that is never performed", fn.Name, unused.SurfaceCode()),
			})
		}
	}
}

// WitnessChain finds the shortest call chain from start to a call site
// (internal or external) that directly contributes missing, via
// breadth-first traversal of the call graph (spec §4.4 phase 4: "the
// shortest call chain witnessing it"). Returns a human-readable chain of
// names from start to the witnessing call, or just start's name if no
// witness could be located (should not happen for a genuinely uncovered
// effect, but inference over an incomplete resolver can leave gaps).
func WitnessChain(b *bast.Builder, g *Graph, computed map[bast.FunctionID]effect.Set, res *resolver.Resolver, start bast.FunctionID, missing effect.Effect) []string {
	startFn := b.Function(start)
	startName := "?"
	if startFn != nil {
		startName = startFn.Name
	}

	type item struct {
		fid  bast.FunctionID
		path []string
	}
	visited := map[bast.FunctionID]bool{start: true}
	queue := []item{{start, []string{startName}}}

	want := effect.Single(missing.Kind, missing.Value)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, site := range g.Edges[cur.fid] {
			if site.Callee != bast.NoFunctionID {
				calleeFn := b.Function(site.Callee)
				name := site.Name
				if calleeFn != nil {
					name = calleeFn.Name
				}
				if set, ok := computed[site.Callee]; ok && effect.IsSubset(want, set) {
					return append(append([]string{}, cur.path...), name)
				}
				if !visited[site.Callee] {
					visited[site.Callee] = true
					queue = append(queue, item{site.Callee, append(append([]string{}, cur.path...), name)})
				}
				continue
			}

			typ, member := splitCallee(site.Name)
			r := res.Resolve(resolver.Signature{Type: typ, Member: member})
			if r.Outcome != resolver.Unknown && effect.IsSubset(want, r.Effects) {
				return append(append([]string{}, cur.path...), site.Name)
			}
		}
	}

	return []string{startName}
}
