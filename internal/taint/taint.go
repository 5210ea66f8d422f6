// Package taint implements spec §4.8's source/sink/sanitizer propagation:
// a flow-sensitive, intraprocedural analysis joined at control-flow merges
// by set union, grounded on internal/sema's borrow-tracking style (a
// table of labeled state keyed by place/variable, updated as control flow
// is walked) and on the side-effect-category/propagation shape of the
// third-party purity-analysis reference this corpus also draws from.
package taint

import (
	"fmt"
	"strings"

	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/dataflow"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/effect"
	"github.com/calor-lang/effects/internal/lattice"
	"github.com/calor-lang/effects/internal/resolver"
	"github.com/calor-lang/effects/internal/source"
)

// Label is spec §4.8's taint label: (source-kind, source-variable,
// source-span). Var is the zero VarRef for a label still being created
// (a source call nested directly in a sink argument, never bound to a
// name) — diagnostics fall back to Span alone in that case.
type Label struct {
	Kind SourceKind
	Var  dataflow.VarRef
	Span source.Span
}

// State is the taint lattice element: every tainted variable's current
// label set. Assignment overwrites a variable's entry wholesale (the same
// "kill by variable" shape internal/dataflow's reaching definitions uses),
// rather than accumulating across reassignments.
type State map[dataflow.VarRef]lattice.Set[Label]

func emptyState() State { return State{} }

func cloneState(s State) State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

func joinState(a, b State) State {
	out := cloneState(a)
	for k, v := range b {
		if existing, ok := out[k]; ok {
			out[k] = lattice.Union(existing, v)
		} else {
			out[k] = v.Clone()
		}
	}
	return out
}

func stateLessOrEqual(a, b State) bool {
	for k, v := range a {
		bv, ok := b[k]
		if !ok || !lattice.Subset(v, bv) {
			return false
		}
	}
	return true
}

var stateLattice = lattice.Lattice[State]{
	Bottom:      emptyState,
	Join:        joinState,
	LessOrEqual: stateLessOrEqual,
}

// Analyze runs taint propagation over fn and reports one diagnostic per
// tainted argument reaching a sink, per spec §4.8. r is optional: when
// non-nil, a call whose resolved effect set reads from IO (filesystem,
// network, database, environment, console) is additionally treated as a
// source of the matching category, the "resolver-recognized source
// functions" rule.
func Analyze(b *bast.Builder, fn *bast.Function, bind *dataflow.Binding, g *cfg.Graph, r *resolver.Resolver, opts Options) []diag.Diagnostic {
	entrySeed := seedParams(fn, opts)

	an := lattice.Analysis[State]{
		Direction:    lattice.Forward,
		Lattice:      stateLattice,
		InitialEntry: func() State { return cloneState(entrySeed) },
		Transfer: func(blk *cfg.Block, in State) State {
			return replayBlock(b, bind, blk, in, r, opts, nil)
		},
	}
	res := lattice.Solve(g, an)

	var diags []diag.Diagnostic
	for _, blk := range g.Blocks {
		replayBlock(b, bind, blk, res.In[blk.ID], r, opts, &diags)
	}
	return diags
}

func seedParams(fn *bast.Function, opts Options) State {
	st := emptyState()
	for _, p := range fn.Params {
		kind, ok := paramSourceKind(p.Name)
		if !ok || !opts.EnabledSources[kind] {
			continue
		}
		v := dataflow.VarRef{Name: p.Name, DeclSite: bast.NoStmtID}
		st[v] = lattice.NewSet(Label{Kind: kind, Var: v, Span: fn.Span})
	}
	return st
}

// replayBlock walks one block's statements in order, updating a working
// copy of state and, when diags is non-nil, appending one diagnostic per
// tainted argument reaching a sink call anywhere in the block.
func replayBlock(b *bast.Builder, bind *dataflow.Binding, blk *cfg.Block, in State, r *resolver.Resolver, opts Options, diags *[]diag.Diagnostic) State {
	cur := cloneState(in)
	for _, stmtID := range blk.Stmts {
		node := b.Stmts.Get(stmtID)
		switch node.Kind {
		case bast.StmtLet:
			l := b.Stmts.Let(stmtID)
			if !l.Init.IsValid() {
				continue
			}
			checkSinks(b, l.Init, cur, r, opts, diags)
			v := bind.DefVar[stmtID]
			cur[v] = stampOrigin(exprLabels(b, l.Init, cur, r, opts), v)
		case bast.StmtAssign:
			a := b.Stmts.Assign(stmtID)
			checkSinks(b, a.Value, cur, r, opts, diags)
			if v, ok := bind.DefVar[stmtID]; ok {
				cur[v] = stampOrigin(exprLabels(b, a.Value, cur, r, opts), v)
			} else {
				checkSinks(b, a.Target, cur, r, opts, diags)
			}
		case bast.StmtExpr:
			checkSinks(b, b.Stmts.Expr(stmtID).Expr, cur, r, opts, diags)
		case bast.StmtReturn:
			if v := b.Stmts.Return(stmtID).Value; v.IsValid() {
				checkSinks(b, v, cur, r, opts, diags)
			}
		case bast.StmtThrow:
			if v := b.Stmts.Throw(stmtID).Value; v.IsValid() {
				checkSinks(b, v, cur, r, opts, diags)
			}
		}
	}
	if blk.Term.Cond.IsValid() {
		checkSinks(b, blk.Term.Cond, cur, r, opts, diags)
	}
	return cur
}

// stampOrigin fills in the assigning variable for any freshly minted label
// (one whose Var is still the zero VarRef), leaving propagated labels'
// original Var/Span untouched.
func stampOrigin(labels lattice.Set[Label], v dataflow.VarRef) lattice.Set[Label] {
	out := lattice.NewSet[Label]()
	for l := range labels {
		if l.Var == (dataflow.VarRef{}) {
			l.Var = v
		}
		out[l] = struct{}{}
	}
	return out
}

// exprLabels computes the taint label set an expression evaluates to,
// given the variable taint currently in scope.
func exprLabels(b *bast.Builder, id bast.ExprID, state State, r *resolver.Resolver, opts Options) lattice.Set[Label] {
	if !id.IsValid() {
		return lattice.NewSet[Label]()
	}
	n := b.Exprs.Get(id)
	if n == nil {
		return lattice.NewSet[Label]()
	}
	switch n.Kind {
	case bast.ExprIdent:
		name := b.Exprs.Ident(id).Name
		for v, labels := range state {
			if v.Name == name {
				return labels.Clone()
			}
		}
		return lattice.NewSet[Label]()
	case bast.ExprLit:
		return lattice.NewSet[Label]()
	case bast.ExprCall:
		c := b.Exprs.Call(id)
		if opts.isSanitizer(c.CalleeName) {
			return lattice.NewSet[Label]()
		}
		if kind, ok := opts.sourceKindForCall(c.CalleeName); ok {
			return lattice.NewSet(Label{Kind: kind, Span: n.Span})
		}
		if kind, ok := resolverSourceKind(r, c.CalleeName, opts); ok {
			return lattice.NewSet(Label{Kind: kind, Span: n.Span})
		}
		out := lattice.NewSet[Label]()
		for _, a := range c.Args {
			out = lattice.Union(out, exprLabels(b, a, state, r, opts))
		}
		return out
	case bast.ExprBinary:
		bin := b.Exprs.Binary(id)
		return lattice.Union(exprLabels(b, bin.Left, state, r, opts), exprLabels(b, bin.Right, state, r, opts))
	case bast.ExprUnary:
		return exprLabels(b, b.Exprs.Unary(id).Operand, state, r, opts)
	case bast.ExprMember:
		return exprLabels(b, b.Exprs.Member(id).Target, state, r, opts)
	case bast.ExprIndex:
		ix := b.Exprs.Index(id)
		return lattice.Union(exprLabels(b, ix.Target, state, r, opts), exprLabels(b, ix.Index, state, r, opts))
	case bast.ExprNew:
		out := lattice.NewSet[Label]()
		for _, a := range b.Exprs.New(id).Args {
			out = lattice.Union(out, exprLabels(b, a, state, r, opts))
		}
		return out
	case bast.ExprTernary:
		te := b.Exprs.Ternary(id)
		return lattice.Union(exprLabels(b, te.Then, state, r, opts), exprLabels(b, te.Else, state, r, opts))
	case bast.ExprCast:
		return exprLabels(b, b.Exprs.Cast(id).Target, state, r, opts)
	case bast.ExprLambda:
		return lattice.NewSet[Label]()
	default:
		return lattice.NewSet[Label]()
	}
}

// resolverSourceKind classifies a call as a taint source via its resolved
// effect set when no explicit convention-table entry matched: any call
// resolving to a read-shaped IO effect is a source of the matching
// category (spec §4.8's "calls into resolver-recognized source
// functions").
func resolverSourceKind(r *resolver.Resolver, calleeName string, opts Options) (SourceKind, bool) {
	if r == nil || calleeName == "" {
		return 0, false
	}
	typ, member := "", calleeName
	if idx := strings.LastIndexByte(calleeName, '.'); idx >= 0 {
		typ, member = calleeName[:idx], calleeName[idx+1:]
	}
	result := r.Resolve(resolver.Signature{Type: typ, Member: member})
	if result.Effects.IsUnknown() || result.Effects.IsEmpty() {
		return 0, false
	}
	for _, e := range result.Effects.Effects() {
		if e.Kind != effect.KindIO {
			continue
		}
		switch {
		case strings.Contains(e.Value, "filesystem_read") && opts.EnabledSources[SourceFileRead]:
			return SourceFileRead, true
		case strings.Contains(e.Value, "network_read") && opts.EnabledSources[SourceNetworkInput]:
			return SourceNetworkInput, true
		case e.Value == "network_readwrite" && opts.EnabledSources[SourceNetworkInput]:
			return SourceNetworkInput, true
		case strings.Contains(e.Value, "database_read") && opts.EnabledSources[SourceDatabaseResult]:
			return SourceDatabaseResult, true
		case strings.Contains(e.Value, "environment_read") && opts.EnabledSources[SourceEnvironment]:
			return SourceEnvironment, true
		case e.Value == "console_read" && opts.EnabledSources[SourceUserInput]:
			return SourceUserInput, true
		}
	}
	return 0, false
}

// checkSinks recursively scans id for call nodes and, for every call
// matching a sink convention, reports one diagnostic per distinct taint
// label reaching one of its arguments.
func checkSinks(b *bast.Builder, id bast.ExprID, state State, r *resolver.Resolver, opts Options, diags *[]diag.Diagnostic) {
	if diags == nil || !id.IsValid() {
		return
	}
	n := b.Exprs.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case bast.ExprCall:
		c := b.Exprs.Call(id)
		for _, a := range c.Args {
			checkSinks(b, a, state, r, opts, diags)
		}
		kind, ok := opts.sinkKindForCall(c.CalleeName)
		if !ok {
			return
		}
		seen := lattice.NewSet[Label]()
		for _, a := range c.Args {
			for l := range exprLabels(b, a, state, r, opts) {
				if seen.Has(l) {
					continue
				}
				seen[l] = struct{}{}
				*diags = append(*diags, vulnerabilityDiag(kind, c.CalleeName, n.Span, l))
			}
		}
	case bast.ExprBinary:
		bin := b.Exprs.Binary(id)
		checkSinks(b, bin.Left, state, r, opts, diags)
		checkSinks(b, bin.Right, state, r, opts, diags)
	case bast.ExprUnary:
		checkSinks(b, b.Exprs.Unary(id).Operand, state, r, opts, diags)
	case bast.ExprMember:
		checkSinks(b, b.Exprs.Member(id).Target, state, r, opts, diags)
	case bast.ExprIndex:
		ix := b.Exprs.Index(id)
		checkSinks(b, ix.Target, state, r, opts, diags)
		checkSinks(b, ix.Index, state, r, opts, diags)
	case bast.ExprNew:
		for _, a := range b.Exprs.New(id).Args {
			checkSinks(b, a, state, r, opts, diags)
		}
	case bast.ExprTernary:
		te := b.Exprs.Ternary(id)
		checkSinks(b, te.Cond, state, r, opts, diags)
		checkSinks(b, te.Then, state, r, opts, diags)
		checkSinks(b, te.Else, state, r, opts, diags)
	case bast.ExprCast:
		checkSinks(b, b.Exprs.Cast(id).Target, state, r, opts, diags)
	}
}

func vulnerabilityDiag(kind SinkKind, sinkName string, sinkSpan source.Span, l Label) diag.Diagnostic {
	msg := fmt.Sprintf("%s reaches %s at %q with untainted input required: tainted by %s", l.Var.Name, kind, sinkName, l.Kind)
	d := diag.NewError(kind.code(), sinkSpan, msg)
	if l.Var.Name != "" {
		d = d.WithNote(l.Span, fmt.Sprintf("%q originates from %s here", l.Var.Name, l.Kind))
	}
	return d
}
