package callgraph

import (
	"strings"

	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/effect"
	"github.com/calor-lang/effects/internal/resolver"
	"github.com/calor-lang/effects/internal/source"
)

// InferenceContext carries everything per-function effect inference needs
// beyond the function body itself. Computed holds already-settled callee
// effect sets (earlier SCCs, or the current SCC's previous fixpoint round);
// a callee absent from Computed is treated as the empty set, which is
// exactly right on a recursive SCC's first round (spec §4.4 phase 3).
type InferenceContext struct {
	Builder  *bast.Builder
	Resolver *resolver.Resolver
	Computed map[bast.FunctionID]effect.Set
	Policy   UnknownCallPolicy
	Stubs    map[string]effect.Set
	Bag      *diag.Bag

	// internalNames maps every resolvable bare/qualified callee spelling to
	// its FunctionID, populated once by Infer (infer.go) from the same name
	// table the call graph itself was built from.
	internalNames map[string]bast.FunctionID
}

// InferFunction walks fn's body and computes its effect set for one
// fixpoint round (spec §4.4 phase 3's per-construct rules).
func InferFunction(ctx *InferenceContext, fn *bast.Function) effect.Set {
	return walkStmt(ctx, fn.Body)
}

func walkStmt(ctx *InferenceContext, id bast.StmtID) effect.Set {
	stmt := ctx.Builder.Stmts.Get(id)
	if stmt == nil {
		return effect.Empty()
	}
	switch stmt.Kind {
	case bast.StmtBlock:
		blk := ctx.Builder.Stmts.Block(id)
		out := effect.Empty()
		for _, s := range blk.Stmts {
			out = effect.Union(out, walkStmt(ctx, s))
		}
		return out
	case bast.StmtLet:
		let := ctx.Builder.Stmts.Let(id)
		return walkExpr(ctx, let.Init)
	case bast.StmtAssign:
		a := ctx.Builder.Stmts.Assign(id)
		out := walkExpr(ctx, a.Target)
		out = effect.Union(out, walkExpr(ctx, a.Value))
		if isMutationTarget(ctx.Builder, a.Target) {
			out = effect.Union(out, effect.Single(effect.KindMutation, "heap_write"))
		}
		return out
	case bast.StmtExpr:
		e := ctx.Builder.Stmts.Expr(id)
		return walkExpr(ctx, e.Expr)
	case bast.StmtIf:
		ifs := ctx.Builder.Stmts.If(id)
		out := walkExpr(ctx, ifs.Cond)
		out = effect.Union(out, walkStmt(ctx, ifs.Then))
		out = effect.Union(out, walkStmt(ctx, ifs.Else))
		return out
	case bast.StmtWhile:
		w := ctx.Builder.Stmts.While(id)
		out := walkExpr(ctx, w.Cond)
		return effect.Union(out, walkStmt(ctx, w.Body))
	case bast.StmtDoWhile:
		dw := ctx.Builder.Stmts.DoWhile(id)
		out := walkStmt(ctx, dw.Body)
		return effect.Union(out, walkExpr(ctx, dw.Cond))
	case bast.StmtForClassic:
		f := ctx.Builder.Stmts.ForClassic(id)
		out := walkStmt(ctx, f.Init)
		out = effect.Union(out, walkExpr(ctx, f.Cond))
		out = effect.Union(out, walkStmt(ctx, f.Post))
		out = effect.Union(out, walkStmt(ctx, f.Body))
		return out
	case bast.StmtForIn:
		f := ctx.Builder.Stmts.ForIn(id)
		out := walkExpr(ctx, f.Iterable)
		return effect.Union(out, walkStmt(ctx, f.Body))
	case bast.StmtMatch:
		m := ctx.Builder.Stmts.Match(id)
		out := walkExpr(ctx, m.Subject)
		for _, arm := range m.Arms {
			out = effect.Union(out, walkStmt(ctx, arm.Body))
		}
		return out
	case bast.StmtTry:
		t := ctx.Builder.Stmts.Try(id)
		out := walkStmt(ctx, t.Body)
		for _, c := range t.Catches {
			out = effect.Union(out, walkStmt(ctx, c.Body))
		}
		out = effect.Union(out, walkStmt(ctx, t.Finally))
		return out
	case bast.StmtReturn:
		r := ctx.Builder.Stmts.Return(id)
		return walkExpr(ctx, r.Value)
	case bast.StmtThrow:
		th := ctx.Builder.Stmts.Throw(id)
		out := walkExpr(ctx, th.Value)
		return effect.Union(out, effect.Single(effect.KindException, "intentional"))
	default:
		return effect.Empty()
	}
}

func isMutationTarget(b *bast.Builder, target bast.ExprID) bool {
	n := b.Exprs.Get(target)
	if n == nil {
		return false
	}
	return n.Kind == bast.ExprMember || n.Kind == bast.ExprIndex
}

func walkExpr(ctx *InferenceContext, id bast.ExprID) effect.Set {
	node := ctx.Builder.Exprs.Get(id)
	if node == nil {
		return effect.Empty()
	}
	switch node.Kind {
	case bast.ExprCall:
		call := ctx.Builder.Exprs.Call(id)
		out := callEffects(ctx, call.CalleeName, node)
		out = effect.Union(out, walkExpr(ctx, call.Callee))
		for _, a := range call.Args {
			out = effect.Union(out, walkExpr(ctx, a))
		}
		return out
	case bast.ExprBinary:
		bin := ctx.Builder.Exprs.Binary(id)
		return effect.Union(walkExpr(ctx, bin.Left), walkExpr(ctx, bin.Right))
	case bast.ExprUnary:
		u := ctx.Builder.Exprs.Unary(id)
		return walkExpr(ctx, u.Operand)
	case bast.ExprMember:
		m := ctx.Builder.Exprs.Member(id)
		return walkExpr(ctx, m.Target)
	case bast.ExprIndex:
		ix := ctx.Builder.Exprs.Index(id)
		return effect.Union(walkExpr(ctx, ix.Target), walkExpr(ctx, ix.Index))
	case bast.ExprNew:
		n := ctx.Builder.Exprs.New(id)
		out := ctorEffects(ctx, n.TypeName, len(n.Args))
		for _, a := range n.Args {
			out = effect.Union(out, walkExpr(ctx, a))
		}
		return out
	case bast.ExprLambda:
		l := ctx.Builder.Exprs.Lambda(id)
		return walkStmt(ctx, l.Body)
	case bast.ExprTernary:
		t := ctx.Builder.Exprs.Ternary(id)
		out := walkExpr(ctx, t.Cond)
		out = effect.Union(out, walkExpr(ctx, t.Then))
		return effect.Union(out, walkExpr(ctx, t.Else))
	case bast.ExprCast:
		c := ctx.Builder.Exprs.Cast(id)
		return walkExpr(ctx, c.Target)
	default:
		return effect.Empty()
	}
}

// callEffects resolves a call's effect set: internal calls consult the
// already-computed table (phase 3's "computed via internal"), everything
// else goes to the resolver, falling back to the unknown-call policy.
func callEffects(ctx *InferenceContext, name string, node *bast.Expr) effect.Set {
	if callee, ok := internalCallee(ctx, name); ok {
		if set, known := ctx.Computed[callee]; known {
			return set
		}
		return effect.Empty()
	}

	typ, member := splitCallee(name)
	sig := resolver.Signature{Type: typ, Member: member}
	res := ctx.Resolver.Resolve(sig)
	switch res.Outcome {
	case resolver.Resolved, resolver.PureExplicit:
		return res.Effects
	default:
		return unknownCallEffects(ctx, name, node)
	}
}

func ctorEffects(ctx *InferenceContext, typeName string, argCount int) effect.Set {
	sig := resolver.Signature{Type: typeName, Member: typeName, Kind: resolver.MemberConstructor}
	res := ctx.Resolver.Resolve(sig)
	switch res.Outcome {
	case resolver.Resolved, resolver.PureExplicit:
		return res.Effects
	default:
		return unknownCallEffects(ctx, typeName, nil)
	}
}

func unknownCallEffects(ctx *InferenceContext, name string, node *bast.Expr) effect.Set {
	if stub, ok := ctx.Stubs[name]; ok {
		return stub
	}
	switch ctx.Policy {
	case PolicyWarn:
		reportUnknownCall(ctx, name, node, diag.SevWarning)
		return effect.Unknown()
	case PolicyStubRequired, PolicyStrict:
		reportUnknownCall(ctx, name, node, diag.SevError)
		return effect.Unknown()
	default:
		return effect.Unknown()
	}
}

func reportUnknownCall(ctx *InferenceContext, name string, node *bast.Expr, sev diag.Severity) {
	if ctx.Bag == nil {
		return
	}
	var primary source.Span
	if node != nil {
		primary = node.Span
	}
	ctx.Bag.Add(&diag.Diagnostic{
		Severity: sev,
		Code:     diag.EffectUnknownExternal,
		Message:  "call to unresolved external \"" + name + "\" has unknown effects",
		Primary:  primary,
	})
}

// internalCallee resolves a bare or qualified callee name back to a
// FunctionID known to ctx via a side table populated by the caller before
// inference begins; see Infer in infer.go.
func internalCallee(ctx *InferenceContext, name string) (bast.FunctionID, bool) {
	if ctx.internalNames == nil {
		return bast.NoFunctionID, false
	}
	id, ok := ctx.internalNames[name]
	return id, ok
}

func splitCallee(name string) (typ, member string) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}
