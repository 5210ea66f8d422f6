// Package callgraph builds the module-wide call graph that effect
// enforcement (spec §4.4) walks: one node per bound function/method, one
// edge per call expression, with SCC condensation and a per-SCC fixpoint
// driver for recursive cliques.
package callgraph

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/source"
)

// CallSite is one observed call expression inside a function body.
type CallSite struct {
	Callee bast.FunctionID // NoFunctionID when the callee could not be resolved to an internal function
	Name   string          // syntactic callee name ("Foo", "Console.WriteLine", "obj.Method")
	Span   source.Span
}

// Graph is the call graph over one module's bound functions. Only edges
// with a resolved internal Callee contribute to SCC computation; every
// edge (internal or external) is kept for diagnostic call-chain
// reconstruction (spec §4.4 phase 1).
type Graph struct {
	Functions []bast.FunctionID
	Edges     map[bast.FunctionID][]CallSite
}

// Build visits every function body in module (including class
// methods/getters/setters/constructors) and records its call sites.
// Callee names are resolved to an internal FunctionID via a plain-name and
// "Owner.Name"-qualified lookup table; anything else is external.
func Build(b *bast.Builder, module *bast.Module) *Graph {
	all := allFunctions(b, module)
	names := nameTable(b, module, all)

	g := &Graph{
		Functions: all,
		Edges:     make(map[bast.FunctionID][]CallSite, len(all)),
	}
	for _, fid := range all {
		fn := b.Function(fid)
		if fn == nil {
			continue
		}
		var sites []CallSite
		collectCallsStmt(b, fn.Body, &sites)
		for i := range sites {
			if callee, ok := names[sites[i].Name]; ok {
				sites[i].Callee = callee
			}
		}
		g.Edges[fid] = sites
	}
	return g
}

// allFunctions enumerates every callable in module: free functions plus
// every method, getter/setter, and constructor reachable through its
// classes.
func allFunctions(b *bast.Builder, module *bast.Module) []bast.FunctionID {
	out := make([]bast.FunctionID, 0, len(module.Functions))
	out = append(out, module.Functions...)
	for _, cid := range module.Classes {
		cls := b.Class(cid)
		if cls == nil {
			continue
		}
		out = append(out, cls.Methods...)
		out = append(out, cls.Properties...)
		out = append(out, cls.Constructors...)
	}
	return out
}

// nameTable maps both a function's bare name and, for class members, its
// "ClassName.MemberName" qualified form to its FunctionID. Bare-name
// collisions across distinct classes resolve to whichever was registered
// last; callers with an ambiguous bare name should prefer the qualified
// spelling, matching how CallExpr.CalleeName is produced for member calls.
func nameTable(b *bast.Builder, module *bast.Module, all []bast.FunctionID) map[string]bast.FunctionID {
	names := make(map[string]bast.FunctionID, len(all)*2)
	for _, fid := range module.Functions {
		fn := b.Function(fid)
		if fn == nil {
			continue
		}
		names[fn.Name] = fid
	}
	for _, cid := range module.Classes {
		cls := b.Class(cid)
		if cls == nil {
			continue
		}
		members := make([]bast.FunctionID, 0, len(cls.Methods)+len(cls.Properties)+len(cls.Constructors))
		members = append(members, cls.Methods...)
		members = append(members, cls.Properties...)
		members = append(members, cls.Constructors...)
		for _, fid := range members {
			fn := b.Function(fid)
			if fn == nil {
				continue
			}
			names[cls.Name+"."+fn.Name] = fid
			names[fn.Name] = fid
		}
	}
	return names
}

func collectCallsStmt(b *bast.Builder, id bast.StmtID, out *[]CallSite) {
	stmt := b.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case bast.StmtBlock:
		blk := b.Stmts.Block(id)
		for _, s := range blk.Stmts {
			collectCallsStmt(b, s, out)
		}
	case bast.StmtLet:
		let := b.Stmts.Let(id)
		collectCallsExpr(b, let.Init, out)
	case bast.StmtAssign:
		a := b.Stmts.Assign(id)
		collectCallsExpr(b, a.Target, out)
		collectCallsExpr(b, a.Value, out)
	case bast.StmtExpr:
		e := b.Stmts.Expr(id)
		collectCallsExpr(b, e.Expr, out)
	case bast.StmtIf:
		ifs := b.Stmts.If(id)
		collectCallsExpr(b, ifs.Cond, out)
		collectCallsStmt(b, ifs.Then, out)
		collectCallsStmt(b, ifs.Else, out)
	case bast.StmtWhile:
		w := b.Stmts.While(id)
		collectCallsExpr(b, w.Cond, out)
		collectCallsStmt(b, w.Body, out)
	case bast.StmtDoWhile:
		dw := b.Stmts.DoWhile(id)
		collectCallsStmt(b, dw.Body, out)
		collectCallsExpr(b, dw.Cond, out)
	case bast.StmtForClassic:
		f := b.Stmts.ForClassic(id)
		collectCallsStmt(b, f.Init, out)
		collectCallsExpr(b, f.Cond, out)
		collectCallsStmt(b, f.Post, out)
		collectCallsStmt(b, f.Body, out)
	case bast.StmtForIn:
		f := b.Stmts.ForIn(id)
		collectCallsExpr(b, f.Iterable, out)
		collectCallsStmt(b, f.Body, out)
	case bast.StmtMatch:
		m := b.Stmts.Match(id)
		collectCallsExpr(b, m.Subject, out)
		for _, arm := range m.Arms {
			collectCallsStmt(b, arm.Body, out)
		}
	case bast.StmtTry:
		t := b.Stmts.Try(id)
		collectCallsStmt(b, t.Body, out)
		for _, c := range t.Catches {
			collectCallsStmt(b, c.Body, out)
		}
		collectCallsStmt(b, t.Finally, out)
	case bast.StmtReturn:
		r := b.Stmts.Return(id)
		collectCallsExpr(b, r.Value, out)
	case bast.StmtThrow:
		th := b.Stmts.Throw(id)
		collectCallsExpr(b, th.Value, out)
	}
}

func collectCallsExpr(b *bast.Builder, id bast.ExprID, out *[]CallSite) {
	node := b.Exprs.Get(id)
	if node == nil {
		return
	}
	switch node.Kind {
	case bast.ExprCall:
		call := b.Exprs.Call(id)
		*out = append(*out, CallSite{Name: call.CalleeName, Span: node.Span})
		collectCallsExpr(b, call.Callee, out)
		for _, a := range call.Args {
			collectCallsExpr(b, a, out)
		}
	case bast.ExprBinary:
		bin := b.Exprs.Binary(id)
		collectCallsExpr(b, bin.Left, out)
		collectCallsExpr(b, bin.Right, out)
	case bast.ExprUnary:
		u := b.Exprs.Unary(id)
		collectCallsExpr(b, u.Operand, out)
	case bast.ExprMember:
		m := b.Exprs.Member(id)
		collectCallsExpr(b, m.Target, out)
	case bast.ExprIndex:
		ix := b.Exprs.Index(id)
		collectCallsExpr(b, ix.Target, out)
		collectCallsExpr(b, ix.Index, out)
	case bast.ExprNew:
		n := b.Exprs.New(id)
		for _, a := range n.Args {
			collectCallsExpr(b, a, out)
		}
	case bast.ExprLambda:
		l := b.Exprs.Lambda(id)
		collectCallsStmt(b, l.Body, out)
	case bast.ExprTernary:
		t := b.Exprs.Ternary(id)
		collectCallsExpr(b, t.Cond, out)
		collectCallsExpr(b, t.Then, out)
		collectCallsExpr(b, t.Else, out)
	case bast.ExprCast:
		c := b.Exprs.Cast(id)
		collectCallsExpr(b, c.Target, out)
	}
}
