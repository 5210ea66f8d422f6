package invariant

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
)

// Bound is a loop bound that may or may not be statically known: Literal
// is the constant value when Known is true, otherwise Name carries the
// symbolic expression (a variable or "" when neither was recognized).
type Bound struct {
	Known   bool
	Literal int64
	Name    string
}

// Context is spec §4.10's loop context: induction variable, its bounds,
// and the variables the body touches.
type Context struct {
	Loop         Loop
	InductionVar string // "" when no induction variable was recognized
	Lower, Upper Bound
	Written      map[string]struct{}
	Read         map[string]struct{}
	Indexed      map[string]struct{} // array variables indexed in the body
}

// ExtractContext computes Context for one loop of fn's CFG.
func ExtractContext(b *bast.Builder, g *cfg.Graph, l Loop) Context {
	ctx := Context{
		Loop:    l,
		Written: map[string]struct{}{},
		Read:    map[string]struct{}{},
		Indexed: map[string]struct{}{},
	}
	for _, id := range l.Body {
		blk := g.Blocks[id]
		for _, stmtID := range blk.Stmts {
			collectStmtVars(b, stmtID, ctx.Written, ctx.Read, ctx.Indexed)
		}
		if blk.Term.Cond.IsValid() {
			collectExprVars(b, blk.Term.Cond, ctx.Read, ctx.Indexed)
		}
	}

	ctx.InductionVar, ctx.Upper = inductionVarAndUpper(b, g, l)
	if ctx.InductionVar != "" {
		ctx.Lower = lowerBound(b, g, l, ctx.InductionVar)
	}
	return ctx
}

// inductionVarAndUpper reads the header's branch condition (the loop test
// for while/for-in/classic-for) looking for `i < n` / `i <= n`: n is a
// literal when statically known, else its identifier name.
func inductionVarAndUpper(b *bast.Builder, g *cfg.Graph, l Loop) (string, Bound) {
	header := g.Blocks[l.Header]
	if header.Term.Kind != cfg.TermBranch || !header.Term.Cond.IsValid() {
		return "", Bound{}
	}
	n := b.Exprs.Get(header.Term.Cond)
	if n == nil || n.Kind != bast.ExprBinary {
		return "", Bound{}
	}
	bin := b.Exprs.Binary(header.Term.Cond)
	if bin.Op != bast.BinLess && bin.Op != bast.BinLessEq {
		return "", Bound{}
	}
	leftNode := b.Exprs.Get(bin.Left)
	if leftNode == nil || leftNode.Kind != bast.ExprIdent {
		return "", Bound{}
	}
	induction := b.Exprs.Ident(bin.Left).Name

	rightNode := b.Exprs.Get(bin.Right)
	if rightNode == nil {
		return induction, Bound{}
	}
	if rightNode.Kind == bast.ExprLit {
		lit := b.Exprs.Lit(bin.Right)
		if lit.Kind == bast.LitInt {
			return induction, Bound{Known: true, Literal: lit.IntVal}
		}
	}
	if rightNode.Kind == bast.ExprIdent {
		return induction, Bound{Name: b.Exprs.Ident(bin.Right).Name}
	}
	return induction, Bound{}
}

// lowerBound scans the loop's preheader — every predecessor of the header
// outside the loop body — for a binding or assignment of the induction
// variable to a literal int.
func lowerBound(b *bast.Builder, g *cfg.Graph, l Loop, induction string) Bound {
	header := g.Blocks[l.Header]
	for _, predID := range header.Preds {
		if l.contains(predID) {
			continue
		}
		pred := g.Blocks[predID]
		for i := len(pred.Stmts) - 1; i >= 0; i-- {
			stmtID := pred.Stmts[i]
			node := b.Stmts.Get(stmtID)
			switch node.Kind {
			case bast.StmtLet:
				let := b.Stmts.Let(stmtID)
				if let.Name == induction {
					return literalBound(b, let.Init)
				}
			case bast.StmtAssign:
				a := b.Stmts.Assign(stmtID)
				if name, ok := identName(b, a.Target); ok && name == induction {
					return literalBound(b, a.Value)
				}
			}
		}
	}
	return Bound{}
}

func literalBound(b *bast.Builder, id bast.ExprID) Bound {
	if !id.IsValid() {
		return Bound{}
	}
	n := b.Exprs.Get(id)
	if n == nil || n.Kind != bast.ExprLit {
		return Bound{}
	}
	lit := b.Exprs.Lit(id)
	if lit.Kind != bast.LitInt {
		return Bound{}
	}
	return Bound{Known: true, Literal: lit.IntVal}
}

func identName(b *bast.Builder, id bast.ExprID) (string, bool) {
	if !id.IsValid() {
		return "", false
	}
	n := b.Exprs.Get(id)
	if n == nil || n.Kind != bast.ExprIdent {
		return "", false
	}
	return b.Exprs.Ident(id).Name, true
}

func collectStmtVars(b *bast.Builder, id bast.StmtID, written, read map[string]struct{}, indexed map[string]struct{}) {
	if !id.IsValid() {
		return
	}
	node := b.Stmts.Get(id)
	if node == nil {
		return
	}
	switch node.Kind {
	case bast.StmtLet:
		l := b.Stmts.Let(id)
		written[l.Name] = struct{}{}
		collectExprVars(b, l.Init, read, indexed)
	case bast.StmtAssign:
		a := b.Stmts.Assign(id)
		if name, ok := identName(b, a.Target); ok {
			written[name] = struct{}{}
		} else {
			collectExprVars(b, a.Target, read, indexed)
		}
		collectExprVars(b, a.Value, read, indexed)
	case bast.StmtExpr:
		collectExprVars(b, b.Stmts.Expr(id).Expr, read, indexed)
	case bast.StmtReturn:
		collectExprVars(b, b.Stmts.Return(id).Value, read, indexed)
	case bast.StmtThrow:
		collectExprVars(b, b.Stmts.Throw(id).Value, read, indexed)
	}
}

func collectExprVars(b *bast.Builder, id bast.ExprID, read map[string]struct{}, indexed map[string]struct{}) {
	if !id.IsValid() {
		return
	}
	n := b.Exprs.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case bast.ExprIdent:
		read[b.Exprs.Ident(id).Name] = struct{}{}
	case bast.ExprCall:
		for _, a := range b.Exprs.Call(id).Args {
			collectExprVars(b, a, read, indexed)
		}
	case bast.ExprBinary:
		bin := b.Exprs.Binary(id)
		collectExprVars(b, bin.Left, read, indexed)
		collectExprVars(b, bin.Right, read, indexed)
	case bast.ExprUnary:
		collectExprVars(b, b.Exprs.Unary(id).Operand, read, indexed)
	case bast.ExprMember:
		collectExprVars(b, b.Exprs.Member(id).Target, read, indexed)
	case bast.ExprIndex:
		ix := b.Exprs.Index(id)
		if name, ok := identName(b, ix.Target); ok {
			indexed[name] = struct{}{}
		}
		collectExprVars(b, ix.Target, read, indexed)
		collectExprVars(b, ix.Index, read, indexed)
	case bast.ExprNew:
		for _, a := range b.Exprs.New(id).Args {
			collectExprVars(b, a, read, indexed)
		}
	case bast.ExprTernary:
		te := b.Exprs.Ternary(id)
		collectExprVars(b, te.Cond, read, indexed)
		collectExprVars(b, te.Then, read, indexed)
		collectExprVars(b, te.Else, read, indexed)
	case bast.ExprCast:
		collectExprVars(b, b.Exprs.Cast(id).Target, read, indexed)
	}
}

// PreheaderLiteral returns a lookup function giving the literal int value
// a named variable is bound to in l's preheader (the last write reaching
// the loop from outside its body), for templates like
// AccumulatorNonNegative that need a loop's pre-iteration value.
func PreheaderLiteral(b *bast.Builder, g *cfg.Graph, l Loop) func(name string) (int64, bool) {
	return func(name string) (int64, bool) {
		bnd := lowerBound(b, g, l, name)
		return bnd.Literal, bnd.Known
	}
}
