package checkers

import "github.com/calor-lang/effects/internal/bast"

// walkExprs visits id and every sub-expression reachable from it, calling
// visit on each in pre-order. It does not descend into a lambda's body —
// the same intraprocedural boundary internal/dataflow's walkIdents draws —
// since a captured lambda is analyzed as its own function.
func walkExprs(b *bast.Builder, id bast.ExprID, visit func(bast.ExprID)) {
	if !id.IsValid() {
		return
	}
	n := b.Exprs.Get(id)
	if n == nil {
		return
	}
	visit(id)
	switch n.Kind {
	case bast.ExprCall:
		for _, a := range b.Exprs.Call(id).Args {
			walkExprs(b, a, visit)
		}
	case bast.ExprBinary:
		bin := b.Exprs.Binary(id)
		walkExprs(b, bin.Left, visit)
		walkExprs(b, bin.Right, visit)
	case bast.ExprUnary:
		walkExprs(b, b.Exprs.Unary(id).Operand, visit)
	case bast.ExprMember:
		walkExprs(b, b.Exprs.Member(id).Target, visit)
	case bast.ExprIndex:
		ix := b.Exprs.Index(id)
		walkExprs(b, ix.Target, visit)
		walkExprs(b, ix.Index, visit)
	case bast.ExprNew:
		for _, a := range b.Exprs.New(id).Args {
			walkExprs(b, a, visit)
		}
	case bast.ExprTernary:
		te := b.Exprs.Ternary(id)
		walkExprs(b, te.Cond, visit)
		walkExprs(b, te.Then, visit)
		walkExprs(b, te.Else, visit)
	case bast.ExprCast:
		walkExprs(b, b.Exprs.Cast(id).Target, visit)
	}
}

// blockExprRoots yields every top-level expression a block examines: each
// simple statement's operand expression. The block terminator's condition
// is not included, so an expression inside an if/while/for condition or a
// match subject is not checked.
func blockExprRoots(b *bast.Builder, stmtIDs []bast.StmtID) []bast.ExprID {
	var roots []bast.ExprID
	for _, stmtID := range stmtIDs {
		node := b.Stmts.Get(stmtID)
		switch node.Kind {
		case bast.StmtLet:
			if v := b.Stmts.Let(stmtID).Init; v.IsValid() {
				roots = append(roots, v)
			}
		case bast.StmtAssign:
			a := b.Stmts.Assign(stmtID)
			roots = append(roots, a.Target, a.Value)
		case bast.StmtExpr:
			roots = append(roots, b.Stmts.Expr(stmtID).Expr)
		case bast.StmtReturn:
			if v := b.Stmts.Return(stmtID).Value; v.IsValid() {
				roots = append(roots, v)
			}
		case bast.StmtThrow:
			if v := b.Stmts.Throw(stmtID).Value; v.IsValid() {
				roots = append(roots, v)
			}
		}
	}
	return roots
}
