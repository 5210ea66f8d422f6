package checkers

import "github.com/calor-lang/effects/internal/bast"

// declaredTypes maps every identifier with a statically known TypeRef —
// parameters and explicitly-typed locals — to that type, for the overflow
// checker's "operand bounds unknown" test. A local with Type.Name == ""
// (no declared type) stays absent, since the checker core does no type
// inference of its own.
func declaredTypes(b *bast.Builder, fn *bast.Function) map[string]bast.TypeRef {
	out := make(map[string]bast.TypeRef, len(fn.Params))
	for _, p := range fn.Params {
		if p.Type.Name != "" {
			out[p.Name] = p.Type
		}
	}
	if fn.Body.IsValid() {
		collectLetTypes(b, fn.Body, out)
	}
	return out
}

func collectLetTypes(b *bast.Builder, id bast.StmtID, out map[string]bast.TypeRef) {
	if !id.IsValid() {
		return
	}
	node := b.Stmts.Get(id)
	if node == nil {
		return
	}
	switch node.Kind {
	case bast.StmtBlock:
		for _, s := range b.Stmts.Block(id).Stmts {
			collectLetTypes(b, s, out)
		}
	case bast.StmtLet:
		l := b.Stmts.Let(id)
		if l.Type.Name != "" {
			out[l.Name] = l.Type
		}
	case bast.StmtIf:
		i := b.Stmts.If(id)
		collectLetTypes(b, i.Then, out)
		collectLetTypes(b, i.Else, out)
	case bast.StmtWhile:
		collectLetTypes(b, b.Stmts.While(id).Body, out)
	case bast.StmtDoWhile:
		collectLetTypes(b, b.Stmts.DoWhile(id).Body, out)
	case bast.StmtForClassic:
		f := b.Stmts.ForClassic(id)
		collectLetTypes(b, f.Init, out)
		collectLetTypes(b, f.Body, out)
	case bast.StmtForIn:
		collectLetTypes(b, b.Stmts.ForIn(id).Body, out)
	case bast.StmtMatch:
		for _, arm := range b.Stmts.Match(id).Arms {
			collectLetTypes(b, arm.Body, out)
		}
	case bast.StmtTry:
		t := b.Stmts.Try(id)
		collectLetTypes(b, t.Body, out)
		for _, c := range t.Catches {
			collectLetTypes(b, c.Body, out)
		}
		collectLetTypes(b, t.Finally, out)
	}
}
