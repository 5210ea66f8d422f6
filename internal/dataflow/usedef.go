package dataflow

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/lattice"
)

// EventKind distinguishes a variable read from a variable write within a
// block's ordered event trace.
type EventKind uint8

const (
	EventUse EventKind = iota
	EventDef
)

// Event is one read or write of a variable, in the program order it
// appears within a block; Site is the owning simple statement (NoStmtID
// for a use contributed by the block's trailing branch/switch condition).
type Event struct {
	Kind EventKind
	Var  VarRef
	Site bast.StmtID
}

// BlockFacts is one block's per-block-granularity gen/kill pair (Use/Def,
// continuing the teacher's computeBlockUseDef shape) plus the ordered
// Events trace every per-statement query in this package replays against
// the block-boundary fact the lattice solver computes.
type BlockFacts struct {
	Events []Event
	// Use is every variable read before it is (re)written within this
	// block — the classic liveness "use" set.
	Use lattice.Set[VarRef]
	// Def is every variable written within this block, regardless of
	// position — the classic "def"/"kill" set.
	Def lattice.Set[VarRef]
}

// computeFacts computes BlockFacts for every block in g.
func computeFacts(b *bast.Builder, bind *Binding, g *cfg.Graph) map[cfg.BlockID]BlockFacts {
	out := make(map[cfg.BlockID]BlockFacts, len(g.Blocks))
	for _, blk := range g.Blocks {
		out[blk.ID] = computeBlockFacts(b, bind, blk)
	}
	return out
}

func computeBlockFacts(b *bast.Builder, bind *Binding, blk *cfg.Block) BlockFacts {
	f := BlockFacts{Use: lattice.NewSet[VarRef](), Def: lattice.NewSet[VarRef]()}

	emitUse := func(site bast.StmtID, exprID bast.ExprID) {
		walkIdents(b, exprID, func(id bast.ExprID) {
			v, ok := bind.ExprVar[id]
			if !ok {
				return
			}
			f.Events = append(f.Events, Event{Kind: EventUse, Var: v, Site: site})
			if !f.Def.Has(v) {
				f.Use[v] = struct{}{}
			}
		})
	}
	emitDef := func(site bast.StmtID, v VarRef) {
		f.Events = append(f.Events, Event{Kind: EventDef, Var: v, Site: site})
		f.Def[v] = struct{}{}
	}

	for _, stmtID := range blk.Stmts {
		node := b.Stmts.Get(stmtID)
		switch node.Kind {
		case bast.StmtLet:
			l := b.Stmts.Let(stmtID)
			if l.Init.IsValid() {
				emitUse(stmtID, l.Init)
				emitDef(stmtID, bind.DefVar[stmtID])
			}
		case bast.StmtAssign:
			a := b.Stmts.Assign(stmtID)
			emitUse(stmtID, a.Value)
			if v, ok := bind.DefVar[stmtID]; ok {
				emitDef(stmtID, v)
			} else {
				emitUse(stmtID, a.Target)
			}
		case bast.StmtExpr:
			emitUse(stmtID, b.Stmts.Expr(stmtID).Expr)
		case bast.StmtReturn:
			if v := b.Stmts.Return(stmtID).Value; v.IsValid() {
				emitUse(stmtID, v)
			}
		case bast.StmtThrow:
			if v := b.Stmts.Throw(stmtID).Value; v.IsValid() {
				emitUse(stmtID, v)
			}
		}
	}
	if blk.Term.Cond.IsValid() {
		emitUse(bast.NoStmtID, blk.Term.Cond)
	}

	return f
}

// walkIdents visits every ExprIdent reachable from id, in left-to-right
// order, regardless of expression kind.
func walkIdents(b *bast.Builder, id bast.ExprID, visit func(bast.ExprID)) {
	if !id.IsValid() {
		return
	}
	n := b.Exprs.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case bast.ExprIdent:
		visit(id)
	case bast.ExprLit:
	case bast.ExprCall:
		c := b.Exprs.Call(id)
		walkIdents(b, c.Callee, visit)
		for _, a := range c.Args {
			walkIdents(b, a, visit)
		}
	case bast.ExprBinary:
		bin := b.Exprs.Binary(id)
		walkIdents(b, bin.Left, visit)
		walkIdents(b, bin.Right, visit)
	case bast.ExprUnary:
		walkIdents(b, b.Exprs.Unary(id).Operand, visit)
	case bast.ExprMember:
		walkIdents(b, b.Exprs.Member(id).Target, visit)
	case bast.ExprIndex:
		ix := b.Exprs.Index(id)
		walkIdents(b, ix.Target, visit)
		walkIdents(b, ix.Index, visit)
	case bast.ExprNew:
		for _, a := range b.Exprs.New(id).Args {
			walkIdents(b, a, visit)
		}
	case bast.ExprLambda:
		// A lambda body is its own scope and is not walked here; dataflow
		// analyses run per top-level function (spec §4.7 is intraprocedural).
	case bast.ExprTernary:
		te := b.Exprs.Ternary(id)
		walkIdents(b, te.Cond, visit)
		walkIdents(b, te.Then, visit)
		walkIdents(b, te.Else, visit)
	case bast.ExprCast:
		walkIdents(b, b.Exprs.Cast(id).Target, visit)
	}
}
