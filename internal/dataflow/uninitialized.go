package dataflow

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/lattice"
)

// UninitializedResult gives, per block, the set of locals that may still be
// uninitialized on entry/exit.
type UninitializedResult struct {
	Entry map[cfg.BlockID]lattice.Set[VarRef]
	Exit  map[cfg.BlockID]lattice.Set[VarRef]
}

// Uninitialized computes may-uninitialized variables (may, forward): every
// tracked local begins uninitialized at function entry, and a write removes
// it from the set for everything dominated by that write.
func Uninitialized(b *bast.Builder, bind *Binding, g *cfg.Graph) UninitializedResult {
	facts := computeFacts(b, bind, g)
	seed := lattice.NewSet(bind.Locals...)

	an := lattice.Analysis[lattice.Set[VarRef]]{
		Direction:    lattice.Forward,
		Lattice:      lattice.May[VarRef](),
		InitialEntry: func() lattice.Set[VarRef] { return seed.Clone() },
		Transfer: func(blk *cfg.Block, in lattice.Set[VarRef]) lattice.Set[VarRef] {
			return lattice.Subtract(in, facts[blk.ID].Def)
		},
	}
	res := lattice.Solve(g, an)
	return UninitializedResult{Entry: res.In, Exit: res.Out}
}

// UninitializedUse is one read of a variable that may not yet have been
// written on the path reaching it.
type UninitializedUse struct {
	Var  VarRef
	Site bast.StmtID
}

// UninitializedUses replays each block's events forward from its
// solver-computed entry fact, since the block-granular solver only gives
// entry/exit facts and the query needs the still-uninitialized set at each
// individual read.
func UninitializedUses(b *bast.Builder, bind *Binding, g *cfg.Graph) []UninitializedUse {
	facts := computeFacts(b, bind, g)
	res := Uninitialized(b, bind, g)

	var out []UninitializedUse
	for _, blk := range g.Blocks {
		cur := res.Entry[blk.ID].Clone()
		for _, e := range facts[blk.ID].Events {
			switch e.Kind {
			case EventUse:
				if cur.Has(e.Var) {
					out = append(out, UninitializedUse{Var: e.Var, Site: e.Site})
				}
			case EventDef:
				delete(cur, e.Var)
			}
		}
	}
	return out
}
