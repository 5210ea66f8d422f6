package dataflow

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/lattice"
)

// LiveResult gives live-variable facts in the conventional sense: In is the
// set live on entry to a block, Out the set live on exit. The underlying
// solver runs Backward, which internally names its own in/out the other way
// round (its "out" is what Transfer produces walking backward from a
// block's successors, i.e. what is live going INTO the block); this type
// unwraps that so nothing outside this file has to reason about it.
type LiveResult struct {
	In  map[cfg.BlockID]lattice.Set[VarRef]
	Out map[cfg.BlockID]lattice.Set[VarRef]
}

// LiveVariables computes live variables (may, backward):
//
//	in[B]  = use[B] ∪ (out[B] - def[B])
//	out[B] = ∪ (in[S] for S in succ(B))
func LiveVariables(b *bast.Builder, bind *Binding, g *cfg.Graph) LiveResult {
	facts := computeFacts(b, bind, g)

	an := lattice.Analysis[lattice.Set[VarRef]]{
		Direction:    lattice.Backward,
		Lattice:      lattice.May[VarRef](),
		InitialEntry: func() lattice.Set[VarRef] { return lattice.NewSet[VarRef]() },
		Transfer: func(blk *cfg.Block, in lattice.Set[VarRef]) lattice.Set[VarRef] {
			f := facts[blk.ID]
			return lattice.Union(f.Use, lattice.Subtract(in, f.Def))
		},
	}
	res := lattice.Solve(g, an)
	// Solve's Backward "out" field is the join of successors' "in", i.e. the
	// Transfer result computed for each block walking backward — that IS
	// the conventional live-IN set. Its "in" field (join of predecessors'
	// out-in-traversal-direction, i.e. of this block's own live-in over its
	// predecessors) is the conventional live-OUT set of THIS block, because
	// for Backward the solver treats "predecessors" as the CFG successors.
	return LiveResult{In: res.Out, Out: res.In}
}

// DeadAssignment is an assignment or binding whose variable is not live
// immediately after the write — spec §4.7's dead-assignment query.
type DeadAssignment struct {
	Var  VarRef
	Site bast.StmtID
}

// DeadAssignments replays each block's events backward from its live-out
// set, since the block-granular solver only gives entry/exit facts and the
// query needs the live set immediately after each individual write.
func DeadAssignments(b *bast.Builder, bind *Binding, g *cfg.Graph) []DeadAssignment {
	facts := computeFacts(b, bind, g)
	live := LiveVariables(b, bind, g)

	var out []DeadAssignment
	for _, blk := range g.Blocks {
		cur := live.Out[blk.ID].Clone()
		events := facts[blk.ID].Events
		for i := len(events) - 1; i >= 0; i-- {
			e := events[i]
			switch e.Kind {
			case EventDef:
				if !cur.Has(e.Var) {
					out = append(out, DeadAssignment{Var: e.Var, Site: e.Site})
				}
				delete(cur, e.Var)
			case EventUse:
				cur[e.Var] = struct{}{}
			}
		}
	}
	return out
}
