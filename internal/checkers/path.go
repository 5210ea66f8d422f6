package checkers

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/lattice"
)

// DominatingGuards computes, per block, the set of guards that hold on
// every path reaching that block's entry — spec §4.9's "path condition
// assembled from dominating branch guards". This is a must-style forward
// analysis (join = intersection) whose edges, unlike internal/lattice's
// block-uniform transfer, each carry different information: a branch
// block's true successor sees its positive guards, its false successor
// sees its negated guards, so the fixpoint is iterated directly here
// rather than through the generic per-block solver.
func DominatingGuards(b *bast.Builder, g *cfg.Graph) map[cfg.BlockID]GuardSet {
	universe := lattice.NewSet[Guard]()
	edgePos := make(map[cfg.BlockID]GuardSet, len(g.Blocks))
	edgeNeg := make(map[cfg.BlockID]GuardSet, len(g.Blocks))
	writes := make(map[cfg.BlockID]map[string]struct{}, len(g.Blocks))
	for _, blk := range g.Blocks {
		writes[blk.ID] = blockWrites(b, blk)
		if blk.Term.Kind == cfg.TermBranch && blk.Term.Cond.IsValid() {
			pos, neg := guardsFromCond(b, blk.Term.Cond)
			edgePos[blk.ID], edgeNeg[blk.ID] = pos, neg
			universe = lattice.Union(universe, lattice.Union(pos, neg))
		}
	}

	in := make(map[cfg.BlockID]GuardSet, len(g.Blocks))
	out := make(map[cfg.BlockID]GuardSet, len(g.Blocks))
	for _, blk := range g.Blocks {
		if blk.ID == g.Entry {
			in[blk.ID] = lattice.NewSet[Guard]()
		} else {
			in[blk.ID] = universe.Clone()
		}
		out[blk.ID] = killByWrites(in[blk.ID], writes[blk.ID])
	}

	for changed := true; changed; {
		changed = false
		for _, id := range g.RPO {
			blk := g.Blocks[id]
			if id != g.Entry {
				next := universe.Clone()
				for _, predID := range blk.Preds {
					pred := g.Blocks[predID]
					next = lattice.Intersect(next, edgeContribution(pred, id, out[predID], edgePos, edgeNeg))
				}
				if !lattice.SetEqual(next, in[id]) {
					in[id] = next
					changed = true
				}
			}
			newOut := killByWrites(in[id], writes[id])
			if !lattice.SetEqual(newOut, out[id]) {
				out[id] = newOut
				changed = true
			}
		}
	}
	return in
}

func edgeContribution(pred *cfg.Block, succ cfg.BlockID, predOut GuardSet, edgePos, edgeNeg map[cfg.BlockID]GuardSet) GuardSet {
	if pred.Term.Kind != cfg.TermBranch || len(pred.Term.Targets) != 2 {
		return predOut
	}
	switch succ {
	case pred.Term.Targets[0]:
		return lattice.Union(predOut, edgePos[pred.ID])
	case pred.Term.Targets[1]:
		return lattice.Union(predOut, edgeNeg[pred.ID])
	default:
		return predOut
	}
}

func killByWrites(in GuardSet, written map[string]struct{}) GuardSet {
	if len(written) == 0 {
		return in
	}
	out := lattice.NewSet[Guard]()
	for g := range in {
		invalidated := false
		for name := range written {
			if g.mentions(name) {
				invalidated = true
				break
			}
		}
		if !invalidated {
			out[g] = struct{}{}
		}
	}
	return out
}

// blockWrites names every variable a block's straight-line statements
// write to, used to invalidate guards that mention a reassigned variable.
func blockWrites(b *bast.Builder, blk *cfg.Block) map[string]struct{} {
	out := map[string]struct{}{}
	for _, stmtID := range blk.Stmts {
		node := b.Stmts.Get(stmtID)
		switch node.Kind {
		case bast.StmtLet:
			out[b.Stmts.Let(stmtID).Name] = struct{}{}
		case bast.StmtAssign:
			if name, ok := identName(b, b.Stmts.Assign(stmtID).Target); ok {
				out[name] = struct{}{}
			}
		}
	}
	return out
}
