package dataflow

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/lattice"
)

// Definition is "(variable, site)" per spec §4.7: one concrete write of a
// variable, identified by the statement that performed it.
type Definition struct {
	Var  VarRef
	Site bast.StmtID
}

// ReachingResult exposes the two queries spec §4.7 names directly:
// definitions reaching a block's entry/exit.
type ReachingResult struct {
	Entry map[cfg.BlockID]lattice.Set[Definition]
	Exit  map[cfg.BlockID]lattice.Set[Definition]
}

// ReachingDefinitions computes reaching definitions (may, forward): a
// binding or assignment generates a new definition and kills every prior
// definition of the same variable, from any site.
func ReachingDefinitions(b *bast.Builder, bind *Binding, g *cfg.Graph) ReachingResult {
	facts := computeFacts(b, bind, g)

	gen := make(map[cfg.BlockID]lattice.Set[Definition], len(g.Blocks))
	for id, f := range facts {
		lastSite := make(map[VarRef]bast.StmtID, len(f.Def))
		for _, e := range f.Events {
			if e.Kind == EventDef {
				lastSite[e.Var] = e.Site
			}
		}
		g1 := lattice.NewSet[Definition]()
		for v, site := range lastSite {
			g1[Definition{Var: v, Site: site}] = struct{}{}
		}
		gen[id] = g1
	}

	an := lattice.Analysis[lattice.Set[Definition]]{
		Direction:    lattice.Forward,
		Lattice:      lattice.May[Definition](),
		InitialEntry: func() lattice.Set[Definition] { return lattice.NewSet[Definition]() },
		Transfer: func(blk *cfg.Block, in lattice.Set[Definition]) lattice.Set[Definition] {
			kill := facts[blk.ID].Def
			survivors := lattice.NewSet[Definition]()
			for d := range in {
				if !kill.Has(d.Var) {
					survivors[d] = struct{}{}
				}
			}
			return lattice.Union(gen[blk.ID], survivors)
		},
	}
	res := lattice.Solve(g, an)
	return ReachingResult{Entry: res.In, Exit: res.Out}
}

// FilterByVar narrows a set of reaching definitions down to one variable
// name, the third query spec §4.7 names ("filtered by variable name").
func FilterByVar(defs lattice.Set[Definition], name string) lattice.Set[Definition] {
	out := lattice.NewSet[Definition]()
	for d := range defs {
		if d.Var.Name == name {
			out[d] = struct{}{}
		}
	}
	return out
}
