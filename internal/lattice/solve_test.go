package lattice

import (
	"testing"

	"github.com/calor-lang/effects/internal/cfg"
)

// buildDiamond makes entry -> {left, right} -> exit.
func buildDiamond() *cfg.Graph {
	g := &cfg.Graph{}
	entry := add(g)
	left := add(g)
	right := add(g)
	exit := add(g)
	g.Entry = entry
	g.Exit = exit
	edge(g, entry, left)
	edge(g, entry, right)
	edge(g, left, exit)
	edge(g, right, exit)
	g.RPO = []cfg.BlockID{entry, left, right, exit}
	return g
}

func add(g *cfg.Graph) cfg.BlockID {
	id := cfg.BlockID(len(g.Blocks))
	g.Blocks = append(g.Blocks, &cfg.Block{ID: id})
	return id
}

func edge(g *cfg.Graph, from, to cfg.BlockID) {
	g.Blocks[from].Succs = append(g.Blocks[from].Succs, to)
	g.Blocks[to].Preds = append(g.Blocks[to].Preds, from)
}

func TestSolve_ForwardMayUnionsAtMerge(t *testing.T) {
	g := buildDiamond()
	entry, left, right := g.Entry, g.Blocks[0].Succs[0], g.Blocks[0].Succs[1]

	a := Analysis[Set[string]]{
		Direction:    Forward,
		Lattice:      May[string](),
		InitialEntry: func() Set[string] { return NewSet[string]() },
		Transfer: func(b *cfg.Block, in Set[string]) Set[string] {
			out := in.Clone()
			switch b.ID {
			case left:
				out["a"] = struct{}{}
			case right:
				out["b"] = struct{}{}
			}
			return out
		},
	}
	res := Solve(g, a)

	exitIn := res.In[g.Exit]
	if !exitIn.Has("a") || !exitIn.Has("b") {
		t.Fatalf("expected exit's in-state to union both branches, got %v", exitIn)
	}
	if len(res.Out[entry]) != 0 {
		t.Fatalf("expected entry's own out-state to still be empty before either branch runs, got %v", res.Out[entry])
	}
}

func TestSolve_BackwardLiveVariablesPropagatesFromExit(t *testing.T) {
	g := buildDiamond()
	right := g.Blocks[0].Succs[1]

	a := Analysis[Set[string]]{
		Direction:    Backward,
		Lattice:      May[string](),
		InitialEntry: func() Set[string] { return NewSet[string]() },
		Transfer: func(b *cfg.Block, in Set[string]) Set[string] {
			out := in.Clone()
			if b.ID == right {
				out["x"] = struct{}{}
			}
			return out
		},
	}
	res := Solve(g, a)

	if !res.Out[g.Entry].Has("x") {
		t.Fatalf("expected a backward analysis to propagate right's fact back to entry's out-state, got %v", res.Out[g.Entry])
	}
}

func TestSolve_MustLatticeIntersectsAtMerge(t *testing.T) {
	g := buildDiamond()
	left := g.Blocks[0].Succs[0]
	right := g.Blocks[0].Succs[1]

	universe := NewSet("a", "b")
	a := Analysis[Set[string]]{
		Direction:    Forward,
		Lattice:      Must[string](universe),
		InitialEntry: universe.Clone,
		Transfer: func(b *cfg.Block, in Set[string]) Set[string] {
			out := in.Clone()
			if b.ID == left {
				delete(out, "b")
			}
			if b.ID == right {
				delete(out, "a")
			}
			return out
		},
	}
	res := Solve(g, a)

	if len(res.In[g.Exit]) != 0 {
		t.Fatalf("expected the must-lattice merge to intersect down to the empty set, got %v", res.In[g.Exit])
	}
}
