package lattice

import "github.com/calor-lang/effects/internal/cfg"

// Solve runs the worklist fixpoint: reverse-post-order seeding for forward
// analyses, post-order (RPO reversed) for backward, re-enqueuing a block's
// successors (predecessors, for backward) only when its out-state actually
// changes, and terminating once the queue empties — "terminates when no
// block's out-state changes" (spec §4.6). Monotonicity of Transfer is the
// caller's obligation, not enforced here, per spec.
func Solve[T any](g *cfg.Graph, a Analysis[T]) Result[T] {
	in := make(map[cfg.BlockID]T, len(g.Blocks))
	out := make(map[cfg.BlockID]T, len(g.Blocks))
	for _, b := range g.Blocks {
		in[b.ID] = a.Lattice.Bottom()
		out[b.ID] = a.Lattice.Bottom()
	}

	order := g.RPO
	if a.Direction == Backward {
		order = reversed(g.RPO)
	}

	entry := g.Entry
	if a.Direction == Backward {
		entry = g.Exit
	}

	queue := append([]cfg.BlockID(nil), order...)
	queued := make(map[cfg.BlockID]bool, len(order))
	for _, id := range queue {
		queued[id] = true
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		queued[id] = false

		preds := predecessors(g, a.Direction, id)
		var newIn T
		switch {
		case id == entry:
			newIn = a.InitialEntry()
		case len(preds) == 0:
			newIn = a.Lattice.Bottom()
		default:
			newIn = out[preds[0]]
			for _, p := range preds[1:] {
				newIn = a.Lattice.Join(newIn, out[p])
			}
		}
		in[id] = newIn

		newOut := a.Transfer(g.Blocks[id], newIn)
		if a.Lattice.equal(newOut, out[id]) {
			continue
		}
		out[id] = newOut
		for _, s := range successors(g, a.Direction, id) {
			if !queued[s] {
				queue = append(queue, s)
				queued[s] = true
			}
		}
	}

	return Result[T]{In: in, Out: out}
}

func predecessors(g *cfg.Graph, dir Direction, id cfg.BlockID) []cfg.BlockID {
	b := g.Blocks[id]
	if dir == Forward {
		return b.Preds
	}
	return b.Succs
}

func successors(g *cfg.Graph, dir Direction, id cfg.BlockID) []cfg.BlockID {
	b := g.Blocks[id]
	if dir == Forward {
		return b.Succs
	}
	return b.Preds
}

func reversed(ids []cfg.BlockID) []cfg.BlockID {
	out := make([]cfg.BlockID, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}
