// Package invariant implements spec §4.10: loop-context extraction,
// invariant-template synthesis, and a k-induction driver that is a client
// of internal/prover's external decision procedure. Grounded on
// internal/cfg/build.go's own loop lowering — every while/do-while/
// classic-for/for-in header receives an explicit back-edge ("back-edge
// targets the loop header") — since no separate loop-recognition pass
// exists elsewhere in the corpus to ground this on.
package invariant

import (
	"github.com/calor-lang/effects/internal/cfg"
)

// Loop is one natural loop extracted from a function's CFG: a header block
// targeted by a back-edge, and every block the loop body comprises.
type Loop struct {
	Header cfg.BlockID
	Latch  cfg.BlockID // the back-edge's source
	Body   []cfg.BlockID
}

func (l Loop) contains(id cfg.BlockID) bool {
	for _, b := range l.Body {
		if b == id {
			return true
		}
	}
	return false
}

// ExtractLoops finds every loop in g via its back-edges: an edge u->v is a
// back edge when v's reverse-post-order position is no later than u's —
// true for every loop header this CFG builder produces, since the body is
// always laid out between the header and its back-edge source in RPO. The
// natural loop body is then every block that can reach the latch without
// leaving through the header, via reverse reachability from the latch.
func ExtractLoops(g *cfg.Graph) []Loop {
	rpoIndex := make(map[cfg.BlockID]int, len(g.RPO))
	for i, id := range g.RPO {
		rpoIndex[id] = i
	}

	var loops []Loop
	for _, blk := range g.Blocks {
		for _, succ := range blk.Succs {
			if rpoIndex[succ] <= rpoIndex[blk.ID] {
				loops = append(loops, Loop{
					Header: succ,
					Latch:  blk.ID,
					Body:   naturalLoopBody(g, succ, blk.ID),
				})
			}
		}
	}
	return loops
}

func naturalLoopBody(g *cfg.Graph, header, latch cfg.BlockID) []cfg.BlockID {
	body := map[cfg.BlockID]struct{}{header: {}, latch: {}}
	worklist := []cfg.BlockID{latch}
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if n == header {
			continue
		}
		for _, p := range g.Blocks[n].Preds {
			if _, seen := body[p]; !seen {
				body[p] = struct{}{}
				worklist = append(worklist, p)
			}
		}
	}
	out := make([]cfg.BlockID, 0, len(body))
	for _, id := range g.RPO {
		if _, ok := body[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// exitOf returns the loop's exit block: the header's branch target that
// falls outside the loop body, if the header is itself a conditional
// branch (it always is for while/for-in/classic-for-with-condition; a
// bare do-while tests at its latch instead, in which case the exit is the
// latch's non-body target).
func exitOf(g *cfg.Graph, l Loop) (cfg.BlockID, bool) {
	for _, candidate := range []cfg.BlockID{l.Header, l.Latch} {
		blk := g.Blocks[candidate]
		if blk.Term.Kind != cfg.TermBranch || len(blk.Term.Targets) != 2 {
			continue
		}
		for _, t := range blk.Term.Targets {
			if !l.contains(t) {
				return t, true
			}
		}
	}
	return 0, false
}
