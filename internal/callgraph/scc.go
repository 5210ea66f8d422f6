package callgraph

import "github.com/calor-lang/effects/internal/bast"

// SCC is one strongly connected component of the call graph's internal
// edges. Member order within an SCC is unspecified; SCC order across the
// returned slice is reverse topological (spec §4.4 phase 2: "leaves
// first").
type SCC struct {
	Members []bast.FunctionID
}

// Condense runs Tarjan's algorithm over g's internal edges only (external
// calls have no FunctionID and never participate in cycle detection).
func Condense(g *Graph) []SCC {
	t := &tarjan{
		g:       g,
		index:   make(map[bast.FunctionID]int),
		lowlink: make(map[bast.FunctionID]int),
		onStack: make(map[bast.FunctionID]bool),
	}
	for _, fid := range g.Functions {
		if _, seen := t.index[fid]; !seen {
			t.strongconnect(fid)
		}
	}
	return t.sccs
}

type tarjan struct {
	g       *Graph
	counter int
	index   map[bast.FunctionID]int
	lowlink map[bast.FunctionID]int
	onStack map[bast.FunctionID]bool
	stack   []bast.FunctionID
	sccs    []SCC
}

// strongconnect is the standard recursive Tarjan visit. Tarjan's algorithm
// emits a fully-popped SCC only once every node it can reach has already
// been assigned to an SCC, which is exactly the reverse topological
// (leaves-first) order phase 3 needs.
func (t *tarjan) strongconnect(v bast.FunctionID) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, site := range t.g.Edges[v] {
		w := site.Callee
		if w == bast.NoFunctionID {
			continue
		}
		if _, seen := t.index[w]; !seen {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var members []bast.FunctionID
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			members = append(members, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, SCC{Members: members})
	}
}
