package cfg

// computeRPO returns a reverse-post-order traversal of g reachable from
// Entry. Construction guarantees every block is reachable (each is wired
// in from an already-reachable predecessor the moment it's created), so
// this never drops a block silently.
func computeRPO(g *Graph) []BlockID {
	visited := make([]bool, len(g.Blocks))
	post := make([]BlockID, 0, len(g.Blocks))

	var visit func(BlockID)
	visit = func(b BlockID) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range g.Blocks[b].Succs {
			visit(s)
		}
		post = append(post, b)
	}
	visit(g.Entry)

	rpo := make([]BlockID, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}
