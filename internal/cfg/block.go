// Package cfg lowers a bound function body to a control-flow graph of
// basic blocks (spec §4.5): exactly one entry, exactly one exit, dense
// unique block ids, every non-exit block has at least one successor, every
// non-entry block has at least one predecessor, and a deterministic
// reverse-post-order traversal exposed for internal/lattice's solvers.
package cfg

import "github.com/calor-lang/effects/internal/bast"

// BlockID is a dense, 0-based block handle. Entry is always block 0.
type BlockID uint32

// TerminatorKind classifies how a block transfers control.
type TerminatorKind uint8

const (
	// TermJump is the zero value: control passes along the block's Succs
	// edges. Targets is filled in only on a classic-for header with no
	// condition, where it names the body block.
	TermJump TerminatorKind = iota
	// TermBranch transfers to Targets[0] when Cond is true, Targets[1]
	// otherwise. Also used for a for-in header, whose "condition" is the
	// iterable expression and whose two targets model "has next"/"done" as
	// a nondeterministic branch, since no iterator-protocol model exists
	// at this layer.
	TermBranch
	// TermSwitch transfers to exactly one of Targets, selected by Cond
	// (the match subject); arm selection itself is out of scope for the
	// CFG (checkers read each arm's pattern via bast directly).
	TermSwitch
	// TermExit marks the block that falls off the end of the body, and the
	// exit block itself. A block ending in a return or a throw keeps
	// TermJump; its edge to the exit block, after any active finally
	// blocks have been threaded in, is recorded in Succs.
	TermExit
)

// Terminator is the last instruction of a block.
type Terminator struct {
	Kind TerminatorKind
	// Cond is the controlling expression: a boolean test for TermBranch
	// guarding if/while/do-while/classic-for, the iterable for a for-in
	// TermBranch, or the subject for TermSwitch. Unused for TermJump/TermExit.
	Cond    bast.ExprID
	Targets []BlockID
}

// Block is one basic block: a straight-line list of simple statements
// (Let, Assign, Expr, and the "return"/"throw" markers to preserve their
// operand for downstream checkers) followed by exactly one terminator.
type Block struct {
	ID    BlockID
	Stmts []bast.StmtID
	Term  Terminator
	Preds []BlockID
	Succs []BlockID
}

// Graph is one function's lowered CFG.
type Graph struct {
	Blocks []*Block
	Entry  BlockID
	Exit   BlockID
	// RPO is a deterministic reverse-post-order traversal from Entry,
	// exposed directly so internal/lattice solvers don't need to
	// recompute it.
	RPO []BlockID
}

func (g *Graph) block(id BlockID) *Block {
	return g.Blocks[id]
}

func (g *Graph) addEdge(from, to BlockID) {
	g.Blocks[from].Succs = append(g.Blocks[from].Succs, to)
	g.Blocks[to].Preds = append(g.Blocks[to].Preds, from)
}
