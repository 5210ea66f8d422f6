package cfg

import "github.com/calor-lang/effects/internal/bast"

// noBlock is a sentinel BlockID, distinct from every real id (which is
// 0-based and dense), meaning "this path never falls through" — returned by
// builder methods after an unconditional return, throw, break, or continue.
const noBlock BlockID = ^BlockID(0)

// loopCtx records the continue target (header), break target (exit), and
// how deep the active finally stack was when the loop was entered, so a
// break/continue threads only the finally blocks entered since then.
type loopCtx struct {
	header       BlockID
	exit         BlockID
	finallyDepth int
}

// builder lowers one function body into a Graph by walking statements with
// a "current block" cursor: each stmt-handling method appends to (or
// branches off) the block it's given and returns the block subsequent
// statements should continue appending to, or noBlock if control never
// falls through.
type builder struct {
	b *bast.Builder
	g *Graph
	// loops is the active loop stack, innermost last.
	loops []loopCtx
	// finally is the active try-finally body stack, innermost last. A
	// return/throw/break/continue threads fresh copies of these bodies
	// (spec §4.5: finally is duplicated onto every exit path from its try).
	finally []bast.StmtID
}

// Build lowers fn's body into a CFG. fn.Body may be NoStmtID (an abstract
// or extern declaration), in which case the result is a bare entry
// connected directly to exit.
func Build(b *bast.Builder, fn *bast.Function) *Graph {
	g := &Graph{}
	bd := &builder{b: b, g: g}

	entry := bd.newBlock()
	exit := bd.newBlock()
	g.Entry = entry
	g.Exit = exit

	end := entry
	if fn.Body.IsValid() {
		end = bd.stmtOne(entry, fn.Body)
	}
	if end != noBlock {
		g.addEdge(end, exit)
		g.Blocks[end].Term = Terminator{Kind: TermExit}
	}
	g.Blocks[exit].Term = Terminator{Kind: TermExit}

	g.RPO = computeRPO(g)
	return g
}

func (bd *builder) newBlock() BlockID {
	id := BlockID(len(bd.g.Blocks))
	bd.g.Blocks = append(bd.g.Blocks, &Block{ID: id})
	return id
}

// stmtOne lowers a single statement (which may itself be a block) starting
// at cur, returning the block execution falls through to afterward, or
// noBlock if it never falls through.
func (bd *builder) stmtOne(cur BlockID, id bast.StmtID) BlockID {
	if !id.IsValid() {
		return cur
	}
	node := bd.b.Stmts.Get(id)
	switch node.Kind {
	case bast.StmtBlock:
		return bd.block(cur, id)
	case bast.StmtLet, bast.StmtAssign, bast.StmtExpr, bast.StmtDrop:
		bd.append(cur, id)
		return cur
	case bast.StmtIf:
		return bd.ifStmt(cur, id)
	case bast.StmtWhile:
		return bd.whileStmt(cur, id)
	case bast.StmtDoWhile:
		return bd.doWhileStmt(cur, id)
	case bast.StmtForClassic:
		return bd.forClassicStmt(cur, id)
	case bast.StmtForIn:
		return bd.forInStmt(cur, id)
	case bast.StmtMatch:
		return bd.matchStmt(cur, id)
	case bast.StmtTry:
		return bd.tryStmt(cur, id)
	case bast.StmtReturn:
		return bd.returnStmt(cur, id)
	case bast.StmtThrow:
		return bd.throwStmt(cur, id)
	case bast.StmtBreak:
		return bd.breakStmt(cur)
	case bast.StmtContinue:
		return bd.continueStmt(cur)
	default:
		bd.append(cur, id)
		return cur
	}
}

func (bd *builder) append(cur BlockID, id bast.StmtID) {
	blk := bd.g.block(cur)
	blk.Stmts = append(blk.Stmts, id)
}

// block lowers a StmtBlock's children in sequence, stopping (and dropping
// any remaining siblings as unreachable) the moment one of them never
// falls through.
func (bd *builder) block(cur BlockID, id bast.StmtID) BlockID {
	b := bd.b.Stmts.Block(id)
	for _, child := range b.Stmts {
		cur = bd.stmtOne(cur, child)
		if cur == noBlock {
			return noBlock
		}
	}
	return cur
}

func (bd *builder) ifStmt(cur BlockID, id bast.StmtID) BlockID {
	ifs := bd.b.Stmts.If(id)

	thenStart := bd.newBlock()
	elseStart := bd.newBlock()
	bd.g.block(cur).Term = Terminator{Kind: TermBranch, Cond: ifs.Cond, Targets: []BlockID{thenStart, elseStart}}
	bd.g.addEdge(cur, thenStart)
	bd.g.addEdge(cur, elseStart)

	thenEnd := bd.stmtOne(thenStart, ifs.Then)
	elseEnd := elseStart
	if ifs.Else.IsValid() {
		elseEnd = bd.stmtOne(elseStart, ifs.Else)
	}

	if thenEnd == noBlock && elseEnd == noBlock {
		return noBlock
	}
	merge := bd.newBlock()
	if thenEnd != noBlock {
		bd.g.addEdge(thenEnd, merge)
	}
	if elseEnd != noBlock {
		bd.g.addEdge(elseEnd, merge)
	}
	return merge
}

func (bd *builder) whileStmt(cur BlockID, id bast.StmtID) BlockID {
	w := bd.b.Stmts.While(id)

	header := bd.newBlock()
	bd.g.addEdge(cur, header)
	bodyStart := bd.newBlock()
	after := bd.newBlock()
	bd.g.block(header).Term = Terminator{Kind: TermBranch, Cond: w.Cond, Targets: []BlockID{bodyStart, after}}
	bd.g.addEdge(header, bodyStart)
	bd.g.addEdge(header, after)

	bd.loops = append(bd.loops, loopCtx{header: header, exit: after, finallyDepth: len(bd.finally)})
	bodyEnd := bd.stmtOne(bodyStart, w.Body)
	bd.loops = bd.loops[:len(bd.loops)-1]

	if bodyEnd != noBlock {
		bd.g.addEdge(bodyEnd, header) // back-edge targets the loop header
	}
	return after
}

func (bd *builder) doWhileStmt(cur BlockID, id bast.StmtID) BlockID {
	dw := bd.b.Stmts.DoWhile(id)

	bodyStart := bd.newBlock()
	bd.g.addEdge(cur, bodyStart)
	condBlock := bd.newBlock()
	after := bd.newBlock()

	// continue re-checks the condition; header is condBlock.
	bd.loops = append(bd.loops, loopCtx{header: condBlock, exit: after, finallyDepth: len(bd.finally)})
	bodyEnd := bd.stmtOne(bodyStart, dw.Body)
	bd.loops = bd.loops[:len(bd.loops)-1]

	if bodyEnd != noBlock {
		bd.g.addEdge(bodyEnd, condBlock)
	}
	bd.g.block(condBlock).Term = Terminator{Kind: TermBranch, Cond: dw.Cond, Targets: []BlockID{bodyStart, after}}
	bd.g.addEdge(condBlock, bodyStart) // back-edge targets the loop header
	bd.g.addEdge(condBlock, after)
	return after
}

func (bd *builder) forClassicStmt(cur BlockID, id bast.StmtID) BlockID {
	f := bd.b.Stmts.ForClassic(id)

	initEnd := cur
	if f.Init.IsValid() {
		initEnd = bd.stmtOne(cur, f.Init)
	}
	header := bd.newBlock()
	if initEnd != noBlock {
		bd.g.addEdge(initEnd, header)
	}
	bodyStart := bd.newBlock()
	after := bd.newBlock()
	if f.Cond.IsValid() {
		bd.g.block(header).Term = Terminator{Kind: TermBranch, Cond: f.Cond, Targets: []BlockID{bodyStart, after}}
		bd.g.addEdge(header, bodyStart)
		bd.g.addEdge(header, after)
	} else {
		bd.g.block(header).Term = Terminator{Kind: TermJump, Targets: []BlockID{bodyStart}}
		bd.g.addEdge(header, bodyStart)
	}

	postStart := bd.newBlock()
	bd.loops = append(bd.loops, loopCtx{header: postStart, exit: after, finallyDepth: len(bd.finally)})
	bodyEnd := bd.stmtOne(bodyStart, f.Body)
	bd.loops = bd.loops[:len(bd.loops)-1]
	if bodyEnd != noBlock {
		bd.g.addEdge(bodyEnd, postStart)
	}

	postEnd := postStart
	if f.Post.IsValid() {
		postEnd = bd.stmtOne(postStart, f.Post)
	}
	if postEnd != noBlock {
		bd.g.addEdge(postEnd, header) // back-edge targets the loop header
	}
	return after
}

func (bd *builder) forInStmt(cur BlockID, id bast.StmtID) BlockID {
	f := bd.b.Stmts.ForIn(id)

	header := bd.newBlock()
	bd.g.addEdge(cur, header)
	bodyStart := bd.newBlock()
	after := bd.newBlock()
	// No iterator-protocol model exists here, so exhaustion is a
	// nondeterministic branch rather than a true condition test.
	bd.g.block(header).Term = Terminator{Kind: TermBranch, Cond: f.Iterable, Targets: []BlockID{bodyStart, after}}
	bd.g.addEdge(header, bodyStart)
	bd.g.addEdge(header, after)

	bd.loops = append(bd.loops, loopCtx{header: header, exit: after, finallyDepth: len(bd.finally)})
	bodyEnd := bd.stmtOne(bodyStart, f.Body)
	bd.loops = bd.loops[:len(bd.loops)-1]

	if bodyEnd != noBlock {
		bd.g.addEdge(bodyEnd, header)
	}
	return after
}

func (bd *builder) matchStmt(cur BlockID, id bast.StmtID) BlockID {
	m := bd.b.Stmts.Match(id)
	if len(m.Arms) == 0 {
		return cur
	}

	armStarts := make([]BlockID, len(m.Arms))
	for i := range m.Arms {
		armStarts[i] = bd.newBlock()
		bd.g.addEdge(cur, armStarts[i])
	}
	bd.g.block(cur).Term = Terminator{Kind: TermSwitch, Cond: m.Subject, Targets: armStarts}

	merge := bd.newBlock()
	anyFallthrough := false
	for i, arm := range m.Arms {
		armEnd := bd.stmtOne(armStarts[i], arm.Body)
		if armEnd != noBlock {
			bd.g.addEdge(armEnd, merge)
			anyFallthrough = true
		}
	}
	if !anyFallthrough {
		return noBlock
	}
	return merge
}

func (bd *builder) tryStmt(cur BlockID, id bast.StmtID) BlockID {
	t := bd.b.Stmts.Try(id)
	hasFinally := t.Finally.IsValid()
	if hasFinally {
		bd.finally = append(bd.finally, t.Finally)
	}

	bodyStart := bd.newBlock()
	bd.g.addEdge(cur, bodyStart)
	bodyEnd := bd.stmtOne(bodyStart, t.Body)

	var normalEnds []BlockID
	if bodyEnd != noBlock {
		normalEnds = append(normalEnds, bodyEnd)
	}
	// Simplification: a catch is reachable directly from the try's entry
	// rather than from specific throwing statements inside Body, since
	// this model has no exception-type flow to route precise edges.
	for _, c := range t.Catches {
		cStart := bd.newBlock()
		bd.g.addEdge(cur, cStart)
		cEnd := bd.stmtOne(cStart, c.Body)
		if cEnd != noBlock {
			normalEnds = append(normalEnds, cEnd)
		}
	}

	if hasFinally {
		bd.finally = bd.finally[:len(bd.finally)-1]
	}

	if len(normalEnds) == 0 {
		return noBlock
	}
	joined := bd.newBlock()
	for _, e := range normalEnds {
		bd.g.addEdge(e, joined)
	}
	if !hasFinally {
		return joined
	}

	finallyStart := bd.newBlock()
	bd.g.addEdge(joined, finallyStart)
	return bd.stmtOne(finallyStart, t.Finally)
}

func (bd *builder) returnStmt(cur BlockID, id bast.StmtID) BlockID {
	bd.append(cur, id)
	end := bd.threadFinally(cur, 0)
	if end != noBlock {
		bd.g.addEdge(end, bd.g.Exit)
	}
	return noBlock
}

func (bd *builder) throwStmt(cur BlockID, id bast.StmtID) BlockID {
	bd.append(cur, id)
	end := bd.threadFinally(cur, 0)
	if end != noBlock {
		bd.g.addEdge(end, bd.g.Exit)
	}
	return noBlock
}

func (bd *builder) breakStmt(cur BlockID) BlockID {
	if len(bd.loops) == 0 {
		return noBlock
	}
	top := bd.loops[len(bd.loops)-1]
	end := bd.threadFinally(cur, top.finallyDepth)
	if end != noBlock {
		bd.g.addEdge(end, top.exit)
	}
	return noBlock
}

func (bd *builder) continueStmt(cur BlockID) BlockID {
	if len(bd.loops) == 0 {
		return noBlock
	}
	top := bd.loops[len(bd.loops)-1]
	end := bd.threadFinally(cur, top.finallyDepth)
	if end != noBlock {
		bd.g.addEdge(end, top.header)
	}
	return noBlock
}

// threadFinally builds a fresh copy of every active finally body from the
// innermost (end of bd.finally) down to fromIndex, linking cur through each
// in turn, and returns where control continues after the last one (or
// noBlock if a finally body itself never falls through). While building
// finally body i, only the finally bodies outer to it (< i) are still
// considered active, matching normal nested-unwind semantics.
func (bd *builder) threadFinally(cur BlockID, fromIndex int) BlockID {
	for i := len(bd.finally) - 1; i >= fromIndex; i-- {
		body := bd.finally[i]
		saved := bd.finally
		bd.finally = bd.finally[:i]
		next := bd.newBlock()
		bd.g.addEdge(cur, next)
		cur = bd.stmtOne(next, body)
		bd.finally = saved
		if cur == noBlock {
			return noBlock
		}
	}
	return cur
}
