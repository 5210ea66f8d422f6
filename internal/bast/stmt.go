package bast

import "github.com/calor-lang/effects/internal/source"

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtAssign
	StmtExpr
	StmtIf
	StmtWhile
	StmtDoWhile
	StmtForClassic
	StmtForIn
	StmtMatch
	StmtTry
	StmtReturn
	StmtThrow
	StmtBreak
	StmtContinue
	StmtDrop
)

type Stmt struct {
	Kind    StmtKind
	Payload uint32
	Span    source.Span
}

type BlockStmt struct {
	Stmts []StmtID
}

// LetStmt is a local binding. Init is NoExprID for an uninitialized
// declaration (which dataflow's uninitialized-use analysis seeds as
// unknown until first write).
type LetStmt struct {
	Name string
	Type TypeRef
	Init ExprID
}

// AssignStmt covers both `x = v` and a field/index write `a.b = v`,
// `a[i] = v`. Target's Expr.Kind distinguishes a pure local rebind
// (ExprIdent) from a heap mutation (ExprMember, ExprIndex) for the effect
// enforcement mutation rule.
type AssignStmt struct {
	Target ExprID
	Value  ExprID
}

type ExprStmt struct {
	Expr ExprID
}

type IfStmt struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID when absent; an else-if is a nested StmtIf here
}

type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

type DoWhileStmt struct {
	Body StmtID
	Cond ExprID
}

type ForClassicStmt struct {
	Init StmtID // NoStmtID when absent
	Cond ExprID // NoExprID when absent (infinite loop)
	Post StmtID // NoStmtID when absent
	Body StmtID
}

// ForInStmt is `for x in iterable { body }`. IndexVar is non-empty when the
// iterable is array-like and paired with an explicit index binding (`for i,
// x in arr`). Dataflow binds it like Var; the bounds checker does not
// treat it specially.
type ForInStmt struct {
	Var      string
	IndexVar string
	Iterable ExprID
	Body     StmtID
}

type MatchArm struct {
	// Pattern is the surface pattern text; only a small set of shapes
	// matter to analysis (Some(x), None, _, literal) and are classified by
	// PatternKind rather than re-parsed here.
	Pattern PatternKind
	Bind    string // bound name for Some(x)-shaped patterns, else ""
	Body    StmtID
}

type PatternKind uint8

const (
	PatternWildcard PatternKind = iota
	PatternLiteral
	PatternSome
	PatternNone
	PatternOk
	PatternErr
)

type MatchStmt struct {
	Subject ExprID
	Arms    []MatchArm
}

type CatchClause struct {
	ExceptionType string
	BindName      string
	Body          StmtID
}

// TryStmt's Finally, when present, is lowered onto every exit edge of Body
// and every catch's Body during CFG construction (spec §4.5) rather than
// being its own control-flow successor here.
type TryStmt struct {
	Body    StmtID
	Catches []CatchClause
	Finally StmtID // NoStmtID when absent
}

type ReturnStmt struct {
	Value ExprID // NoExprID for a bare `return`
}

type ThrowStmt struct {
	Value ExprID // NoExprID for a bare `rethrow`
}

// Stmts owns every statement arena for one module.
type Stmts struct {
	nodes      *Arena[Stmt]
	blocks     *Arena[BlockStmt]
	lets       *Arena[LetStmt]
	assigns    *Arena[AssignStmt]
	exprs      *Arena[ExprStmt]
	ifs        *Arena[IfStmt]
	whiles     *Arena[WhileStmt]
	doWhiles   *Arena[DoWhileStmt]
	classicFor *Arena[ForClassicStmt]
	forIns     *Arena[ForInStmt]
	matches    *Arena[MatchStmt]
	trys       *Arena[TryStmt]
	returns    *Arena[ReturnStmt]
	throws     *Arena[ThrowStmt]
}

func newStmts() *Stmts {
	return &Stmts{
		nodes:      NewArena[Stmt](64),
		blocks:     NewArena[BlockStmt](32),
		lets:       NewArena[LetStmt](32),
		assigns:    NewArena[AssignStmt](32),
		exprs:      NewArena[ExprStmt](32),
		ifs:        NewArena[IfStmt](16),
		whiles:     NewArena[WhileStmt](8),
		doWhiles:   NewArena[DoWhileStmt](4),
		classicFor: NewArena[ForClassicStmt](8),
		forIns:     NewArena[ForInStmt](8),
		matches:    NewArena[MatchStmt](8),
		trys:       NewArena[TryStmt](4),
		returns:    NewArena[ReturnStmt](16),
		throws:     NewArena[ThrowStmt](4),
	}
}

func (s *Stmts) Get(id StmtID) *Stmt {
	if !id.IsValid() {
		return nil
	}
	return s.nodes.At(uint32(id))
}

func (s *Stmts) Block(id StmtID) *BlockStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtBlock {
		return nil
	}
	return s.blocks.At(n.Payload)
}

func (s *Stmts) Let(id StmtID) *LetStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtLet {
		return nil
	}
	return s.lets.At(n.Payload)
}

func (s *Stmts) Assign(id StmtID) *AssignStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtAssign {
		return nil
	}
	return s.assigns.At(n.Payload)
}

func (s *Stmts) Expr(id StmtID) *ExprStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtExpr {
		return nil
	}
	return s.exprs.At(n.Payload)
}

func (s *Stmts) If(id StmtID) *IfStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtIf {
		return nil
	}
	return s.ifs.At(n.Payload)
}

func (s *Stmts) While(id StmtID) *WhileStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtWhile {
		return nil
	}
	return s.whiles.At(n.Payload)
}

func (s *Stmts) DoWhile(id StmtID) *DoWhileStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtDoWhile {
		return nil
	}
	return s.doWhiles.At(n.Payload)
}

func (s *Stmts) ForClassic(id StmtID) *ForClassicStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtForClassic {
		return nil
	}
	return s.classicFor.At(n.Payload)
}

func (s *Stmts) ForIn(id StmtID) *ForInStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtForIn {
		return nil
	}
	return s.forIns.At(n.Payload)
}

func (s *Stmts) Match(id StmtID) *MatchStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtMatch {
		return nil
	}
	return s.matches.At(n.Payload)
}

func (s *Stmts) Try(id StmtID) *TryStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtTry {
		return nil
	}
	return s.trys.At(n.Payload)
}

func (s *Stmts) Return(id StmtID) *ReturnStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtReturn {
		return nil
	}
	return s.returns.At(n.Payload)
}

func (s *Stmts) Throw(id StmtID) *ThrowStmt {
	n := s.Get(id)
	if n == nil || n.Kind != StmtThrow {
		return nil
	}
	return s.throws.At(n.Payload)
}

func (s *Stmts) NewBlock(b BlockStmt, span source.Span) StmtID {
	p := s.blocks.Put(b)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtBlock, Payload: p, Span: span}))
}

func (s *Stmts) NewLet(l LetStmt, span source.Span) StmtID {
	p := s.lets.Put(l)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtLet, Payload: p, Span: span}))
}

func (s *Stmts) NewAssign(a AssignStmt, span source.Span) StmtID {
	p := s.assigns.Put(a)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtAssign, Payload: p, Span: span}))
}

func (s *Stmts) NewExpr(e ExprStmt, span source.Span) StmtID {
	p := s.exprs.Put(e)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtExpr, Payload: p, Span: span}))
}

func (s *Stmts) NewIf(i IfStmt, span source.Span) StmtID {
	p := s.ifs.Put(i)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtIf, Payload: p, Span: span}))
}

func (s *Stmts) NewWhile(w WhileStmt, span source.Span) StmtID {
	p := s.whiles.Put(w)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtWhile, Payload: p, Span: span}))
}

func (s *Stmts) NewDoWhile(d DoWhileStmt, span source.Span) StmtID {
	p := s.doWhiles.Put(d)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtDoWhile, Payload: p, Span: span}))
}

func (s *Stmts) NewForClassic(f ForClassicStmt, span source.Span) StmtID {
	p := s.classicFor.Put(f)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtForClassic, Payload: p, Span: span}))
}

func (s *Stmts) NewForIn(f ForInStmt, span source.Span) StmtID {
	p := s.forIns.Put(f)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtForIn, Payload: p, Span: span}))
}

func (s *Stmts) NewMatch(m MatchStmt, span source.Span) StmtID {
	p := s.matches.Put(m)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtMatch, Payload: p, Span: span}))
}

func (s *Stmts) NewTry(t TryStmt, span source.Span) StmtID {
	p := s.trys.Put(t)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtTry, Payload: p, Span: span}))
}

func (s *Stmts) NewReturn(r ReturnStmt, span source.Span) StmtID {
	p := s.returns.Put(r)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtReturn, Payload: p, Span: span}))
}

func (s *Stmts) NewThrow(t ThrowStmt, span source.Span) StmtID {
	p := s.throws.Put(t)
	return StmtID(s.nodes.Put(Stmt{Kind: StmtThrow, Payload: p, Span: span}))
}

func (s *Stmts) NewSimple(kind StmtKind, span source.Span) StmtID {
	return StmtID(s.nodes.Put(Stmt{Kind: kind, Span: span}))
}
