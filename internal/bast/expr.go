package bast

import "github.com/calor-lang/effects/internal/source"

// ExprKind tags the payload arena an Expr's Payload id indexes into.
type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprCall
	ExprBinary
	ExprUnary
	ExprMember
	ExprIndex
	ExprNew
	ExprLambda
	ExprTernary
	ExprCast
)

// Expr is a tagged-union node: Kind selects which payload arena Payload
// indexes into. Every analysis walks this exhaustively over Kind.
type Expr struct {
	Kind    ExprKind
	Payload uint32
	Span    source.Span
}

type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
	BinLogicalAnd
	BinLogicalOr
	BinEq
	BinNotEq
	BinLess
	BinLessEq
	BinGreater
	BinGreaterEq
	BinNullCoalesce
)

type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
)

type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)

type IdentExpr struct {
	Name string
}

type LitExpr struct {
	Kind    LitKind
	IntVal  int64
	FltVal  float64
	StrVal  string
	BoolVal bool
}

// CallExpr is a function/method/constructor call. CalleeName is the
// syntactic name when the callee is a plain identifier or a.b.c member
// chain ("Console.WriteLine", "db.execute"); it is empty when the callee
// is itself a complex expression (e.g. a call result), in which case only
// Callee is meaningful and the call resolves to Unknown.
type CallExpr struct {
	Callee     ExprID
	CalleeName string
	Args       []ExprID
}

type BinaryExpr struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type UnaryExpr struct {
	Op      UnaryOp
	Operand ExprID
}

// MemberExpr is a.Name field/property access or method-group reference.
type MemberExpr struct {
	Target ExprID
	Name   string
}

type IndexExpr struct {
	Target ExprID
	Index  ExprID
}

// NewExpr constructs a value of TypeName via its constructor.
type NewExpr struct {
	TypeName string
	Args     []ExprID
}

// LambdaExpr is an inline function literal; its body's computed effect set
// is folded into whichever enclosing function captures it.
type LambdaExpr struct {
	Params []Param
	Body   StmtID
}

type TernaryExpr struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

type CastExpr struct {
	Target ExprID
	Type   TypeRef
}

// Exprs owns every expression arena for one module.
type Exprs struct {
	nodes    *Arena[Expr]
	idents   *Arena[IdentExpr]
	lits     *Arena[LitExpr]
	calls    *Arena[CallExpr]
	binaries *Arena[BinaryExpr]
	unaries  *Arena[UnaryExpr]
	members  *Arena[MemberExpr]
	indexes  *Arena[IndexExpr]
	news     *Arena[NewExpr]
	lambdas  *Arena[LambdaExpr]
	ternary  *Arena[TernaryExpr]
	casts    *Arena[CastExpr]
}

func newExprs() *Exprs {
	return &Exprs{
		nodes:    NewArena[Expr](64),
		idents:   NewArena[IdentExpr](64),
		lits:     NewArena[LitExpr](64),
		calls:    NewArena[CallExpr](32),
		binaries: NewArena[BinaryExpr](32),
		unaries:  NewArena[UnaryExpr](16),
		members:  NewArena[MemberExpr](32),
		indexes:  NewArena[IndexExpr](16),
		news:     NewArena[NewExpr](16),
		lambdas:  NewArena[LambdaExpr](8),
		ternary:  NewArena[TernaryExpr](8),
		casts:    NewArena[CastExpr](8),
	}
}

func (e *Exprs) Get(id ExprID) *Expr {
	if !id.IsValid() {
		return nil
	}
	return e.nodes.At(uint32(id))
}

func (e *Exprs) Ident(id ExprID) *IdentExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprIdent {
		return nil
	}
	return e.idents.At(n.Payload)
}

func (e *Exprs) Lit(id ExprID) *LitExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprLit {
		return nil
	}
	return e.lits.At(n.Payload)
}

func (e *Exprs) Call(id ExprID) *CallExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprCall {
		return nil
	}
	return e.calls.At(n.Payload)
}

func (e *Exprs) Binary(id ExprID) *BinaryExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprBinary {
		return nil
	}
	return e.binaries.At(n.Payload)
}

func (e *Exprs) Unary(id ExprID) *UnaryExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprUnary {
		return nil
	}
	return e.unaries.At(n.Payload)
}

func (e *Exprs) Member(id ExprID) *MemberExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprMember {
		return nil
	}
	return e.members.At(n.Payload)
}

func (e *Exprs) Index(id ExprID) *IndexExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprIndex {
		return nil
	}
	return e.indexes.At(n.Payload)
}

func (e *Exprs) New(id ExprID) *NewExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprNew {
		return nil
	}
	return e.news.At(n.Payload)
}

func (e *Exprs) Lambda(id ExprID) *LambdaExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprLambda {
		return nil
	}
	return e.lambdas.At(n.Payload)
}

func (e *Exprs) Ternary(id ExprID) *TernaryExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprTernary {
		return nil
	}
	return e.ternary.At(n.Payload)
}

func (e *Exprs) Cast(id ExprID) *CastExpr {
	n := e.Get(id)
	if n == nil || n.Kind != ExprCast {
		return nil
	}
	return e.casts.At(n.Payload)
}

func (e *Exprs) NewIdent(name string, span source.Span) ExprID {
	p := e.idents.Put(IdentExpr{Name: name})
	return ExprID(e.nodes.Put(Expr{Kind: ExprIdent, Payload: p, Span: span}))
}

func (e *Exprs) NewLit(lit LitExpr, span source.Span) ExprID {
	p := e.lits.Put(lit)
	return ExprID(e.nodes.Put(Expr{Kind: ExprLit, Payload: p, Span: span}))
}

func (e *Exprs) NewCall(call CallExpr, span source.Span) ExprID {
	p := e.calls.Put(call)
	return ExprID(e.nodes.Put(Expr{Kind: ExprCall, Payload: p, Span: span}))
}

func (e *Exprs) NewBinary(bin BinaryExpr, span source.Span) ExprID {
	p := e.binaries.Put(bin)
	return ExprID(e.nodes.Put(Expr{Kind: ExprBinary, Payload: p, Span: span}))
}

func (e *Exprs) NewUnary(u UnaryExpr, span source.Span) ExprID {
	p := e.unaries.Put(u)
	return ExprID(e.nodes.Put(Expr{Kind: ExprUnary, Payload: p, Span: span}))
}

func (e *Exprs) NewMember(m MemberExpr, span source.Span) ExprID {
	p := e.members.Put(m)
	return ExprID(e.nodes.Put(Expr{Kind: ExprMember, Payload: p, Span: span}))
}

func (e *Exprs) NewIndex(ix IndexExpr, span source.Span) ExprID {
	p := e.indexes.Put(ix)
	return ExprID(e.nodes.Put(Expr{Kind: ExprIndex, Payload: p, Span: span}))
}

func (e *Exprs) NewNew(n NewExpr, span source.Span) ExprID {
	p := e.news.Put(n)
	return ExprID(e.nodes.Put(Expr{Kind: ExprNew, Payload: p, Span: span}))
}

func (e *Exprs) NewLambda(l LambdaExpr, span source.Span) ExprID {
	p := e.lambdas.Put(l)
	return ExprID(e.nodes.Put(Expr{Kind: ExprLambda, Payload: p, Span: span}))
}

func (e *Exprs) NewTernary(t TernaryExpr, span source.Span) ExprID {
	p := e.ternary.Put(t)
	return ExprID(e.nodes.Put(Expr{Kind: ExprTernary, Payload: p, Span: span}))
}

func (e *Exprs) NewCast(c CastExpr, span source.Span) ExprID {
	p := e.casts.Put(c)
	return ExprID(e.nodes.Put(Expr{Kind: ExprCast, Payload: p, Span: span}))
}
