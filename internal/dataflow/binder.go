package dataflow

import "github.com/calor-lang/effects/internal/bast"

// VarRef names one distinct local-variable binding within a function.
// DeclSite is the declaring Let statement's id; NoStmtID is a shared
// sentinel for every binding dataflow treats as pre-initialized and does
// not track for uninitialized-use/reaching-definitions purposes: function
// parameters, for-in loop variables, and catch-clause bind names. None of
// those has a single natural declaring StmtID (a for-in/catch introduces
// its variable without a Let), and collapsing them onto one sentinel is a
// deliberate simplification — they're always readable, never flagged
// uninitialized, which is the only property those analyses need from them.
type VarRef struct {
	Name     string
	DeclSite bast.StmtID
}

// Binding is the result of resolving every identifier in a function body
// to the lexical scope that introduced it.
type Binding struct {
	// ExprVar maps every ExprIdent node that denotes a variable reference
	// (a read, or an assignment's target) to its resolved VarRef. An
	// ExprIdent absent from this map refers to something outside local
	// scope (a type name, an unresolvable global) and is ignored by every
	// analysis in this package.
	ExprVar map[bast.ExprID]VarRef
	// DefVar maps every Let statement, and every Assign statement whose
	// target is a plain identifier, to the variable it defines.
	DefVar map[bast.StmtID]VarRef
	// Locals lists every StmtLet-declared variable, in declaration order —
	// the seed set for uninitialized-use (spec §4.7: "every local — but
	// not parameters — begins uninitialized").
	Locals []VarRef
}

type scope struct {
	names  map[string]bast.StmtID
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{names: make(map[string]bast.StmtID), parent: parent}
}

func (s *scope) lookup(name string) (VarRef, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if site, ok := cur.names[name]; ok {
			return VarRef{Name: name, DeclSite: site}, true
		}
	}
	return VarRef{}, false
}

// Bind resolves every identifier in fn's body to its declaring scope.
func Bind(b *bast.Builder, fn *bast.Function) *Binding {
	bound := &Binding{
		ExprVar: make(map[bast.ExprID]VarRef),
		DefVar:  make(map[bast.StmtID]VarRef),
	}
	root := newScope(nil)
	for _, p := range fn.Params {
		root.names[p.Name] = bast.NoStmtID
	}
	w := &binder{b: b, out: bound}
	w.stmt(root, fn.Body)
	return bound
}

type binder struct {
	b   *bast.Builder
	out *Binding
}

func (w *binder) stmt(sc *scope, id bast.StmtID) {
	if !id.IsValid() {
		return
	}
	node := w.b.Stmts.Get(id)
	switch node.Kind {
	case bast.StmtBlock:
		blk := w.b.Stmts.Block(id)
		child := newScope(sc)
		for _, s := range blk.Stmts {
			w.stmt(child, s)
		}
	case bast.StmtLet:
		l := w.b.Stmts.Let(id)
		if l.Init.IsValid() {
			w.expr(sc, l.Init)
		}
		sc.names[l.Name] = id
		v := VarRef{Name: l.Name, DeclSite: id}
		w.out.DefVar[id] = v
		w.out.Locals = append(w.out.Locals, v)
	case bast.StmtAssign:
		a := w.b.Stmts.Assign(id)
		w.expr(sc, a.Value)
		w.resolveTarget(sc, id, a.Target)
	case bast.StmtExpr:
		w.expr(sc, w.b.Stmts.Expr(id).Expr)
	case bast.StmtIf:
		ifs := w.b.Stmts.If(id)
		w.expr(sc, ifs.Cond)
		w.stmt(newScope(sc), ifs.Then)
		if ifs.Else.IsValid() {
			w.stmt(newScope(sc), ifs.Else)
		}
	case bast.StmtWhile:
		wh := w.b.Stmts.While(id)
		w.expr(sc, wh.Cond)
		w.stmt(newScope(sc), wh.Body)
	case bast.StmtDoWhile:
		dw := w.b.Stmts.DoWhile(id)
		w.stmt(newScope(sc), dw.Body)
		w.expr(sc, dw.Cond)
	case bast.StmtForClassic:
		f := w.b.Stmts.ForClassic(id)
		loopScope := newScope(sc)
		w.stmt(loopScope, f.Init)
		if f.Cond.IsValid() {
			w.expr(loopScope, f.Cond)
		}
		w.stmt(newScope(loopScope), f.Body)
		w.stmt(loopScope, f.Post)
	case bast.StmtForIn:
		f := w.b.Stmts.ForIn(id)
		w.expr(sc, f.Iterable)
		loopScope := newScope(sc)
		loopScope.names[f.Var] = bast.NoStmtID
		if f.IndexVar != "" {
			loopScope.names[f.IndexVar] = bast.NoStmtID
		}
		w.stmt(loopScope, f.Body)
	case bast.StmtMatch:
		m := w.b.Stmts.Match(id)
		w.expr(sc, m.Subject)
		for _, arm := range m.Arms {
			armScope := newScope(sc)
			if arm.Bind != "" {
				armScope.names[arm.Bind] = bast.NoStmtID
			}
			w.stmt(armScope, arm.Body)
		}
	case bast.StmtTry:
		t := w.b.Stmts.Try(id)
		w.stmt(newScope(sc), t.Body)
		for _, c := range t.Catches {
			catchScope := newScope(sc)
			if c.BindName != "" {
				catchScope.names[c.BindName] = bast.NoStmtID
			}
			w.stmt(catchScope, c.Body)
		}
		if t.Finally.IsValid() {
			w.stmt(newScope(sc), t.Finally)
		}
	case bast.StmtReturn:
		if v := w.b.Stmts.Return(id).Value; v.IsValid() {
			w.expr(sc, v)
		}
	case bast.StmtThrow:
		if v := w.b.Stmts.Throw(id).Value; v.IsValid() {
			w.expr(sc, v)
		}
	}
}

// resolveTarget records the assignment's defined variable when the target
// is a plain identifier (a local rebind); a field/index target mutates the
// heap instead and is walked purely for the variable reads it contains.
func (w *binder) resolveTarget(sc *scope, assignID bast.StmtID, target bast.ExprID) {
	t := w.b.Exprs.Get(target)
	if t == nil {
		return
	}
	if t.Kind == bast.ExprIdent {
		name := w.b.Exprs.Ident(target).Name
		v, ok := sc.lookup(name)
		if !ok {
			v = VarRef{Name: name, DeclSite: bast.NoStmtID}
		}
		w.out.ExprVar[target] = v
		w.out.DefVar[assignID] = v
		return
	}
	w.expr(sc, target)
}

// expr walks every ExprIdent reachable from id and resolves it against sc.
func (w *binder) expr(sc *scope, id bast.ExprID) {
	if !id.IsValid() {
		return
	}
	n := w.b.Exprs.Get(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case bast.ExprIdent:
		name := w.b.Exprs.Ident(id).Name
		if v, ok := sc.lookup(name); ok {
			w.out.ExprVar[id] = v
		}
	case bast.ExprLit:
	case bast.ExprCall:
		c := w.b.Exprs.Call(id)
		w.expr(sc, c.Callee)
		for _, a := range c.Args {
			w.expr(sc, a)
		}
	case bast.ExprBinary:
		bin := w.b.Exprs.Binary(id)
		w.expr(sc, bin.Left)
		w.expr(sc, bin.Right)
	case bast.ExprUnary:
		w.expr(sc, w.b.Exprs.Unary(id).Operand)
	case bast.ExprMember:
		w.expr(sc, w.b.Exprs.Member(id).Target)
	case bast.ExprIndex:
		ix := w.b.Exprs.Index(id)
		w.expr(sc, ix.Target)
		w.expr(sc, ix.Index)
	case bast.ExprNew:
		for _, a := range w.b.Exprs.New(id).Args {
			w.expr(sc, a)
		}
	case bast.ExprLambda:
		lam := w.b.Exprs.Lambda(id)
		lamScope := newScope(sc)
		for _, p := range lam.Params {
			lamScope.names[p.Name] = bast.NoStmtID
		}
		w.stmt(lamScope, lam.Body)
	case bast.ExprTernary:
		te := w.b.Exprs.Ternary(id)
		w.expr(sc, te.Cond)
		w.expr(sc, te.Then)
		w.expr(sc, te.Else)
	case bast.ExprCast:
		w.expr(sc, w.b.Exprs.Cast(id).Target)
	}
}
