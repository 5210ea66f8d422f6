// Package checkers implements spec §4.9's bug-pattern checkers
// (division-by-zero, overflow, null dereference, index out of bounds), each
// walking a function's CFG and consulting a path-condition builder for
// dominating guards, grounded on the teacher's guarded-access analysis in
// internal/sema/guarded_check.go (lock-guard accumulation along a path). The
// guard set uses internal/lattice's set type, but its must-fixpoint is
// iterated directly in path.go rather than through lattice.Solve.
package checkers

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/lattice"
)

// GuardKind is one of spec §4.9's recognized relation shapes.
type GuardKind uint8

const (
	GuardNotZero GuardKind = iota
	GuardGTZero
	GuardLTZero
	GuardGEZero
	GuardLTLen
	GuardNotNull
)

// Guard is one dominating fact syntactically derived from a branch
// condition: "Var <relation>", with Len naming the length-bearing
// expression for GuardLTLen.
type Guard struct {
	Kind GuardKind
	Var  string
	Len  string
}

func (g Guard) mentions(name string) bool {
	return g.Var == name || g.Len == name
}

type GuardSet = lattice.Set[Guard]

// guardsFromCond derives, for a boolean condition expression, the guards
// known to hold when it evaluates true (pos) and when it evaluates false
// (neg). Unrecognized shapes contribute nothing — a template/guard yielding
// nothing is not an error, it just gives the checker less to work with.
func guardsFromCond(b *bast.Builder, id bast.ExprID) (pos, neg GuardSet) {
	pos, neg = lattice.NewSet[Guard](), lattice.NewSet[Guard]()
	if !id.IsValid() {
		return pos, neg
	}
	n := b.Exprs.Get(id)
	if n == nil {
		return pos, neg
	}
	switch n.Kind {
	case bast.ExprUnary:
		u := b.Exprs.Unary(id)
		if u.Op == bast.UnaryNot {
			p, ng := guardsFromCond(b, u.Operand)
			return ng, p
		}
		return pos, neg
	case bast.ExprBinary:
		bin := b.Exprs.Binary(id)
		switch bin.Op {
		case bast.BinLogicalAnd:
			lp, _ := guardsFromCond(b, bin.Left)
			rp, _ := guardsFromCond(b, bin.Right)
			return lattice.Union(lp, rp), neg
		case bast.BinLogicalOr:
			_, ln := guardsFromCond(b, bin.Left)
			_, rn := guardsFromCond(b, bin.Right)
			return pos, lattice.Union(ln, rn)
		}
		if g, ok := guardFromComparison(b, bin); ok {
			pos[g] = struct{}{}
		}
		return pos, neg
	default:
		return pos, neg
	}
}

// guardFromComparison recognizes one leaf relation: `x != 0`, `x > 0`,
// `x < 0`, `x >= 0`, `x < len`, `x != null`. The `!=`, `>` and `<` forms
// against 0 or null are also recognized with the operands swapped; `x >= 0`
// and `x < len` are recognized only with the variable on the left.
func guardFromComparison(b *bast.Builder, bin *bast.BinaryExpr) (Guard, bool) {
	leftName, leftIsIdent := identName(b, bin.Left)
	rightName, rightIsIdent := identName(b, bin.Right)
	leftIsZero := isZeroLit(b, bin.Left)
	rightIsZero := isZeroLit(b, bin.Right)
	leftIsNull := isNullLit(b, bin.Left)
	rightIsNull := isNullLit(b, bin.Right)

	switch bin.Op {
	case bast.BinNotEq:
		switch {
		case leftIsIdent && rightIsZero:
			return Guard{Kind: GuardNotZero, Var: leftName}, true
		case rightIsIdent && leftIsZero:
			return Guard{Kind: GuardNotZero, Var: rightName}, true
		case leftIsIdent && rightIsNull:
			return Guard{Kind: GuardNotNull, Var: leftName}, true
		case rightIsIdent && leftIsNull:
			return Guard{Kind: GuardNotNull, Var: rightName}, true
		}
	case bast.BinGreater:
		if leftIsIdent && rightIsZero {
			return Guard{Kind: GuardGTZero, Var: leftName}, true
		}
		if rightIsIdent && leftIsZero {
			return Guard{Kind: GuardLTZero, Var: rightName}, true
		}
	case bast.BinLess:
		if leftIsIdent && rightIsZero {
			return Guard{Kind: GuardLTZero, Var: leftName}, true
		}
		if rightIsIdent && leftIsZero {
			return Guard{Kind: GuardGTZero, Var: rightName}, true
		}
		if leftIsIdent {
			if lenName, ok := lengthExprName(b, bin.Right); ok {
				return Guard{Kind: GuardLTLen, Var: leftName, Len: lenName}, true
			}
		}
	case bast.BinGreaterEq:
		if leftIsIdent && rightIsZero {
			return Guard{Kind: GuardGEZero, Var: leftName}, true
		}
	}
	return Guard{}, false
}

func identName(b *bast.Builder, id bast.ExprID) (string, bool) {
	if !id.IsValid() {
		return "", false
	}
	n := b.Exprs.Get(id)
	if n == nil || n.Kind != bast.ExprIdent {
		return "", false
	}
	return b.Exprs.Ident(id).Name, true
}

func isZeroLit(b *bast.Builder, id bast.ExprID) bool {
	if !id.IsValid() {
		return false
	}
	n := b.Exprs.Get(id)
	if n == nil || n.Kind != bast.ExprLit {
		return false
	}
	lit := b.Exprs.Lit(id)
	return lit.Kind == bast.LitInt && lit.IntVal == 0
}

func isNullLit(b *bast.Builder, id bast.ExprID) bool {
	if !id.IsValid() {
		return false
	}
	n := b.Exprs.Get(id)
	if n == nil || n.Kind != bast.ExprLit {
		return false
	}
	return b.Exprs.Lit(id).Kind == bast.LitNull
}

// lengthExprName recognizes the length-bearing operand of `x < len`:
// a bare identifier (a variable conventionally holding a length), a
// `len(arr)` call, or an `arr.length` member access.
func lengthExprName(b *bast.Builder, id bast.ExprID) (string, bool) {
	if !id.IsValid() {
		return "", false
	}
	n := b.Exprs.Get(id)
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case bast.ExprIdent:
		return b.Exprs.Ident(id).Name, true
	case bast.ExprCall:
		c := b.Exprs.Call(id)
		if c.CalleeName == "len" && len(c.Args) == 1 {
			if name, ok := identName(b, c.Args[0]); ok {
				return name, true
			}
		}
	case bast.ExprMember:
		m := b.Exprs.Member(id)
		if m.Name == "length" || m.Name == "len" {
			if name, ok := identName(b, m.Target); ok {
				return name, true
			}
		}
	}
	return "", false
}
