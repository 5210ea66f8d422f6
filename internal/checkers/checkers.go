package checkers

import (
	"context"
	"fmt"

	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/fix"
	"github.com/calor-lang/effects/internal/prover"
	"github.com/calor-lang/effects/internal/source"
)

// guardInsertionPoint returns a zero-width span at sp's start, where a
// suggested fix can insert a guard statement ahead of the flagged
// expression's enclosing statement.
func guardInsertionPoint(sp source.Span) source.Span {
	return source.Span{File: sp.File, Start: sp.Start, End: sp.Start}
}

// Options controls whether the external-decision-procedure assist (spec
// §4.9) augments the purely syntactic CFG walk. Off by default: Prover is
// left nil and every checker falls back to guard matching alone.
type Options struct {
	UseExternalProver bool
	Prover            prover.Prover
}

func (o Options) prove(ctx context.Context, goal prover.Goal) prover.Verdict {
	if !o.UseExternalProver || o.Prover == nil {
		return prover.Unknown
	}
	return o.Prover.Prove(ctx, goal)
}

// Checker is the uniform surface spec §4.9 requires of every bug-pattern
// checker.
type Checker func(b *bast.Builder, fn *bast.Function, g *cfg.Graph, opts Options) []diag.Diagnostic

// All is every checker the top-level runner invokes per function.
var All = []Checker{
	CheckDivisionByZero,
	CheckOverflow,
	CheckNullDereference,
	CheckIndexOutOfBounds,
}

// Run invokes every registered checker over fn and concatenates their
// diagnostics. A panicking checker is not recovered here — spec §4.11's
// "one function's analysis failing must not abort the run" isolation is the
// driver's responsibility (internal/pipeline), which runs a whole function's
// checker/dataflow/taint sequence under one recover.
func Run(b *bast.Builder, fn *bast.Function, g *cfg.Graph, opts Options) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, c := range All {
		diags = append(diags, c(b, fn, g, opts)...)
	}
	return diags
}

// CheckDivisionByZero flags every `/` or `%` whose divisor is a non-literal
// expression with no dominating `!= 0` guard on it, and every literal-zero
// divisor outright.
func CheckDivisionByZero(b *bast.Builder, fn *bast.Function, g *cfg.Graph, opts Options) []diag.Diagnostic {
	var diags []diag.Diagnostic
	guards := DominatingGuards(b, g)
	for _, blk := range g.Blocks {
		active := guards[blk.ID]
		for _, root := range blockExprRoots(b, blk.Stmts) {
			walkExprs(b, root, func(id bast.ExprID) {
				n := b.Exprs.Get(id)
				if n.Kind != bast.ExprBinary {
					return
				}
				bin := b.Exprs.Binary(id)
				if bin.Op != bast.BinDiv && bin.Op != bast.BinMod {
					return
				}
				if isZeroLit(b, bin.Right) {
					diags = append(diags, diag.NewError(diag.DivisionByZero, n.Span,
						"division by literal zero"))
					return
				}
				name, isIdent := identName(b, bin.Right)
				if !isIdent {
					return
				}
				if active.Has(Guard{Kind: GuardNotZero, Var: name}) {
					return
				}
				if opts.prove(context.Background(), prover.Goal{
					Description: name + " != 0",
					Facts:       guardDescriptions(active),
				}) == prover.Proved {
					return
				}
				d := diag.New(diag.SevWarning, diag.DivisionByZero, n.Span,
					fmt.Sprintf("divisor %q has no dominating non-zero guard", name))
				d = d.WithFixSuggestion(fix.InsertText(
					fmt.Sprintf("guard %q against zero before dividing", name),
					guardInsertionPoint(n.Span),
					fmt.Sprintf("if %s == 0 { throw DivisionByZeroError; }\n", name),
					"",
					fix.WithApplicability(diag.FixApplicabilityManualReview),
				))
				diags = append(diags, d)
			})
		}
	}
	return diags
}

// CheckOverflow flags `+`, `-`, `*` on operands whose declared types are
// signed fixed-width integers when no dominating range guard narrows the
// operand below the type's limit; operands whose type is not statically
// known are left alone, since this core does no type inference of its own.
func CheckOverflow(b *bast.Builder, fn *bast.Function, g *cfg.Graph, opts Options) []diag.Diagnostic {
	var diags []diag.Diagnostic
	types := declaredTypes(b, fn)
	guards := DominatingGuards(b, g)
	for _, blk := range g.Blocks {
		active := guards[blk.ID]
		for _, root := range blockExprRoots(b, blk.Stmts) {
			walkExprs(b, root, func(id bast.ExprID) {
				n := b.Exprs.Get(id)
				if n.Kind != bast.ExprBinary {
					return
				}
				bin := b.Exprs.Binary(id)
				if bin.Op != bast.BinAdd && bin.Op != bast.BinSub && bin.Op != bast.BinMul {
					return
				}
				operand, ok := overflowCandidate(b, types, bin)
				if !ok {
					return
				}
				if rangeGuardSuppresses(active, operand.name) {
					return
				}
				if opts.prove(context.Background(), prover.Goal{
					Description: operand.name + " within " + operand.typ.Name + " bounds",
					Facts:       guardDescriptions(active),
				}) == prover.Proved {
					return
				}
				d := diag.New(diag.SevWarning, diag.Overflow, n.Span,
					fmt.Sprintf("%s on %q (%s) may overflow: operand bounds are not statically known", binOpName(bin.Op), operand.name, operand.typ.Name))
				d = d.WithFixSuggestion(fix.InsertText(
					fmt.Sprintf("guard %q against %s's range before this operation", operand.name, operand.typ.Name),
					guardInsertionPoint(n.Span),
					fmt.Sprintf("if %s > %s.MAX || %s < %s.MIN { throw OverflowError; }\n", operand.name, operand.typ.Name, operand.name, operand.typ.Name),
					"",
					fix.WithApplicability(diag.FixApplicabilityManualReview),
				))
				diags = append(diags, d)
			})
		}
	}
	return diags
}

type overflowOperand struct {
	name string
	typ  bast.TypeRef
}

// overflowCandidate returns the first operand of a signed fixed-width
// integer type among the binary expression's two sides, if any.
func overflowCandidate(b *bast.Builder, types map[string]bast.TypeRef, bin *bast.BinaryExpr) (overflowOperand, bool) {
	for _, side := range []bast.ExprID{bin.Left, bin.Right} {
		name, isIdent := identName(b, side)
		if !isIdent {
			continue
		}
		typ, known := types[name]
		if !known || !typ.IsSigned || typ.BitWidth == 0 {
			continue
		}
		return overflowOperand{name: name, typ: typ}, true
	}
	return overflowOperand{}, false
}

// rangeGuardSuppresses treats any dominating guard on the same variable
// that narrows its range (> 0, < 0, >= 0, < len) as evidence the value
// cannot be large enough to overflow on its own — a conservative but
// syntactic stand-in for a real range analysis.
func rangeGuardSuppresses(active GuardSet, name string) bool {
	for g := range active {
		if g.Var == name && (g.Kind == GuardGTZero || g.Kind == GuardLTZero || g.Kind == GuardGEZero || g.Kind == GuardLTLen) {
			return true
		}
	}
	return false
}

func binOpName(op bast.BinaryOp) string {
	switch op {
	case bast.BinAdd:
		return "addition"
	case bast.BinSub:
		return "subtraction"
	case bast.BinMul:
		return "multiplication"
	default:
		return "arithmetic"
	}
}

// CheckNullDereference flags `x.unwrap()`-shaped calls with no dominating
// `!= null` guard on x; `unwrap_or`, pattern-matched, and explicitly
// guarded accesses never reach this point as an unwrap call in the first
// place.
func CheckNullDereference(b *bast.Builder, fn *bast.Function, g *cfg.Graph, opts Options) []diag.Diagnostic {
	var diags []diag.Diagnostic
	guards := DominatingGuards(b, g)
	for _, blk := range g.Blocks {
		active := guards[blk.ID]
		for _, root := range blockExprRoots(b, blk.Stmts) {
			walkExprs(b, root, func(id bast.ExprID) {
				n := b.Exprs.Get(id)
				if n.Kind != bast.ExprCall {
					return
				}
				c := b.Exprs.Call(id)
				base, ok := unwrapTarget(c.CalleeName)
				if !ok {
					return
				}
				if active.Has(Guard{Kind: GuardNotNull, Var: base}) {
					return
				}
				if opts.prove(context.Background(), prover.Goal{
					Description: base + " != null",
					Facts:       guardDescriptions(active),
				}) == prover.Proved {
					return
				}
				d := diag.New(diag.SevWarning, diag.NullDereference, n.Span,
					fmt.Sprintf("%q is unwrapped with no dominating non-null guard", base))
				d = d.WithFixSuggestion(fix.InsertText(
					fmt.Sprintf("guard %q against null before unwrapping", base),
					guardInsertionPoint(n.Span),
					fmt.Sprintf("if %s == null { throw NullReferenceError; }\n", base),
					"",
					fix.WithApplicability(diag.FixApplicabilityManualReview),
				))
				diags = append(diags, d)
			})
		}
	}
	return diags
}

// unwrapTarget recognizes the exact "base.unwrap" convention, rejecting
// "base.unwrap_or" and anything else.
func unwrapTarget(calleeName string) (string, bool) {
	const suffix = ".unwrap"
	if len(calleeName) <= len(suffix) || calleeName[len(calleeName)-len(suffix):] != suffix {
		return "", false
	}
	return calleeName[:len(calleeName)-len(suffix)], true
}

// CheckIndexOutOfBounds flags every index expression: a negative literal
// index is an error, a variable index without a dominating `0 <= i < len`
// guard is a warning.
func CheckIndexOutOfBounds(b *bast.Builder, fn *bast.Function, g *cfg.Graph, opts Options) []diag.Diagnostic {
	var diags []diag.Diagnostic
	guards := DominatingGuards(b, g)
	for _, blk := range g.Blocks {
		active := guards[blk.ID]
		for _, root := range blockExprRoots(b, blk.Stmts) {
			walkExprs(b, root, func(id bast.ExprID) {
				n := b.Exprs.Get(id)
				if n.Kind != bast.ExprIndex {
					return
				}
				ix := b.Exprs.Index(id)
				if lit := b.Exprs.Get(ix.Index); lit != nil && lit.Kind == bast.ExprLit {
					v := b.Exprs.Lit(ix.Index)
					if v.Kind == bast.LitInt && v.IntVal < 0 {
						diags = append(diags, diag.NewError(diag.IndexOutOfBounds, n.Span,
							fmt.Sprintf("negative literal index %d", v.IntVal)))
					}
					return
				}
				name, isIdent := identName(b, ix.Index)
				if !isIdent {
					return
				}
				arrName, hasArr := identName(b, ix.Target)
				if hasArr && hasBoundsGuard(active, name, arrName) {
					return
				}
				if !hasArr && hasAnyLenGuard(active, name) {
					return
				}
				if opts.prove(context.Background(), prover.Goal{
					Description: "0 <= " + name + " < len",
					Facts:       guardDescriptions(active),
				}) == prover.Proved {
					return
				}
				guardExpr := fmt.Sprintf("%s < 0", name)
				if hasArr {
					guardExpr = fmt.Sprintf("%s < 0 || %s >= len(%s)", name, name, arrName)
				}
				d := diag.New(diag.SevWarning, diag.IndexOutOfBounds, n.Span,
					fmt.Sprintf("index %q has no dominating 0 <= i < len guard", name))
				d = d.WithFixSuggestion(fix.InsertText(
					fmt.Sprintf("guard %q against its bounds before indexing", name),
					guardInsertionPoint(n.Span),
					fmt.Sprintf("if %s { throw IndexOutOfBoundsError; }\n", guardExpr),
					"",
					fix.WithApplicability(diag.FixApplicabilityManualReview),
				))
				diags = append(diags, d)
			})
		}
	}
	return diags
}

func hasBoundsGuard(active GuardSet, idx, arr string) bool {
	hasLower := active.Has(Guard{Kind: GuardGEZero, Var: idx})
	for g := range active {
		if g.Kind == GuardLTLen && g.Var == idx && (g.Len == arr || g.Len == "len") {
			return hasLower
		}
	}
	return false
}

func hasAnyLenGuard(active GuardSet, idx string) bool {
	hasLower := active.Has(Guard{Kind: GuardGEZero, Var: idx})
	if !hasLower {
		return false
	}
	for g := range active {
		if g.Kind == GuardLTLen && g.Var == idx {
			return true
		}
	}
	return false
}

func guardDescriptions(active GuardSet) []string {
	out := make([]string, 0, len(active))
	for g := range active {
		out = append(out, guardDescription(g))
	}
	return out
}

func guardDescription(g Guard) string {
	switch g.Kind {
	case GuardNotZero:
		return g.Var + " != 0"
	case GuardGTZero:
		return g.Var + " > 0"
	case GuardLTZero:
		return g.Var + " < 0"
	case GuardGEZero:
		return g.Var + " >= 0"
	case GuardLTLen:
		return g.Var + " < " + g.Len
	case GuardNotNull:
		return g.Var + " != null"
	default:
		return ""
	}
}
