package checkers

import (
	"testing"

	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/source"
)

func span() source.Span { return source.Span{File: 1, Start: 0, End: 1} }

func litInt(b *bast.Builder, v int64) bast.ExprID {
	return b.Exprs.NewLit(bast.LitExpr{Kind: bast.LitInt, IntVal: v}, span())
}

func ident(b *bast.Builder, name string) bast.ExprID {
	return b.Exprs.NewIdent(name, span())
}

func buildFn(b *bast.Builder, body bast.StmtID, params ...bast.Param) *bast.Function {
	return &bast.Function{Name: "f", Body: body, Span: span(), Params: params}
}

func hasCode(diags []diag.Diagnostic, code diag.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

// TestCheckDivisionByZero_LiteralZeroIsError.
func TestCheckDivisionByZero_LiteralZeroIsError(t *testing.T) {
	b := bast.NewBuilder()
	div := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinDiv, Left: ident(b, "a"), Right: litInt(b, 0)}, span())
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: div}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, span())
	fn := buildFn(b, body, bast.Param{Name: "a", Span: span()})
	g := cfg.Build(b, fn)

	diags := CheckDivisionByZero(b, fn, g, Options{})
	found := false
	for _, d := range diags {
		if d.Code == diag.DivisionByZero && d.Severity == diag.SevError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error-severity division-by-zero diagnostic, got %v", diags)
	}
}

// TestCheckDivisionByZero_GuardedVariableDivisorIsSilent: `if b != 0 {
// return a/b }` must not flag the division.
func TestCheckDivisionByZero_GuardedVariableDivisorIsSilent(t *testing.T) {
	b := bast.NewBuilder()
	div := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinDiv, Left: ident(b, "a"), Right: ident(b, "bb")}, span())
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: div}, span())
	cond := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinNotEq, Left: ident(b, "bb"), Right: litInt(b, 0)}, span())
	ifStmt := b.Stmts.NewIf(bast.IfStmt{
		Cond: cond,
		Then: b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, span()),
		Else: bast.NoStmtID,
	}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ifStmt}}, span())
	fn := buildFn(b, body, bast.Param{Name: "a", Span: span()}, bast.Param{Name: "bb", Span: span()})
	g := cfg.Build(b, fn)

	diags := CheckDivisionByZero(b, fn, g, Options{})
	if hasCode(diags, diag.DivisionByZero) {
		t.Fatalf("expected the guarded division to produce no diagnostic, got %v", diags)
	}
}

// TestCheckDivisionByZero_UnguardedVariableDivisorIsWarning: removing the
// guard from the prior case must bring the warning back.
func TestCheckDivisionByZero_UnguardedVariableDivisorIsWarning(t *testing.T) {
	b := bast.NewBuilder()
	div := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinDiv, Left: ident(b, "a"), Right: ident(b, "bb")}, span())
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: div}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, span())
	fn := buildFn(b, body, bast.Param{Name: "a", Span: span()}, bast.Param{Name: "bb", Span: span()})
	g := cfg.Build(b, fn)

	diags := CheckDivisionByZero(b, fn, g, Options{})
	found := false
	for _, d := range diags {
		if d.Code == diag.DivisionByZero && d.Severity == diag.SevWarning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning-severity division-by-zero diagnostic, got %v", diags)
	}
}

// TestCheckIndexOutOfBounds_NegativeLiteralIsError.
func TestCheckIndexOutOfBounds_NegativeLiteralIsError(t *testing.T) {
	b := bast.NewBuilder()
	idx := b.Exprs.NewIndex(bast.IndexExpr{Target: ident(b, "arr"), Index: litInt(b, -1)}, span())
	useIt := b.Stmts.NewExpr(bast.ExprStmt{Expr: idx}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{useIt}}, span())
	fn := buildFn(b, body, bast.Param{Name: "arr", Span: span()})
	g := cfg.Build(b, fn)

	diags := CheckIndexOutOfBounds(b, fn, g, Options{})
	found := false
	for _, d := range diags {
		if d.Code == diag.IndexOutOfBounds && d.Severity == diag.SevError {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error-severity bounds diagnostic for a negative literal index, got %v", diags)
	}
}

// TestCheckIndexOutOfBounds_GuardedVariableIndexIsSilent: `if i >= 0 && i <
// len { write(arr[i]) }` must not flag the access.
func TestCheckIndexOutOfBounds_GuardedVariableIndexIsSilent(t *testing.T) {
	b := bast.NewBuilder()
	idx := b.Exprs.NewIndex(bast.IndexExpr{Target: ident(b, "arr"), Index: ident(b, "i")}, span())
	useIt := b.Stmts.NewExpr(bast.ExprStmt{Expr: idx}, span())
	geZero := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinGreaterEq, Left: ident(b, "i"), Right: litInt(b, 0)}, span())
	ltLen := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinLess, Left: ident(b, "i"), Right: ident(b, "len")}, span())
	cond := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinLogicalAnd, Left: geZero, Right: ltLen}, span())
	ifStmt := b.Stmts.NewIf(bast.IfStmt{
		Cond: cond,
		Then: b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{useIt}}, span()),
		Else: bast.NoStmtID,
	}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ifStmt}}, span())
	fn := buildFn(b, body, bast.Param{Name: "arr", Span: span()}, bast.Param{Name: "i", Span: span()}, bast.Param{Name: "len", Span: span()})
	g := cfg.Build(b, fn)

	diags := CheckIndexOutOfBounds(b, fn, g, Options{})
	if hasCode(diags, diag.IndexOutOfBounds) {
		t.Fatalf("expected the guarded index access to produce no diagnostic, got %v", diags)
	}
}

// TestCheckNullDereference_UnguardedUnwrapIsWarning.
func TestCheckNullDereference_UnguardedUnwrapIsWarning(t *testing.T) {
	b := bast.NewBuilder()
	unwrap := b.Exprs.NewCall(bast.CallExpr{CalleeName: "opt.unwrap"}, span())
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: unwrap}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, span())
	fn := buildFn(b, body, bast.Param{Name: "opt", Span: span()})
	g := cfg.Build(b, fn)

	diags := CheckNullDereference(b, fn, g, Options{})
	if !hasCode(diags, diag.NullDereference) {
		t.Fatalf("expected an unguarded unwrap to be flagged, got %v", diags)
	}
}

// TestCheckNullDereference_UnwrapOrIsSilent: `unwrap_or` is explicitly
// exempted by spec §4.9, never matched as an unwrap call.
func TestCheckNullDereference_UnwrapOrIsSilent(t *testing.T) {
	b := bast.NewBuilder()
	unwrapOr := b.Exprs.NewCall(bast.CallExpr{CalleeName: "opt.unwrap_or", Args: []bast.ExprID{litInt(b, 0)}}, span())
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: unwrapOr}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, span())
	fn := buildFn(b, body, bast.Param{Name: "opt", Span: span()})
	g := cfg.Build(b, fn)

	diags := CheckNullDereference(b, fn, g, Options{})
	if hasCode(diags, diag.NullDereference) {
		t.Fatalf("expected unwrap_or to never be treated as an unguarded unwrap, got %v", diags)
	}
}

// TestCheckOverflow_UnboundedSignedAdditionIsWarning.
func TestCheckOverflow_UnboundedSignedAdditionIsWarning(t *testing.T) {
	b := bast.NewBuilder()
	add := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinAdd, Left: ident(b, "x"), Right: ident(b, "y")}, span())
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: add}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, span())
	fn := buildFn(b, body,
		bast.Param{Name: "x", Type: bast.TypeRef{Name: "i32", IsSigned: true, BitWidth: 32}, Span: span()},
		bast.Param{Name: "y", Type: bast.TypeRef{Name: "i32", IsSigned: true, BitWidth: 32}, Span: span()},
	)
	g := cfg.Build(b, fn)

	diags := CheckOverflow(b, fn, g, Options{})
	if !hasCode(diags, diag.Overflow) {
		t.Fatalf("expected an overflow warning for unbounded signed addition, got %v", diags)
	}
}

// TestCheckOverflow_RangeGuardedOperandIsSilent.
func TestCheckOverflow_RangeGuardedOperandIsSilent(t *testing.T) {
	b := bast.NewBuilder()
	add := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinAdd, Left: ident(b, "x"), Right: litInt(b, 1)}, span())
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: add}, span())
	cond := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinGreaterEq, Left: ident(b, "x"), Right: litInt(b, 0)}, span())
	ifStmt := b.Stmts.NewIf(bast.IfStmt{
		Cond: cond,
		Then: b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, span()),
		Else: bast.NoStmtID,
	}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ifStmt}}, span())
	fn := buildFn(b, body, bast.Param{Name: "x", Type: bast.TypeRef{Name: "i32", IsSigned: true, BitWidth: 32}, Span: span()})
	g := cfg.Build(b, fn)

	diags := CheckOverflow(b, fn, g, Options{})
	if hasCode(diags, diag.Overflow) {
		t.Fatalf("expected a dominating range guard to suppress the overflow warning, got %v", diags)
	}
}
