package invariant

import (
	"context"
	"testing"
	"time"

	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/prover"
	"github.com/calor-lang/effects/internal/source"
)

func span() source.Span { return source.Span{File: 1, Start: 0, End: 1} }

func litInt(b *bast.Builder, v int64) bast.ExprID {
	return b.Exprs.NewLit(bast.LitExpr{Kind: bast.LitInt, IntVal: v}, span())
}

func ident(b *bast.Builder, name string) bast.ExprID {
	return b.Exprs.NewIdent(name, span())
}

func less(b *bast.Builder, left, right bast.ExprID) bast.ExprID {
	return b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinLess, Left: left, Right: right}, span())
}

func add(b *bast.Builder, left, right bast.ExprID) bast.ExprID {
	return b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinAdd, Left: left, Right: right}, span())
}

func buildFn(b *bast.Builder, body bast.StmtID) *bast.Function {
	return &bast.Function{Name: "f", Body: body, Span: span()}
}

// boundedCountingLoop builds:
//
//	i = 0
//	while i < 10 { i = i + 1 }
//
// and returns the function's CFG.
func boundedCountingLoop(b *bast.Builder) *cfg.Graph {
	initI := b.Stmts.NewLet(bast.LetStmt{Name: "i", Init: litInt(b, 0)}, span())
	bump := b.Stmts.NewAssign(bast.AssignStmt{Target: ident(b, "i"), Value: add(b, ident(b, "i"), litInt(b, 1))}, span())
	bodyBlk := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{bump}}, span())
	whileStmt := b.Stmts.NewWhile(bast.WhileStmt{Cond: less(b, ident(b, "i"), litInt(b, 10)), Body: bodyBlk}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{initI, whileStmt}}, span())
	return cfg.Build(b, buildFn(b, body))
}

// accumulatorLoop builds:
//
//	i = 0
//	sum = 0
//	while i < n { sum = sum + i; i = i + 1 }
func accumulatorLoop(b *bast.Builder) *cfg.Graph {
	initI := b.Stmts.NewLet(bast.LetStmt{Name: "i", Init: litInt(b, 0)}, span())
	initSum := b.Stmts.NewLet(bast.LetStmt{Name: "sum", Init: litInt(b, 0)}, span())
	addSum := b.Stmts.NewAssign(bast.AssignStmt{Target: ident(b, "sum"), Value: add(b, ident(b, "sum"), ident(b, "i"))}, span())
	bump := b.Stmts.NewAssign(bast.AssignStmt{Target: ident(b, "i"), Value: add(b, ident(b, "i"), litInt(b, 1))}, span())
	bodyBlk := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{addSum, bump}}, span())
	whileStmt := b.Stmts.NewWhile(bast.WhileStmt{Cond: less(b, ident(b, "i"), ident(b, "n")), Body: bodyBlk}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{initI, initSum, whileStmt}}, span())
	return cfg.Build(b, buildFn(b, body))
}

// indexedLoop builds:
//
//	i = 0
//	while i < 10 { x = arr[i]; i = i + 1 }
func indexedLoop(b *bast.Builder) *cfg.Graph {
	initI := b.Stmts.NewLet(bast.LetStmt{Name: "i", Init: litInt(b, 0)}, span())
	index := b.Exprs.NewIndex(bast.IndexExpr{Target: ident(b, "arr"), Index: ident(b, "i")}, span())
	readArr := b.Stmts.NewLet(bast.LetStmt{Name: "x", Init: index}, span())
	bump := b.Stmts.NewAssign(bast.AssignStmt{Target: ident(b, "i"), Value: add(b, ident(b, "i"), litInt(b, 1))}, span())
	bodyBlk := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{readArr, bump}}, span())
	whileStmt := b.Stmts.NewWhile(bast.WhileStmt{Cond: less(b, ident(b, "i"), litInt(b, 10)), Body: bodyBlk}, span())
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{initI, whileStmt}}, span())
	return cfg.Build(b, buildFn(b, body))
}

func singleLoop(t *testing.T, g *cfg.Graph) Loop {
	t.Helper()
	loops := ExtractLoops(g)
	if len(loops) != 1 {
		t.Fatalf("expected exactly one loop, got %d", len(loops))
	}
	return loops[0]
}

func TestExtractLoops_FindsSingleWhileLoopByBackEdge(t *testing.T) {
	b := bast.NewBuilder()
	g := boundedCountingLoop(b)

	l := singleLoop(t, g)
	if l.Header == l.Latch {
		t.Fatalf("header and latch must differ for a non-trivial loop body")
	}
	if !l.contains(l.Header) {
		t.Fatalf("loop body must contain its own header")
	}
	if !l.contains(l.Latch) {
		t.Fatalf("loop body must contain its own latch")
	}
}

func TestExtractContext_BoundedCountingLoopRecognizesInductionVar(t *testing.T) {
	b := bast.NewBuilder()
	g := boundedCountingLoop(b)
	l := singleLoop(t, g)

	ctx := ExtractContext(b, g, l)
	if ctx.InductionVar != "i" {
		t.Fatalf("expected induction variable %q, got %q", "i", ctx.InductionVar)
	}
	if !ctx.Upper.Known || ctx.Upper.Literal != 10 {
		t.Fatalf("expected known upper bound 10, got %+v", ctx.Upper)
	}
	if !ctx.Lower.Known || ctx.Lower.Literal != 0 {
		t.Fatalf("expected known lower bound 0, got %+v", ctx.Lower)
	}
	if _, ok := ctx.Written["i"]; !ok {
		t.Fatalf("expected i to be recorded as written")
	}
}

func TestBoundedVariable_YieldsWhenBothBoundsKnown(t *testing.T) {
	b := bast.NewBuilder()
	g := boundedCountingLoop(b)
	l := singleLoop(t, g)
	ctx := ExtractContext(b, g, l)

	inv, ok := BoundedVariable(ctx)
	if !ok {
		t.Fatalf("expected BoundedVariable to yield a candidate")
	}
	want := "0 <= i <= 10"
	if inv.Description != want {
		t.Fatalf("description = %q, want %q", inv.Description, want)
	}
}

func TestBoundedVariable_SilentWhenUpperBoundIsSymbolic(t *testing.T) {
	b := bast.NewBuilder()
	g := accumulatorLoop(b)
	l := singleLoop(t, g)
	ctx := ExtractContext(b, g, l)

	if _, ok := BoundedVariable(ctx); ok {
		t.Fatalf("expected no candidate when the upper bound n is not a literal")
	}
}

func TestMonotonicIncrease_RecognizesAccumulatorName(t *testing.T) {
	b := bast.NewBuilder()
	g := accumulatorLoop(b)
	l := singleLoop(t, g)
	ctx := ExtractContext(b, g, l)

	inv, ok := MonotonicIncrease(ctx)
	if !ok {
		t.Fatalf("expected MonotonicIncrease to recognize sum as an accumulator")
	}
	if inv.Template != "monotonic-increase" {
		t.Fatalf("template = %q", inv.Template)
	}
}

func TestAccumulatorNonNegative_YieldsWhenPreheaderInitIsNonNegative(t *testing.T) {
	b := bast.NewBuilder()
	g := accumulatorLoop(b)
	l := singleLoop(t, g)
	ctx := ExtractContext(b, g, l)

	inv, ok := AccumulatorNonNegative(ctx, PreheaderLiteral(b, g, l))
	if !ok {
		t.Fatalf("expected AccumulatorNonNegative to yield given sum's preheader init of 0")
	}
	if inv.Description != "sum >= 0" {
		t.Fatalf("description = %q", inv.Description)
	}
}

func TestArrayIndexWithinBounds_RecognizesInductionVarAsIndex(t *testing.T) {
	b := bast.NewBuilder()
	g := indexedLoop(b)
	l := singleLoop(t, g)
	ctx := ExtractContext(b, g, l)

	inv, ok := ArrayIndexWithinBounds(ctx)
	if !ok {
		t.Fatalf("expected ArrayIndexWithinBounds to yield given arr[i] in the body")
	}
	want := "0 <= i < len(arr)"
	if inv.Description != want {
		t.Fatalf("description = %q, want %q", inv.Description, want)
	}
}

func TestTerminationMeasure_YieldsForKnownUpperBound(t *testing.T) {
	b := bast.NewBuilder()
	g := boundedCountingLoop(b)
	l := singleLoop(t, g)
	ctx := ExtractContext(b, g, l)

	inv, ok := TerminationMeasure(ctx)
	if !ok {
		t.Fatalf("expected TerminationMeasure to yield")
	}
	if inv.Description != "10 - i >= 0" {
		t.Fatalf("description = %q", inv.Description)
	}
}

func TestSynthesize_ComposesEveryYieldingTemplateByConjunction(t *testing.T) {
	b := bast.NewBuilder()
	g := indexedLoop(b)
	l := singleLoop(t, g)
	ctx := ExtractContext(b, g, l)

	composite, candidates := Synthesize(ctx, PreheaderLiteral(b, g, l))
	if composite.Template != "conjunction" {
		t.Fatalf("composite template = %q", composite.Template)
	}
	if len(candidates) == 0 {
		t.Fatalf("expected at least one candidate for the indexed loop")
	}
	for _, c := range candidates {
		if !containsSubstring(composite.Description, c.Description) {
			t.Fatalf("composite %q missing candidate %q", composite.Description, c.Description)
		}
	}
}

func containsSubstring(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestRunKInduction_NopProverAlwaysUnknown(t *testing.T) {
	b := bast.NewBuilder()
	g := boundedCountingLoop(b)
	l := singleLoop(t, g)
	ctx := ExtractContext(b, g, l)
	candidate, _ := Synthesize(ctx, PreheaderLiteral(b, g, l))

	result := RunKInduction(context.Background(), prover.NopProver{}, l, candidate, 3, time.Second)
	if result.Verdict != prover.Unknown {
		t.Fatalf("expected Unknown from NopProver, got %v", result.Verdict)
	}
}

type alwaysProves struct{}

func (alwaysProves) Prove(context.Context, prover.Goal) prover.Verdict { return prover.Proved }

func TestRunAll_AppliesProverToEveryCandidateInOrder(t *testing.T) {
	b := bast.NewBuilder()
	g := boundedCountingLoop(b)
	l := singleLoop(t, g)
	ctx := ExtractContext(b, g, l)
	_, candidates := Synthesize(ctx, PreheaderLiteral(b, g, l))
	if len(candidates) == 0 {
		t.Fatalf("expected at least one candidate")
	}

	results := RunAll(context.Background(), alwaysProves{}, l, candidates, 2, time.Second)
	if len(results) != len(candidates) {
		t.Fatalf("expected %d results, got %d", len(candidates), len(results))
	}
	for _, r := range results {
		if r.Verdict != prover.Proved {
			t.Fatalf("expected every candidate to be proved, got %v for %q", r.Verdict, r.Invariant.Description)
		}
	}
}
