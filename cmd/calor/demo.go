package main

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/source"
)

// demoSource is the synthetic program cmd/calor analyze always runs over: a
// small module exercising the bug-pattern checkers and the dataflow suite. It is never parsed; spans below are hand
// laid out against this text purely so pretty-printed diagnostics show a
// plausible source line, the same way internal/pipeline's own tests build
// bast fixtures directly against the builder instead of through a parser.
const demoSource = `fn withdraw(balance, amount) {
    return balance / amount;
}

fn describe(account) {
    return account.unwrap;
}

fn firstOf(items, idx) {
    return items[idx];
}

fn maybeTotal(flag) {
    if (flag) {
        let total = 0;
    }
    return total;
}
`

func demoFileSet() (*source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("demo.calor", []byte(demoSource))
	return fs, fileID
}

func spanOn(fileID source.FileID, start, end uint32) source.Span {
	return source.Span{File: fileID, Start: start, End: end}
}

// buildDemoModule constructs the fixture module described in demoSource
// directly against a bast.Builder, grounded on internal/pipeline's own test
// fixtures (maybeUninitialized, divideByParam): withdraw divides by an
// unguarded parameter, describe unwraps a value with no dominating
// non-null guard, firstOf indexes with an unguarded variable, and
// maybeTotal reads a variable only bound along one branch.
func buildDemoModule(b *bast.Builder, fileID source.FileID) *bast.Module {
	var functions []bast.FunctionID

	functions = append(functions, buildWithdraw(b, fileID))
	functions = append(functions, buildDescribe(b, fileID))
	functions = append(functions, buildFirstOf(b, fileID))
	functions = append(functions, buildMaybeTotal(b, fileID))

	return b.BuildModule("demo", functions, nil, nil, nil, nil)
}

func buildWithdraw(b *bast.Builder, fileID source.FileID) bast.FunctionID {
	sp := spanOn(fileID, 0, 60)
	balance := b.Exprs.NewIdent("balance", spanOn(fileID, 41, 48))
	amount := b.Exprs.NewIdent("amount", spanOn(fileID, 51, 57))
	div := b.Exprs.NewBinary(bast.BinaryExpr{Op: bast.BinDiv, Left: balance, Right: amount}, spanOn(fileID, 41, 57))
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: div}, spanOn(fileID, 34, 58))
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, sp)
	return b.NewFunction(bast.Function{
		Name: "withdraw",
		Params: []bast.Param{
			{Name: "balance", Span: spanOn(fileID, 15, 22)},
			{Name: "amount", Span: spanOn(fileID, 24, 30)},
		},
		Body: body,
		Span: sp,
	})
}

func buildDescribe(b *bast.Builder, fileID source.FileID) bast.FunctionID {
	sp := spanOn(fileID, 62, 109)
	callSpan := spanOn(fileID, 99, 114)
	call := b.Exprs.NewCall(bast.CallExpr{CalleeName: "account.unwrap"}, callSpan)
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: call}, callSpan)
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, sp)
	return b.NewFunction(bast.Function{
		Name: "describe",
		Params: []bast.Param{
			{Name: "account", Span: spanOn(fileID, 76, 83), Type: bast.TypeRef{Name: "Account", IsOptional: true}},
		},
		Body: body,
		Span: sp,
	})
}

func buildFirstOf(b *bast.Builder, fileID source.FileID) bast.FunctionID {
	sp := spanOn(fileID, 111, 155)
	items := b.Exprs.NewIdent("items", spanOn(fileID, 146, 151))
	idx := b.Exprs.NewIdent("idx", spanOn(fileID, 152, 155))
	index := b.Exprs.NewIndex(bast.IndexExpr{Target: items, Index: idx}, spanOn(fileID, 146, 156))
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: index}, spanOn(fileID, 139, 157))
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ret}}, sp)
	return b.NewFunction(bast.Function{
		Name: "firstOf",
		Params: []bast.Param{
			{Name: "items", Span: spanOn(fileID, 122, 127), Type: bast.TypeRef{IsArray: true}},
			{Name: "idx", Span: spanOn(fileID, 129, 132)},
		},
		Body: body,
		Span: sp,
	})
}

func buildMaybeTotal(b *bast.Builder, fileID source.FileID) bast.FunctionID {
	sp := spanOn(fileID, 157, 228)
	zero := b.Exprs.NewLit(bast.LitExpr{Kind: bast.LitInt, IntVal: 0}, spanOn(fileID, 200, 201))
	letTotal := b.Stmts.NewLet(bast.LetStmt{Name: "total", Init: zero}, spanOn(fileID, 192, 202))
	thenBlk := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{letTotal}}, spanOn(fileID, 181, 212))
	flag := b.Exprs.NewIdent("flag", spanOn(fileID, 178, 182))
	ifStmt := b.Stmts.NewIf(bast.IfStmt{Cond: flag, Then: thenBlk, Else: bast.NoStmtID}, spanOn(fileID, 174, 212))
	total := b.Exprs.NewIdent("total", spanOn(fileID, 221, 226))
	ret := b.Stmts.NewReturn(bast.ReturnStmt{Value: total}, spanOn(fileID, 214, 227))
	body := b.Stmts.NewBlock(bast.BlockStmt{Stmts: []bast.StmtID{ifStmt, ret}}, sp)
	return b.NewFunction(bast.Function{
		Name:   "maybeTotal",
		Params: []bast.Param{{Name: "flag", Span: spanOn(fileID, 168, 172)}},
		Body:   body,
		Span:   sp,
	})
}
