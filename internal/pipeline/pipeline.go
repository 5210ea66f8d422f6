package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/callgraph"
	"github.com/calor-lang/effects/internal/cfg"
	"github.com/calor-lang/effects/internal/checkers"
	"github.com/calor-lang/effects/internal/dataflow"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/effect"
	"github.com/calor-lang/effects/internal/manifest"
	"github.com/calor-lang/effects/internal/resolver"
	"github.com/calor-lang/effects/internal/source"
	"github.com/calor-lang/effects/internal/taint"
	"github.com/calor-lang/effects/internal/trace"
)

// DefaultMaxDiagnostics is the diagnostic bag's capacity when a Request
// leaves MaxDiagnostics unset. diag.NewBag(0) would silently drop every
// diagnostic (its capacity check is "len(items) >= maximum"), so Run
// defaults a non-positive value the same way it defaults Jobs.
const DefaultMaxDiagnostics = 10000

// Run executes every phase spec §2 lists, in order: resolver
// initialization, effect inference and enforcement (phases 1-2 are
// sequential and must complete before any per-function work begins, per
// spec §5's "call graph and effect-resolver caches... MUST be fully
// populated before any parallel per-function work begins"), then the
// per-function CFG/dataflow/checker/taint suite fanned out across
// functions with internal/driver/parallel.go's errgroup pattern.
func Run(ctx context.Context, b *bast.Builder, req Request) (Result, error) {
	if req.Module == nil {
		return Result{}, fmt.Errorf("pipeline: missing module")
	}
	tracer := trace.FromContext(ctx)
	driverSpan := trace.Begin(tracer, trace.ScopeDriver, "pipeline.run", 0)
	defer driverSpan.End("")

	res, err := resolver.New(manifest.Build(manifest.Paths{
		UserDir:     req.ManifestPaths.UserDir,
		SolutionDir: req.ManifestPaths.SolutionDir,
		ProjectFile: req.ManifestPaths.ProjectFile,
	}))
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: resolver init: %w", err)
	}

	maxDiagnostics := req.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiagnostics)

	g := callgraph.Build(b, req.Module)
	computed := callgraph.Infer(b, req.Module, callgraph.Options{
		Resolver: res,
		Policy:   callgraph.UnknownCallPolicy(req.Policy),
		Stubs:    req.Stubs,
		Bag:      bag,
	})
	callgraph.Enforce(b, g, computed, res, bag)

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	functions := g.Functions
	results := make([]FunctionResult, len(functions))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(min(jobs, len(functions)))

	for i, fid := range functions {
		eg.Go(func(i int, fid bast.FunctionID) func() error {
			return func() error {
				select {
				case <-egctx.Done():
					return egctx.Err()
				default:
				}
				results[i] = analyzeFunction(tracer, b, fid, res, req, bag)
				return nil
			}
		}(i, fid))
	}
	if err := eg.Wait(); err != nil {
		return Result{}, fmt.Errorf("pipeline: per-function analysis: %w", err)
	}

	bag.Sort()
	bag.Dedup()

	return Result{ComputedEffects: computed, Functions: results, Bag: bag}, nil
}

// analyzeFunction runs phase 3 (CFG), phase 4 (dataflow suite and
// checkers), and phase 5 (taint) for one function. All steps run under one
// recover: a panic ends this function's analysis, keeping the diagnostics
// gathered before it and recording the panic in Err, without aborting the
// run (spec §4.11's failure isolation for independent, unordered
// per-function analyses).
func analyzeFunction(tracer trace.Tracer, b *bast.Builder, fid bast.FunctionID, res *resolver.Resolver, req Request, bag *diag.Bag) FunctionResult {
	fn := b.Function(fid)
	out := FunctionResult{Function: fid}
	if fn == nil {
		return out
	}
	out.Name = fn.Name

	span := trace.Begin(tracer, trace.ScopeModule, "pipeline.function:"+fn.Name, 0)
	defer span.End("")

	out.Err = runIsolated(func() {
		g := cfg.Build(b, fn)
		bind := dataflow.Bind(b, fn)

		out.Diagnostics = append(out.Diagnostics, diagsFromUninitialized(b, dataflow.UninitializedUses(b, bind, g))...)
		out.Diagnostics = append(out.Diagnostics, diagsFromDead(b, dataflow.DeadAssignments(b, bind, g))...)

		copts := checkers.Options{UseExternalProver: req.CheckerOptions.UseExternalProver}
		out.Diagnostics = append(out.Diagnostics, checkers.Run(b, fn, g, copts)...)

		out.Diagnostics = append(out.Diagnostics, taint.Analyze(b, fn, bind, g, res, taint.DefaultOptions())...)
	})
	for i := range out.Diagnostics {
		bag.Add(&out.Diagnostics[i])
	}
	return out
}

// runIsolated converts a panic in fn into an error instead of propagating
// it, so one analysis failure never aborts the whole run.
func runIsolated(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()
	fn()
	return nil
}

// diagsFromUninitialized turns spec §4.7's uninitialized-use query into
// warning diagnostics, one per flagged read.
func diagsFromUninitialized(b *bast.Builder, uses []dataflow.UninitializedUse) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(uses))
	for _, u := range uses {
		sp := stmtSpan(b, u.Site)
		out = append(out, diag.New(diag.SevWarning, diag.UninitializedUse, sp,
			fmt.Sprintf("%q may be read before it is initialized on this path", u.Var.Name)))
	}
	return out
}

// diagsFromDead turns spec §4.7's dead-assignment query into info
// diagnostics, one per flagged write.
func diagsFromDead(b *bast.Builder, dead []dataflow.DeadAssignment) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(dead))
	for _, d := range dead {
		sp := stmtSpan(b, d.Site)
		out = append(out, diag.New(diag.SevInfo, diag.DeadAssignment, sp,
			fmt.Sprintf("%q is assigned but never read before its next write or the function returns", d.Var.Name)))
	}
	return out
}

func stmtSpan(b *bast.Builder, id bast.StmtID) (sp source.Span) {
	if !id.IsValid() {
		return sp
	}
	if n := b.Stmts.Get(id); n != nil {
		return n.Span
	}
	return sp
}
