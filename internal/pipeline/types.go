// Package pipeline wires the analysis phases spec'd for one module run:
// resolver initialization, effect enforcement, per-function CFG
// construction, the dataflow suite and bug-pattern checkers, per-function
// taint analysis, and suggested-fix attachment. Grounded on
// internal/driver/parallel.go's errgroup-per-file fan-out pattern, adapted
// to fan out over functions instead of files, and on the now-removed
// internal/buildpipeline's CompileRequest/CompileResult shape for how a
// multi-phase driver threads one result struct through phases.
package pipeline

import (
	"github.com/calor-lang/effects/internal/bast"
	"github.com/calor-lang/effects/internal/diag"
	"github.com/calor-lang/effects/internal/effect"
)

// Request configures one Run.
type Request struct {
	Module *bast.Module

	// ManifestPaths feeds resolver initialization (spec §4.2/§4.3). The
	// zero value resolves only the embedded builtin catalog.
	ManifestPaths ManifestPaths

	Policy         UnknownCallPolicy
	Stubs          map[string]effect.Set
	MaxDiagnostics int
	Jobs           int // 0 = runtime.GOMAXPROCS(0)
	CheckerOptions CheckerOptionsOverride
}

// ManifestPaths mirrors manifest.Paths without importing it here, so
// callers can zero-value a Request without pulling in the manifest
// package; Run converts it at the resolver-initialization phase.
type ManifestPaths struct {
	UserDir     string
	SolutionDir string
	ProjectFile string
}

// UnknownCallPolicy is converted numerically to callgraph.UnknownCallPolicy,
// for the same zero-import-friendliness as ManifestPaths: PolicyStrict is
// callgraph.PolicyStrict and PolicyPermissive is callgraph.PolicyWarn.
// There is no constant here for callgraph.PolicyStubRequired.
type UnknownCallPolicy uint8

const (
	PolicyStrict UnknownCallPolicy = iota
	PolicyPermissive
)

// CheckerOptionsOverride configures the bug-pattern checkers' use of an
// external decision procedure (spec §4.9); empty means NopProver.
type CheckerOptionsOverride struct {
	UseExternalProver bool
}

// FunctionResult is one function's analysis output.
type FunctionResult struct {
	Function    bast.FunctionID
	Name        string
	Diagnostics []diag.Diagnostic
	Err         error // non-nil when this function's analysis panicked
}

// Result is the full module run's output.
type Result struct {
	ComputedEffects map[bast.FunctionID]effect.Set
	Functions       []FunctionResult
	Bag             *diag.Bag
}
