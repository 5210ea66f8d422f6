// Package diag defines the core diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the effect resolver, dataflow analyses, bug-pattern checkers,
//     and the invariant/k-induction driver.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//   - Model fix suggestions as structured edits that the CLI can materialise
//     and optionally apply.
//
// # Scope
//
// Apart from the plain one-line-per-entry text of golden.go (golden files and
// short CLI output), package diag does not perform any formatting, IO, CLI
// integration, or interactive behaviour. Rich rendering lives in
// internal/diagfmt, whereas orchestration across phases lives in
// internal/pipeline.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional Fix records describing how to address the problem.
//
// Notes should be used sparingly: each note must add new context (e.g. “value
// declared here”) rather than repeating the diagnostic message.
//
// # Fix suggestions
//
// Fix represents a possible automated correction. Each fix carries:
//
//   - Title – short label used in UI listings.
//   - Kind – coarse classification (quick fix, refactor, rewrite, source action).
//   - Applicability – confidence level: AlwaysSafe, SafeWithHeuristics,
//     ManualReview.
//   - IsPreferred – optionally mark the most relevant fix when several exist.
//   - Edits – concrete text edits (Span + new/old text) to apply.
//   - Thunk – optional lazy builder used when edits are expensive to construct.
//
// Fixes are intentionally data-only. Producers can attach thunks to defer heavy
// computation; formatters and the fix engine call Resolve/MaterializeFixes to
// expand them deterministically.
//
// TextEdit enforces spans in source coordinates; OldText acts as an optional
// guard that the fix engine uses to validate the context before applying edits.
//
// # Emitting diagnostics
//
// A phase can use a diag.Reporter to decouple emission from storage: it
// constructs a ReportBuilder via NewReportBuilder (or the helper functions
// ReportError/ReportWarning/ReportInfo) and chains WithNote /
// WithFixSuggestion before calling Emit. The analyses in this module do not
// go through ReportBuilder; they build Diagnostic values directly.
//
// When no additional metadata is needed, phases may call Reporter.Report(...)
// directly. For convenience, diag.BagReporter aggregates diagnostics into a Bag,
// which supports sorting, deduplication, filtering, and transformation. Bag is
// safe for concurrent Add from parallel per-function analyses.
//
// # Consumers
//
//   - cmd/calor: renders Diagnostics into terminal/json output.
//   - internal/pipeline: coordinates bag collection per function/module and
//     enforces the deterministic ordering spec §5 requires.
//
// Keep the data model deterministic: any new fields should avoid side effects,
// so the CLI and future tooling can safely serialise diagnostics for caching
// and testing.
package diag
