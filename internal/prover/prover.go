// Package prover defines the external-decision-procedure assist spec §4.9
// and §4.10 both mention and both leave unspecified: "it is out of scope
// for this spec to define the procedure". A Prover is given a goal and
// whatever facts are known to hold and answers Proved, Refuted, or
// Unknown; NopProver always answers Unknown, so every caller that wires
// one in behaves exactly as if the assist were off until a real decision
// procedure is plugged in.
package prover

import "context"

// Verdict is a decision procedure's answer to one goal.
type Verdict uint8

const (
	Unknown Verdict = iota
	Proved
	Refuted
)

// Goal is one fact a caller wants decided, e.g. "i < 10" given facts
// ["0 <= i", "i != 10"]. Description and Facts are free-form — a real
// decision procedure defines its own accepted grammar over them.
type Goal struct {
	Description string
	Facts       []string
}

// Prover is the external decision procedure. Implementations may block on
// an external solver process or service; callers should pass a
// context.Context with a deadline (spec's "time budget").
type Prover interface {
	Prove(ctx context.Context, goal Goal) Verdict
}

// NopProver never decides anything; it is the default when the
// external-assist option is left off, and a safe zero value when no real
// prover has been wired in yet.
type NopProver struct{}

func (NopProver) Prove(context.Context, Goal) Verdict { return Unknown }
