// Package lattice implements the generic monotone-lattice dataflow
// framework (spec §4.6): a lattice of bottom/join/less-or-equal, an
// analysis of direction/lattice/initial-entry/transfer, and a worklist
// solver over an internal/cfg.Graph.
package lattice

import "github.com/calor-lang/effects/internal/cfg"

// Lattice is {bottom, join(a,b), less_or_equal(a,b)} specialized at T, the
// way the teacher specializes internal/ast.Arena[T] at compile time rather
// than reaching for runtime polymorphism. Bottom is a factory rather than a
// bare T value because most instantiations (reaching definitions, live
// variables, taint) are set-valued, and a shared bottom value would alias
// across blocks the moment a transfer function mutated it in place.
type Lattice[T any] struct {
	Bottom      func() T
	Join        func(a, b T) T
	LessOrEqual func(a, b T) bool
}

func (l Lattice[T]) equal(a, b T) bool {
	return l.LessOrEqual(a, b) && l.LessOrEqual(b, a)
}

// Direction selects which edges a solver propagates state along.
type Direction uint8

const (
	Forward Direction = iota
	Backward
)

// Analysis is one instantiation of the framework: InitialEntry seeds the
// graph's entry point (Entry for Forward, Exit for Backward); Transfer
// computes a block's out-state from its in-state.
type Analysis[T any] struct {
	Direction    Direction
	Lattice      Lattice[T]
	InitialEntry func() T
	Transfer     func(block *cfg.Block, in T) T
}

// Result holds the fixpoint in/out state at every block.
type Result[T any] struct {
	In  map[cfg.BlockID]T
	Out map[cfg.BlockID]T
}
