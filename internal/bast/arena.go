package bast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena is a typed, append-only store. Every element gets a stable 1-based
// handle (0 is reserved as "no value") so node payloads can reference each
// other by small integer id instead of by pointer, which keeps the bound
// AST free of ownership cycles even though call graphs and recursive type
// references over it are themselves cyclic.
type Arena[T any] struct {
	values []T
}

// NewArena creates an Arena with capHint pre-reserved slots.
func NewArena[T any](capHint int) *Arena[T] {
	return &Arena[T]{values: make([]T, 0, capHint)}
}

// Put appends value and returns its 1-based id.
func (a *Arena[T]) Put(value T) uint32 {
	a.values = append(a.values, value)
	id, err := safecast.Conv[uint32](len(a.values))
	if err != nil {
		panic(fmt.Errorf("bast: arena overflowed uint32: %w", err))
	}
	return id
}

// At returns a pointer to the element for id, or nil if id is 0 or out of
// range. The returned pointer aliases the arena's backing array and must
// not be retained across further Put calls.
func (a *Arena[T]) At(id uint32) *T {
	if id == 0 || int(id) > len(a.values) {
		return nil
	}
	return &a.values[id-1]
}

// Len returns the number of elements stored.
func (a *Arena[T]) Len() int {
	return len(a.values)
}

// All returns a snapshot slice, 1-based id i at index i-1.
func (a *Arena[T]) All() []T {
	out := make([]T, len(a.values))
	copy(out, a.values)
	return out
}
