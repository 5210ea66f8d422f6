package source

import (
	"testing"
)

func TestSpan_EmptyLen(t *testing.T) {
	tests := []struct {
		name      string
		span      Span
		wantEmpty bool
		wantLen   uint32
	}{
		{"normal span", Span{File: 1, Start: 10, End: 20}, false, 10},
		{"zero-length span", Span{File: 1, Start: 15, End: 15}, true, 0},
		{"single byte", Span{File: 1, Start: 0, End: 1}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Empty(); got != tt.wantEmpty {
				t.Errorf("Empty() = %v, want %v", got, tt.wantEmpty)
			}
			if got := tt.span.Len(); got != tt.wantLen {
				t.Errorf("Len() = %d, want %d", got, tt.wantLen)
			}
		})
	}
}

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "b extends right",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 15, End: 30},
			expected: Span{File: 1, Start: 10, End: 30},
		},
		{
			name:     "b extends left",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 0, End: 15},
			expected: Span{File: 1, Start: 0, End: 20},
		},
		{
			name:     "b fully inside a",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 12, End: 18},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "different files returns a unchanged",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestSpan_IsLeftRightThan(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 15, End: 25}
	c := Span{File: 2, Start: 0, End: 5}

	if !a.IsLeftThan(b) {
		t.Errorf("expected a to start left of b")
	}
	if a.IsLeftThan(c) {
		t.Errorf("spans in different files must not compare as left/right")
	}
	if !b.IsRightThan(a) {
		t.Errorf("expected b to end right of a")
	}
}

func TestSpan_InsertionPoint(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 20}
	ip := s.InsertionPoint()
	if ip.Start != ip.End || ip.Start != s.End {
		t.Errorf("InsertionPoint() = %+v, want zero-length span at %d", ip, s.End)
	}
	if ip.File != s.File {
		t.Errorf("InsertionPoint changed File: got %d, want %d", ip.File, s.File)
	}
}

func TestSpan_String(t *testing.T) {
	s := Span{File: 3, Start: 10, End: 20}
	if got := s.String(); got == "" {
		t.Errorf("String() returned empty")
	}
}
