package resolver

import (
	"testing"

	"github.com/calor-lang/effects/internal/effect"
	"github.com/calor-lang/effects/internal/manifest"
)

func mustResolver(t *testing.T, cat *manifest.Catalog) *Resolver {
	t.Helper()
	r, err := New(cat)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestResolve_BuiltinExactMatch(t *testing.T) {
	r := mustResolver(t, &manifest.Catalog{})

	res := r.Resolve(Signature{Type: "System.Console", Member: "WriteLine", Params: []string{"string"}})
	if res.Outcome != Resolved {
		t.Fatalf("got outcome %v, want Resolved", res.Outcome)
	}
	if res.Effects.IsEmpty() {
		t.Fatalf("expected a non-empty effect set for System.Console::WriteLine")
	}
}

func TestResolve_BuiltinPureExplicit(t *testing.T) {
	r := mustResolver(t, &manifest.Catalog{})

	res := r.Resolve(Signature{Type: "System.Math", Member: "Abs", Params: []string{"int"}})
	if res.Outcome != PureExplicit {
		t.Fatalf("got outcome %v, want PureExplicit", res.Outcome)
	}
	if !res.Effects.IsEmpty() {
		t.Fatalf("expected empty effect set for pure-explicit built-in")
	}
}

func TestResolve_ManifestSpecificSignatureWins(t *testing.T) {
	cat := &manifest.Catalog{
		Types: map[string]manifest.MergedType{
			"Acme.Widget": {
				DefaultEffects: []string{"default"},
				Methods: map[string][]string{
					"Do":        {"wildcard-miss"},
					"*":         {"wildcard"},
					"Do(int)":   {"specific"},
				},
			},
		},
	}
	r := mustResolver(t, cat)

	res := r.Resolve(Signature{Type: "Acme.Widget", Member: "Do", Params: []string{"int"}})
	if res.Outcome != Resolved {
		t.Fatalf("got outcome %v, want Resolved", res.Outcome)
	}
	got := effect.Display(res.Effects)
	if got != "specific" {
		t.Fatalf("got effects %q, want specific-signature match to win", got)
	}
}

func TestResolve_ManifestMemberWithoutSignatureFallback(t *testing.T) {
	cat := &manifest.Catalog{
		Types: map[string]manifest.MergedType{
			"Acme.Widget": {
				Methods: map[string][]string{
					"Do": {"member-level"},
					"*":  {"wildcard"},
				},
			},
		},
	}
	r := mustResolver(t, cat)

	res := r.Resolve(Signature{Type: "Acme.Widget", Member: "Do", Params: []string{"string"}})
	if got := effect.Display(res.Effects); got != "member-level" {
		t.Fatalf("got effects %q, want member-name fallback", got)
	}
}

func TestResolve_ManifestWildcardFallback(t *testing.T) {
	cat := &manifest.Catalog{
		Types: map[string]manifest.MergedType{
			"Acme.Widget": {
				Methods: map[string][]string{
					"*": {"wildcard"},
				},
			},
		},
	}
	r := mustResolver(t, cat)

	res := r.Resolve(Signature{Type: "Acme.Widget", Member: "Other", Params: nil})
	if got := effect.Display(res.Effects); got != "wildcard" {
		t.Fatalf("got effects %q, want wildcard fallback", got)
	}
}

func TestResolve_ManifestTypeDefaultFallback(t *testing.T) {
	cat := &manifest.Catalog{
		Types: map[string]manifest.MergedType{
			"Acme.Widget": {
				DefaultEffects: []string{"type-default"},
			},
		},
	}
	r := mustResolver(t, cat)

	res := r.Resolve(Signature{Type: "Acme.Widget", Member: "Anything", Params: nil})
	if got := effect.Display(res.Effects); got != "type-default" {
		t.Fatalf("got effects %q, want type-default fallback", got)
	}
}

func TestResolve_NamespaceExactBeforeWildcard(t *testing.T) {
	cat := &manifest.Catalog{
		NamespaceDefaults: map[string][]string{
			"Acme.Net":     {"exact"},
			"Acme.Net.*":   {"wildcard"},
		},
	}
	r := mustResolver(t, cat)

	res := r.Resolve(Signature{Type: "Acme.Net", Member: "Anything"})
	if got := effect.Display(res.Effects); got != "exact" {
		t.Fatalf("got effects %q, want exact namespace match", got)
	}
}

func TestResolve_NamespaceLongestPrefixWildcard(t *testing.T) {
	cat := &manifest.Catalog{
		NamespaceDefaults: map[string][]string{
			"Acme.*":        {"short"},
			"Acme.Net.*":    {"long"},
		},
	}
	r := mustResolver(t, cat)

	res := r.Resolve(Signature{Type: "Acme.Net.Socket", Member: "Anything"})
	if got := effect.Display(res.Effects); got != "long" {
		t.Fatalf("got effects %q, want longest-prefix wildcard to win", got)
	}
}

func TestResolve_UnknownWhenNothingMatches(t *testing.T) {
	r := mustResolver(t, &manifest.Catalog{})

	res := r.Resolve(Signature{Type: "Totally.Unseen", Member: "Mystery"})
	if res.Outcome != Unknown {
		t.Fatalf("got outcome %v, want Unknown", res.Outcome)
	}
}

func TestResolve_GetterSetterConstructorUseOwnSubMaps(t *testing.T) {
	cat := &manifest.Catalog{
		Types: map[string]manifest.MergedType{
			"Acme.Widget": {
				Methods:      map[string][]string{"Value": {"method"}},
				Getters:      map[string][]string{"Value": {"getter"}},
				Setters:      map[string][]string{"Value": {"setter"}},
				Constructors: map[string][]string{"Value": {"ctor"}},
			},
		},
	}
	r := mustResolver(t, cat)

	cases := []struct {
		kind MemberKind
		want string
	}{
		{MemberMethod, "method"},
		{MemberGetter, "getter"},
		{MemberSetter, "setter"},
		{MemberConstructor, "ctor"},
	}
	for _, c := range cases {
		res := r.Resolve(Signature{Type: "Acme.Widget", Member: "Value", Kind: c.kind})
		if got := effect.Display(res.Effects); got != c.want {
			t.Errorf("kind %v: got effects %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestResolve_MemoizationDoesNotCollideAcrossKinds(t *testing.T) {
	cat := &manifest.Catalog{
		Types: map[string]manifest.MergedType{
			"Acme.Widget": {
				Methods: map[string][]string{"Value": {"method"}},
				Getters: map[string][]string{"Value": {"getter"}},
			},
		},
	}
	r := mustResolver(t, cat)

	method := r.Resolve(Signature{Type: "Acme.Widget", Member: "Value", Kind: MemberMethod})
	getter := r.Resolve(Signature{Type: "Acme.Widget", Member: "Value", Kind: MemberGetter})

	if effect.Display(method.Effects) == effect.Display(getter.Effects) {
		t.Fatalf("method and getter resolutions collided: both %q", effect.Display(method.Effects))
	}

	// Re-resolve to exercise the cached path.
	methodAgain := r.Resolve(Signature{Type: "Acme.Widget", Member: "Value", Kind: MemberMethod})
	if effect.Display(methodAgain.Effects) != effect.Display(method.Effects) {
		t.Fatalf("cached resolution diverged from first resolution")
	}
}
