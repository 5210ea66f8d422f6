package resolver

import (
	"strings"
	"sync"

	"github.com/calor-lang/effects/internal/effect"
	"github.com/calor-lang/effects/internal/manifest"
	"github.com/calor-lang/effects/internal/resolver/builtins"
)

// Resolver answers effect queries for (type, member, parameter-signature)
// triples (spec §4.3). It is built once per run from the discovered
// manifests and the built-in catalog; once built it is read-mostly and safe
// to share across parallel per-function analyses (spec §5).
type Resolver struct {
	builtin builtins.Catalog
	catalog *manifest.Catalog
	memoMu  sync.RWMutex
	memo    map[string]Result
}

// New builds a Resolver from a manifest catalog. Manifest loading is
// synchronous and happens once, during this construction (spec §5: "no
// operation blocks on I/O except manifest loading ... during resolver
// initialization").
func New(catalog *manifest.Catalog) (*Resolver, error) {
	bc, err := builtins.Load()
	if err != nil {
		return nil, err
	}
	return &Resolver{
		builtin: bc,
		catalog: catalog,
		memo:    make(map[string]Result),
	}, nil
}

// Resolve answers a single query, memoizing by the query's full signature.
// Callers must not mutate the Effects field of the returned Result.
func (r *Resolver) Resolve(sig Signature) Result {
	key := sig.memoKey()

	r.memoMu.RLock()
	if cached, ok := r.memo[key]; ok {
		r.memoMu.RUnlock()
		return cached
	}
	r.memoMu.RUnlock()

	result := r.resolveUncached(sig)

	r.memoMu.Lock()
	r.memo[key] = result
	r.memoMu.Unlock()

	return result
}

func (r *Resolver) resolveUncached(sig Signature) Result {
	if codes, ok := r.builtin.Lookup(sig.FullSignature(), sig.Type, sig.Member); ok {
		return resolved(effect.From(codes...))
	}

	if r.catalog != nil {
		if mt, ok := r.catalog.Types[sig.Type]; ok {
			if codes, ok := lookupMember(sig, mt); ok {
				return resolved(effect.From(codes...))
			}
		}
		if codes, ok := lookupNamespace(sig.Type, r.catalog.NamespaceDefaults); ok {
			return resolved(effect.From(codes...))
		}
	}

	return resultUnknown
}

// lookupMember implements spec §4.3's per-type lookup order: specific
// parameter signature, then member name without signature, then the `*`
// wildcard, then the type's default-effects. Getters/setters/constructors
// use their own dedicated sub-map with the same three-step shape before
// falling back to DefaultEffects.
func lookupMember(sig Signature, mt manifest.MergedType) ([]string, bool) {
	sub := memberMap(sig.Kind, mt)

	sigKey := sig.Member + "(" + strings.Join(sig.Params, ",") + ")"
	if codes, ok := sub[sigKey]; ok {
		return codes, true
	}
	if codes, ok := sub[sig.Member]; ok {
		return codes, true
	}
	if codes, ok := sub["*"]; ok {
		return codes, true
	}
	if mt.DefaultEffects != nil {
		return mt.DefaultEffects, true
	}
	return nil, false
}

func memberMap(kind MemberKind, mt manifest.MergedType) map[string][]string {
	switch kind {
	case MemberGetter:
		return mt.Getters
	case MemberSetter:
		return mt.Setters
	case MemberConstructor:
		return mt.Constructors
	default:
		return mt.Methods
	}
}

// lookupNamespace finds the exact namespace match first, then the longest
// matching `ns.*` wildcard pattern (spec §4.3: "exact namespace first, then
// ns.* patterns in longest-prefix order"). The catalog is already merged
// across tiers (highest priority wins per pattern), so no further
// tier-descending scan is needed here.
func lookupNamespace(typeName string, defaults map[string][]string) ([]string, bool) {
	if codes, ok := defaults[typeName]; ok {
		return codes, true
	}

	bestLen := -1
	var best []string
	for pattern, codes := range defaults {
		prefix, isWildcard := strings.CutSuffix(pattern, ".*")
		if !isWildcard {
			continue
		}
		if strings.HasPrefix(typeName, prefix+".") && len(prefix) > bestLen {
			bestLen = len(prefix)
			best = codes
		}
	}
	return best, bestLen >= 0
}
