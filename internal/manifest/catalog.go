package manifest

import "sort"

// MergedType is the per-type record the resolver consults: one flattened
// view across every tier that touched the type, built by walking tiers in
// ascending priority and overwriting at type granularity (spec §4.2: "higher
// tiers fully own a type they redeclare" — member maps replace wholesale,
// they are not merged at key level).
type MergedType struct {
	DefaultEffects []string
	Methods        map[string][]string
	Getters        map[string][]string
	Setters        map[string][]string
	Constructors   map[string][]string
	// Tier records which tier last wrote this type, for Describe.
	Tier Tier
}

// Catalog is the result of loading and merging every manifest tier.
type Catalog struct {
	Types             map[string]MergedType
	NamespaceDefaults map[string][]string
	Errors            []LoadError
}

// Build loads every tier via LoadAll and merges them into a Catalog.
func Build(paths Paths) *Catalog {
	docs, errs := LoadAll(paths)
	return merge(docs, errs)
}

func merge(docs []loadedDocument, errs []LoadError) *Catalog {
	cat := &Catalog{
		Types:             make(map[string]MergedType),
		NamespaceDefaults: make(map[string][]string),
		Errors:            errs,
	}

	// Stable-sort by tier so that, within a tier, document order (already
	// lexical by discovery) is preserved while later tiers still win.
	sorted := make([]loadedDocument, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tier < sorted[j].Tier })

	for _, d := range sorted {
		for _, m := range d.Doc.Mappings {
			cat.Types[m.Type] = MergedType{
				DefaultEffects: m.DefaultEffects,
				Methods:        m.Methods,
				Getters:        m.Getters,
				Setters:        m.Setters,
				Constructors:   m.Constructors,
				Tier:           d.Tier,
			}
		}
		for pattern, codes := range d.Doc.NamespaceDefaults {
			cat.NamespaceDefaults[pattern] = codes
		}
	}

	return cat
}

// Describe reports, per type, which tier last supplied its mapping. This
// supplements the spec (not named in §4.2); no CLI command calls it.
func (c *Catalog) Describe() map[string]Tier {
	out := make(map[string]Tier, len(c.Types))
	for name, mt := range c.Types {
		out[name] = mt.Tier
	}
	return out
}
