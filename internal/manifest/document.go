// Package manifest loads, validates, and merges the layered documents that
// drive internal/resolver: embedded defaults, user-scope, solution-scope,
// and project-scope effect mappings (spec §4.2, §6).
package manifest

// Tier is a manifest priority tier. Higher values win during merge.
type Tier int

const (
	TierEmbedded Tier = iota
	TierUser
	TierSolution
	TierProject
)

func (t Tier) String() string {
	switch t {
	case TierEmbedded:
		return "embedded"
	case TierUser:
		return "user"
	case TierSolution:
		return "solution"
	case TierProject:
		return "project"
	default:
		return "unknown"
	}
}

// TypeMapping is one `[[mappings]]` entry: the effect surface for a single
// type, keyed by member kind. Each map's values are lists of surface codes
// (spec §6's "array of surface codes").
type TypeMapping struct {
	Type           string              `toml:"type"`
	DefaultEffects []string            `toml:"defaultEffects"`
	Methods        map[string][]string `toml:"methods"`
	Getters        map[string][]string `toml:"getters"`
	Setters        map[string][]string `toml:"setters"`
	Constructors   map[string][]string `toml:"constructors"`
}

// Document is the parsed shape of a single manifest file, independent of
// which tier it was loaded from.
type Document struct {
	Version           string              `toml:"version"`
	Description       string              `toml:"description"`
	Mappings          []TypeMapping       `toml:"mappings"`
	NamespaceDefaults map[string][]string `toml:"namespaceDefaults"`
}
