package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/calor-lang/effects/internal/effect"
)

// Validate runs the spec §4.2 validation pass over a parsed Document:
// version presence, non-empty type names, and every declared effect code
// appearing in the known-codes table (legacy codes included). Violations
// are returned rather than panicking so the caller can decide whether to
// exclude the whole document or keep the valid parts.
func Validate(doc *Document, meta toml.MetaData) []error {
	var errs []error

	if !meta.IsDefined("version") || doc.Version == "" {
		errs = append(errs, fmt.Errorf("missing required field: version"))
	}

	for i, m := range doc.Mappings {
		if m.Type == "" {
			errs = append(errs, fmt.Errorf("mappings[%d]: missing required field: type", i))
			continue
		}
		errs = append(errs, validateCodeList(m.Type, "defaultEffects", m.DefaultEffects)...)
		errs = append(errs, validateCodeMap(m.Type, "methods", m.Methods)...)
		errs = append(errs, validateCodeMap(m.Type, "getters", m.Getters)...)
		errs = append(errs, validateCodeMap(m.Type, "setters", m.Setters)...)
		errs = append(errs, validateCodeMap(m.Type, "constructors", m.Constructors)...)
	}

	for pattern, codes := range doc.NamespaceDefaults {
		errs = append(errs, validateCodeList(pattern, "namespaceDefaults", codes)...)
	}

	return errs
}

func validateCodeMap(typeName, field string, m map[string][]string) []error {
	var errs []error
	for member, codes := range m {
		errs = append(errs, validateCodeList(typeName+"."+member, field, codes)...)
	}
	return errs
}

func validateCodeList(owner, field string, codes []string) []error {
	var errs []error
	for _, code := range codes {
		if !effect.IsKnown(code) {
			errs = append(errs, fmt.Errorf("%s: %s: unrecognized effect code %q", owner, field, code))
		}
	}
	return errs
}
