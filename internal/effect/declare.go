package effect

import "strings"

// ParseDeclared parses a function's declared-effects surface syntax: a
// comma-separated list of surface codes, split per kind. Unknown tokens
// still produce a (KindUnknown, raw) effect per spec §7 ("an unrecognized
// token becomes (Unknown, raw) and propagates conservatively") — they are
// also returned separately so callers can report them without failing the
// whole declaration.
func ParseDeclared(decl string) (set Set, unknownTokens []string) {
	set = Empty()
	for _, tok := range strings.Split(decl, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		e := Parse(tok)
		set = Union(set, of(e))
		if e.Kind == KindUnknown {
			unknownTokens = append(unknownTokens, tok)
		}
	}
	return set, unknownTokens
}
