package effect

import "strings"

// Effect is a single classified side effect: a kind paired with a short
// lowercase value tag (e.g. (IO, "console_write")).
type Effect struct {
	Kind  Kind
	Value string
}

// codeEntry is one row of the canonical, bijective surface-code table.
type codeEntry struct {
	Code  string
	Kind  Kind
	Value string
}

// canonicalTable is the total bijection between surface codes and internal
// (kind, value) pairs named in spec §6's surface effect-code vocabulary.
var canonicalTable = []codeEntry{
	{"cw", KindIO, "console_write"},
	{"cr", KindIO, "console_read"},
	{"fs:r", KindIO, "filesystem_read"},
	{"fs:w", KindIO, "filesystem_write"},
	{"fs:rw", KindIO, "filesystem_readwrite"},
	{"net", KindIO, "network"},
	{"net:r", KindIO, "network_read"},
	{"net:w", KindIO, "network_write"},
	{"net:rw", KindIO, "network_readwrite"},
	{"http", KindIO, "http"},
	{"db", KindIO, "database"},
	{"db:r", KindIO, "database_read"},
	{"db:w", KindIO, "database_write"},
	{"db:rw", KindIO, "database_readwrite"},
	{"env", KindIO, "environment_readwrite"},
	{"env:r", KindIO, "environment_read"},
	{"env:w", KindIO, "environment_write"},
	{"proc", KindIO, "process"},
	{"alloc", KindMemory, "allocation"},
	{"unsafe", KindMemory, "unsafe"},
	{"time", KindNondeterminism, "time"},
	{"rand", KindNondeterminism, "random"},
	{"mut", KindMutation, "heap_write"},
	{"throw", KindException, "intentional"},
}

// legacyAliases maps back-compatible surface spellings to an Effect.
// Accepted only on input: Display never produces these codes.
//
// fw/fr/fd preserve the pre-unification filesystem vocabulary (file_write,
// file_read, file_delete) rather than folding into filesystem_read/write,
// since the legacy file_write ⊇ file_delete edge is distinct from the
// filesystem_readwrite ⊇ filesystem_read/write edges.
var legacyAliases = map[string]Effect{
	"fw":  {KindIO, "file_write"},
	"fr":  {KindIO, "file_read"},
	"fd":  {KindIO, "file_delete"},
	"dbr": {KindIO, "database_read"},
	"dbw": {KindIO, "database_write"},
	"rng": {KindNondeterminism, "random"},
}

var (
	codeByPair map[Effect]string
	pairByCode map[string]Effect
)

func init() {
	codeByPair = make(map[Effect]string, len(canonicalTable))
	pairByCode = make(map[string]Effect, len(canonicalTable))
	for _, e := range canonicalTable {
		pair := Effect{e.Kind, e.Value}
		codeByPair[pair] = e.Code
		pairByCode[e.Code] = pair
	}
}

// Parse converts a surface code to an Effect. Matching is case-insensitive.
// Exact matches against the canonical table and legacy aliases win first;
// otherwise a "kind:value" form with a recognized kind category is accepted
// as that pair; anything else becomes (KindUnknown, raw) so that unrecognized
// input propagates conservatively rather than being dropped.
func Parse(code string) Effect {
	lower := strings.ToLower(strings.TrimSpace(code))
	if pair, ok := pairByCode[lower]; ok {
		return pair
	}
	if alias, ok := legacyAliases[lower]; ok {
		return alias
	}
	if idx := strings.IndexByte(lower, ':'); idx > 0 {
		kindToken, value := lower[:idx], lower[idx+1:]
		if k, ok := ParseKind(kindToken); ok && value != "" {
			return Effect{k, value}
		}
	}
	return Effect{KindUnknown, lower}
}

// IsKnown reports whether code matches the canonical table or a legacy
// alias, as opposed to falling back to (KindUnknown, raw). Manifest
// validation (spec §4.2) rejects declared codes that are not known.
func IsKnown(code string) bool {
	lower := strings.ToLower(strings.TrimSpace(code))
	if _, ok := pairByCode[lower]; ok {
		return true
	}
	if _, ok := legacyAliases[lower]; ok {
		return true
	}
	return false
}

// SurfaceCode returns the canonical compact code for an effect, or the
// synthesized "kind:value" form if the effect has no canonical entry.
func (e Effect) SurfaceCode() string {
	if code, ok := codeByPair[e]; ok {
		return code
	}
	if e.Kind == KindUnknown {
		return e.Value
	}
	return e.Kind.String() + ":" + e.Value
}

func (e Effect) String() string {
	return e.SurfaceCode()
}

// coverEdges lists one-step directed subtyping edges: coverEdges[declared]
// is the set of required values that declared covers, within the same kind.
var coverEdges = map[string][]string{
	"filesystem_readwrite":  {"filesystem_read", "filesystem_write"},
	"network":               {"network_readwrite", "network_read", "network_write"},
	"network_readwrite":     {"network_read", "network_write"},
	"database":              {"database_readwrite", "database_read", "database_write"},
	"database_readwrite":    {"database_read", "database_write"},
	"environment_readwrite": {"environment_read", "environment_write"},
	"file_write":            {"file_delete"},
}

// Satisfies reports whether a declared effect satisfies a required effect:
// they are equal, or declared covers required per the one-step subtyping
// edges above. Different kinds never satisfy one another.
func (declared Effect) Satisfies(required Effect) bool {
	if declared == required {
		return true
	}
	if declared.Kind != required.Kind {
		return false
	}
	for _, covered := range coverEdges[declared.Value] {
		if covered == required.Value {
			return true
		}
	}
	return false
}
