// Package builtins holds the built-in effect catalog consulted first by
// internal/resolver (spec §4.3, step 1): an exact match against a full
// signature "Type::Member(Param,Param)".
package builtins

import (
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// entry is one row of the literal seed table.
type entry struct {
	Signature string
	Codes     []string
}

// seed is the authoritative source table, covering signatures common
// enough that per-project manifests shouldn't need to restate them.
// Effect-bare entries ("Codes: nil") are PureExplicit per spec §4.3.
var seed = []entry{
	{"System.Math::Abs(int)", nil},
	{"System.Math::Max(int,int)", nil},
	{"System.Math::Min(int,int)", nil},
	{"System.Math::Sqrt(double)", nil},
	{"System.String::Concat(string,string)", nil},
	{"System.String::Format(string,object[])", nil},
	{"System.String::Trim()", nil},
	{"System.Collections.Generic.List`1::Add(T)", []string{"mut"}},
	{"System.Collections.Generic.Dictionary`2::Add(TKey,TValue)", []string{"mut"}},
	{"System.Console::WriteLine(string)", []string{"cw"}},
	{"System.Console::ReadLine()", []string{"cr"}},
	{"System.IO.File::ReadAllText(string)", []string{"fs:r"}},
	{"System.IO.File::WriteAllText(string,string)", []string{"fs:w"}},
	{"System.Guid::NewGuid()", []string{"rand"}},
}

// Catalog maps a full signature to its surface effect codes. A key present
// with a nil/empty slice means PureExplicit; a key absent means the
// built-in tier has no opinion and resolution falls through to the
// manifest layer.
type Catalog map[string][]string

// Lookup resolves (typ, member) against the catalog. It first tries an
// exact "Type::Member(params)" match; callers without argument-type
// information (the analysis core has no type checker — see DESIGN.md) can
// instead fall back to the unique "Type::Member(" prefix match, which
// still resolves correctly as long as the built-in catalog declares at
// most one overload per member, true of every entry in seed today.
func (c Catalog) Lookup(fullSignature, typ, member string) ([]string, bool) {
	if codes, ok := c[fullSignature]; ok {
		return codes, true
	}
	prefix := typ + "::" + member + "("
	for sig, codes := range c {
		if strings.HasPrefix(sig, prefix) {
			return codes, true
		}
	}
	return nil, false
}

// Load builds the runtime Catalog by marshaling the literal seed table to
// msgpack bytes and decoding it back — the decode path production code
// exercises at init, matching the generated-blob shape without requiring a
// build-time generator to have run (see DESIGN.md).
func Load() (Catalog, error) {
	encoded, err := msgpack.Marshal(seed)
	if err != nil {
		return nil, fmt.Errorf("builtins: marshal seed table: %w", err)
	}
	var decoded []entry
	if err := msgpack.Unmarshal(encoded, &decoded); err != nil {
		return nil, fmt.Errorf("builtins: unmarshal seed table: %w", err)
	}
	cat := make(Catalog, len(decoded))
	for _, e := range decoded {
		cat[e.Signature] = e.Codes
	}
	return cat, nil
}
