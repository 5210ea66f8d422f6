package resolver

import "strings"

// Signature identifies a single callable member for resolution: the
// declaring type, the member name, and the parameter type list in source
// order. An empty MemberKind denotes an ordinary method; Getter/Setter/Ctor
// route through their own manifest sub-maps (spec §4.3: "parallel lookup
// paths with dedicated sub-maps").
type Signature struct {
	Type   string
	Member string
	Params []string
	Kind   MemberKind
}

type MemberKind uint8

const (
	MemberMethod MemberKind = iota
	MemberGetter
	MemberSetter
	MemberConstructor
)

// FullSignature renders the built-in catalog's exact-match key:
// "Type::Member(Param,Param)".
func (s Signature) FullSignature() string {
	var b strings.Builder
	b.WriteString(s.Type)
	b.WriteString("::")
	b.WriteString(s.Member)
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p)
	}
	b.WriteByte(')')
	return b.String()
}

// memoKey includes Kind so a getter and a method sharing a name never
// collide in the memoization map.
func (s Signature) memoKey() string {
	var kindTag byte
	switch s.Kind {
	case MemberGetter:
		kindTag = 'g'
	case MemberSetter:
		kindTag = 's'
	case MemberConstructor:
		kindTag = 'c'
	default:
		kindTag = 'm'
	}
	return string(kindTag) + ":" + s.FullSignature()
}
