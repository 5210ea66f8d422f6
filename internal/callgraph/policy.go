package callgraph

// UnknownCallPolicy controls how effect inference treats a call that
// resolves to neither an internal function nor a known external signature
// (spec §4.4): Strict reports an error; Warn reports a warning and folds in
// the unknown (absorbing, worst-case) effect set; StubRequired behaves like
// Strict unless a stub declaration exists for the callee's name.
type UnknownCallPolicy uint8

const (
	PolicyStrict UnknownCallPolicy = iota
	PolicyWarn
	PolicyStubRequired
)

func (p UnknownCallPolicy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyWarn:
		return "warn"
	case PolicyStubRequired:
		return "stub_required"
	default:
		return "invalid"
	}
}
