package taint

import (
	"strings"

	"github.com/calor-lang/effects/internal/diag"
)

// SourceKind is one of spec §4.8's five taint origins.
type SourceKind uint8

const (
	SourceUserInput SourceKind = iota
	SourceEnvironment
	SourceFileRead
	SourceNetworkInput
	SourceDatabaseResult
)

func (k SourceKind) String() string {
	switch k {
	case SourceUserInput:
		return "user input"
	case SourceEnvironment:
		return "environment"
	case SourceFileRead:
		return "file read"
	case SourceNetworkInput:
		return "network input"
	case SourceDatabaseResult:
		return "database result"
	default:
		return "unknown source"
	}
}

// SinkKind is one of spec §4.8's five sensitive-operation categories, each
// mapped to its own vulnerability diagnostic code.
type SinkKind uint8

const (
	SinkSQL SinkKind = iota
	SinkCommand
	SinkFilesystemPath
	SinkHTMLOutput
	SinkCodeEval
)

func (k SinkKind) code() diag.Code {
	switch k {
	case SinkSQL:
		return diag.SQLInjection
	case SinkCommand:
		return diag.CommandInjection
	case SinkFilesystemPath:
		return diag.PathTraversal
	case SinkHTMLOutput:
		return diag.XSS
	case SinkCodeEval:
		return diag.CodeEval
	default:
		return diag.UnknownCode
	}
}

func (k SinkKind) String() string {
	switch k {
	case SinkSQL:
		return "SQL execution"
	case SinkCommand:
		return "command execution"
	case SinkFilesystemPath:
		return "filesystem path open"
	case SinkHTMLOutput:
		return "HTML output"
	case SinkCodeEval:
		return "code evaluation"
	default:
		return "unknown sink"
	}
}

// Options toggles source/sink categories independently and carries the
// call-name conventions this function recognizes (spec §4.8: heuristic
// parameter name patterns, resolver/manifest-declared source functions,
// and sanitizer-by-convention calls). When both a source and a sink for
// the same vulnerability class are disabled, no diagnostic for that class
// can ever fire, matching spec's "no diagnostics are produced for that
// class" rule structurally rather than by a special case.
type Options struct {
	EnabledSources map[SourceKind]bool
	EnabledSinks   map[SinkKind]bool

	// SourceFns maps a call's CalleeName to the source category it
	// produces — seeded with convention names, extendable with
	// manifest-declared source functions.
	SourceFns map[string]SourceKind
	// SinkFns maps a call's CalleeName to the sink category it performs.
	SinkFns map[string]SinkKind
	// Sanitizers names calls whose result is never tainted, regardless of
	// their arguments' taint.
	Sanitizers map[string]bool
}

// DefaultOptions enables every category and seeds the convention tables
// spec §4.8 names by example (`sql_escape`, `html_escape`, …).
func DefaultOptions() Options {
	return Options{
		EnabledSources: map[SourceKind]bool{
			SourceUserInput:      true,
			SourceEnvironment:    true,
			SourceFileRead:       true,
			SourceNetworkInput:   true,
			SourceDatabaseResult: true,
		},
		EnabledSinks: map[SinkKind]bool{
			SinkSQL:             true,
			SinkCommand:         true,
			SinkFilesystemPath:  true,
			SinkHTMLOutput:      true,
			SinkCodeEval:        true,
		},
		SourceFns: map[string]SourceKind{
			"read_line":        SourceUserInput,
			"readline":         SourceUserInput,
			"request.param":    SourceUserInput,
			"request.query":    SourceUserInput,
			"request.body":     SourceUserInput,
			"getenv":           SourceEnvironment,
			"env.get":          SourceEnvironment,
			"file.read":        SourceFileRead,
			"file.readalltext": SourceFileRead,
			"socket.recv":      SourceNetworkInput,
			"http.get":         SourceNetworkInput,
			"db.query":         SourceDatabaseResult,
			"db.fetch":         SourceDatabaseResult,
		},
		SinkFns: map[string]SinkKind{
			"db.execute":     SinkSQL,
			"db.exec":        SinkSQL,
			"sql.query":      SinkSQL,
			"os.exec":        SinkCommand,
			"process.start":  SinkCommand,
			"shell.run":      SinkCommand,
			"file.open":      SinkFilesystemPath,
			"path.open":      SinkFilesystemPath,
			"response.write": SinkHTMLOutput,
			"html.render":    SinkHTMLOutput,
			"eval":           SinkCodeEval,
			"script.eval":    SinkCodeEval,
		},
		Sanitizers: map[string]bool{
			"sql_escape":     true,
			"sql.escape":     true,
			"html_escape":    true,
			"html.escape":    true,
			"escape_html":    true,
			"sanitize_path":  true,
			"path.sanitize":  true,
			"shell_quote":    true,
			"shell.quote":    true,
		},
	}
}

// paramSourceKind applies spec §4.8's heuristic parameter name patterns:
// `user_*`, `*_input`, `request*`.
func paramSourceKind(name string) (SourceKind, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "user_"):
		return SourceUserInput, true
	case strings.HasSuffix(lower, "_input"):
		return SourceUserInput, true
	case strings.HasPrefix(lower, "request"):
		return SourceUserInput, true
	default:
		return 0, false
	}
}

func (o Options) sourceKindForCall(calleeName string) (SourceKind, bool) {
	k, ok := o.SourceFns[strings.ToLower(calleeName)]
	if !ok || !o.EnabledSources[k] {
		return 0, false
	}
	return k, true
}

func (o Options) sinkKindForCall(calleeName string) (SinkKind, bool) {
	k, ok := o.SinkFns[strings.ToLower(calleeName)]
	if !ok || !o.EnabledSinks[k] {
		return 0, false
	}
	return k, true
}

func (o Options) isSanitizer(calleeName string) bool {
	return o.Sanitizers[strings.ToLower(calleeName)]
}
