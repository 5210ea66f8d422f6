package manifest

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

//go:embed embedded/*.toml
var embeddedFS embed.FS

// LoadError records a manifest that failed to parse or validate. Per spec
// §4.2, one bad file never aborts loading others; LoadErrors are collected
// and the offending document is excluded from the merge.
type LoadError struct {
	Path string
	Tier Tier
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s manifest %s: %v", e.Tier, e.Path, e.Err)
}

// loadedDocument pairs a parsed Document with its tier and source path for
// provenance tracking (Describe).
type loadedDocument struct {
	Tier Tier
	Path string
	Doc  Document
}

// Paths configures the discovery roots for each non-embedded tier. The
// zero value resolves nothing beyond the embedded tier; callers fill in
// whichever tiers apply (spec §6: "alternate roots MUST be overridable by
// the embedder").
type Paths struct {
	// UserDir holds *.toml files read in lexical filename order.
	UserDir string
	// SolutionDir holds *.toml files read in lexical filename order.
	SolutionDir string
	// ProjectFile is a single manifest document. Spec §6 names its default
	// path with a .json suffix but does not mandate JSON encoding; this
	// loader always decodes TOML regardless of the path's extension (see
	// DESIGN.md's "project-tier manifest filename vs content format").
	ProjectFile string
}

// DefaultPaths returns the conventional discovery paths for a given
// solution root and project root, honoring spec §6's default layout. The
// user directory lives under the OS per-user config directory.
func DefaultPaths(solutionRoot, projectRoot string) Paths {
	userDir := ""
	if cfg, err := os.UserConfigDir(); err == nil {
		userDir = filepath.Join(cfg, "calor-effects", "manifests")
	}
	return Paths{
		UserDir:     userDir,
		SolutionDir: filepath.Join(solutionRoot, ".calor-effects"),
		ProjectFile: filepath.Join(projectRoot, ".calor-effects.json"),
	}
}

// LoadAll discovers and parses every manifest tier in ascending priority
// order (embedded, user, solution, project) and returns the validated
// documents alongside any load errors. It never returns an error itself;
// a tier that is entirely absent simply contributes no documents.
func LoadAll(paths Paths) ([]loadedDocument, []LoadError) {
	var docs []loadedDocument
	var errs []LoadError

	embDocs, embErrs := loadEmbedded()
	docs = append(docs, embDocs...)
	errs = append(errs, embErrs...)

	dirDocs, dirErrs := loadDir(paths.UserDir, TierUser)
	docs = append(docs, dirDocs...)
	errs = append(errs, dirErrs...)

	dirDocs, dirErrs = loadDir(paths.SolutionDir, TierSolution)
	docs = append(docs, dirDocs...)
	errs = append(errs, dirErrs...)

	if paths.ProjectFile != "" {
		if d, err := loadFile(paths.ProjectFile, TierProject); err != nil {
			errs = append(errs, LoadError{Path: paths.ProjectFile, Tier: TierProject, Err: err})
		} else if d != nil {
			docs = append(docs, *d)
		}
	}

	return docs, errs
}

func loadEmbedded() ([]loadedDocument, []LoadError) {
	entries, err := embeddedFS.ReadDir("embedded")
	if err != nil {
		return nil, []LoadError{{Path: "embedded", Tier: TierEmbedded, Err: err}}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var docs []loadedDocument
	var errs []LoadError
	for _, name := range names {
		path := filepath.Join("embedded", name)
		content, err := embeddedFS.ReadFile(path)
		if err != nil {
			errs = append(errs, LoadError{Path: path, Tier: TierEmbedded, Err: err})
			continue
		}
		var doc Document
		meta, err := toml.Decode(string(content), &doc)
		if err != nil {
			errs = append(errs, LoadError{Path: path, Tier: TierEmbedded, Err: err})
			continue
		}
		if verrs := Validate(&doc, meta); len(verrs) > 0 {
			errs = append(errs, LoadError{Path: path, Tier: TierEmbedded, Err: joinErrors(verrs)})
			continue
		}
		docs = append(docs, loadedDocument{Tier: TierEmbedded, Path: path, Doc: doc})
	}
	return docs, errs
}

func loadDir(dir string, tier Tier) ([]loadedDocument, []LoadError) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []LoadError{{Path: dir, Tier: tier, Err: err}}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".toml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var docs []loadedDocument
	var errs []LoadError
	for _, name := range names {
		path := filepath.Join(dir, name)
		if d, err := loadFile(path, tier); err != nil {
			errs = append(errs, LoadError{Path: path, Tier: tier, Err: err})
		} else if d != nil {
			docs = append(docs, *d)
		}
	}
	return docs, errs
}

func loadFile(path string, tier Tier) (*loadedDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var doc Document
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if verrs := Validate(&doc, meta); len(verrs) > 0 {
		return nil, joinErrors(verrs)
	}
	return &loadedDocument{Tier: tier, Path: path, Doc: doc}, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := fmt.Sprintf("%d validation errors: %v", len(errs), errs[0])
	return fmt.Errorf("%s (and %d more)", msg, len(errs)-1)
}
