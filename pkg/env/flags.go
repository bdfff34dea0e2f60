// pkg/env/flags.go
package env

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/genaro-network/genaro-deps/pkg/core"
)

// New creates an environment rooted at the manifest's base path, resolved
// against baseDir
func New(baseDir string, m *core.Manifest) *Environment {
	root := m.BasePath
	if !filepath.IsAbs(root) {
		root = filepath.Join(baseDir, root)
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	return &Environment{
		Root:     root,
		Manifest: m,
		Layout:   DefaultLayout(),
	}
}

// Resolve answers query for the given provisioning state. An unknown query
// returns an empty string and core.ErrUnknownQuery.
func (e *Environment) Resolve(query Query, state core.ProvisioningState) (string, error) {
	installed := state == core.SystemInstalled

	switch query {
	case QueryLibraries:
		if installed {
			return "-l" + e.Manifest.LinkName, nil
		}
		return e.Path(e.Manifest.Archive), nil

	case QueryIncludeDirs:
		if installed {
			return e.Manifest.Header, nil
		}
		return filepath.Join(e.Root, e.Layout.Includes), nil

	case QueryIncludeDirsDeps:
		if installed {
			return "", nil
		}
		return filepath.Join(e.Root, e.Layout.DepsIncludes), nil

	case QueryLdflags:
		if installed {
			return "", nil
		}
		return e.wrapArchives(wholeArchive) + " " + noWholeArchive, nil

	case QueryLdflagsMac:
		if installed {
			return "", nil
		}
		return e.frameworkFlags() + e.wrapArchives(allLoad) + " " + noAllLoad, nil
	}

	return "", fmt.Errorf("%w: %q", core.ErrUnknownQuery, query)
}

// Path returns the absolute path of a slash-separated path in the manifest,
// which may carry a leading slash
func (e *Environment) Path(p string) string {
	return filepath.Join(e.Root, filepath.FromSlash(strings.TrimPrefix(p, "/")))
}

// StaticArchives returns the absolute dependency archive paths in manifest order
func (e *Environment) StaticArchives() []string {
	paths := make([]string, len(e.Manifest.StaticArchives))
	for i, a := range e.Manifest.StaticArchives {
		paths[i] = e.Path(a)
	}
	return paths
}

func (e *Environment) wrapArchives(directive string) string {
	archives := e.StaticArchives()
	wrapped := make([]string, len(archives))
	for i, a := range archives {
		wrapped[i] = directive + " " + a
	}
	return strings.Join(wrapped, " ")
}

func (e *Environment) frameworkFlags() string {
	var b strings.Builder
	for _, f := range e.Manifest.Frameworks {
		b.WriteString("-framework ")
		b.WriteString(f)
		b.WriteString(" ")
	}
	return b.String()
}
