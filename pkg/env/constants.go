// pkg/env/constants.go
package env

import "path/filepath"

const (
	QueryLibraries       Query = "libraries"
	QueryIncludeDirs     Query = "include_dirs"
	QueryIncludeDirsDeps Query = "include_dirs_deps"
	QueryLdflags         Query = "ldflags"
	QueryLdflagsMac      Query = "ldflags_mac"
)

// Queries lists every query Resolve answers
func Queries() []Query {
	return []Query{
		QueryLibraries,
		QueryIncludeDirs,
		QueryIncludeDirsDeps,
		QueryLdflags,
		QueryLdflagsMac,
	}
}

// Linker directives wrapping the dependency archives
const (
	wholeArchive   = "-Wl,--whole-archive"
	noWholeArchive = "-Wl,--no-whole-archive"
	allLoad        = "-Wl,-all_load"
	noAllLoad      = "-Wl,-noall_load"
)

// DefaultLayout returns the layout of a libgenaro release archive
func DefaultLayout() Layout {
	return Layout{
		Includes:     "include",
		DepsIncludes: filepath.Join("depends", "include"),
	}
}
