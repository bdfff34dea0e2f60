// pkg/env/types.go
package env

import "github.com/genaro-network/genaro-deps/pkg/core"

// Query names a link flag query
type Query string

// Layout defines where files are located within the vendored tree
type Layout struct {
	Includes     string // Relative include directory
	DepsIncludes string // Relative dependency include directory
}

// Environment resolves flags against one vendored root
type Environment struct {
	Root     string         // Absolute vendored root
	Manifest *core.Manifest // Names, archives and frameworks
	Layout   Layout
}
