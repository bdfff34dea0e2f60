// pkg/platform/resolver.go
package platform

import (
	"fmt"
	"sort"

	"github.com/genaro-network/genaro-deps/pkg/core"
)

// Resolve returns the first release whose platform and arch both match
func Resolve(os, arch string, m *core.Manifest) (*core.ReleaseDescriptor, error) {
	for i := range m.Releases {
		r := &m.Releases[i]
		if r.Platform == os && r.Arch == arch {
			return r, nil
		}
	}

	return nil, fmt.Errorf("%w: %s and arch: %s", core.ErrUnsupportedPlatform, os, arch)
}

// ResolveFor resolves the release for a detected platform
func ResolveFor(p *Platform, m *core.Manifest) (*core.ReleaseDescriptor, error) {
	return Resolve(p.OS, p.Arch, m)
}

// Supported returns the sorted platform-arch keys listed by the manifest
func Supported(m *core.Manifest) []string {
	keys := make([]string, 0, len(m.Releases))
	for _, r := range m.Releases {
		if !contains(keys, r.Key()) {
			keys = append(keys, r.Key())
		}
	}
	sort.Strings(keys)
	return keys
}
