// Package manifest loads the provisioning manifest that lists prebuilt
// releases and the vendored archive layout.
package manifest

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/genaro-network/genaro-deps/pkg/core"
)

//go:embed manifest.yaml
var defaultManifest []byte

const (
	DefaultLibrary  = "libgenaro"
	DefaultHeader   = "genaro.h"
	DefaultLinkName = "genaro"
	DefaultArchive  = "lib/libgenaro.a"
)

// DefaultFrameworks are linked ahead of the vendored archives on darwin
var DefaultFrameworks = []string{"Security"}

// ErrNoReleases is returned when provisioning from a manifest that lists no
// releases, such as the embedded default
var ErrNoReleases = fmt.Errorf("%w: no releases listed, a manifest file is required", core.ErrInvalidManifest)

// Default returns the manifest embedded in the binary. It describes the
// vendored layout only and lists no releases.
func Default() (*core.Manifest, error) {
	m, err := decode(defaultManifest, "yaml")
	if err != nil {
		return nil, err
	}
	if err := ValidateLayout(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads a manifest file. The format follows the file extension:
// .yaml, .yml and .json decode as YAML, .toml as TOML.
func Load(file string) (*core.Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", file, err)
	}
	return m, nil
}

// Parse decodes and validates manifest data in the given format
func Parse(data []byte, format string) (*core.Manifest, error) {
	m, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode(data []byte, format string) (*core.Manifest, error) {
	var m core.Manifest

	switch format {
	case "yaml", "yml", "json":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidManifest, err)
		}
	case "toml":
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrInvalidManifest, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %s", core.ErrInvalidManifest, undecoded[0])
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", core.ErrInvalidManifest, format)
	}

	applyDefaults(&m)
	return &m, nil
}

func applyDefaults(m *core.Manifest) {
	if m.Library == "" {
		m.Library = DefaultLibrary
	}
	if m.Header == "" {
		m.Header = DefaultHeader
	}
	if m.LinkName == "" {
		m.LinkName = strings.TrimPrefix(m.Library, "lib")
	}
	if m.Archive == "" {
		m.Archive = DefaultArchive
	}
	if m.Frameworks == nil {
		m.Frameworks = append([]string(nil), DefaultFrameworks...)
	}
	m.BaseURL = strings.TrimRight(m.BaseURL, "/")
}

// Validate checks the manifest for missing fields, duplicate releases and
// archive paths that would escape the vendored root.
func Validate(m *core.Manifest) error {
	if m.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", core.ErrInvalidManifest)
	}
	if len(m.Releases) == 0 {
		return fmt.Errorf("%w: no releases", core.ErrInvalidManifest)
	}

	seen := make(map[string]bool)
	for i, r := range m.Releases {
		if r.Platform == "" || r.Arch == "" {
			return fmt.Errorf("%w: release %d: platform and arch are required", core.ErrInvalidManifest, i)
		}
		if r.Filename == "" || r.Checksum == "" {
			return fmt.Errorf("%w: release %s: filename and checksum are required", core.ErrInvalidManifest, r.Key())
		}
		if r.Filename != path.Base(r.Filename) {
			return fmt.Errorf("%w: release %s: filename must not contain a directory", core.ErrInvalidManifest, r.Key())
		}
		if seen[r.Key()] {
			return fmt.Errorf("%w: duplicate release %s", core.ErrInvalidManifest, r.Key())
		}
		seen[r.Key()] = true
	}

	return ValidateLayout(m)
}

// ValidateLayout checks the vendored root and archive paths
func ValidateLayout(m *core.Manifest) error {
	if m.BasePath == "" {
		return fmt.Errorf("%w: base_path is required", core.ErrInvalidManifest)
	}

	for _, a := range append([]string{m.Archive}, m.StaticArchives...) {
		if !isLocal(a) {
			return fmt.Errorf("%w: archive path %q escapes base_path", core.ErrInvalidManifest, a)
		}
	}

	if m.SystemVersion != "" {
		if _, err := semver.NewConstraint(m.SystemVersion); err != nil {
			return fmt.Errorf("%w: system_version: %v", core.ErrInvalidManifest, err)
		}
	}

	return nil
}

// isLocal reports whether a slash-separated relative path stays under its root
func isLocal(p string) bool {
	p = strings.TrimPrefix(p, "/")
	if p == "" || path.IsAbs(p) || filepath.IsAbs(p) {
		return false
	}
	clean := path.Clean(p)
	return clean != ".." && !strings.HasPrefix(clean, "../")
}
