// pkg/core/package.go
package core

// ReleaseDescriptor maps one platform/arch pair to a prebuilt archive
type ReleaseDescriptor struct {
	Platform  string `yaml:"platform" toml:"platform"`             // linux, darwin, win32, ...
	Arch      string `yaml:"arch" toml:"arch"`                     // x64, arm64, ia32, ...
	Filename  string `yaml:"filename" toml:"filename"`             // Archive file name under BaseURL
	Checksum  string `yaml:"checksum" toml:"checksum"`             // Expected digest (hex, algo:digest or SRI)
	Signature string `yaml:"signature,omitempty" toml:"signature"` // Optional detached signature file name
}

// Key returns the "platform-arch" pair of the descriptor
func (d ReleaseDescriptor) Key() string {
	return d.Platform + "-" + d.Arch
}

// Manifest describes where prebuilt archives live and how they are laid out
type Manifest struct {
	Library        string              `yaml:"library" toml:"library"`           // pkg-config name
	Header         string              `yaml:"header" toml:"header"`             // Public header name
	LinkName       string              `yaml:"link_name" toml:"link_name"`       // Name passed to -l
	Version        string              `yaml:"version,omitempty" toml:"version"` // Vendored release version
	SystemVersion  string              `yaml:"system_version,omitempty" toml:"system_version"`
	BaseURL        string              `yaml:"base_url" toml:"base_url"`
	BasePath       string              `yaml:"base_path" toml:"base_path"`               // Vendored root
	Archive        string              `yaml:"archive" toml:"archive"`                   // Main static archive, relative to BasePath
	StaticArchives []string            `yaml:"static_archives" toml:"static_archives"`   // Dependency archives, relative to BasePath
	Frameworks     []string            `yaml:"frameworks" toml:"frameworks"`             // darwin frameworks for ldflags_mac
	SigningKey     string              `yaml:"signing_key,omitempty" toml:"signing_key"` // Armored OpenPGP public key
	Releases       []ReleaseDescriptor `yaml:"releases" toml:"releases"`
}

// ProvisioningState tells whether the library comes from the system or the vendored archive
type ProvisioningState int

const (
	// VendoredPresent means the vendored archive must be used
	VendoredPresent ProvisioningState = iota
	// SystemInstalled means the system package registry provides the library
	SystemInstalled
)

func (s ProvisioningState) String() string {
	if s == SystemInstalled {
		return "installed"
	}
	return "vendored"
}
