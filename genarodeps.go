// Package genarodeps provisions the prebuilt libgenaro native library for
// the binding build and answers its compiler and linker flag queries.
//
// A build first calls Provision, which uses the system installation when
// pkg-config reports one and otherwise downloads, verifies and extracts the
// release archive for the host platform. It then calls Flags once per query.
package genarodeps

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/genaro-network/genaro-deps/pkg/core"
	"github.com/genaro-network/genaro-deps/pkg/env"
	"github.com/genaro-network/genaro-deps/pkg/fetch"
	"github.com/genaro-network/genaro-deps/pkg/manifest"
	"github.com/genaro-network/genaro-deps/pkg/platform"
	"github.com/genaro-network/genaro-deps/pkg/probe"
)

// Re-export core types for convenience
type (
	Config            = core.Config
	Manifest          = core.Manifest
	ReleaseDescriptor = core.ReleaseDescriptor
	ProvisioningState = core.ProvisioningState
	ProbeResult       = core.ProbeResult
	Query             = env.Query
)

// Re-export provisioning states
const (
	SystemInstalled = core.SystemInstalled
	VendoredPresent = core.VendoredPresent
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return core.DefaultConfig()
}

// Manager wires the manifest, platform, prober and fetcher together
type Manager struct {
	config   *core.Config
	manifest *core.Manifest
	platform *platform.Platform
	prober   core.Prober
	fetcher  core.Fetcher
	logger   *log.Logger
	force    bool
}

// Option customizes a Manager
type Option func(*Manager)

// WithManifest uses m instead of loading one from the config
func WithManifest(m *core.Manifest) Option {
	return func(mgr *Manager) { mgr.manifest = m }
}

// WithProber replaces the pkg-config prober
func WithProber(p core.Prober) Option {
	return func(mgr *Manager) { mgr.prober = p }
}

// WithFetcher replaces the HTTP fetcher
func WithFetcher(f core.Fetcher) Option {
	return func(mgr *Manager) { mgr.fetcher = f }
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *log.Logger) Option {
	return func(mgr *Manager) { mgr.logger = l }
}

// WithForce makes the default fetcher download archives that already exist
func WithForce(force bool) Option {
	return func(mgr *Manager) { mgr.force = force }
}

// NewManager creates a manager from cfg, loading the manifest named by
// cfg.Manifest or the embedded layout-only default
func NewManager(cfg *core.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}

	m := &Manager{config: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}

	if m.manifest == nil {
		var err error
		if cfg.Manifest != "" {
			m.manifest, err = manifest.Load(cfg.Resolve(cfg.Manifest))
		} else {
			m.manifest, err = manifest.Default()
		}
		if err != nil {
			return nil, fmt.Errorf("loading manifest: %w", err)
		}
	}

	m.platform = platform.Detect().Override(cfg.Platform, cfg.Arch)

	if m.prober == nil {
		m.prober = probe.New(&probe.Config{
			Command:       cfg.PkgConfig,
			SystemVersion: m.manifest.SystemVersion,
		})
	}

	if m.fetcher == nil {
		m.fetcher = fetch.NewManager(&fetch.Config{
			BaseDir:        cfg.BaseDir,
			DownloadDir:    cfg.DownloadDir,
			ConnectTimeout: cfg.ConnectTimeout,
			Timeout:        cfg.Timeout,
			Retries:        cfg.Retries,
			KeepArchive:    cfg.KeepArchive,
			Force:          m.force,
			Logger:         m.logger,
		})
	}

	m.logger.Debug("initialized manager",
		"platform", m.platform,
		"library", m.manifest.Library,
		"base_dir", cfg.BaseDir)

	return m, nil
}

// Config returns the manager's configuration
func (m *Manager) Config() *core.Config {
	return m.config
}

// Manifest returns the loaded manifest
func (m *Manager) Manifest() *core.Manifest {
	return m.manifest
}

// Platform returns the detected platform after config overrides
func (m *Manager) Platform() *platform.Platform {
	return m.platform
}

// Environment returns the flag resolver for the vendored root
func (m *Manager) Environment() *env.Environment {
	return env.New(m.config.BaseDir, m.manifest)
}

// Probe checks whether the library is installed on the host
func (m *Manager) Probe(ctx context.Context) core.ProbeResult {
	result := m.prober.Probe(ctx, m.manifest.Library)
	m.logger.Debug("probe", "library", m.manifest.Library, "state", result.State, "outcome", result.Outcome)
	return result
}

// Release returns the release for the host platform. A manifest without
// releases fails with manifest.ErrNoReleases.
func (m *Manager) Release() (*core.ReleaseDescriptor, error) {
	if len(m.manifest.Releases) == 0 {
		return nil, manifest.ErrNoReleases
	}
	return platform.ResolveFor(m.platform, m.manifest)
}

// Flags probes the host once and resolves query for the resulting state
func (m *Manager) Flags(ctx context.Context, query string) (string, error) {
	return m.Environment().Resolve(env.Query(query), m.Probe(ctx).State)
}

// Provision makes libgenaro available. It returns nil without touching the
// network when the system provides the library.
func (m *Manager) Provision(ctx context.Context) error {
	if result := m.Probe(ctx); result.State == core.SystemInstalled {
		m.logger.Info("Using system installation", "library", m.manifest.Library, "version", result.Version)
		return nil
	}

	release, err := m.Release()
	if err != nil {
		return err
	}

	m.logger.Info("Provisioning vendored archive", "library", m.manifest.Library, "release", release.Key())
	return m.fetcher.Provision(ctx, release, m.manifest)
}

// Check lists problems with the vendored tree on disk
func (m *Manager) Check() []env.Problem {
	return m.Environment().Check()
}
