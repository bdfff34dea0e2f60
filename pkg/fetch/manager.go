// pkg/fetch/manager.go
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/genaro-network/genaro-deps/pkg/core"
	"github.com/genaro-network/genaro-deps/pkg/platform"
)

// NewManager creates an artifact fetcher
func NewManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = &Config{}
	}

	if cfg.BaseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.BaseDir = wd
		}
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries == 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = DefaultRetryWait
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Manager{
		client: NewClientWithOptions(cfg.ConnectTimeout, cfg.Timeout, cfg.Retries, cfg.RetryWait),
		config: cfg,
		logger: logger,
	}

	m.logger.Debug("initialized fetcher",
		"base_dir", cfg.BaseDir,
		"connect_timeout", cfg.ConnectTimeout,
		"retries", cfg.Retries)

	return m
}

// Provision makes the vendored tree for release present and verified under
// the manifest's base path. An archive already on disk is reused without
// network access. The existing tree is replaced only after the new archive
// has been verified and fully extracted.
func (m *Manager) Provision(ctx context.Context, release *core.ReleaseDescriptor, manifest *core.Manifest) error {
	if release == nil || manifest == nil {
		return fmt.Errorf("release and manifest are required")
	}

	digest, err := ParseDigest(release.Checksum)
	if err != nil {
		return &core.Error{Op: "verify", Path: release.Filename, Err: fmt.Errorf("%w: %w", core.ErrInvalidManifest, err)}
	}

	target := m.downloadPath(release.Filename)
	url := manifest.BaseURL + "/" + release.Filename

	m.logger.Info("Step 1: Fetching archive", "library", manifest.Library, "release", release.Key())
	if err := m.ensureFile(ctx, url, target, manifest.Library); err != nil {
		return &core.Error{Op: "download", Path: url, Err: fmt.Errorf("%w: %w", core.ErrDownloadFailure, err)}
	}

	m.logger.Info("Step 2: Verifying checksum", "algorithm", digest.Algorithm)
	if err := digest.Verify(target); err != nil {
		return &core.Error{Op: "verify", Path: target, Err: err}
	}
	m.logger.Info("Verified file hash", "library", manifest.Library, "path", target)

	if err := m.verifySignature(ctx, release, manifest, target); err != nil {
		return err
	}

	dest := m.resolve(manifest.BasePath)
	format := DetectFormat(release.Filename, platform.FamilyOf(release.Platform).ArchiveFormat)

	m.logger.Info("Step 3: Extracting archive", "path", target, "dest", dest, "format", format)
	files, err := m.install(target, dest, format)
	if err != nil {
		return &core.Error{Op: "extract", Path: target, Err: fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)}
	}
	m.logger.Info("Extraction complete", "files", files)

	if !m.config.KeepArchive {
		if err := os.Remove(target); err != nil {
			m.logger.Warn("failed to remove archive", "path", target, "err", err)
		}
	}

	return nil
}

// ensureFile downloads url to target unless target already exists
func (m *Manager) ensureFile(ctx context.Context, url, target, name string) error {
	if m.config.Force {
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", target, err)
		}
	}

	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
		m.logger.Info("Already downloaded", "library", name, "path", target)
		return nil
	}

	m.logger.Info("Downloading", "library", name, "from", url, "to", target)
	n, err := m.client.DownloadFile(ctx, url, target)
	if err != nil {
		return err
	}
	m.logger.Info("Download complete", "bytes", n)
	return nil
}

func (m *Manager) verifySignature(ctx context.Context, release *core.ReleaseDescriptor, manifest *core.Manifest, target string) error {
	switch {
	case release.Signature == "" && manifest.SigningKey == "":
		return nil
	case release.Signature == "":
		m.logger.Debug("release has no signature", "release", release.Key())
		return nil
	case manifest.SigningKey == "":
		m.logger.Warn("no signing key configured, skipping signature", "release", release.Key())
		return nil
	}

	keyring, err := ReadKeyRing(m.signingKey(manifest.SigningKey))
	if err != nil {
		return &core.Error{Op: "verify", Path: release.Signature, Err: fmt.Errorf("%w: %w", core.ErrInvalidManifest, err)}
	}

	sigPath := m.downloadPath(release.Signature)
	sigURL := manifest.BaseURL + "/" + release.Signature
	if err := m.ensureFile(ctx, sigURL, sigPath, release.Signature); err != nil {
		return &core.Error{Op: "download", Path: sigURL, Err: fmt.Errorf("%w: %w", core.ErrDownloadFailure, err)}
	}

	m.logger.Info("Verifying signature", "path", sigPath)
	if err := VerifySignature(keyring, target, sigPath); err != nil {
		return &core.Error{Op: "verify", Path: target, Err: fmt.Errorf("%w: %w", core.ErrSignatureMismatch, err)}
	}
	return nil
}

// signingKey returns inline key text untouched and resolves key file paths
func (m *Manager) signingKey(key string) string {
	if _, err := os.Stat(m.resolve(key)); err == nil {
		return m.resolve(key)
	}
	return key
}

// install extracts into a staging directory beside dest, then swaps it in.
// On failure the staging directory is removed and dest is left as it was.
func (m *Manager) install(archive, dest, format string) (int, error) {
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	staging, err := os.MkdirTemp(parent, "."+filepath.Base(dest)+".staging-")
	if err != nil {
		return 0, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := os.Chmod(staging, 0755); err != nil {
		return 0, fmt.Errorf("setting permissions: %w", err)
	}

	files, err := Extract(archive, staging, format)
	if err != nil {
		return files, err
	}

	old := ""
	if _, err := os.Lstat(dest); err == nil {
		old = staging + ".old"
		if err := os.Rename(dest, old); err != nil {
			return files, fmt.Errorf("moving previous tree aside: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return files, err
	}

	if err := os.Rename(staging, dest); err != nil {
		if old != "" {
			os.Rename(old, dest)
		}
		return files, fmt.Errorf("installing tree: %w", err)
	}

	if old != "" {
		if err := os.RemoveAll(old); err != nil {
			m.logger.Warn("failed to remove previous tree", "path", old, "err", err)
		}
	}

	return files, nil
}

func (m *Manager) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.config.BaseDir, p)
}

func (m *Manager) downloadPath(filename string) string {
	dir := m.config.DownloadDir
	if dir == "" {
		dir = m.config.BaseDir
	}
	return filepath.Join(m.resolve(dir), filepath.Base(filename))
}
