package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/genaro-network/genaro-deps/pkg/core"
)

const archiveName = "libgenaro-linux-x64.tar.gz"

type releaseServer struct {
	*httptest.Server
	requests atomic.Int32
}

// newReleaseServer serves files by name; status, when set, answers the
// first len(status) requests
func newReleaseServer(t *testing.T, files map[string][]byte, status ...int) *releaseServer {
	t.Helper()
	rs := &releaseServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(rs.requests.Add(1))
		if n <= len(status) {
			w.WriteHeader(status[n-1])
			return
		}
		data, ok := files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func testManager(baseDir string, keep bool) *Manager {
	return NewManager(&Config{
		BaseDir:     baseDir,
		Retries:     3,
		RetryWait:   time.Millisecond,
		KeepArchive: keep,
	})
}

func testRelease(data []byte) *core.ReleaseDescriptor {
	return &core.ReleaseDescriptor{
		Platform: "linux",
		Arch:     "x64",
		Filename: archiveName,
		Checksum: sha256Hex(data),
	}
}

func testManifest(baseURL string) *core.Manifest {
	return &core.Manifest{
		Library:  "libgenaro",
		BaseURL:  baseURL,
		BasePath: "libgenaro-1.0.0",
	}
}

func TestProvision(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, map[string][]byte{archiveName: data})
	base := t.TempDir()

	if err := testManager(base, true).Provision(context.Background(), testRelease(data), testManifest(srv.URL)); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	assertLayout(t, filepath.Join(base, "libgenaro-1.0.0"), layout)
	if _, err := os.Stat(filepath.Join(base, archiveName)); err != nil {
		t.Errorf("archive not kept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, archiveName+partSuffix)); !os.IsNotExist(err) {
		t.Error("partial download left behind")
	}
	if got := srv.requests.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestProvisionUsesExistingArchive(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, nil)
	base := t.TempDir()
	os.WriteFile(filepath.Join(base, archiveName), data, 0644)

	if err := testManager(base, true).Provision(context.Background(), testRelease(data), testManifest(srv.URL)); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	if got := srv.requests.Load(); got != 0 {
		t.Errorf("server saw %d requests, want none", got)
	}
	assertLayout(t, filepath.Join(base, "libgenaro-1.0.0"), layout)
}

func TestProvisionForceDownloadsAgain(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, map[string][]byte{archiveName: data})
	base := t.TempDir()
	os.WriteFile(filepath.Join(base, archiveName), []byte("stale"), 0644)

	m := NewManager(&Config{BaseDir: base, RetryWait: time.Millisecond, KeepArchive: true, Force: true})
	if err := m.Provision(context.Background(), testRelease(data), testManifest(srv.URL)); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if got := srv.requests.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestProvisionChecksumMismatchKeepsTree(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, map[string][]byte{archiveName: data})
	base := t.TempDir()

	dest := filepath.Join(base, "libgenaro-1.0.0")
	os.MkdirAll(dest, 0755)
	marker := filepath.Join(dest, "previous.txt")
	os.WriteFile(marker, []byte("keep me"), 0644)

	release := testRelease([]byte("different"))
	err := testManager(base, true).Provision(context.Background(), release, testManifest(srv.URL))
	if !errors.Is(err, core.ErrChecksumMismatch) {
		t.Fatalf("Provision() error = %v, want ErrChecksumMismatch", err)
	}

	if got, err := os.ReadFile(marker); err != nil || string(got) != "keep me" {
		t.Errorf("previous tree modified: %q, %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(dest, "include", "genaro.h")); !os.IsNotExist(err) {
		t.Error("unverified archive was extracted")
	}
}

func TestProvisionExtractionFailureKeepsTree(t *testing.T) {
	data := []byte("corrupt archive")
	srv := newReleaseServer(t, map[string][]byte{archiveName: data})
	base := t.TempDir()

	dest := filepath.Join(base, "libgenaro-1.0.0")
	os.MkdirAll(dest, 0755)
	marker := filepath.Join(dest, "previous.txt")
	os.WriteFile(marker, []byte("keep me"), 0644)

	err := testManager(base, true).Provision(context.Background(), testRelease(data), testManifest(srv.URL))
	if !errors.Is(err, core.ErrExtractionFailure) {
		t.Fatalf("Provision() error = %v, want ErrExtractionFailure", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("previous tree modified: %v", err)
	}

	entries, _ := os.ReadDir(base)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".staging-") {
			t.Errorf("staging directory %s left behind", e.Name())
		}
	}
}

func TestProvisionIdempotent(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, map[string][]byte{archiveName: data})
	base := t.TempDir()
	m := testManager(base, true)

	for i := 0; i < 2; i++ {
		if err := m.Provision(context.Background(), testRelease(data), testManifest(srv.URL)); err != nil {
			t.Fatalf("Provision() run %d error = %v", i+1, err)
		}
		assertLayout(t, filepath.Join(base, "libgenaro-1.0.0"), layout)
	}

	entries, _ := os.ReadDir(filepath.Join(base, "libgenaro-1.0.0"))
	if len(entries) != 3 {
		t.Errorf("vendored root has %d entries, want 3", len(entries))
	}
	if got := srv.requests.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestProvisionReplacesStaleFiles(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, map[string][]byte{archiveName: data})
	base := t.TempDir()

	dest := filepath.Join(base, "libgenaro-1.0.0")
	os.MkdirAll(filepath.Join(dest, "lib"), 0755)
	os.WriteFile(filepath.Join(dest, "lib", "stale.a"), []byte("old"), 0644)

	if err := testManager(base, true).Provision(context.Background(), testRelease(data), testManifest(srv.URL)); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "lib", "stale.a")); !os.IsNotExist(err) {
		t.Error("stale file survived the swap")
	}
}

func TestProvisionRemovesArchive(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, map[string][]byte{archiveName: data})
	base := t.TempDir()

	if err := testManager(base, false).Provision(context.Background(), testRelease(data), testManifest(srv.URL)); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, archiveName)); !os.IsNotExist(err) {
		t.Error("archive kept with KeepArchive=false")
	}
}

func TestProvisionRetries(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, map[string][]byte{archiveName: data},
		http.StatusServiceUnavailable, http.StatusBadGateway)
	base := t.TempDir()

	if err := testManager(base, true).Provision(context.Background(), testRelease(data), testManifest(srv.URL)); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if got := srv.requests.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestProvisionDefaultRetries(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, map[string][]byte{archiveName: data}, http.StatusServiceUnavailable)
	base := t.TempDir()

	m := NewManager(&Config{BaseDir: base, RetryWait: time.Millisecond})
	if err := m.Provision(context.Background(), testRelease(data), testManifest(srv.URL)); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if got := srv.requests.Load(); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
}

func TestProvisionRetriesDisabled(t *testing.T) {
	data := tarGz(t, layout)
	srv := newReleaseServer(t, map[string][]byte{archiveName: data}, http.StatusServiceUnavailable)
	base := t.TempDir()

	m := NewManager(&Config{BaseDir: base, Retries: -1, RetryWait: time.Millisecond})
	err := m.Provision(context.Background(), testRelease(data), testManifest(srv.URL))
	if !errors.Is(err, core.ErrDownloadFailure) {
		t.Fatalf("Provision() error = %v, want ErrDownloadFailure", err)
	}
	if got := srv.requests.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestProvisionDownloadFailure(t *testing.T) {
	tests := []struct {
		name         string
		status       []int
		wantRequests int32
	}{
		{"not found fails fast", []int{http.StatusNotFound}, 1},
		{"forbidden fails fast", []int{http.StatusForbidden}, 1},
		{"retries exhausted", []int{500, 500, 500, 500, 500}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newReleaseServer(t, nil, tt.status...)
			base := t.TempDir()

			err := testManager(base, true).Provision(context.Background(), testRelease([]byte("x")), testManifest(srv.URL))
			if !errors.Is(err, core.ErrDownloadFailure) {
				t.Fatalf("Provision() error = %v, want ErrDownloadFailure", err)
			}

			var se *StatusError
			if !errors.As(err, &se) {
				t.Errorf("error %v does not carry the HTTP status", err)
			}
			if got := srv.requests.Load(); got != tt.wantRequests {
				t.Errorf("server saw %d requests, want %d", got, tt.wantRequests)
			}
			if _, err := os.Stat(filepath.Join(base, archiveName)); !os.IsNotExist(err) {
				t.Error("failed download left a file behind")
			}
		})
	}
}

func TestProvisionSignature(t *testing.T) {
	signer, pubKey := newSigner(t)
	data := tarGz(t, layout)

	tests := []struct {
		name    string
		sig     []byte
		wantErr error
	}{
		{"valid", armoredSignature(t, signer, data), nil},
		{"mismatch", armoredSignature(t, signer, []byte("other")), core.ErrSignatureMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newReleaseServer(t, map[string][]byte{
				archiveName:          data,
				archiveName + ".asc": tt.sig,
			})
			base := t.TempDir()

			release := testRelease(data)
			release.Signature = archiveName + ".asc"
			manifest := testManifest(srv.URL)
			manifest.SigningKey = pubKey

			err := testManager(base, true).Provision(context.Background(), release, manifest)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Provision() error = %v", err)
				}
				assertLayout(t, filepath.Join(base, "libgenaro-1.0.0"), layout)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Provision() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := os.Stat(filepath.Join(base, "libgenaro-1.0.0")); !os.IsNotExist(err) {
				t.Error("archive extracted despite bad signature")
			}
		})
	}
}

func TestProvisionInvalidChecksum(t *testing.T) {
	release := testRelease(nil)
	release.Checksum = "not-a-digest"

	err := testManager(t.TempDir(), true).Provision(context.Background(), release, testManifest("http://127.0.0.1:0"))
	if !errors.Is(err, core.ErrInvalidManifest) {
		t.Errorf("Provision() error = %v, want ErrInvalidManifest", err)
	}
}
