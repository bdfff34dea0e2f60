package fetch

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/ulikunitz/xz"
	"zombiezen.com/go/nix/nar"
)

type entry struct {
	name     string
	body     string
	linkname string
	hardlink string
	dir      bool
	exec     bool
}

func sortedNames(files map[string]string) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func tarEntries(t *testing.T, entries []entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		switch {
		case e.dir:
			hdr.Typeflag, hdr.Mode, hdr.Size = tar.TypeDir, 0755, 0
		case e.linkname != "":
			hdr.Typeflag, hdr.Linkname, hdr.Size = tar.TypeSymlink, e.linkname, 0
		case e.hardlink != "":
			hdr.Typeflag, hdr.Linkname, hdr.Size = tar.TypeLink, e.hardlink, 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// narEntries serializes entries in order. NAR requires the root first and
// paths in sorted order with their directories ahead of them.
func narEntries(t *testing.T, entries []entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	nw := nar.NewWriter(&buf)
	if err := nw.WriteHeader(&nar.Header{Mode: fs.ModeDir | 0755}); err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		hdr := &nar.Header{Path: e.name, Mode: 0644, Size: int64(len(e.body))}
		switch {
		case e.dir:
			hdr.Mode, hdr.Size = fs.ModeDir|0755, 0
		case e.linkname != "":
			hdr.Mode, hdr.LinkTarget, hdr.Size = fs.ModeSymlink|0777, e.linkname, 0
		case e.exec:
			hdr.Mode = 0755
		}
		if err := nw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing NAR header %s: %v", e.name, err)
		}
		if hdr.Mode.IsRegular() {
			if _, err := nw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := nw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := xw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func tarFiles(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var entries []entry
	for _, name := range sortedNames(files) {
		entries = append(entries, entry{name: name, body: files[name]})
	}
	return tarEntries(t, entries)
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	return gzipBytes(t, tarFiles(t, files))
}

func zipFiles(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range sortedNames(files) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
