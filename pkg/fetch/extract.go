// pkg/fetch/extract.go
package fetch

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"zombiezen.com/go/nix/nar"
)

// DetectFormat picks the archive format from the file name, falling back
// to the given format when the suffix is not recognized
func DetectFormat(filename, fallback string) string {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGz
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return FormatTarXz
	case strings.HasSuffix(name, ".tar.zst"), strings.HasSuffix(name, ".tzst"):
		return FormatTarZst
	case strings.HasSuffix(name, ".zip"):
		return FormatZip
	case strings.HasSuffix(name, ".nar.xz"):
		return FormatNarXz
	case strings.HasSuffix(name, ".nar"):
		return FormatNar
	}
	return fallback
}

// Extract unpacks archivePath into destDir and returns the number of
// regular files written. Entries that would land outside destDir are
// rejected.
func Extract(archivePath, destDir, format string) (int, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return 0, fmt.Errorf("creating destination directory: %w", err)
	}

	if format == FormatZip {
		return extractZip(archivePath, destDir)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gz.Close()
		return extractTar(gz, destDir)

	case FormatTarXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("creating xz reader: %w", err)
		}
		return extractTar(xr, destDir)

	case FormatTarZst:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer zr.Close()
		return extractTar(zr, destDir)

	case FormatNar:
		return extractNAR(bufio.NewReader(f), destDir)

	case FormatNarXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("creating xz reader: %w", err)
		}
		return extractNAR(bufio.NewReader(xr), destDir)
	}

	return 0, fmt.Errorf("unsupported archive format %q", format)
}

// safeJoin joins a slash-separated archive entry name onto dir
func safeJoin(dir, name string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(name, "./"))
	rel = strings.TrimLeft(rel, string(filepath.Separator))
	if rel == "" || rel == "." {
		return dir, nil
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("illegal path in archive: %s", name)
	}
	if err := checkParents(dir, rel); err != nil {
		return "", fmt.Errorf("illegal path in archive: %s: %w", name, err)
	}
	return filepath.Join(dir, rel), nil
}

// checkParents rejects a path whose parent directories under dir include a
// symlink created by an earlier entry
func checkParents(dir, rel string) error {
	p := dir
	parts := strings.Split(filepath.Dir(rel), string(filepath.Separator))
	for _, part := range parts {
		if part == "." {
			continue
		}
		p = filepath.Join(p, part)
		info, err := os.Lstat(p)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("parent %s is a symlink", part)
		}
	}
	return nil
}

// checkLink rejects symlinks that point outside the extraction root
func checkLink(dir, target, linkname string) error {
	if filepath.IsAbs(linkname) || strings.HasPrefix(linkname, "/") {
		return fmt.Errorf("illegal link target in archive: %s", linkname)
	}
	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(linkname))
	rel, err := filepath.Rel(dir, resolved)
	if err != nil || !filepath.IsLocal(rel) {
		return fmt.Errorf("illegal link target in archive: %s", linkname)
	}
	return nil
}

func extractTar(r io.Reader, destDir string) (int, error) {
	tr := tar.NewReader(r)
	files := 0

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return files, fmt.Errorf("reading tar: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return files, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return files, fmt.Errorf("creating directory: %w", err)
			}

		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return files, err
			}
			files++

		case tar.TypeSymlink:
			if err := checkLink(destDir, target, hdr.Linkname); err != nil {
				return files, err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return files, fmt.Errorf("creating directory: %w", err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return files, fmt.Errorf("creating symlink: %w", err)
			}

		case tar.TypeLink:
			source, err := safeJoin(destDir, hdr.Linkname)
			if err != nil {
				return files, err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return files, fmt.Errorf("creating directory: %w", err)
			}
			if err := os.Link(source, target); err != nil {
				return files, fmt.Errorf("creating hard link: %w", err)
			}
		}
	}

	return files, nil
}

func extractZip(archivePath, destDir string) (int, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening zip: %w", err)
	}
	defer zr.Close()

	files := 0
	for _, f := range zr.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return files, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return files, fmt.Errorf("creating directory: %w", err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return files, fmt.Errorf("opening %s in zip: %w", f.Name, err)
		}
		err = writeFile(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return files, err
		}
		files++
	}

	return files, nil
}

func extractNAR(r io.Reader, destDir string) (int, error) {
	nr := nar.NewReader(r)
	files := 0

	for {
		hdr, err := nr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return files, fmt.Errorf("reading NAR entry: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Path)
		if err != nil {
			return files, err
		}

		switch hdr.Mode.Type() {
		case os.ModeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return files, fmt.Errorf("creating directory: %w", err)
			}

		case os.ModeSymlink:
			if err := checkLink(destDir, target, hdr.LinkTarget); err != nil {
				return files, err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return files, fmt.Errorf("creating directory: %w", err)
			}
			if err := os.Symlink(hdr.LinkTarget, target); err != nil {
				return files, fmt.Errorf("creating symlink: %w", err)
			}

		case 0:
			perm := os.FileMode(0644)
			if hdr.Mode&0111 != 0 {
				perm = 0755
			}
			if err := writeFile(target, nr, perm); err != nil {
				return files, err
			}
			files++
		}
	}

	return files, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("illegal path in archive: %s is a symlink", target)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", target, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("writing file %s: %w", target, err)
	}
	return out.Close()
}
