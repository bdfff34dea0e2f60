// pkg/env/check.go
package env

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blakesmith/ar"
)

// arMagic opens every static archive, GNU and mingw alike
var arMagic = []byte("!<arch>\n")

// Problem is a vendored file that a build would fail on
type Problem struct {
	Path string
	Err  error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %v", p.Path, p.Err)
}

// Check inspects the vendored tree: the public header must exist, and the
// main and dependency archives must be non-empty ar archives
func (e *Environment) Check() []Problem {
	var problems []Problem

	header := filepath.Join(e.Root, e.Layout.Includes, e.Manifest.Header)
	if !fileExists(header) {
		problems = append(problems, Problem{Path: header, Err: os.ErrNotExist})
	}

	for _, a := range append([]string{e.Path(e.Manifest.Archive)}, e.StaticArchives()...) {
		if _, err := InspectArchive(a); err != nil {
			problems = append(problems, Problem{Path: a, Err: err})
		}
	}

	return problems
}

// InspectArchive returns the number of members in the static archive at path
func InspectArchive(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, os.ErrNotExist
		}
		return 0, err
	}
	defer f.Close()

	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(f, magic); err != nil || !bytes.Equal(magic, arMagic) {
		return 0, fmt.Errorf("not an ar archive")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	members := 0
	r := ar.NewReader(f)
	for {
		_, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return members, fmt.Errorf("reading ar member: %w", err)
		}
		members++
	}

	if members == 0 {
		return 0, fmt.Errorf("archive has no members")
	}
	return members, nil
}

// Present reports whether the vendored root exists
func (e *Environment) Present() bool {
	info, err := os.Stat(e.Root)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
