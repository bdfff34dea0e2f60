// pkg/fetch/hash.go
package fetch

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
	"zombiezen.com/go/nix"

	"github.com/genaro-network/genaro-deps/pkg/core"
)

// Digest is an expected archive checksum
type Digest struct {
	Algorithm string // sha1, sha256, sha512 or blake3
	Hex       string // Lowercase hex encoding
}

// ParseDigest parses a manifest checksum. Accepted forms are bare hex
// (algorithm chosen by length), nix style "sha256:<base16|base32>", SRI
// "sha256-<base64>" and "blake3:<hex>". Whitespace is ignored.
func ParseDigest(s string) (*Digest, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, fmt.Errorf("empty checksum")
	}

	lower := strings.ToLower(s)
	if rest, ok := strings.CutPrefix(lower, "blake3:"); ok {
		if _, err := hex.DecodeString(rest); err != nil || len(rest) != 64 {
			return nil, fmt.Errorf("invalid blake3 checksum %q", s)
		}
		return &Digest{Algorithm: "blake3", Hex: rest}, nil
	}

	if strings.ContainsAny(s, ":-") {
		h, err := nix.ParseHash(s)
		if err != nil {
			return nil, fmt.Errorf("invalid checksum %q: %w", s, err)
		}
		alg, err := algorithmName(h.Type())
		if err != nil {
			return nil, err
		}
		return &Digest{Algorithm: alg, Hex: strings.ToLower(h.RawBase16())}, nil
	}

	if _, err := hex.DecodeString(lower); err != nil {
		return nil, fmt.Errorf("invalid checksum %q: not hex", s)
	}

	switch len(lower) {
	case 40:
		return &Digest{Algorithm: "sha1", Hex: lower}, nil
	case 64:
		return &Digest{Algorithm: "sha256", Hex: lower}, nil
	case 128:
		return &Digest{Algorithm: "sha512", Hex: lower}, nil
	}
	return nil, fmt.Errorf("invalid checksum %q: unexpected length %d", s, len(lower))
}

func (d *Digest) String() string {
	return d.Algorithm + ":" + d.Hex
}

// Sum computes the digest of the file at path with d's algorithm
func (d *Digest) Sum(path string) (string, error) {
	h, err := d.newHash()
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("computing hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify hashes path and returns a *core.ChecksumError on mismatch
func (d *Digest) Verify(path string) error {
	actual, err := d.Sum(path)
	if err != nil {
		return err
	}
	if actual != d.Hex {
		return &core.ChecksumError{Path: path, Expected: d.Hex, Actual: actual}
	}
	return nil
}

func (d *Digest) newHash() (hash.Hash, error) {
	switch d.Algorithm {
	case "blake3":
		return blake3.New(), nil
	case "sha1":
		return nix.NewHasher(nix.SHA1), nil
	case "sha256":
		return nix.NewHasher(nix.SHA256), nil
	case "sha512":
		return nix.NewHasher(nix.SHA512), nil
	}
	return nil, fmt.Errorf("unsupported hash algorithm %q", d.Algorithm)
}

func algorithmName(t nix.HashType) (string, error) {
	switch t {
	case nix.SHA1:
		return "sha1", nil
	case nix.SHA256:
		return "sha256", nil
	case nix.SHA512:
		return "sha512", nil
	}
	return "", fmt.Errorf("unsupported hash algorithm %v", t)
}
