// pkg/fetch/signature.go
package fetch

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const armoredSignaturePrefix = "-----BEGIN PGP SIGNATURE-----"

// maxSignatureSize caps how much of a signature file is read
const maxSignatureSize = 64 * 1024

// ReadKeyRing parses an OpenPGP public key. key is either armored key text
// or the path of a file holding an armored or binary key.
func ReadKeyRing(key string) (openpgp.EntityList, error) {
	if strings.Contains(key, "-----BEGIN PGP PUBLIC KEY BLOCK-----") {
		entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(key))
		if err != nil {
			return nil, fmt.Errorf("reading signing key: %w", err)
		}
		return entities, nil
	}

	data, err := os.ReadFile(key)
	if err != nil {
		return nil, fmt.Errorf("reading signing key: %w", err)
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("reading signing key %s: %w", key, err)
		}
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no keys found in %s", key)
	}
	return entities, nil
}

// VerifySignature checks a detached signature, armored or binary, of the
// file at path against keyring
func VerifySignature(keyring openpgp.KeyRing, path, sigPath string) error {
	sigFile, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("opening signature: %w", err)
	}
	defer sigFile.Close()

	sig, err := io.ReadAll(io.LimitReader(sigFile, maxSignatureSize))
	if err != nil {
		return fmt.Errorf("reading signature: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	if bytes.HasPrefix(bytes.TrimSpace(sig), []byte(armoredSignaturePrefix)) {
		_, err = openpgp.CheckArmoredDetachedSignature(keyring, f, bytes.NewReader(sig), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(keyring, f, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return fmt.Errorf("verifying %s: %w", sigPath, err)
	}
	return nil
}
