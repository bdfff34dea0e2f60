// pkg/core/errors.go
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform indicates no release matches the platform/arch pair
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrDownloadFailure indicates the archive transfer failed after retries
	ErrDownloadFailure = errors.New("download failed")

	// ErrChecksumMismatch indicates the archive digest differs from the manifest
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrSignatureMismatch indicates the detached signature did not verify
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrExtractionFailure indicates the archive could not be extracted
	ErrExtractionFailure = errors.New("extraction failed")

	// ErrUnknownQuery indicates an unrecognized link flag query
	ErrUnknownQuery = errors.New("unknown query")

	// ErrInvalidManifest indicates the provisioning manifest is malformed
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Error wraps an error with additional context
type Error struct {
	Op   string // Operation that failed
	Path string // File or directory if applicable
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ChecksumError reports a digest mismatch for a downloaded file
type ChecksumError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("unable to verify %s\n  expect: %s\n  actual: %s", e.Path, e.Expected, e.Actual)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
