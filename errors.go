// errors.go
package genarodeps

import "github.com/genaro-network/genaro-deps/pkg/core"

var (
	// ErrUnsupportedPlatform indicates no release matches the platform/arch pair
	ErrUnsupportedPlatform = core.ErrUnsupportedPlatform

	// ErrDownloadFailure indicates the archive transfer failed after retries
	ErrDownloadFailure = core.ErrDownloadFailure

	// ErrChecksumMismatch indicates the archive digest differs from the manifest
	ErrChecksumMismatch = core.ErrChecksumMismatch

	// ErrSignatureMismatch indicates the detached signature did not verify
	ErrSignatureMismatch = core.ErrSignatureMismatch

	// ErrExtractionFailure indicates the archive could not be extracted
	ErrExtractionFailure = core.ErrExtractionFailure

	// ErrUnknownQuery indicates an unrecognized link flag query
	ErrUnknownQuery = core.ErrUnknownQuery

	// ErrInvalidManifest indicates the provisioning manifest is malformed
	ErrInvalidManifest = core.ErrInvalidManifest
)

// Error wraps an error with additional context
type Error = core.Error

// ChecksumError reports a digest mismatch for a downloaded file
type ChecksumError = core.ChecksumError
