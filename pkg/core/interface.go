// pkg/core/interface.go
package core

import "context"

// ProbeOutcome names why a probe settled on its state
type ProbeOutcome string

const (
	// OutcomeFound means the registry check succeeded
	OutcomeFound ProbeOutcome = "found"
	// OutcomeProbeFailure means the check exited non-zero or could not run
	OutcomeProbeFailure ProbeOutcome = "probe-failure"
	// OutcomeVersionRejected means the system version does not satisfy the manifest
	OutcomeVersionRejected ProbeOutcome = "version-rejected"
)

// ProbeResult is the installation state derived by a single probe run
type ProbeResult struct {
	State   ProvisioningState
	Outcome ProbeOutcome
	Version string // System version when it was queried
}

// Prober determines whether a library is installed on the host
type Prober interface {
	// Probe checks the system package registry. It never fails; failures
	// collapse into VendoredPresent.
	Probe(ctx context.Context, library string) ProbeResult
}

// Fetcher provisions the vendored archive for one release
type Fetcher interface {
	// Provision downloads, verifies and extracts the release archive
	Provision(ctx context.Context, release *ReleaseDescriptor, manifest *Manifest) error
}
