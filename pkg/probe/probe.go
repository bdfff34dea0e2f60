// Package probe checks whether a library is installed through the host's
// package registry (pkg-config).
//
// A probe never fails: a non-zero exit or a missing pkg-config binary both
// mean the library is not installed, and the vendored archive is used.
package probe

import (
	"context"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/genaro-network/genaro-deps/pkg/core"
)

// DefaultCommand is the package registry probe binary
const DefaultCommand = "pkg-config"

// Runner runs probe subprocesses
type Runner interface {
	// Run executes the command with stdin, stdout and stderr detached
	Run(ctx context.Context, name string, args ...string) error
	// Output executes the command and returns its stdout
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Config configures a Prober
type Config struct {
	Command       string // Default: pkg-config
	SystemVersion string // Optional semver constraint for the installed version
	Runner        Runner // Default: os/exec
}

// Prober implements core.Prober on top of pkg-config
type Prober struct {
	command    string
	constraint *semver.Constraints
	runner     Runner
}

// New creates a Prober. An unparsable SystemVersion is ignored; manifests
// are validated before they get here.
func New(cfg *Config) *Prober {
	if cfg == nil {
		cfg = &Config{}
	}

	p := &Prober{
		command: cfg.Command,
		runner:  cfg.Runner,
	}
	if p.command == "" {
		p.command = DefaultCommand
	}
	if p.runner == nil {
		p.runner = execRunner{}
	}
	if cfg.SystemVersion != "" {
		if c, err := semver.NewConstraint(cfg.SystemVersion); err == nil {
			p.constraint = c
		}
	}

	return p
}

// Probe runs "<command> --exists <library>". Every call runs the
// subprocess again; results are never cached.
func (p *Prober) Probe(ctx context.Context, library string) core.ProbeResult {
	if err := p.runner.Run(ctx, p.command, "--exists", library); err != nil {
		return core.ProbeResult{State: core.VendoredPresent, Outcome: core.OutcomeProbeFailure}
	}

	result := core.ProbeResult{State: core.SystemInstalled, Outcome: core.OutcomeFound}
	if p.constraint == nil {
		return result
	}

	out, err := p.runner.Output(ctx, p.command, "--modversion", library)
	if err != nil {
		return core.ProbeResult{State: core.VendoredPresent, Outcome: core.OutcomeProbeFailure}
	}

	result.Version = strings.TrimSpace(string(out))
	v, err := semver.NewVersion(result.Version)
	if err != nil || !p.constraint.Check(v) {
		result.State = core.VendoredPresent
		result.Outcome = core.OutcomeVersionRejected
	}
	return result
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	// nil Stdin/Stdout/Stderr are attached to the null device
	return exec.CommandContext(ctx, name, args...).Run()
}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
