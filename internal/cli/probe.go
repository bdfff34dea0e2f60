// internal/cli/probe.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genaro-network/genaro-deps/pkg/platform"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Report whether libgenaro is installed on this system",
	Args:  cobra.NoArgs,
	RunE:  runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	result := m.Probe(cmd.Context())
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, result.State)
	fmt.Fprintf(out, "outcome: %s\n", result.Outcome)
	if result.Version != "" {
		fmt.Fprintf(out, "version: %s\n", result.Version)
	}
	if !platform.CommandExists(config.PkgConfig) {
		fmt.Fprintf(out, "registry: %s not found\n", config.PkgConfig)
	}
	fmt.Fprintf(out, "platform: %s\n", m.Platform())
	fmt.Fprintf(out, "link query: %s\n", m.Platform().Family().LinkQuery)

	return nil
}
