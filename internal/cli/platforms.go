// internal/cli/platforms.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genaro-network/genaro-deps/pkg/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the platforms the manifest has releases for",
	Args:  cobra.NoArgs,
	RunE:  runPlatforms,
}

func runPlatforms(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	plat := m.Platform()
	releases := m.Manifest().Releases

	fmt.Fprintf(out, "Platform: %s\n\n", plat)

	if len(releases) == 0 {
		fmt.Fprintf(out, "No releases in manifest (set --manifest or GENARO_DEPS_MANIFEST)\n")
		return nil
	}

	fmt.Fprintf(out, "Releases:\n")

	found := false
	for _, r := range releases {
		marker := " "
		if r.Platform == plat.OS && r.Arch == plat.Arch && !found {
			marker = "*"
			found = true
		}
		fmt.Fprintf(out, "  %s %-14s %s\n", marker, r.Key(), r.Filename)
	}

	if found {
		fmt.Fprintf(out, "\n* = release for this platform\n")
	} else {
		fmt.Fprintf(out, "\nNo release for %s (supported: %s)\n", plat, strings.Join(platform.Supported(m.Manifest()), ", "))
	}

	return nil
}
