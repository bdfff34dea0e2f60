// internal/cli/provision.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	genarodeps "github.com/genaro-network/genaro-deps"
	"github.com/genaro-network/genaro-deps/pkg/manifest"
)

var provisionForce bool

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Download and extract libgenaro unless the system provides it",
	Long: `Make libgenaro available to the build.

If pkg-config reports libgenaro installed nothing is downloaded. Otherwise the
release archive for this platform is downloaded (or reused when already
present), verified against the manifest checksum and extracted into the
vendored tree. A failed verification or extraction leaves the previous tree
in place.

The release list comes from the manifest file given with --manifest or
GENARO_DEPS_MANIFEST. The built-in manifest only describes the vendored
layout, so without one provisioning fails unless the system provides
libgenaro.

Examples:
  genaro-deps --manifest deps.yaml provision
  genaro-deps --manifest deps.yaml provision --force
  GENARO_DEPS_MANIFEST=deps.yaml genaro-download`,
	Args: cobra.NoArgs,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().BoolVar(&provisionForce, "force", false, "download the archive even if it already exists")
}

func runProvision(cmd *cobra.Command, args []string) error {
	m, err := newManager(genarodeps.WithForce(provisionForce))
	if err != nil {
		return err
	}

	if err := m.Provision(cmd.Context()); err != nil {
		if errors.Is(err, manifest.ErrNoReleases) {
			return fmt.Errorf("%w (set --manifest or GENARO_DEPS_MANIFEST)", err)
		}
		return err
	}

	logger.Info("libgenaro ready", "platform", m.Platform())
	return nil
}
