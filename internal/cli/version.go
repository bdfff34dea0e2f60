// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the genaro-deps release
const Version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "genaro-deps version %s\n", Version)
		fmt.Fprintln(out, "libgenaro prebuilt dependency provisioner")
	},
}
