// internal/cli/flags.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genaro-network/genaro-deps/pkg/env"
)

var flagsCmd = &cobra.Command{
	Use:   "flags <query>",
	Short: "Print compiler or linker flags for libgenaro",
	Long: `Print the flags a build should use for libgenaro. When pkg-config reports
a system installation the system names are printed, otherwise the paths into
the vendored tree.

Queries: ` + queryList() + `

Examples:
  genaro-deps flags libraries
  genaro-deps flags ldflags_mac`,
	Args: cobra.ExactArgs(1),
	RunE: runFlags,
}

func runFlags(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	out, err := m.Flags(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func queryList() string {
	names := make([]string, 0, len(env.Queries()))
	for _, q := range env.Queries() {
		names = append(names, string(q))
	}
	return strings.Join(names, ", ")
}
