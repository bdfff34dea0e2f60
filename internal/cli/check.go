// internal/cli/check.go
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the vendored tree is complete",
	Long: `Check that the header exists and that the main and dependency static
archives the link flags refer to are readable ar archives.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	e := m.Environment()
	if !e.Present() {
		return fmt.Errorf("vendored tree %s not found, run genaro-deps provision", e.Root)
	}

	problems := e.Check()
	out := cmd.OutOrStdout()

	for _, p := range problems {
		if errors.Is(p.Err, os.ErrNotExist) {
			fmt.Fprintf(out, "missing: %s\n", p)
		} else {
			fmt.Fprintf(out, "invalid: %s\n", p)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("vendored tree %s is incomplete: %d problems", e.Root, len(problems))
	}

	fmt.Fprintf(out, "ok: %s\n", e.Root)
	return nil
}
