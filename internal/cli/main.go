// internal/cli/main.go
package cli

import (
	"fmt"
	"os"
)

// Main runs genaro-deps with the process arguments and returns the exit code
func Main() int {
	return run(os.Args[1:]...)
}

// BindingMain answers a single flag query: genaro-binding <query>
func BindingMain() int {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: genaro-binding <query>")
		return 1
	}
	return run("flags", os.Args[1])
}

// DownloadMain provisions libgenaro: genaro-download
func DownloadMain() int {
	return run("provision")
}

func run(args ...string) int {
	if err := ExecuteArgs(args...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
