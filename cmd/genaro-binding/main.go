// cmd/genaro-binding/main.go

// genaro-binding prints one compiler or linker flag query for libgenaro:
//
//	genaro-binding libraries|include_dirs|include_dirs_deps|ldflags|ldflags_mac
//
// An unknown query prints nothing to stdout and exits 1.
package main

import (
	"os"

	"github.com/genaro-network/genaro-deps/internal/cli"
)

func main() {
	os.Exit(cli.BindingMain())
}
