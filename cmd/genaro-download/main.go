// cmd/genaro-download/main.go

// genaro-download provisions libgenaro for the binding build. It exits 0
// when the system provides the library or the vendored tree was installed.
package main

import (
	"os"

	"github.com/genaro-network/genaro-deps/internal/cli"
)

func main() {
	os.Exit(cli.DownloadMain())
}
