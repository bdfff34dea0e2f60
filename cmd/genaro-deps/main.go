// cmd/genaro-deps/main.go
package main

import (
	"os"

	"github.com/genaro-network/genaro-deps/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
