// pkg/fetch/constants.go
package fetch

import (
	"time"

	"github.com/genaro-network/genaro-deps/pkg/platform"
)

const (
	// DefaultConnectTimeout bounds establishing a connection to the release host
	DefaultConnectTimeout = 120 * time.Second

	// DefaultTimeout bounds a single transfer attempt
	DefaultTimeout = 10 * time.Minute

	// DefaultRetries is how many times a failed transfer is retried
	DefaultRetries = 3

	// DefaultRetryWait is the first backoff interval between attempts
	DefaultRetryWait = time.Second

	// UserAgent is sent with every request
	UserAgent = "genaro-deps/1.0"

	// partSuffix marks an in-progress download
	partSuffix = ".part"
)

// Archive formats understood by Extract
const (
	FormatTarGz  = platform.FormatTarGz
	FormatTarXz  = "tar.xz"
	FormatTarZst = "tar.zst"
	FormatZip    = platform.FormatZip
	FormatNar    = "nar"
	FormatNarXz  = "nar.xz"
)
