// pkg/fetch/types.go
package fetch

import (
	"time"

	"github.com/charmbracelet/log"
)

// Config configures the artifact fetcher
type Config struct {
	BaseDir        string        // Root for relative manifest paths
	DownloadDir    string        // Where archives are stored, BaseDir when empty
	ConnectTimeout time.Duration // Default: 120s
	Timeout        time.Duration // Per attempt. Default: 10m
	Retries        int           // Default: 3, negative disables retries
	RetryWait      time.Duration // First backoff interval. Default: 1s
	KeepArchive    bool          // Keep the downloaded archive after extraction
	Force          bool          // Download again even if the archive exists
	Logger         *log.Logger   // Default: discard
}

// Manager downloads, verifies and extracts release archives
type Manager struct {
	client *Client
	config *Config
	logger *log.Logger
}
