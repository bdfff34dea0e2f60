// pkg/fetch/client.go
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client handles HTTP transfers of release archives
type Client struct {
	httpClient *http.Client
	userAgent  string
	retries    int
	retryWait  time.Duration
}

// StatusError reports a non-200 response
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status: %d", e.URL, e.Code)
}

// NewClient creates a client with the default timeouts and retry count
func NewClient() *Client {
	return NewClientWithOptions(DefaultConnectTimeout, DefaultTimeout, DefaultRetries, DefaultRetryWait)
}

// NewClientWithOptions creates a client. connectTimeout bounds dialing and
// the TLS handshake, timeout bounds each attempt.
func NewClientWithOptions(connectTimeout, timeout time.Duration, retries int, retryWait time.Duration) *Client {
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: connectTimeout,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: UserAgent,
		retries:   retries,
		retryWait: retryWait,
	}
}

// DownloadFile downloads url to destPath. The body is written to a
// ".part" file that is renamed into place only after a complete transfer,
// so destPath never holds a truncated archive. Transport errors and 408,
// 429 and 5xx responses are retried; other statuses fail immediately.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	part := destPath + partSuffix
	var written int64

	attempt := func() error {
		n, err := c.fetchTo(ctx, url, part)
		written = n
		return err
	}

	if err := backoff.Retry(attempt, c.newBackOff(ctx)); err != nil {
		os.Remove(part)
		return 0, err
	}

	if err := os.Rename(part, destPath); err != nil {
		os.Remove(part)
		return 0, fmt.Errorf("renaming download: %w", err)
	}

	return written, nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryWait
	b.MaxElapsedTime = 0
	b.Reset()

	retries := c.retries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// fetchTo performs a single GET into path
func (c *Client) fetchTo(ctx context.Context, url, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := &StatusError{URL: url, Code: resp.StatusCode}
		if !retryableStatus(resp.StatusCode) {
			return 0, backoff.Permanent(err)
		}
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("creating file: %w", err))
	}

	written, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return written, fmt.Errorf("writing file: %w", err)
	}

	return written, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= 500
}
