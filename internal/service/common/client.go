//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/winget-bootstrap/internal/version"
)

// Client downloads artifacts over HTTP(S) into temporary files.
type Client struct {
	// http is the underlying client; its transport carries the TLS floor.
	http *http.Client
	// minTLSVersion is the lowest TLS version the transport negotiates.
	minTLSVersion uint16
	// rootCAs overrides the system trust store when set.
	rootCAs *x509.CertPool
	// timeout bounds a single download, body included.
	timeout time.Duration
	// tempDir is where downloads are written; empty means os.TempDir.
	tempDir string
}

// Option configures client behaviour.
type Option func(*Client)

// WithTimeout sets the per-download timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMinTLSVersion raises the TLS floor. Values below TLS 1.2 are ignored.
func WithMinTLSVersion(v uint16) Option {
	return func(c *Client) {
		if v >= tls.VersionTLS12 {
			c.minTLSVersion = v
		}
	}
}

// WithRootCAs trusts the given pool instead of the system roots.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(c *Client) {
		c.rootCAs = pool
	}
}

// WithTempDir writes downloads under dir.
func WithTempDir(dir string) Option {
	return func(c *Client) {
		c.tempDir = dir
	}
}

var (
	// errURLRequired is returned when Fetch is called without a URL.
	errURLRequired = errors.New("url must be provided")
	// errBadHTTPStatus is returned for any non-200 response.
	errBadHTTPStatus = errors.New("unexpected http status")
)

// DefaultTimeout bounds a download when no WithTimeout option is given.
const DefaultTimeout = 10 * time.Minute

// NewClient builds a client whose transport never negotiates below TLS 1.2.
func NewClient(opts ...Option) *Client {
	c := &Client{
		minTLSVersion: tls.VersionTLS12,
		timeout:       DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // Stdlib guarantees the type.
	transport.TLSClientConfig = &tls.Config{
		MinVersion: c.minTLSVersion,
		RootCAs:    c.rootCAs,
	}

	c.http = &http.Client{Transport: transport}

	return c
}

// MinTLSVersion returns the TLS floor of the transport.
func (c *Client) MinTLSVersion() uint16 {
	return c.minTLSVersion
}

// Artifact is a downloaded file owned by the caller until Close removes it.
type Artifact struct {
	// Path is the temporary file holding the payload.
	Path string
	// Size is the number of bytes written.
	Size int64
}

// Close deletes the temporary file. It is safe to call more than once.
func (a *Artifact) Close() error {
	if a == nil || a.Path == "" {
		return nil
	}

	err := os.Remove(a.Path)
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}

	a.Path = ""

	return err
}

// Fetch downloads rawURL in full into a temporary file whose name ends with fileName,
// so installers that dispatch on the extension see the right one.
// On any error no file is left behind.
func (c *Client) Fetch(ctx context.Context, rawURL, fileName string) (*Artifact, error) {
	if rawURL == "" {
		return nil, errURLRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", rawURL, response.Status, errBadHTTPStatus)
	}

	output, err := os.CreateTemp(c.tempDir, "winget-bootstrap-*-"+filepath.Base(fileName))
	if err != nil {
		return nil, err
	}

	artifact := &Artifact{Path: output.Name()}

	artifact.Size, err = io.Copy(output, response.Body)
	if closeErr := output.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_ = artifact.Close()
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}

	return artifact, nil
}

// callContext returns a context with the client's timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.timeout)
}
