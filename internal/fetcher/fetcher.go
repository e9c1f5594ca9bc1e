// Package fetcher opens the nomination source from a local path, an HTTP(S)
// URL, or an FTP URL.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/producer-intervals/internal/resilience"
)

// Options configures an Opener.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Retry     resilience.RetryConfig

	// RateLimit caps outbound HTTP requests per second. Zero means no limit.
	RateLimit rate.Limit
}

// Opener resolves a source location to a reader.
type Opener struct {
	http  *HTTPFetcher
	ftp   *FTPFetcher
	retry resilience.RetryConfig
}

// NewOpener creates an Opener with the given options.
func NewOpener(opts Options) *Opener {
	return &Opener{
		http: NewHTTPFetcher(HTTPOptions{
			UserAgent: opts.UserAgent,
			Timeout:   opts.Timeout,
			RateLimit: opts.RateLimit,
		}),
		ftp:   NewFTPFetcher(FTPOptions{Timeout: opts.Timeout}),
		retry: opts.Retry,
	}
}

// Open returns a reader for location. Remote fetches are retried on
// transient failures. A location ending in ".zip" is unpacked and the single
// file inside is returned. The caller must close the reader.
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.TrimSpace(location) == "" {
		return nil, eris.New("fetch: empty source location")
	}

	rc, err := o.open(ctx, location)
	if err != nil {
		return nil, err
	}
	if isZIP(location) {
		return openZIPSingle(rc)
	}
	return rc, nil
}

func (o *Opener) open(ctx context.Context, location string) (io.ReadCloser, error) {
	switch scheme(location) {
	case "http", "https":
		return resilience.Retry(ctx, o.retry, location, func(ctx context.Context) (io.ReadCloser, error) {
			return o.http.Download(ctx, location)
		})
	case "ftp":
		return resilience.Retry(ctx, o.retry, location, func(ctx context.Context) (io.ReadCloser, error) {
			return o.ftp.Download(ctx, location)
		})
	case "file":
		u, _ := url.Parse(location)
		return openFile(u.Path)
	default:
		return openFile(location)
	}
}

// scheme returns the lowercased URL scheme, or "" for plain paths. Single
// letter schemes are Windows drive letters.
func scheme(location string) string {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) <= 1 {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: open %s", path)
	}
	return f, nil
}
