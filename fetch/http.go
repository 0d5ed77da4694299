package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/radmind-go/transcriptd/fserrors"
)

// HTTPFetcher is a minimal net/http-based FileFetcher, grounded on
// rclone/lib/rest's GET-to-temp-file-then-verify shape (every cloud
// backend in rclone pack layers its transport on that same
// idiom). It is provided for tests and small deployments; production
// transport (TLS, compression negotiation, auth) is explicitly out of
// scope and left to the caller's http.Client.
type HTTPFetcher struct {
	BaseURL string
	Client *http.Client
}

// NewHTTPFetcher builds a fetcher against baseURL with a sane default
// timeout.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Client: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Fetch implements FileFetcher.
func (h *HTTPFetcher) Fetch(ctx context.Context, d Descriptor, tempPath string) (int64, error) {
	u, err := url.Parse(h.BaseURL)
	if err != nil {
		return 0, fserrors.Fatal(fmt.Errorf("fetch: bad base URL: %w", err))
	}
	u.Path = path.Join(u.Path, d.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fserrors.Fatal(fmt.Errorf("fetch: bad request: %w", err))
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		// Transport-level failures (dial, TLS, timeout) are the
		// network errors the applier should recover
		// from rather than abort the whole run over.
		return 0, fserrors.NoRetry(fmt.Errorf("fetch: request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fserrors.NoRetry(fmt.Errorf("fetch: unexpected status %d for %s", resp.StatusCode, d.Path))
	}

	out, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fserrors.Fatal(fmt.Errorf("fetch: create temp: %w", err))
	}
	defer out.Close()

	var digest hash.Hash
	var w io.Writer = out
	if d.ChecksumB64 != "" && d.Algorithm == "sha256" {
		digest = sha256.New()
		w = io.MultiWriter(out, digest)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		_ = os.Remove(tempPath)
		return 0, fserrors.NoRetry(fmt.Errorf("fetch: copy failed: %w", err))
	}

	if d.Size >= 0 && n != d.Size {
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("fetch: size mismatch for %s: got %d want %d", d.Path, n, d.Size)
	}

	if digest != nil {
		got := base64.StdEncoding.EncodeToString(digest.Sum(nil))
		if got != d.ChecksumB64 {
			_ = os.Remove(tempPath)
			return 0, fmt.Errorf("fetch: checksum mismatch for %s", d.Path)
		}
	}

	return n, nil
}

// HTTPReporter posts events to a server over HTTP form values,
// grounded on the same lib/rest idiom as HTTPFetcher.
type HTTPReporter struct {
	BaseURL string
	Client *http.Client
}

func NewHTTPReporter(baseURL string) *HTTPReporter {
	return &HTTPReporter{BaseURL: baseURL, Client: &http.Client{Timeout: 30 * time.Second}}
}

func (h *HTTPReporter) Post(ctx context.Context, event, outcome string) error {
	u, err := url.Parse(h.BaseURL)
	if err != nil {
		return fserrors.Fatal(err)
	}
	u.Path = path.Join(u.Path, "event")
	q := u.Query()
	q.Set("event", event)
	q.Set("outcome", outcome)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return fserrors.Fatal(err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return fserrors.NoRetry(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fserrors.NoRetry(fmt.Errorf("report: unexpected status %d", resp.StatusCode))
	}
	return nil
}
