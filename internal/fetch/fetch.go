package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// StatusError is returned when the server answers with anything but 200 OK
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Code, e.URL)
}

// Downloader fetches files over HTTP
type Downloader struct {
	Client    *http.Client
	UserAgent string
}

// NewDownloader creates a new HTTP downloader. A zero timeout means the
// request may block for as long as the server keeps the connection open.
func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: "get-rust",
	}
}

// Download streams the body at url into writer
func (d *Downloader) Download(ctx context.Context, url string, writer io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, Code: resp.StatusCode}
	}

	n, err := io.Copy(writer, resp.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}

	log.Debug().Str("url", url).Int64("bytes", n).Msg("download complete")
	return nil
}
