// Package source provides the buffers of captured takes to be patched in.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/takepatcher/pkg/patcherr"
)

// DefaultBufferURL is where the capture daemon serves its current buffer.
const DefaultBufferURL = "http://localhost:9123/buffer.wav"

// Source returns the raw bytes of a WAVE container holding a take.
type Source interface {
	fmt.Stringer
	Fetch(ctx context.Context) ([]byte, error)
}

// File reads the take from a local file.
type File struct {
	Path string
}

var _ Source = File{}

func (s File) String() string {
	return s.Path
}

func (s File) Fetch(ctx context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, patcherr.IO("unable to read '%s': %w", s.Path, err)
	}
	return b, nil
}

// HTTP downloads the take with a GET request.
type HTTP struct {
	URL    string
	Client *http.Client
}

var _ Source = (*HTTP)(nil)

func NewHTTP(url string) *HTTP {
	return &HTTP{
		URL:    url,
		Client: http.DefaultClient,
	}
}

func (s *HTTP) String() string {
	return s.URL
}

func (s *HTTP) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build a request to '%s': %w", s.URL, err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger.Debugf(ctx, "GET %s", s.URL)
	resp, err := client.Do(req)
	if err != nil {
		return nil, patcherr.IO("unable to fetch '%s': %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, patcherr.IO("unable to fetch '%s': unexpected status %s", s.URL, resp.Status)
	}

	rc := datacounter.NewReaderCounter(resp.Body)
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, patcherr.IO("unable to read the body of '%s' (got %d bytes): %w", s.URL, rc.Count(), err)
	}
	logger.Debugf(ctx, "fetched %d bytes from %s", rc.Count(), s.URL)
	return b, nil
}
