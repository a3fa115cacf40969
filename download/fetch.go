package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// Fetcher streams remote resources to local files.
type Fetcher struct {
	hc      *http.Client
	header  http.Header
	timeout time.Duration // Per resource; 0 means no limit.
}

// NewFetcher returns a fetcher using hc. A nil client selects a fresh
// http.Client.
func NewFetcher(hc *http.Client, timeout time.Duration) *Fetcher {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Fetcher{
		hc:      hc,
		header:  http.Header{"User-Agent": []string{"docmirror/1.0"}},
		timeout: timeout,
	}
}

func (f *Fetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

// FetchTemp downloads the resource at url=u into a new temporary file in dir.
// The file name starts with "." followed by pattern so it never collides with
// a stored resource. On success it returns the temporary file's path and the
// number of bytes written; the file is fully written and closed. On failure
// no file is left behind.
func (f *Fetcher) FetchTemp(ctx context.Context, u string, dir string, pattern string) (string, int64, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	body, err := GetBody(ctx, f.hc, u, f.header)
	if err != nil {
		return "", 0, err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(dir, "."+pattern+".*.part")
	if err != nil {
		return "", 0, fmt.Errorf("could not create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	fail := func(err error) (string, int64, error) {
		tmp.Close()
		os.Remove(tmpPath)
		return "", 0, err
	}

	n, err := io.Copy(tmp, NewContextReader(ctx, body))
	if err != nil {
		return fail(fmt.Errorf("could not write file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("could not sync file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("could not close file: %w", err)
	}

	log.Debugf("fetched %d bytes: %s --> %s", n, u, tmpPath)
	return tmpPath, n, nil
}

// Size returns the advertised size of the resource at url=u, or -1 if the
// server does not report one.
func (f *Fetcher) Size(ctx context.Context, u string) (int64, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	return ContentLength(ctx, f.hc, u, f.header)
}
