package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// ErrStatus indicates the server answered with a non-2xx status.
var ErrStatus = errors.New("error status")

// GetBody performs an http GET with url=u using the suppplied client and
// header.
func GetBody(ctx context.Context, hc *http.Client, u string, header http.Header) (io.ReadCloser, error) {
	log.Debugf("get: %s", u)

	rsp, err := do(ctx, hc, http.MethodGet, u, header)
	if err != nil {
		return nil, err
	}

	return rsp.Body, nil
}

// ContentLength performs an http HEAD with url=u and returns the advertised
// size of the resource. It returns -1 if the server does not report one.
func ContentLength(ctx context.Context, hc *http.Client, u string, header http.Header) (int64, error) {
	log.Debugf("head: %s", u)

	rsp, err := do(ctx, hc, http.MethodHead, u, header)
	if err != nil {
		return 0, err
	}
	rsp.Body.Close()

	return rsp.ContentLength, nil
}

func do(ctx context.Context, hc *http.Client, method string, u string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rsp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		rsp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrStatus, rsp.Status)
	}

	return rsp, nil
}
