package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/buildenv/internal/errors"
	"github.com/hashicorp/go-retryablehttp"
)

var _ Storage = (*HTTPStorage)(nil)

// HTTPStorage reads blobs over HTTP(S), retrying transient failures. It cannot write.
type HTTPStorage struct {
	// BaseURL is prepended to names. When empty, names are full URLs.
	BaseURL string

	client *retryablehttp.Client
}

// NewHTTPStorage returns an HTTPStorage using the timeout, retry and logging settings in opts.
func NewHTTPStorage(baseURL string, opts Options) *HTTPStorage {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.HTTPRetries
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	// Hand back the final response so its status can be reported.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if opts.HTTPTimeout > 0 {
		client.HTTPClient.Timeout = opts.HTTPTimeout
	}

	if opts.Logger != nil {
		client.Logger = opts.Logger.Leveled()
	} else {
		client.Logger = nil
	}

	return &HTTPStorage{BaseURL: baseURL, client: client}
}

func (s *HTTPStorage) url(name string) string {
	if s.BaseURL == "" {
		return name
	}
	return s.BaseURL + "/" + strings.TrimPrefix(name, "/")
}

func (s *HTTPStorage) do(ctx context.Context, method, name string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, s.url(name), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return resp, nil
}

// Read fetches name with GET. 404 maps to ErrResourceNotFound, any other non-2xx status to ErrIO.
func (s *HTTPStorage) Read(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.do(ctx, http.MethodGet, name)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrResourceNotFound, s.url(name))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s returned %s", kerrors.ErrIO, s.url(name), resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	if len(data) > maxObjectSize {
		return nil, fmt.Errorf("%w: response is larger than %d bytes", kerrors.ErrIO, maxObjectSize)
	}

	return data, nil
}

// Write always fails with ErrReadOnlyStorage.
func (s *HTTPStorage) Write(_ context.Context, name string, _ []byte) error {
	return fmt.Errorf("%w: cannot write %s", kerrors.ErrReadOnlyStorage, s.url(name))
}

// Exists checks name with HEAD.
func (s *HTTPStorage) Exists(ctx context.Context, name string) (bool, error) {
	resp, err := s.do(ctx, http.MethodHead, name)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return true, nil
	default:
		return false, fmt.Errorf("%w: HEAD %s returned %s", kerrors.ErrIO, s.url(name), resp.Status)
	}
}
