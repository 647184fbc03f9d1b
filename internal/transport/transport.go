// Package transport holds the minimal HTTP capability shared by the sheets
// client and the token refresher.
package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Doer sends a request. *http.Client satisfies it; tests substitute fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrInvalidResponse means the transport returned something that is not a usable HTTP response.
var ErrInvalidResponse = errors.New("invalid response")

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// NewHTTPClient returns the default Doer with a request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Send performs req and returns the body of a 2xx response. Non-2xx
// responses become a *StatusError.
func Send(d Doer, req *http.Request) ([]byte, error) {
	resp, err := d.Do(req)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Body == nil {
		return nil, ErrInvalidResponse
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
