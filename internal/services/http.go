package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gojek/heimdall/v7/httpclient"
)

// HTTPStatusError is returned for any non-2xx response.
type HTTPStatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.URL, e.Status, e.Body)
}

type ServiceHTTP struct {
	timeout time.Duration
}

func NewServiceHTTP(timeout time.Duration) *ServiceHTTP {
	return &ServiceHTTP{timeout}
}

// httpClient builds a client bounded by timeout, or by the service default when timeout is 0.
func (service *ServiceHTTP) httpClient(timeout time.Duration) *httpclient.Client {
	if timeout <= 0 {
		timeout = service.timeout
	}
	if timeout <= 0 {
		timeout = DEFAULT_HTTP_TIMEOUT
	}
	return httpclient.NewClient(httpclient.WithHTTPTimeout(timeout))
}

func (service *ServiceHTTP) doJSON(ctx context.Context, method, url string, headers http.Header, body any, target any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := service.httpClient(0).Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &HTTPStatusError{URL: redactQuery(url), Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// IsTimeout reports whether an outbound call failed by running out of time.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}

// redactQuery drops the query string so tokens never end up in errors or logs.
func redactQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}
