package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrNotFound is returned when the server reports 404 for a request.
var ErrNotFound = errors.New("not found")

// httpClient allows http.Client to be mocked for tests
type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Generic REST restClient
type restClient struct {
	client  httpClient
	baseURL *url.URL
}

// do performs an HTTP request with this client and returns the response.  A non-nil body is sent
// with the given content type.
func (c *restClient) do(
	ctx context.Context,
	method, uri, contentType string,
	body []byte,
) (*http.Response, error) {
	p, query, _ := strings.Cut(uri, "?")
	u := c.baseURL.JoinPath(p)
	u.RawQuery = query
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, fmt.Errorf("%s for %q: %v", method, u, err)
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	return c.client.Do(req)
}

// doJSON performs an HTTP request with this client and marshalls the JSON response into v.  v may
// be nil when the response body is of no interest.
func (c *restClient) doJSON(
	ctx context.Context,
	method, uri, contentType string,
	body []byte,
	v any,
) error {
	resp, err := c.do(ctx, method, uri, contentType, body)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()
	switch resp.StatusCode {
	case http.StatusOK:
		if v == nil {
			return nil
		}
		// Decode response body
		return json.NewDecoder(resp.Body).Decode(v)
	case http.StatusNotFound:
		return fmt.Errorf("%s for %q: %w", method, uri, ErrNotFound)
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s for %q, unexpected %v: %s", method, uri, resp.StatusCode,
		bytes.TrimSpace(msg))
}
