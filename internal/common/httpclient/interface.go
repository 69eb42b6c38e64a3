// Package httpclient executes single HTTP exchanges against a REST API. It
// assembles the URL, query string, body and headers, applies a per-attempt
// timeout and retries connection-level failures a configurable number of
// times. Response status codes are returned to the caller uninterpreted.
package httpclient

import (
	"context"
	"net/http"
	"net/url"
)

// Doer defines the interface for HTTP executors. HTTPClient talks to a real
// server; TestHTTPClient routes requests into an in-process http.Handler.
type Doer interface {
	// Do performs one logical request. Only failures to obtain a response
	// are reported as errors; any HTTP status is a successful exchange.
	Do(ctx context.Context, opts RequestOptions) (*Response, error)
}

// RequestOptions contains options for making HTTP requests.
type RequestOptions struct {
	Method      string            // HTTP method (GET, POST, PUT, DELETE)
	URL         string            // absolute request URL
	QueryParams url.Values        // optional query parameters, merged into URL
	Body        []byte            // optional JSON request body
	Headers     map[string]string // optional extra headers
}

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Verify that the HTTPClient and TestHTTPClient implement the Doer interface.
var _ Doer = &HTTPClient{}
var _ Doer = &TestHTTPClient{}
