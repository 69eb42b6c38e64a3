package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/celerypayroll/capi/internal/common/logtrace"
	"github.com/celerypayroll/capi/internal/common/uuid"
)

// TestHTTPClient routes requests directly into an http.Handler. It uses
// httptest.NewRecorder to capture responses without making network calls.
type TestHTTPClient struct {
	handler http.Handler
}

// NewTestClient creates a test client that serves every request with h.
func NewTestClient(h http.Handler) *TestHTTPClient {
	return &TestHTTPClient{handler: h}
}

// Do builds the request exactly as HTTPClient does and serves it in-process.
func (c *TestHTTPClient) Do(ctx context.Context, opts RequestOptions) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target, err := buildURL(opts.URL, opts.QueryParams)
	if err != nil {
		return nil, err
	}
	requestID := logtrace.RequestIdFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewRequestID()
	}
	req, err := newRequest(ctx, opts, target, requestID, DefaultUserAgent)
	if err != nil {
		return nil, err
	}

	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	return &Response{
		StatusCode: rr.Code,
		Header:     rr.Header(),
		Body:       rr.Body.Bytes(),
	}, nil
}
