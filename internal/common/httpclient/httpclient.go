package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/celerypayroll/capi/internal/common/apperrors"
	"github.com/celerypayroll/capi/internal/common/logtrace"
	"github.com/celerypayroll/capi/internal/common/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// RequestIDHeader carries the request id to the server.
	RequestIDHeader = "X-Capi-Request-ID"

	DefaultTimeout                    = 30 * time.Second
	DefaultRetryDelay                 = 200 * time.Millisecond
	DefaultUserAgent                  = "capi-go"
	DefaultMaxResponseBodyBytes int64 = 10 << 20
)

var (
	ErrInvalidRequest   = apperrors.New("invalid request")
	ErrRequestFailed    = apperrors.New("request failed")
	ErrResponseTooLarge = apperrors.New("response body too large")
)

// ClientOptions contains options for configuring the HTTP client. Zero values
// select the defaults.
type ClientOptions struct {
	Timeout               time.Duration // per attempt
	Retries               int           // additional attempts after a connection failure
	RetryDelay            time.Duration // base delay, doubled on every retry
	UserAgent             string
	MaxResponseBodyBytes  int64
	DisableCertValidation bool
	HTTPClient            *http.Client // overrides the client built from the options above
}

// HTTPClient makes requests to a REST API server over the network.
type HTTPClient struct {
	opts       ClientOptions
	httpClient *http.Client
}

// NewClient creates a new HTTP client using the provided options.
func NewClient(opts ...ClientOptions) *HTTPClient {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}
	if clientOpts.Timeout <= 0 {
		clientOpts.Timeout = DefaultTimeout
	}
	if clientOpts.Retries < 0 {
		clientOpts.Retries = 0
	}
	if clientOpts.RetryDelay <= 0 {
		clientOpts.RetryDelay = DefaultRetryDelay
	}
	if clientOpts.UserAgent == "" {
		clientOpts.UserAgent = DefaultUserAgent
	}
	if clientOpts.MaxResponseBodyBytes <= 0 {
		clientOpts.MaxResponseBodyBytes = DefaultMaxResponseBodyBytes
	}

	httpClient := clientOpts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
		if clientOpts.DisableCertValidation {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			}
		}
	}

	return &HTTPClient{
		opts:       clientOpts,
		httpClient: httpClient,
	}
}

// Options returns the effective options of the client.
func (c *HTTPClient) Options() ClientOptions {
	return c.opts
}

// Do makes an HTTP request with the given options, retrying failures to
// reach the server up to Retries times. Each attempt is bounded by Timeout.
func (c *HTTPClient) Do(ctx context.Context, opts RequestOptions) (*Response, error) {
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

	var rsp *Response
	attempt := 0
	err = retry.Do(func() error {
		attempt++
		r, err := c.doOnce(ctx, opts, target, requestID)
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Int("attempt", attempt).Str("request_id", requestID).Msg("http attempt failed")
			return err
		}
		rsp = r
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(uint(c.opts.Retries)+1),
		retry.Delay(c.opts.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
	)
	if err != nil {
		return nil, err
	}
	return rsp, nil
}

func (c *HTTPClient) doOnce(ctx context.Context, opts RequestOptions, target, requestID string) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := newRequest(attemptCtx, opts, target, requestID, c.opts.UserAgent)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrRequestFailed.MsgErr(fmt.Sprintf("%s %s: %v", opts.Method, target, err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxResponseBodyBytes+1))
	if err != nil {
		return nil, ErrRequestFailed.MsgErr(fmt.Sprintf("reading response body: %v", err), err).
			SetStatusCode(resp.StatusCode)
	}
	if int64(len(body)) > c.opts.MaxResponseBodyBytes {
		return nil, ErrResponseTooLarge.
			New(fmt.Sprintf("response body exceeds limit of %d bytes", c.opts.MaxResponseBodyBytes)).
			SetStatusCode(resp.StatusCode)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// isRetryable reports whether an attempt failed before a response was read.
// Malformed requests, oversized bodies and cancellation by the caller are final.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrRequestFailed)
}

func buildURL(raw string, query url.Values) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidRequest.MsgErr(fmt.Sprintf("invalid url %q: %v", raw, err), err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidRequest.New(fmt.Sprintf("url %q must be absolute", raw))
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func newRequest(ctx context.Context, opts RequestOptions, target, requestID, userAgent string) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, ErrInvalidRequest.MsgErr(fmt.Sprintf("failed to create request: %v", err), err)
	}
	req.Header.Set("Accept", "application/json")
	if len(opts.Body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	for k, v := range opts.Headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		req.Header.Set(k, v)
	}
	return req, nil
}
