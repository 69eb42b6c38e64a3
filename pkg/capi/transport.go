package capi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/celerypayroll/capi/internal/common/httpclient"
)

// Verb is an HTTP method understood by the service.
type Verb string

const (
	GET    Verb = http.MethodGet
	POST   Verb = http.MethodPost
	PUT    Verb = http.MethodPut
	DELETE Verb = http.MethodDelete
)

// Request is one call to the service. It is built fresh for every call.
type Request struct {
	URL    string
	Verb   Verb
	Params *Params
}

// Response is the raw outcome of a Request.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs a single HTTP exchange. Failures to obtain a response
// must be reported as errors matching ErrTransport; any response, whatever
// its status, is returned as is.
type Transport interface {
	Execute(ctx context.Context, req Request) (Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req Request) (Response, error)

func (f TransportFunc) Execute(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// TransportOptions are passed through to the HTTP layer. The client core
// applies no timeout or retry policy of its own.
type TransportOptions struct {
	Timeout    time.Duration // per attempt, 0 selects the default
	Retries    int           // attempts added after a connection failure
	RetryDelay time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// HTTPTransport sends GET and DELETE parameters in the query string and POST
// and PUT parameters as a JSON object body.
type HTTPTransport struct {
	doer httpclient.Doer
}

// NewHTTPTransport creates a transport over the network.
func NewHTTPTransport(opts TransportOptions) *HTTPTransport {
	return &HTTPTransport{doer: httpclient.NewClient(httpclient.ClientOptions{
		Timeout:    opts.Timeout,
		Retries:    opts.Retries,
		RetryDelay: opts.RetryDelay,
		UserAgent:  opts.UserAgent,
		HTTPClient: opts.HTTPClient,
	})}
}

// NewHTTPTransportWithDoer creates a transport over an arbitrary executor,
// e.g. httpclient.NewTestClient for in-process servers.
func NewHTTPTransportWithDoer(doer httpclient.Doer) *HTTPTransport {
	return &HTTPTransport{doer: doer}
}

func (t *HTTPTransport) Execute(ctx context.Context, req Request) (Response, error) {
	opts := httpclient.RequestOptions{
		Method: string(req.Verb),
		URL:    req.URL,
	}
	switch req.Verb {
	case POST, PUT:
		body, err := req.Params.JSON()
		if err != nil {
			return Response{}, ErrInvalidRequest.MsgErr(fmt.Sprintf("encoding request body: %v", err), err)
		}
		opts.Body = body
	default:
		opts.QueryParams = req.Params.Values()
	}

	rsp, err := t.doer.Do(ctx, opts)
	if err != nil {
		return Response{}, ErrTransport.MsgErr(fmt.Sprintf("%s %s: %v", req.Verb, req.URL, err), err)
	}
	return Response{StatusCode: rsp.StatusCode, Body: rsp.Body}, nil
}

var _ Transport = (*HTTPTransport)(nil)
