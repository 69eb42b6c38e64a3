package capi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/celerypayroll/capi/internal/common/apperrors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the production endpoint of the service.
const DefaultBaseURL = "https://api.celerypayroll.com/"

// Credentials authenticate a Session. They are never logged.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether either part is missing, in which case the Session
// does not authenticate at all.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// String masks the password.
func (c Credentials) String() string {
	return c.Username + ":***"
}

// State is the authentication state of a Session.
type State int32

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	baseURL   string
	transport Transport
	logger    zerolog.Logger
	httpOpts  TransportOptions
}

// WithBaseURL overrides DefaultBaseURL. A trailing slash is added if missing.
func WithBaseURL(baseURL string) Option {
	return func(c *sessionConfig) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTransport replaces the HTTP transport. Timeout and retry options are
// ignored when a custom transport is set.
func WithTransport(t Transport) Option {
	return func(c *sessionConfig) {
		c.transport = t
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = l
	}
}

// WithTimeout bounds every attempt made by the HTTP transport.
func WithTimeout(d time.Duration) Option {
	return func(c *sessionConfig) {
		c.httpOpts.Timeout = d
	}
}

// WithRetries sets how many times the HTTP transport retries a request that
// failed to reach the service.
func WithRetries(n int) Option {
	return func(c *sessionConfig) {
		c.httpOpts.Retries = n
	}
}

// WithHTTPClient sets the net/http client used by the HTTP transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *sessionConfig) {
		c.httpOpts.HTTPClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent by the HTTP transport.
func WithUserAgent(ua string) Option {
	return func(c *sessionConfig) {
		c.httpOpts.UserAgent = ua
	}
}

// Session is a credential-bound client holding a cached token across calls.
// A Session is safe for concurrent use; at most one authentication request
// is in flight at any time. Independent Sessions never share a token.
type Session struct {
	baseURL   string
	creds     Credentials
	transport Transport
	logger    zerolog.Logger

	authSem chan struct{} // one authentication in flight
	mu      sync.RWMutex  // guards token and gen
	token   string
	gen     uint64 // bumped on every SetToken and ClearToken
	state   atomic.Int32
}

// NewSession creates a Session. No request is made until the first call.
func NewSession(creds Credentials, opts ...Option) *Session {
	cfg := sessionConfig{
		baseURL: DefaultBaseURL,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.transport == nil {
		cfg.transport = NewHTTPTransport(cfg.httpOpts)
	}
	return &Session{
		baseURL:   NormalizeBaseURL(cfg.baseURL),
		creds:     creds,
		transport: cfg.transport,
		logger:    cfg.logger,
		authSem:   make(chan struct{}, 1),
	}
}

// NormalizeBaseURL trims spaces and guarantees a trailing slash.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL
}

// BaseURL returns the normalized base URL.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// State returns the current authentication state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Token returns the cached token, empty if none.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken installs a token obtained elsewhere, e.g. from another Session
// that should share it. An empty token is the same as ClearToken. A token
// set while an authentication is in flight wins over its result.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.storeLocked(token)
}

// ClearToken drops the cached token so the next call authenticates again.
// The service never reports token expiry in a way the Session can act on;
// callers that see an authentication error can clear and retry.
func (s *Session) ClearToken() {
	s.SetToken("")
}

func (s *Session) storeLocked(token string) {
	s.token = token
	if token == "" {
		s.state.Store(int32(StateUnauthenticated))
		return
	}
	s.state.Store(int32(StateAuthenticated))
}

func (s *Session) snapshot() (string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.gen
}

// Authenticate obtains and caches a token unless one is cached already.
// With empty credentials it does nothing and calls proceed without a token.
func (s *Session) Authenticate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := s.ensureToken(ctx)
	return err
}

func (s *Session) ensureToken(ctx context.Context) (string, error) {
	if token := s.Token(); token != "" {
		return token, nil
	}

	select {
	case s.authSem <- struct{}{}:
	case <-ctx.Done():
		return "", ErrTransport.MsgErr(fmt.Sprintf("waiting for authentication: %v", ctx.Err()), ctx.Err())
	}
	defer func() { <-s.authSem }()

	// Another caller may have authenticated while we waited.
	token, gen := s.snapshot()
	if token != "" {
		return token, nil
	}
	if s.creds.Empty() {
		s.logger.Debug().Msg("no credentials, skipping authentication")
		return "", nil
	}

	s.state.Store(int32(StateAuthenticating))
	token, err := s.authenticate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// SetToken or ClearToken ran meanwhile; their outcome stands.
		s.logger.Debug().Msg("token changed during authentication, result not cached")
		if err != nil {
			return "", err
		}
		return token, nil
	}
	if err != nil {
		s.state.Store(int32(StateUnauthenticated))
		return "", err
	}
	s.storeLocked(token)
	s.logger.Debug().Str("username", s.creds.Username).Msg("authenticated")
	return token, nil
}

func (s *Session) authenticate(ctx context.Context) (string, error) {
	params := NewParams(ParamUsername, s.creds.Username, ParamPassword, s.creds.Password)
	payload, err := s.do(ctx, PathAuthenticate, POST, params)
	if err != nil {
		return "", err
	}
	return extractToken(payload)
}

func extractToken(payload Payload) (string, error) {
	if !gjson.ParseBytes(payload).IsObject() {
		return "", ErrTokenExtraction.New("unable to extract token: authentication response is not an object")
	}
	r := payload.Get(ParamToken)
	if r.Type != gjson.String || r.String() == "" {
		return "", ErrTokenExtraction.New("unable to extract token: authentication response has no token")
	}
	return r.String(), nil
}

// InvokePayload is the primitive every operation is built from. It
// authenticates if needed, adds the token for protected endpoints, sends the
// request and returns the whole response object of a successful envelope.
// Endpoints such as authenticate put their data beside "result", which is
// why this level exists. params is not modified.
func (s *Session) InvokePayload(ctx context.Context, path string, verb Verb, params *Params) (Payload, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	path = normalizePath(path)

	call := NewParams()
	if requiresToken(path) {
		token, err := s.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			call.Set(ParamToken, token)
		}
	}
	for _, k := range params.Keys() {
		if k == ParamToken && call.Has(ParamToken) {
			continue
		}
		v, _ := params.Get(k)
		call.Set(k, v)
	}

	if e, ok := LookupEndpoint(path); ok && !e.Allows(verb) {
		s.logger.Warn().Str("path", path).Str("verb", string(verb)).Msg("verb not listed for endpoint")
	}
	return s.do(ctx, path, verb, call)
}

// Invoke sends a request like InvokePayload and returns exactly the
// response.result value, byte for byte. When the service answers without a
// result member the whole response object is returned.
func (s *Session) Invoke(ctx context.Context, path string, verb Verb, params *Params) (json.RawMessage, error) {
	payload, err := s.InvokePayload(ctx, path, verb, params)
	if err != nil {
		return nil, err
	}
	return payload.ResultOrPayload(), nil
}

func (s *Session) do(ctx context.Context, path string, verb Verb, params *Params) (Payload, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req := Request{
		URL:    s.baseURL + path,
		Verb:   verb,
		Params: params,
	}

	start := time.Now()
	rsp, err := s.transport.Execute(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrTransport) && !errors.Is(err, ErrInvalidRequest) {
			err = ErrTransport.MsgErr(fmt.Sprintf("%s %s: %v", verb, path, err), err)
		}
		s.logger.Debug().Err(err).Str("verb", string(verb)).Str("path", path).Msg("capi request failed")
		return nil, err
	}
	s.logger.Debug().
		Str("verb", string(verb)).
		Str("path", path).
		Str("params", params.String()).
		Int("status", rsp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("capi request")

	payload, err := Parse(rsp.Body)
	if err != nil {
		var appErr apperrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr.SetStatusCode(rsp.StatusCode).With("path", path).With("verb", string(verb))
		}
		return nil, err
	}
	return payload, nil
}
