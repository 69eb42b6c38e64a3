package capi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/celerypayroll/capi/internal/common/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu       sync.Mutex
	requests []Request
	bodies   map[string]string
	handler  func(req Request) (Response, error)
	authHits atomic.Int32
}

func newFakeTransport(bodies map[string]string) *fakeTransport {
	f := &fakeTransport{bodies: map[string]string{
		PathAuthenticate: `{"response":{"token":"T1"}}`,
	}}
	for k, v := range bodies {
		f.bodies[k] = v
	}
	return f
}

func (f *fakeTransport) Execute(ctx context.Context, req Request) (Response, error) {
	path := strings.TrimPrefix(req.URL, DefaultBaseURL)
	if path == PathAuthenticate {
		f.authHits.Add(1)
	}
	f.mu.Lock()
	f.requests = append(f.requests, Request{URL: req.URL, Verb: req.Verb, Params: req.Params.Clone()})
	body := f.bodies[path]
	f.mu.Unlock()
	if f.handler != nil {
		return f.handler(req)
	}
	return Response{StatusCode: 200, Body: []byte(body)}, nil
}

func (f *fakeTransport) setBody(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[path] = body
}

func (f *fakeTransport) last() Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

var testCreds = Credentials{Username: "user1", Password: "pass1"}

func TestSessionAuthenticatesOnce(t *testing.T) {
	ft := newFakeTransport(map[string]string{
		PathAccount: `{"response":{"result":{"id":42}}}`,
	})
	s := NewSession(testCreds, WithTransport(ft))
	assert.Equal(t, StateUnauthenticated, s.State())

	result, err := s.GetAccount(context.Background(), "example.com")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42}`, string(result))
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "T1", s.Token())

	require.Equal(t, 2, ft.count())
	auth := ft.requests[0]
	assert.Equal(t, DefaultBaseURL+PathAuthenticate, auth.URL)
	assert.Equal(t, POST, auth.Verb)
	assert.Equal(t, []string{"username", "password"}, auth.Params.Keys())

	call := ft.requests[1]
	assert.Equal(t, GET, call.Verb)
	assert.Equal(t, []string{"token", "domain"}, call.Params.Keys())
	token, _ := call.Params.Get("token")
	assert.Equal(t, "T1", token)

	_, err = s.GetAccount(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(1), ft.authHits.Load())
}

func TestSessionAuthFailure(t *testing.T) {
	ft := newFakeTransport(map[string]string{
		PathAuthenticate: `{"response":{"error":{"code":11,"message":"Invalid login"}}}`,
		PathAccount:      `{"response":{"result":{"id":42}}}`,
	})
	s := NewSession(testCreds, WithTransport(ft))

	_, err := s.GetAccount(context.Background(), "example.com")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInvalidLogin))
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, s.Token())
	assert.Equal(t, 1, ft.count())

	ft.setBody(PathAuthenticate, `{"response":{"token":"T2"}}`)
	_, err = s.GetAccount(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(2), ft.authHits.Load())
	assert.Equal(t, "T2", s.Token())
}

func TestSessionTokenExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no token", `{"response":{"result":{"id":1}}}`},
		{"empty token", `{"response":{"token":""}}`},
		{"numeric token", `{"response":{"token":12}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := newFakeTransport(map[string]string{PathAuthenticate: tt.body})
			s := NewSession(testCreds, WithTransport(ft))
			err := s.Authenticate(context.Background())
			assert.ErrorIs(t, err, ErrTokenExtraction)
			assert.Equal(t, StateUnauthenticated, s.State())
		})
	}
}

func TestSessionEmptyCredentials(t *testing.T) {
	ft := newFakeTransport(map[string]string{
		PathAccount: `{"response":{"result":{"id":42}}}`,
	})
	s := NewSession(Credentials{Username: "user1"}, WithTransport(ft))

	_, err := s.GetAccount(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(0), ft.authHits.Load())
	assert.Equal(t, []string{"domain"}, ft.last().Params.Keys())
	assert.Equal(t, StateUnauthenticated, s.State())
}

func TestSessionConcurrentCallsAuthenticateOnce(t *testing.T) {
	ft := newFakeTransport(map[string]string{
		PathAccount: `{"response":{"result":{"id":42}}}`,
	})
	ft.handler = func(req Request) (Response, error) {
		if strings.HasSuffix(req.URL, PathAuthenticate) {
			time.Sleep(20 * time.Millisecond)
			return Response{StatusCode: 200, Body: []byte(`{"response":{"token":"T1"}}`)}, nil
		}
		return Response{StatusCode: 200, Body: []byte(`{"response":{"result":{"id":42}}}`)}, nil
	}
	s := NewSession(testCreds, WithTransport(ft))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.GetAccount(context.Background(), "example.com")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), ft.authHits.Load())
	assert.Equal(t, 21, ft.count())
}

func TestSessionClearAndSetToken(t *testing.T) {
	ft := newFakeTransport(map[string]string{
		PathAccount: `{"response":{"result":{"id":42}}}`,
	})
	s := NewSession(testCreds, WithTransport(ft))
	require.NoError(t, s.Authenticate(context.Background()))
	require.NoError(t, s.Authenticate(context.Background()))
	assert.Equal(t, int32(1), ft.authHits.Load())

	s.ClearToken()
	assert.Equal(t, StateUnauthenticated, s.State())
	_, err := s.GetAccount(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(2), ft.authHits.Load())

	other := NewSession(testCreds, WithTransport(ft))
	other.SetToken(s.Token())
	assert.Equal(t, StateAuthenticated, other.State())
	_, err = other.GetAccount(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, int32(2), ft.authHits.Load())
}

func TestSessionIndependentTokens(t *testing.T) {
	ft := newFakeTransport(nil)
	a := NewSession(testCreds, WithTransport(ft))
	b := NewSession(testCreds, WithTransport(ft))
	require.NoError(t, a.Authenticate(context.Background()))
	assert.Equal(t, "T1", a.Token())
	assert.Empty(t, b.Token())
}

func TestSessionTransportError(t *testing.T) {
	ft := newFakeTransport(nil)
	ft.handler = func(req Request) (Response, error) {
		return Response{}, errors.New("connection refused")
	}
	s := NewSession(testCreds, WithTransport(ft))
	_, err := s.GetAccount(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, StateUnauthenticated, s.State())
}

func TestSessionMalformedKeepsStatus(t *testing.T) {
	ft := newFakeTransport(nil)
	ft.handler = func(req Request) (Response, error) {
		return Response{StatusCode: 502, Body: []byte("<html>Bad gateway</html>")}, nil
	}
	s := NewSession(Credentials{}, WithTransport(ft))
	_, err := s.InvokePayload(context.Background(), PathService, GET, nil)
	require.ErrorIs(t, err, ErrMalformedResponse)

	var appErr apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 502, appErr.StatusCode())
	assert.Equal(t, "service", appErr.Fields()["path"])
}

func TestSessionStatusNotInterpreted(t *testing.T) {
	ft := newFakeTransport(nil)
	ft.handler = func(req Request) (Response, error) {
		return Response{StatusCode: 500, Body: []byte(`{"response":{"result":{"ok":true}}}`)}, nil
	}
	s := NewSession(Credentials{}, WithTransport(ft))
	result, err := s.Invoke(context.Background(), PathService, GET, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
}

func TestSessionInvokeReturnsResult(t *testing.T) {
	ft := newFakeTransport(map[string]string{
		PathService: `{"response":{"result":[1, 2],"extra":true}}`,
	})
	s := NewSession(testCreds, WithTransport(ft))
	ctx := context.Background()

	result, err := s.Invoke(ctx, PathService, GET, nil)
	require.NoError(t, err)
	assert.Equal(t, `[1, 2]`, string(result))

	payload, err := s.InvokePayload(ctx, PathService, GET, nil)
	require.NoError(t, err)
	assert.True(t, payload.Get("extra").Bool())
	assert.Equal(t, `[1, 2]`, payload.Get("result").Raw)
}

func TestSessionInvokeDoesNotMutateParams(t *testing.T) {
	ft := newFakeTransport(map[string]string{PathAccount: `{"response":{"result":{}}}`})
	s := NewSession(testCreds, WithTransport(ft))
	params := NewParams("domain", "example.com")
	_, err := s.InvokePayload(context.Background(), PathAccount, GET, params)
	require.NoError(t, err)
	assert.Equal(t, []string{"domain"}, params.Keys())
	assert.Equal(t, []string{"token", "domain"}, ft.last().Params.Keys())
}

// blockingAuth returns a transport whose first authentication blocks until
// release is closed; started is closed once it is in flight.
func blockingAuth() (ft *fakeTransport, started, release chan struct{}) {
	ft = newFakeTransport(nil)
	started = make(chan struct{})
	release = make(chan struct{})
	var once sync.Once
	ft.handler = func(req Request) (Response, error) {
		once.Do(func() {
			close(started)
			<-release
		})
		return Response{StatusCode: 200, Body: []byte(`{"response":{"token":"T1"}}`)}, nil
	}
	return ft, started, release
}

func TestSessionWaiterHonoursContext(t *testing.T) {
	ft, started, release := blockingAuth()
	s := NewSession(testCreds, WithTransport(ft))

	done := make(chan error, 1)
	go func() { done <- s.Authenticate(context.Background()) }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.Authenticate(ctx)
	require.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "T1", s.Token())
	assert.Equal(t, int32(1), ft.authHits.Load())
}

func TestSessionTokenChangedDuringAuthentication(t *testing.T) {
	tests := []struct {
		name      string
		change    func(s *Session)
		wantToken string
		wantState State
	}{
		{"cleared", func(s *Session) { s.ClearToken() }, "", StateUnauthenticated},
		{"set", func(s *Session) { s.SetToken("shared") }, "shared", StateAuthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft, started, release := blockingAuth()
			s := NewSession(testCreds, WithTransport(ft))

			done := make(chan error, 1)
			go func() { done <- s.Authenticate(context.Background()) }()
			<-started
			tt.change(s)
			close(release)

			require.NoError(t, <-done)
			assert.Equal(t, tt.wantToken, s.Token())
			assert.Equal(t, tt.wantState, s.State())
		})
	}
}

func TestSessionBaseURL(t *testing.T) {
	s := NewSession(testCreds)
	assert.Equal(t, DefaultBaseURL, s.BaseURL())

	var seen string
	tr := TransportFunc(func(ctx context.Context, req Request) (Response, error) {
		seen = req.URL
		return Response{StatusCode: 200, Body: []byte(`{"response":{"result":{"code":12}}}`)}, nil
	})
	s = NewSession(testCreds, WithBaseURL(" http://localhost:8080/api "), WithTransport(tr))
	assert.Equal(t, "http://localhost:8080/api/", s.BaseURL())
	_, err := s.CheckURL(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/url", seen)

	assert.Equal(t, "https://x.test/", NormalizeBaseURL("https://x.test/"))
}

func TestCredentialsString(t *testing.T) {
	assert.Equal(t, "user1:***", testCreds.String())
	assert.True(t, Credentials{Password: "x"}.Empty())
	assert.False(t, testCreds.Empty())
}
