// Package capitest runs an in-process fake of the Celery payroll API. It
// speaks the same envelope format as the real service and keeps all state in
// memory, so transport, session and CLI tests can run against it without a
// network.
package capitest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/celerypayroll/capi/internal/common/httpclient"
	"github.com/celerypayroll/capi/internal/common/httpx"
	"github.com/celerypayroll/capi/internal/common/logtrace"
	commonmiddleware "github.com/celerypayroll/capi/internal/common/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RecordedRequest is a request as seen by the fake server.
type RecordedRequest struct {
	Method    string
	Path      string
	Params    map[string]any
	RequestID string
}

// Server is a fake Celery API. The zero value is not usable; call New.
type Server struct {
	Router *chi.Mux

	mu        sync.Mutex
	users     map[string][]byte // username -> bcrypt hash
	secret    []byte
	accounts  map[string]*Account
	companies map[string]*Company
	discounts map[string]*Discount
	invoices  map[string]*Invoice
	contexts  map[string][]SSOContext
	requests  []RecordedRequest
	overrides map[string]http.HandlerFunc
	nextID    int

	corsOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithCORS answers cross-origin requests from the given origins, for
// browser clients talking to a local fake.
func WithCORS(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = append(s.corsOrigins, origins...)
	}
}

// New creates a server with the routes of every endpoint mounted.
func New(opts ...Option) *Server {
	s := &Server{
		Router:    chi.NewRouter(),
		users:     make(map[string][]byte),
		accounts:  make(map[string]*Account),
		companies: make(map[string]*Company),
		discounts: make(map[string]*Discount),
		invoices:  make(map[string]*Invoice),
		contexts:  make(map[string][]SSOContext),
		overrides: make(map[string]http.HandlerFunc),
	}
	s.secret = newSecret()
	for _, opt := range opts {
		opt(s)
	}
	s.MountHandlers()
	return s
}

func (s *Server) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if len(s.corsOrigins) > 0 {
		s.Router.Use(s.HandleCORS)
	}
	s.Router.Use(s.recordRequest)

	s.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.SendError(r.Context(), w, http.StatusNotFound, codeNotFound, "Not found")
	})
	s.Router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.SendError(r.Context(), w, http.StatusMethodNotAllowed, codeInvalidService, "Invalid service")
	})

	s.Router.Post("/authenticate", s.authenticate)
	s.Router.Post("/url", s.checkURL)
	s.Router.With(s.validateParams).Post("/price", s.getPrice)

	s.Router.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Use(s.validateParams)
		r.Get("/account", s.getAccount)
		r.Post("/account", s.postAccount)
		r.Post("/account/price", s.accountPrice)
		r.Post("/account/discount", s.addDiscount)
		r.Put("/account/discount", s.updateDiscount)
		r.Delete("/account/discount", s.deleteDiscount)
		r.Post("/account/invoice", s.invoice)
		r.Post("/account/reminders", s.reminders)
		r.Post("/company", s.postCompany)
		r.Put("/company/integration", s.companyIntegration)
		r.Get("/service", s.services)
		r.Post("/user/notification", s.notify)
		r.Post("/user/context", s.userContext)
		r.Get("/sso/context", s.getSSOContext)
		r.Post("/sso/context", s.createSSOContext)
		r.Delete("/sso/context", s.deleteSSOContext)
	})
}

// HandleCORS provides CORS middleware for the configured origins.
func (s *Server) HandleCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", httpclient.RequestIDHeader},
		ExposedHeaders:   []string{httpclient.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}

// ServeHTTP makes the server usable with httpclient.NewTestClient.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// Start serves the fake API on a loopback listener. The caller must Close
// the returned server.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s)
}

// Override replaces the handler of a path, bypassing authentication. Tests
// use it to script raw responses.
func (s *Server) Override(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[normalize(path)] = h
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request, if any.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Calls returns how many requests hit path.
func (s *Server) Calls(path string) int {
	path = normalize(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

type paramsKey struct{}

func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		params, err := httpx.GetRequestParams(r)
		if err != nil {
			httpx.SendError(ctx, w, http.StatusBadRequest, codeInvalidParameter, "Invalid parameter")
			return
		}
		path := normalize(r.URL.Path)

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:    r.Method,
			Path:      path,
			Params:    params,
			RequestID: logtrace.RequestIdFromContext(ctx),
		})
		override := s.overrides[path]
		s.mu.Unlock()

		ctx = context.WithValue(ctx, paramsKey{}, params)
		if override != nil {
			override(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestParams(r *http.Request) map[string]any {
	if p, ok := r.Context().Value(paramsKey{}).(map[string]any); ok {
		return p
	}
	return map[string]any{}
}

func normalize(path string) string {
	return strings.Trim(path, "/")
}
