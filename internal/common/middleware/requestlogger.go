// Package middleware provides HTTP middleware for request logging and panic
// recovery. It integrates with zerolog and tags every request with an id
// taken from the client or freshly generated.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/celerypayroll/capi/internal/common/httpclient"
	"github.com/celerypayroll/capi/internal/common/httpx"
	"github.com/celerypayroll/capi/internal/common/logtrace"
	"github.com/celerypayroll/capi/internal/common/uuid"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs incoming requests and their outcome. The request id sent
// by the client is reused when present and echoed in the response headers.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(httpclient.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewRequestID()
		}
		ctx := logtrace.WithRequestID(r.Context(), requestID)
		ctx = log.With().Str("request_id", requestID).Logger().WithContext(ctx)

		rw := httpx.NewResponseWriter(w)
		rw.Header().Set(httpclient.RequestIDHeader, requestID)

		log.Ctx(ctx).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_ip", r.RemoteAddr).
			Msg("incoming request")

		defer func() {
			log.Ctx(ctx).Debug().
				Int("status", rw.Status()).
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
				Msg("request completed")
		}()

		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}
