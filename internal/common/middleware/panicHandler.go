package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/celerypayroll/capi/internal/common/httpx"
	"github.com/rs/zerolog/log"
)

// PanicHandler recovers from panics in handlers, logs the stack trace and
// answers with a 500 whose body is deliberately not an envelope.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := httpx.NewResponseWriter(w)
		defer func() {
			if err := recover(); err != nil {
				log.Ctx(r.Context()).Error().
					Str("panic", fmt.Sprintf("%v", err)).
					Str("stack_trace", string(debug.Stack())).
					Msg("panic occurred")

				if !rw.Written() {
					http.Error(rw, "internal server error", http.StatusInternalServerError)
				}
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
