package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/iho/minibank/internal/domain"
)

// Recovery turns a handler panic into a 500 with the INTERNAL code. The panic
// value and stack go to the request logger, never to the client.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}

			zerolog.Ctx(r.Context()).Error().
				Str("panic", fmt.Sprint(v)).
				Bytes("stack", debug.Stack()).
				Str("route", routePattern(r)).
				Msg("handler panicked")

			writeJSONError(w, http.StatusInternalServerError, "internal server error", domain.CodeInternal, "")
		}()

		next.ServeHTTP(w, r)
	})
}
