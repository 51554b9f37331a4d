package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/afandal/storeadmin/pkg/logger"
	"github.com/afandal/storeadmin/pkg/reqid"
	"github.com/afandal/storeadmin/pkg/response"
)

// Recovery answers a panicking handler with a JSON 500. It sits outside
// reqid.Middleware, so the id is read back from the response header.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if err, ok := p.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(p)
			}
			logger.Error("handler panic",
				"request_id", w.Header().Get(reqid.Header),
				"method", r.Method,
				"path", r.URL.Path,
				"panic", p,
				"stack", string(debug.Stack()),
			)
			response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}()
		next.ServeHTTP(w, r)
	})
}
