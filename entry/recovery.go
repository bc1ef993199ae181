package entry

import (
	"net/http"
	"runtime/debug"
)

// Recovery recovers from panics in downstream handlers, logging the panic along with a
// stack trace and responding with 500 Internal Server Error
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				Log(r).Error("Recovered from panic in HTTP handler", "panic", err, "stack", string(debug.Stack()))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
