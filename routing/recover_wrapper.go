package routing

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/responses"
)

// RecoverWrapper turns a handler panic into a 500 JSON error
func RecoverWrapper(logger *zap.SugaredLogger) HandlerWrapper {
	return HandlerWrapperFunc(func(inner http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Errorw("panic recovered", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
					responses.WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			inner.ServeHTTP(w, r)
		})
	})
}
