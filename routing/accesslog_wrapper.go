package routing

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/requests"
	"github.com/zeptools/gw-livedocx/rw"
)

// AccessLogWrapper logs one line per request at info level
func AccessLogWrapper(logger *zap.SugaredLogger, trustProxy bool) HandlerWrapper {
	return HandlerWrapperFunc(func(inner http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := rw.NewResponseRecorder(w)
			inner.ServeHTTP(rec, r)
			status := rec.Status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", rec.Bytes,
				"client_ip", requests.ClientIP(r, trustProxy),
				"elapsed", time.Since(start),
			)
		})
	})
}
