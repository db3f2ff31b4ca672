package routing

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/zeptools/gw-livedocx/requests"
	"github.com/zeptools/gw-livedocx/responses"
	"github.com/zeptools/gw-livedocx/throttle"
)

// ThrottleWrapper answers 429 when the caller has no token left in group.
// Callers are keyed by the bearer token subject, or by client IP without auth
func ThrottleWrapper(store *throttle.BucketStore[string], group string, trustProxy bool) HandlerWrapper {
	return HandlerWrapperFunc(func(inner http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := SubjectFromContext(r.Context())
			if !ok || key == "" {
				key = "ip:" + requests.ClientIP(r, trustProxy)
			}
			allowed, wait := store.Take(group, key, time.Now())
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				responses.WriteSimpleErrorJSON(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			inner.ServeHTTP(w, r)
		})
	})
}
