package routing

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/responses"
	"github.com/zeptools/gw-livedocx/sec"
)

type ctxKey int

const subjectKey ctxKey = iota

// BearerAuthWrapper requires an HMAC-signed JWT in the Authorization header.
// The token subject is put into the request context
type BearerAuthWrapper struct {
	Secret []byte
	Issuer string // checked when not empty
	Logger *zap.SugaredLogger
}

// Ensure BearerAuthWrapper implements HandlerWrapper
var _ HandlerWrapper = (*BearerAuthWrapper)(nil)

func (a *BearerAuthWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signed := sec.ExtractBearerToken(r.Header.Get("Authorization"))
		if signed == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="livedocx"`)
			responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		token, err := sec.ParseHMACSignedToken(signed, a.Secret, a.Issuer)
		if err != nil {
			if a.Logger != nil {
				a.Logger.Debugw("bearer token rejected", "error", err)
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="livedocx", error="invalid_token"`)
			responses.WriteSimpleErrorJSON(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		sub, _ := token.Claims.GetSubject()
		inner.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, sub)))
	})
}

// SubjectFromContext returns the token subject set by BearerAuthWrapper
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok
}
