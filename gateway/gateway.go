// Package gateway is an HTTP front of the LiveDocx mail-merge service.
// Every request runs in its own logged-in session of a fresh client
package gateway

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/archive"
	"github.com/zeptools/gw-livedocx/routing"
	"github.com/zeptools/gw-livedocx/throttle"
)

const (
	DefaultMaxBodyBytes = 32 << 20
	RenderThrottleGroup = "render"
)

// SessionFunc runs fn in a logged-in session of a new, independent client
type SessionFunc func(ctx context.Context, fn func(ctx context.Context, c *livedocx.Client) error) error

type Gateway struct {
	Session      SessionFunc
	Archive      *archive.DocumentArchive      // optional. enables GET /v1/documents/{id}
	Ledger       *archive.TemplateLedger       // optional
	ArchiveAll   bool                          // archive every rendered document
	MaxBodyBytes int64                         // DefaultMaxBodyBytes if zero
	TrustProxy   bool                          // client IP from forwarding headers in access logs and throttling
	Throttle     *throttle.BucketStore[string] // optional. limits POST /v1/documents per caller in RenderThrottleGroup
	Logger       *zap.SugaredLogger
}

// Handler builds the routes. auth may be nil to serve /v1 unauthenticated
func (g *Gateway) Handler(auth routing.HandlerWrapper) http.Handler {
	if g.Logger == nil {
		g.Logger = zap.NewNop().Sugar()
	}
	if g.MaxBodyBytes <= 0 {
		g.MaxBodyBytes = DefaultMaxBodyBytes
	}

	var v1Wrappers []routing.HandlerWrapper
	if auth != nil {
		v1Wrappers = append(v1Wrappers, auth)
	}

	router := routing.NewBaseRouter()
	router.HandleFunc("GET /healthz", g.health)
	router.Group("/v1", func(v1 *routing.RouteGroup) {
		v1.HandleFunc("GET /templates", g.listTemplates)
		v1.Group("/templates", func(tpl *routing.RouteGroup) {
			tpl.HandleFunc("GET /{name}", g.downloadTemplate)
			tpl.HandleFunc("PUT /{name}", g.uploadTemplate)
			tpl.HandleFunc("DELETE /{name}", g.deleteTemplate)
			tpl.HandleFunc("GET /{name}/names", g.templateNames)
			tpl.HandleFunc("GET /{name}/history", g.templateHistory)
		})
		var renderWrappers []routing.HandlerWrapper
		if g.Throttle != nil {
			renderWrappers = append(renderWrappers, routing.ThrottleWrapper(g.Throttle, RenderThrottleGroup, g.TrustProxy))
		}
		v1.HandleFunc("POST /documents", g.createDocument, renderWrappers...)
		v1.HandleFunc("GET /documents/{id}", g.getDocument)
		v1.HandleFunc("DELETE /documents/{id}", g.deleteDocument)
		v1.HandleFunc("GET /fonts", g.listFonts)
	}, v1Wrappers...)

	return routing.RecoverWrapper(g.Logger).Wrap(
		routing.AccessLogWrapper(g.Logger.Named("access"), g.TrustProxy).Wrap(router),
	)
}

func (g *Gateway) record(ctx context.Context, e archive.Event) {
	if g.Ledger == nil {
		return
	}
	if err := g.Ledger.Record(ctx, e); err != nil {
		g.Logger.Warnw("template event not recorded", "template", e.Template, "action", e.Action, "error", err)
	}
}
