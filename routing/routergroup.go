package routing

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// RouteGroup registers routes under Prefix on the embedded Router.
// Group wrappers run before the wrappers of a single route
type RouteGroup struct {
	Router          // [Embedded Interface]
	Prefix          string
	HandlerWrappers []HandlerWrapper
}

// Ensure RouteGroup implements Router
var _ Router = (*RouteGroup)(nil)

// Handle registers "[METHOD ]<subpath>" as "[METHOD ]<Prefix><subpath>"
func (g *RouteGroup) Handle(subpattern string, handler http.Handler, handlerWrappers ...HandlerWrapper) {
	pattern := g.Prefix + subpattern
	if method, subpath, ok := strings.Cut(subpattern, " "); ok {
		pattern = method + " " + g.Prefix + subpath
	}
	if strings.Contains(pattern, "//") {
		panic(fmt.Sprintf("routing: can't register pattern %s", pattern))
	}
	g.Router.Handle(pattern, wrap(handler, slices.Concat(g.HandlerWrappers, handlerWrappers)))
}

func (g *RouteGroup) HandleFunc(subpattern string, handleFunc func(http.ResponseWriter, *http.Request), handlerWrappers ...HandlerWrapper) {
	g.Handle(subpattern, http.HandlerFunc(handleFunc), handlerWrappers...)
}

// Group makes a subgroup. Its prefix and wrappers extend the parent's:
//
//	router.Group("/v1", func(v1 *RouteGroup) {
//		v1.HandleFunc("GET /fonts", listFonts) // GET /v1/fonts
//		v1.Group("/templates", func(tpl *RouteGroup) {
//			tpl.HandleFunc("GET /{name}", download) // GET /v1/templates/{name}
//		})
//	}, auth)
func (g *RouteGroup) Group(subPrefix string, batch func(*RouteGroup), handlerWrappers ...HandlerWrapper) *RouteGroup {
	sub := &RouteGroup{
		Router:          g.Router,
		Prefix:          g.Prefix + subPrefix,
		HandlerWrappers: slices.Concat(g.HandlerWrappers, handlerWrappers),
	}
	batch(sub)
	return sub
}

// wrap nests handler so that wrappers[0] runs first and returns last
func wrap(handler http.Handler, wrappers []HandlerWrapper) http.Handler {
	for i := len(wrappers) - 1; i >= 0; i-- {
		handler = wrappers[i].Wrap(handler)
	}
	return handler
}
