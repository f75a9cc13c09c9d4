package httpmetrics

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RouteFunc returns the route template of r. ok is false if r matched no
// template.
type RouteFunc func(r *http.Request) (template string, ok bool)

// ChiRoute resolves the route template from the chi routing context of r.
//
// Once chi has routed the request the matched patterns are used. Before
// that, for example in a middleware registered with Use on the top level
// router, the request is matched against the router without serving it.
// That match does not descend into routers mounted on a pattern without a
// trailing slash, so the in-progress handler label of such requests may be
// the mount pattern alone.
//
// A request that reaches a mounted router but matches none of its routes
// keeps the mount pattern, e.g. a 404 for "/api/nope" under a router
// mounted on "/api" is reported with the template "/api/*". Such requests
// count as templated, so IgnoreUntemplated and GroupUntemplated do not
// apply to them. The label stays bounded by the number of mounts.
func ChiRoute(r *http.Request) (string, bool) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "", false
	}

	patterns := rctx.RoutePatterns
	if len(patterns) == 0 && rctx.Routes != nil {
		tctx := chi.NewRouteContext()
		if rctx.Routes.Match(tctx, r.Method, r.URL.Path) {
			patterns = tctx.RoutePatterns
		}
	}
	if len(patterns) == 0 {
		return "", false
	}
	return getRouteAsString(patterns), true
}

// getRouteAsString joins the patterns of nested routers, e.g. "/*" and
// "/apps/{id}" become "/apps/{id}".
func getRouteAsString(patterns []string) string {
	var result string
	for _, pattern := range patterns {
		result += pattern
	}
	return strings.ReplaceAll(result, "/*/", "/")
}
