package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pipelinekit/stagegen/internal/web/middleware"
)

// Router wraps a chi router and records the registered routes
type Router struct {
	mux    chi.Router
	routes *[]RouteInfo
	public bool
}

// RouteInfo describes a registered route
type RouteInfo struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Public  bool   `json:"public"`
}

// NewRouter creates a new Router with JSON 404 and 405 handlers
func NewRouter() *Router {
	mux := chi.NewRouter()
	mux.NotFound(NotFoundHandler)
	mux.MethodNotAllowed(MethodNotAllowedHandler)
	return &Router{
		mux:    mux,
		routes: &[]RouteInfo{},
	}
}

// ServeHTTP implements http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Use adds middleware to every route of the router
func (r *Router) Use(middlewares ...middleware.Middleware) {
	for _, m := range middlewares {
		r.mux.Use(m)
	}
}

// Get registers a GET route
func (r *Router) Get(pattern string, handler http.Handler) {
	r.handle(http.MethodGet, pattern, handler)
}

// Post registers a POST route
func (r *Router) Post(pattern string, handler http.Handler) {
	r.handle(http.MethodPost, pattern, handler)
}

func (r *Router) handle(method, pattern string, handler http.Handler) {
	r.mux.Method(method, pattern, handler)
	*r.routes = append(*r.routes, RouteInfo{
		Method:  method,
		Pattern: pattern,
		Public:  r.public,
	})
}

// Public registers routes that skip the protected group's middleware.
// The given middleware applies to the public routes only.
func (r *Router) Public(fn func(r *Router), middlewares ...middleware.Middleware) {
	r.mux.Group(func(c chi.Router) {
		for _, m := range middlewares {
			c.Use(m)
		}
		fn(&Router{mux: c, routes: r.routes, public: true})
	})
}

// Protected registers routes behind the given middleware
func (r *Router) Protected(fn func(r *Router), middlewares ...middleware.Middleware) {
	r.mux.Group(func(c chi.Router) {
		for _, m := range middlewares {
			c.Use(m)
		}
		fn(&Router{mux: c, routes: r.routes})
	})
}

// Routes returns all registered routes in registration order
func (r *Router) Routes() []RouteInfo {
	out := make([]RouteInfo, len(*r.routes))
	copy(out, *r.routes)
	return out
}
