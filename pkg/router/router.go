// Package router puts named routes and prefix groups on top of chi, so
// route:list can print the whole API.
package router

import (
	"fmt"
	"net/http"
	"path"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Middleware func(http.Handler) http.Handler

// Route describes one mounted endpoint.
type Route struct {
	Method string
	Path   string
	Name   string
}

type table struct {
	mu     sync.Mutex
	routes []Route
	names  map[string]bool
}

// Router mounts handlers under a path prefix. Groups share the root's mux
// and route table.
type Router struct {
	mux    chi.Router
	table  *table
	prefix string
	mw     []Middleware
}

func New() *Router {
	return &Router{
		mux:    chi.NewRouter(),
		table:  &table{names: map[string]bool{}},
		prefix: "/",
	}
}

func (r *Router) Handler() http.Handler { return r.mux }

// Use adds global middleware. chi requires every Use before the first route.
func (r *Router) Use(mw ...Middleware) {
	for _, m := range mw {
		r.mux.Use(m)
	}
}

// Group returns a router mounting under prefix with mw applied to each
// route it mounts.
func (r *Router) Group(prefix string, mw ...Middleware) *Router {
	return &Router{
		mux:    r.mux,
		table:  r.table,
		prefix: join(r.prefix, prefix),
		mw:     append(append([]Middleware(nil), r.mw...), mw...),
	}
}

func (r *Router) Get(p, name string, h http.HandlerFunc)    { r.mount(http.MethodGet, p, name, h) }
func (r *Router) Post(p, name string, h http.HandlerFunc)   { r.mount(http.MethodPost, p, name, h) }
func (r *Router) Delete(p, name string, h http.HandlerFunc) { r.mount(http.MethodDelete, p, name, h) }

// Handle mounts a plain http.Handler for GET, e.g. /metrics.
func (r *Router) Handle(p, name string, h http.Handler) { r.mount(http.MethodGet, p, name, h) }

func (r *Router) NotFound(h http.HandlerFunc)         { r.mux.NotFound(h) }
func (r *Router) MethodNotAllowed(h http.HandlerFunc) { r.mux.MethodNotAllowed(h) }

// Routes lists every mounted route sorted by path, then method.
func (r *Router) Routes() []Route {
	r.table.mu.Lock()
	out := append([]Route(nil), r.table.routes...)
	r.table.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// mount panics on a reused name; names are fixed at boot.
func (r *Router) mount(method, p, name string, h http.Handler) {
	full := join(r.prefix, p)
	for i := len(r.mw) - 1; i >= 0; i-- {
		h = r.mw[i](h)
	}

	r.table.mu.Lock()
	if name != "" {
		if r.table.names[name] {
			r.table.mu.Unlock()
			panic(fmt.Sprintf("router: route name %q already used", name))
		}
		r.table.names[name] = true
	}
	r.table.routes = append(r.table.routes, Route{Method: method, Path: full, Name: name})
	r.table.mu.Unlock()

	r.mux.Method(method, full, h)
}

// join cleans a/b into an absolute path without a trailing slash. chi
// patterns such as {id} survive path.Clean untouched.
func join(a, b string) string {
	return path.Clean("/" + a + "/" + b)
}
