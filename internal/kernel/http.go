// Package kernel assembles the admin HTTP handler: global middleware,
// operational endpoints and the API routes.
package kernel

import (
	"net/http"

	"github.com/afandal/storeadmin/app/routes"
	"github.com/afandal/storeadmin/config"
	"github.com/afandal/storeadmin/pkg/metrics"
	"github.com/afandal/storeadmin/pkg/middleware"
	"github.com/afandal/storeadmin/pkg/reqid"
	"github.com/afandal/storeadmin/pkg/response"
	"github.com/afandal/storeadmin/pkg/router"
	"github.com/afandal/storeadmin/pkg/session"
	"github.com/afandal/storeadmin/pkg/ws"
)

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel wires the middleware stack and registers every route.
// limiter may be nil to disable rate limiting.
func NewHTTPKernel(svc routes.Services, limiter *middleware.Limiter) (*HTTPKernel, error) {
	r := router.New()

	// Outermost first. Metrics wraps everything so latency is total; the
	// request id must exist before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(session.DefaultOptions()))
	r.Use(middleware.CORS(config.CORSOrigins()))
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	ws.AllowOrigins(config.CORSOrigins())

	r.Get("/healthz", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", "metrics", metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if err := routes.RegisterAPI(r, svc); err != nil {
		return nil, err
	}
	return &HTTPKernel{router: r}, nil
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists the named routes.
func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }
