// Package ctx gives admin handlers a single request context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (ctl *OfferController) Destroy(c *ctx.Context) {
//	    ...
//	    c.Message(http.StatusOK, "Offer deleted", nil)
//	}
//
//	router.Delete("/offers/{id}", "offers.destroy", ctx.Wrap(ctl.Destroy))
package ctx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/afandal/storeadmin/pkg/bind"
	"github.com/afandal/storeadmin/pkg/response"
)

type HandlerFunc func(c *Context)

// Context is one request/response pair. It is pooled; do not keep it
// after the handler returns.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{New: func() any { return new(Context) }}

// Wrap adapts a HandlerFunc to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := pool.Get().(*Context)
		c.W, c.R = w, r
		defer func() {
			c.W, c.R = nil, nil
			pool.Put(c)
		}()
		h(c)
	}
}

func (c *Context) Context() context.Context { return c.R.Context() }

// Param returns a chi URL parameter.
func (c *Context) Param(key string) string { return chi.URLParam(c.R, key) }

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func (c *Context) BearerToken() string {
	scheme, token, ok := strings.Cut(c.R.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// BindJSON decodes and validates the body into dest. On failure it has
// already answered 400, 413 or 422 and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	switch {
	case errors.Is(err, bind.ErrTooLarge):
		c.Error(http.StatusRequestEntityTooLarge, err.Error())
		return false
	case err != nil:
		c.Error(http.StatusBadRequest, err.Error())
		return false
	case len(errs) > 0:
		c.ValidationError(errs)
		return false
	}
	return true
}

// Success sends a 200 envelope with data.
func (c *Context) Success(data any) {
	c.Message(http.StatusOK, "", data)
}

// Message sends an envelope carrying both a message and data.
func (c *Context) Message(code int, message string, data any) {
	response.Write(c.W, code, response.Envelope{Status: code, Message: message, Data: data})
}

func (c *Context) Error(code int, message string) {
	response.Error(c.W, code, message)
}

// ValidationError sends a 422 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	response.ValidationError(c.W, errs)
}

// Unauthorized sends a 401 with message, or "Unauthorized".
func (c *Context) Unauthorized(message string) {
	if message == "" {
		message = "Unauthorized"
	}
	c.Error(http.StatusUnauthorized, message)
}
