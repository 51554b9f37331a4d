// Package controllers adapts the admin services to HTTP.
package controllers

import (
	"errors"
	"net/http"

	"github.com/afandal/storeadmin/app/storefront"
	"github.com/afandal/storeadmin/pkg/ctx"
	"github.com/afandal/storeadmin/pkg/logger"
	"github.com/afandal/storeadmin/pkg/session"
)

// UnauthorizedMessage is returned whenever the credential is missing or rejected.
const UnauthorizedMessage = "Unauthorized: Please log in again"

// Credential picks the request's credential holder: an Authorization
// bearer token when present, otherwise the cookie session.
func Credential(c *ctx.Context) storefront.Session {
	if token := c.BearerToken(); token != "" {
		return storefront.NewMemorySession(token)
	}
	return session.FromCtx(c.R)
}

// fail maps a service error to its HTTP response.
func fail(c *ctx.Context, err error) {
	var (
		verr   *storefront.ValidationError
		apiErr *storefront.APIError
	)
	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Fields)
	case errors.Is(err, storefront.ErrUnauthorized):
		if c.BearerToken() == "" {
			session.FromCtx(c.R).Expire(c.W)
		}
		c.Unauthorized(UnauthorizedMessage)
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		c.Error(status, apiErr.Message)
	case errors.Is(err, storefront.ErrNetwork):
		c.Error(http.StatusBadGateway, "Storefront is unreachable, please try again")
	default:
		logger.WithCtx(c.Context()).Error("unhandled error", "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
	}
}
