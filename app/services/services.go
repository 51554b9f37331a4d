// Package services holds the admin use cases shared by the HTTP controllers
// and the CLI. Each service validates input before any network call,
// delegates to the storefront client and records an audit entry for
// mutations.
package services

import (
	"context"

	"github.com/afandal/storeadmin/app/storefront"
	"github.com/afandal/storeadmin/pkg/logger"
	"github.com/afandal/storeadmin/pkg/validate"
)

// Audit actions.
const (
	ActionLogin         = "auth.login"
	ActionOTPVerify     = "auth.otp_verify"
	ActionProductAdd    = "product.add"
	ActionProductRemove = "product.remove"
	ActionOfferAdd      = "offer.add"
	ActionOfferRemove   = "offer.remove"
	ActionOrderStatus   = "order.status"
)

// check runs the struct's validate tags and returns a *storefront.ValidationError.
func check(v interface{}) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return storefront.NewValidationError(errs)
	}
	return nil
}

func invalid(field, msg string) error {
	return storefront.NewValidationError(map[string]string{field: msg})
}

// record audits a mutation, logging failures at warn level.
func record(ctx context.Context, a Auditor, action, target string, err error) {
	if err != nil {
		logger.WithCtx(ctx).Warn("admin action failed", "action", action, "target", target, "error", err)
	}
	if a != nil {
		a.Record(ctx, action, target, err)
	}
}
