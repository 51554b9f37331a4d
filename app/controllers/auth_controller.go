package controllers

import (
	"net/http"

	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/pkg/ctx"
	"github.com/afandal/storeadmin/pkg/session"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Login stores the returned token in the cookie session and echoes it for
// clients that prefer the Authorization header.
func (ctl *AuthController) Login(c *ctx.Context) {
	var in services.Credentials
	if !c.BindJSON(&in) {
		return
	}
	token, err := ctl.service.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	ctl.remember(c, token)
}

func (ctl *AuthController) SendOTP(c *ctx.Context) {
	var in services.OTPRequest
	if !c.BindJSON(&in) {
		return
	}
	msg, err := ctl.service.SendOTP(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, msg, nil)
}

func (ctl *AuthController) VerifyOTP(c *ctx.Context) {
	var in services.OTPVerification
	if !c.BindJSON(&in) {
		return
	}
	token, err := ctl.service.VerifyOTP(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	ctl.remember(c, token)
}

func (ctl *AuthController) Logout(c *ctx.Context) {
	sess := session.FromCtx(c.R)
	ctl.service.Logout(c.Context(), sess)
	sess.Expire(c.W)
	c.Message(http.StatusOK, "Logged out", nil)
}

func (ctl *AuthController) remember(c *ctx.Context, token string) {
	sess := session.FromCtx(c.R)
	sess.SetToken(token)
	if err := sess.Save(c.W); err != nil {
		fail(c, err)
		return
	}
	c.Message(http.StatusOK, "Logged in", map[string]string{"token": token})
}
