package storefront

import (
	"context"
	"fmt"

	khttp "github.com/afandal/storeadmin/pkg/http"
)

// AdminLogin exchanges admin credentials for a bearer token.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (string, error) {
	env, err := c.do(ctx, nil, "auth.login", authNone,
		khttp.Post(c.url("/api/user/admin")).Body(map[string]string{
			"email":    email,
			"password": password,
		}))
	if err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", &APIError{Op: "auth.login", Status: 200, Message: "no token in response"}
	}
	return env.Token, nil
}

// SendOTP asks the backend to email a one-time code.
func (c *Client) SendOTP(ctx context.Context, email string) (string, error) {
	env, err := c.do(ctx, nil, "auth.otp_send", authNone,
		khttp.Post(c.url("/api/user/send-otp")).Body(map[string]string{"email": email}))
	if err != nil {
		return "", err
	}
	return messageOr(env, "OTP sent"), nil
}

// VerifyOTP exchanges a one-time code for a bearer token.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	env, err := c.do(ctx, nil, "auth.otp_verify", authNone,
		khttp.Post(c.url("/api/user/verify-otp")).Body(map[string]string{
			"email": email,
			"otp":   otp,
		}))
	if err != nil {
		return "", err
	}
	if env.Token == "" {
		return "", &APIError{Op: "auth.otp_verify", Status: 200, Message: fmt.Sprintf("no token in response: %s", env.Message)}
	}
	return env.Token, nil
}

func messageOr(env *envelope, fallback string) string {
	if env.Message != "" {
		return env.Message
	}
	return fallback
}
