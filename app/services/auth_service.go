package services

import (
	"context"

	"github.com/afandal/storeadmin/app/storefront"
)

type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type OTPVerification struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,max=12"`
}

type AuthService struct {
	client *storefront.Client
	audit  Auditor
}

func NewAuthService(client *storefront.Client, audit Auditor) *AuthService {
	return &AuthService{client: client, audit: audit}
}

// Login exchanges admin credentials for a bearer token. The caller stores
// the token in its session.
func (s *AuthService) Login(ctx context.Context, in Credentials) (string, error) {
	if err := check(&in); err != nil {
		return "", err
	}
	token, err := s.client.AdminLogin(ctx, in.Email, in.Password)
	record(ctx, s.audit, ActionLogin, in.Email, err)
	return token, err
}

func (s *AuthService) SendOTP(ctx context.Context, in OTPRequest) (string, error) {
	if err := check(&in); err != nil {
		return "", err
	}
	return s.client.SendOTP(ctx, in.Email)
}

func (s *AuthService) VerifyOTP(ctx context.Context, in OTPVerification) (string, error) {
	if err := check(&in); err != nil {
		return "", err
	}
	token, err := s.client.VerifyOTP(ctx, in.Email, in.OTP)
	record(ctx, s.audit, ActionOTPVerify, in.Email, err)
	return token, err
}

// Logout clears the session's credential.
func (s *AuthService) Logout(_ context.Context, sess storefront.Session) {
	sess.Clear()
}
