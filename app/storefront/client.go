// Package storefront is the typed client for the storefront REST backend.
// Every call goes through one interceptor (Client.do) that attaches the
// admin credential, classifies failures into the package's error kinds and
// clears the Session when the backend rejects the credential. Nothing is
// retried.
package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/config"
	khttp "github.com/afandal/storeadmin/pkg/http"
	"github.com/afandal/storeadmin/pkg/logger"
	"github.com/afandal/storeadmin/pkg/metrics"
	"github.com/afandal/storeadmin/pkg/reqid"
)

type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

// Client talks to one storefront backend.
type Client struct {
	baseURL string
	timeout time.Duration
	now     func() time.Time
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		now:     time.Now,
	}
}

// NewFromConfig uses BACKEND_URL and BACKEND_TIMEOUT.
func NewFromConfig() *Client {
	return New(config.BackendURL(), config.BackendTimeout())
}

func (c *Client) url(path string) string { return c.baseURL + path }

// envelope is the backend's response body shape.
type envelope struct {
	Success  *bool            `json:"success"`
	Message  string           `json:"message"`
	Token    string           `json:"token"`
	Products []models.Product `json:"products"`
	Product  json.RawMessage  `json:"product"`
	Offers   []models.Offer   `json:"offers"`
	Orders   []models.Order   `json:"orders"`
}

func (c *Client) do(ctx context.Context, sess Session, op string, auth authMode, req *khttp.Request) (*envelope, error) {
	log := logger.WithCtx(ctx).With("op", op)
	start := time.Now()

	token := ""
	if sess != nil && auth != authNone {
		token = sess.Token()
	}
	if token != "" && c.expired(token) {
		log.Info("storefront: credential expired, clearing session")
		c.teardown(sess)
		token = ""
		if auth == authRequired {
			metrics.ObserveBackend(op, "unauthorized", start)
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}
	}
	if auth == authRequired && token == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	req = req.Bearer(token).Timeout(c.timeout).WithContext(ctx)
	if id := reqid.FromCtx(ctx); id != "" {
		req = req.Header(reqid.Header, id)
	}

	resp, err := req.Send()
	if err != nil {
		metrics.ObserveBackend(op, "network", start)
		log.Warn("storefront: request failed", "error", err)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.ObserveBackend(op, "unauthorized", start)
		log.Warn("storefront: credential rejected, clearing session")
		c.teardown(sess)
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	env := &envelope{}
	if !resp.Empty() {
		if err := resp.JSON(env); err != nil && resp.OK() {
			metrics.ObserveBackend(op, "api", start)
			return nil, &APIError{Op: op, Status: resp.StatusCode, Message: "malformed response"}
		}
	}

	if !resp.OK() || (env.Success != nil && !*env.Success) {
		metrics.ObserveBackend(op, "api", start)
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		log.Info("storefront: request rejected", "status", resp.StatusCode, "message", msg)
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	metrics.ObserveBackend(op, "ok", start)
	log.Debug("storefront: ok", "status", resp.StatusCode, "duration", time.Since(start).String())
	return env, nil
}

func (c *Client) teardown(sess Session) {
	if sess == nil {
		return
	}
	if sess.Clear() {
		metrics.SessionTeardowns.Inc()
	}
}

// expired reports whether token is a JWT whose exp has passed. Tokens that
// do not parse as JWTs are opaque and never considered expired here.
func (c *Client) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(c.now())
}

// Ping reports whether the backend answers HTTP at all. Any status counts;
// only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	start := time.Now()
	_, err := khttp.Get(c.url("/")).Timeout(c.timeout).WithContext(ctx).Send()
	if err != nil {
		metrics.ObserveBackend("ping", "network", start)
		return fmt.Errorf("ping: %w: %w", ErrNetwork, err)
	}
	metrics.ObserveBackend("ping", "ok", start)
	return nil
}

// IsUnauthorized is shorthand for errors.Is(err, ErrUnauthorized).
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
