// Package session keeps the admin's storefront credential server-side,
// keyed by a random cookie id and stored through pkg/cache.
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
//	sess := session.FromCtx(r)
//	sess.SetToken(token)
//	_ = sess.Save(w)
//
// *Session satisfies storefront.Session: Clear removes the credential and
// persists the removal immediately, so a rejected credential is gone even
// if the response never calls Save.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/afandal/storeadmin/config"
	"github.com/afandal/storeadmin/pkg/cache"
	"github.com/afandal/storeadmin/pkg/logger"
)

const credentialKey = "credential"

type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions reads SESSION_TTL; cookies are Secure in production.
func DefaultOptions() Options {
	env := config.AppEnv()
	return Options{
		CookieName: "storeadmin_session",
		TTL:        config.SessionTTL(),
		HTTPOnly:   true,
		Secure:     env == "production" || env == "prod",
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

// Session is the per-request handle on one stored session.
type Session struct {
	mu      sync.Mutex
	id      string
	data    map[string]string
	opts    Options
	changed bool
	ctx     context.Context
	onClear []func()
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func storeKey(id string) string { return "storeadmin:session:" + id }

func (s *Session) ID() string { return s.id }

func (s *Session) Set(key, value string) {
	s.mu.Lock()
	s.data[key] = value
	s.changed = true
	s.mu.Unlock()
}

func (s *Session) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Token is the stored storefront credential, or "".
func (s *Session) Token() string {
	v, _ := s.Get(credentialKey)
	return v
}

func (s *Session) SetToken(token string) {
	s.Set(credentialKey, token)
}

// OnClear registers fn to run when a held credential is cleared.
func (s *Session) OnClear(fn func()) {
	s.mu.Lock()
	s.onClear = append(s.onClear, fn)
	s.mu.Unlock()
}

// Clear drops the credential and deletes the stored session. Only the
// first call that finds a credential has any effect.
func (s *Session) Clear() bool {
	s.mu.Lock()
	if _, ok := s.data[credentialKey]; !ok {
		s.mu.Unlock()
		return false
	}
	s.data = map[string]string{}
	s.changed = false
	hooks := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	if err := cache.Del(s.ctx, storeKey(s.id)); err != nil {
		logger.WithCtx(s.ctx).Warn("session: delete failed", "error", err)
	}
	for _, fn := range hooks {
		fn()
	}
	return true
}

// Save persists changed data and refreshes the cookie.
func (s *Session) Save(w http.ResponseWriter) error {
	s.mu.Lock()
	if !s.changed {
		s.mu.Unlock()
		return nil
	}
	data := make(map[string]string, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}
	s.changed = false
	s.mu.Unlock()

	if err := cache.Set(s.ctx, storeKey(s.id), data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})
	return nil
}

// Expire clears the session and tells the browser to drop the cookie.
func (s *Session) Expire(w http.ResponseWriter) {
	s.Clear()
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     s.opts.Path,
		MaxAge:   -1,
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})
}

// Middleware loads the session named by the cookie, or starts a new one.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts, ctx: r.Context(), data: map[string]string{}}

			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				sess.id = cookie.Value
				var data map[string]string
				if cache.Get(r.Context(), storeKey(sess.id), &data) && data != nil {
					sess.data = data
				}
			} else {
				id, err := newID()
				if err != nil {
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				sess.id = id
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

// FromCtx returns the request's session, or a fresh unsaved one.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	id, _ := newID()
	return &Session{id: id, data: map[string]string{}, opts: DefaultOptions(), ctx: r.Context()}
}
