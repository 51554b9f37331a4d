package session

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afandal/storeadmin/pkg/cache"
)

func serve(h http.Handler, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTokenPersistsAcrossRequests(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	mw := Middleware(DefaultOptions())

	login := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromCtx(r)
		s.SetToken("tok")
		require.NoError(t, s.Save(w))
	}))
	rec := serve(login, nil)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	var seen string
	read := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromCtx(r).Token()
	}))
	serve(read, cookies[0])
	assert.Equal(t, "tok", seen)
}

func TestClearDeletesStoredSessionOnce(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	mw := Middleware(DefaultOptions())

	rec := serve(mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromCtx(r)
		s.SetToken("tok")
		require.NoError(t, s.Save(w))
	})), nil)
	cookie := rec.Result().Cookies()[0]

	var hooks atomic.Int32
	serve(mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromCtx(r)
		s.OnClear(func() { hooks.Add(1) })
		assert.True(t, s.Clear())
		assert.False(t, s.Clear())
	})), cookie)
	assert.Equal(t, int32(1), hooks.Load())

	var seen string
	serve(mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromCtx(r).Token()
	})), cookie)
	assert.Empty(t, seen)
}

func TestExpireDropsCookie(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	rec := serve(Middleware(DefaultOptions())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromCtx(r).Expire(w)
	})), nil)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
