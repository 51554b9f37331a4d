package http

import (
	"io"
	gohttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendJSONWithBearer(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"id":"p1"}`, string(b))
		w.WriteHeader(gohttp.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	resp, err := Post(srv.URL).Bearer("tok").Header("X-Request-ID", "req-1").Body(map[string]string{"id": "p1"}).Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())

	var out struct{ Success bool }
	require.NoError(t, resp.JSON(&out))
	assert.True(t, out.Success)
}

func TestSendMultipart(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Shirt", r.FormValue("name"))
		f, hdr, err := r.FormFile("image1")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "front.png", hdr.Filename)
		assert.Equal(t, "PNG", string(b))
	}))
	defer srv.Close()

	resp, err := Post(srv.URL).
		Field("name", "Shirt").
		Attach(File{Field: "image1", Filename: "front.png", Content: strings.NewReader("PNG")}).
		Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.True(t, resp.Empty())
}

func TestEmptyBearerIsIgnored(t *testing.T) {
	r := Get("http://x").Bearer("")
	assert.Empty(t, r.header.Get("Authorization"))
}

func TestErrorStatusIsAResponse(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		w.WriteHeader(gohttp.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	}))
	defer srv.Close()

	resp, err := Delete(srv.URL).Send()
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "boom", string(resp.Raw))
}

func TestSendTransportError(t *testing.T) {
	_, err := Get("http://127.0.0.1:1/unreachable").Send()
	assert.Error(t, err)
}
