package controllers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afandal/storeadmin/app/controllers"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/app/storefront"
	"github.com/afandal/storeadmin/pkg/ctx"
	"github.com/afandal/storeadmin/pkg/router"
	"github.com/afandal/storeadmin/pkg/session"
)

// backend records the last request per path and answers with canned JSON.
type backend struct {
	*httptest.Server
	mu      sync.Mutex
	auth    map[string]string
	forms   map[string]*multipart.Form
	replies map[string]reply
}

type reply struct {
	status int
	body   string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{auth: map[string]string{}, forms: map[string]*multipart.Form{}, replies: map[string]reply{}}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.auth[r.URL.Path] = r.Header.Get("Authorization")
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				b.forms[r.URL.Path] = r.MultipartForm
			}
		} else {
			_, _ = io.Copy(io.Discard, r.Body)
		}
		rep, ok := b.replies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rep.status)
		_, _ = w.Write([]byte(rep.body))
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) on(path string, status int, body string) {
	b.mu.Lock()
	b.replies[path] = reply{status, body}
	b.mu.Unlock()
}

func (b *backend) authFor(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth[path]
}

func (b *backend) formFor(path string) *multipart.Form {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.forms[path]
}

func newHandler(t *testing.T, b *backend) http.Handler {
	t.Helper()
	client := storefront.New(b.URL, 5*time.Second)
	audit := services.NewAuditService(nil, nil)

	auth := controllers.NewAuthController(services.NewAuthService(client, audit))
	products := controllers.NewProductController(services.NewCatalogService(client, audit))
	orders := controllers.NewOrderController(services.NewOrderService(client, audit))

	r := router.New()
	r.Use(session.Middleware(session.DefaultOptions()))
	r.Post("/login", "login", ctx.Wrap(auth.Login))
	r.Post("/logout", "logout", ctx.Wrap(auth.Logout))
	r.Post("/products", "products.store", ctx.Wrap(products.Store))
	r.Get("/products", "products.index", ctx.Wrap(products.Index))
	r.Get("/orders", "orders.index", ctx.Wrap(orders.Index))
	r.Get("/statuses", "orders.statuses", ctx.Wrap(orders.Statuses))
	return r.Handler()
}

type upload struct {
	fields map[string]string
	files  map[string]string
}

func multipartRequest(t *testing.T, u upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range u.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range u.files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, _ = fw.Write([]byte("png-bytes-" + name))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok-1")
	return req
}

var validProduct = map[string]string{
	"name":        "Shirt",
	"description": "Cotton",
	"price":       "19.90",
	"stock":       "3",
	"sizes":       `["M","L"]`,
	"bestseller":  "true",
}

func TestProductStoreForwardsMultipart(t *testing.T) {
	b := newBackend(t)
	b.on("/api/product/add", http.StatusOK, `{"success":true,"message":"Product Added"}`)

	rec := httptest.NewRecorder()
	newHandler(t, b).ServeHTTP(rec, multipartRequest(t, upload{
		fields: validProduct,
		files:  map[string]string{"image1": "front.png", "image2": "back.png"},
	}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":201,"message":"Product Added"}`, rec.Body.String())

	form := b.formFor("/api/product/add")
	require.NotNil(t, form)
	assert.Equal(t, []string{"Shirt"}, form.Value["name"])
	assert.Equal(t, []string{"19.9"}, form.Value["price"])
	assert.Equal(t, []string{`["M","L"]`}, form.Value["sizes"])
	assert.Equal(t, []string{"true"}, form.Value["bestseller"])
	require.Len(t, form.File["image1"], 1)
	assert.Equal(t, "front.png", form.File["image1"][0].Filename)
	require.Len(t, form.File["image2"], 1)
	assert.Equal(t, "back.png", form.File["image2"][0].Filename)
	assert.Equal(t, "Bearer tok-1", b.authFor("/api/product/add"))
}

func TestProductStoreRejectsBadFields(t *testing.T) {
	b := newBackend(t)
	fields := map[string]string{"name": "Shirt", "description": "x", "price": "abc", "stock": "1.5"}

	rec := httptest.NewRecorder()
	newHandler(t, b).ServeHTTP(rec, multipartRequest(t, upload{fields: fields}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price"`)
	assert.Contains(t, rec.Body.String(), `"stock"`)
	assert.Nil(t, b.formFor("/api/product/add"))
}

func TestProductStoreAcceptsFreeProduct(t *testing.T) {
	b := newBackend(t)
	b.on("/api/product/add", http.StatusOK, `{"success":true,"message":"Product Added"}`)
	fields := map[string]string{"name": "Sticker", "description": "Gift", "price": "0", "stock": "10"}

	rec := httptest.NewRecorder()
	newHandler(t, b).ServeHTTP(rec, multipartRequest(t, upload{fields: fields}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	form := b.formFor("/api/product/add")
	require.NotNil(t, form)
	assert.Equal(t, []string{"0"}, form.Value["price"])
}

func TestProductStoreRequiresPrice(t *testing.T) {
	b := newBackend(t)
	fields := map[string]string{"name": "Sticker", "description": "Gift", "stock": "10"}

	rec := httptest.NewRecorder()
	newHandler(t, b).ServeHTTP(rec, multipartRequest(t, upload{fields: fields}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "The price field is required.")
	assert.Nil(t, b.formFor("/api/product/add"))
}

func TestProductStoreRejectsFifthImage(t *testing.T) {
	b := newBackend(t)
	files := map[string]string{}
	for i, n := range []string{"1", "2", "3", "4", "5"} {
		files["image"+n] = "img" + string(rune('a'+i)) + ".png"
	}

	rec := httptest.NewRecorder()
	newHandler(t, b).ServeHTTP(rec, multipartRequest(t, upload{fields: validProduct, files: files}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"images"`)
}

func TestProductStoreNeedsMultipart(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	newHandler(t, newBackend(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCookieSessionCarriesCredential(t *testing.T) {
	b := newBackend(t)
	b.on("/api/user/admin", http.StatusOK, `{"success":true,"token":"tok-cookie"}`)
	b.on("/api/order/list", http.StatusOK, `{"success":true,"orders":[]}`)
	h := newHandler(t, b)

	login := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@shop.test","password":"pw"}`))
	h.ServeHTTP(login, req)
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	list := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(list, req)

	assert.Equal(t, http.StatusOK, list.Code, list.Body.String())
	assert.Equal(t, "Bearer tok-cookie", b.authFor("/api/order/list"))

	logout := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(logout, req)
	require.Equal(t, http.StatusOK, logout.Code)

	again := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(again, req)
	assert.Equal(t, http.StatusUnauthorized, again.Code)
	assert.JSONEq(t, `{"status":401,"message":"Unauthorized: Please log in again"}`, again.Body.String())
}

func TestBackendServerErrorMapsTo502(t *testing.T) {
	b := newBackend(t)
	b.on("/api/product/list", http.StatusInternalServerError, `{"success":false,"message":"boom"}`)

	rec := httptest.NewRecorder()
	newHandler(t, b).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"status":502,"message":"boom"}`, rec.Body.String())
}

func TestUnreachableBackendMapsTo502(t *testing.T) {
	b := newBackend(t)
	h := newHandler(t, b)
	b.Close()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestStatusesListsOptions(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(t, newBackend(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/statuses", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `{"label":"Out for Delivery","code":"out for delivery","indicator":"blue"}`)
}
