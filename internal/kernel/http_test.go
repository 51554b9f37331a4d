package kernel_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afandal/storeadmin/app/routes"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/app/storefront"
	"github.com/afandal/storeadmin/internal/kernel"
	"github.com/afandal/storeadmin/pkg/middleware"
	"github.com/afandal/storeadmin/pkg/testkit"
	"github.com/afandal/storeadmin/pkg/ws"
)

func newKernel(t *testing.T, limiter *middleware.Limiter) *kernel.HTTPKernel {
	t.Helper()
	return newKernelWithHub(t, limiter, ws.NewHub())
}

func newKernelWithHub(t *testing.T, limiter *middleware.Limiter, hub *ws.Hub) *kernel.HTTPKernel {
	t.Helper()
	client := storefront.New("http://backend.test", 5*time.Second)
	audit := services.NewAuditService(nil, nil)
	k, err := kernel.NewHTTPKernel(routes.Services{
		Auth:    services.NewAuthService(client, audit),
		Catalog: services.NewCatalogService(client, audit),
		Offers:  services.NewOfferService(client, audit),
		Orders:  services.NewOrderService(client, audit),
		Hub:     hub,
	}, limiter)
	require.NoError(t, err)
	return k
}

func TestScenarios(t *testing.T) {
	testkit.RunDir(t, newKernel(t, nil).Handler(), "testdata")
}

func TestRouteTable(t *testing.T) {
	names := map[string]string{}
	for _, r := range newKernel(t, nil).Routes() {
		names[r.Name] = r.Method + " " + r.Path
	}

	assert.Equal(t, "POST /api/admin/login", names["auth.login"])
	assert.Equal(t, "POST /api/admin/otp/send", names["auth.otp.send"])
	assert.Equal(t, "POST /api/admin/otp/verify", names["auth.otp.verify"])
	assert.Equal(t, "POST /api/admin/logout", names["auth.logout"])
	assert.Equal(t, "GET /api/admin/products", names["products.index"])
	assert.Equal(t, "POST /api/admin/products", names["products.store"])
	assert.Equal(t, "DELETE /api/admin/products/{id}", names["products.destroy"])
	assert.Equal(t, "GET /api/admin/offers", names["offers.index"])
	assert.Equal(t, "POST /api/admin/offers", names["offers.store"])
	assert.Equal(t, "DELETE /api/admin/offers/{id}", names["offers.destroy"])
	assert.Equal(t, "GET /api/admin/orders", names["orders.index"])
	assert.Equal(t, "POST /api/admin/orders/{id}/status", names["orders.status"])
	assert.Equal(t, "GET /api/admin/order-statuses", names["orders.statuses"])
	assert.Equal(t, "POST /api/admin/graphql", names["graphql"])
	assert.Equal(t, "GET /api/admin/ws/orders", names["ws.orders"])
	assert.Equal(t, "GET /api/admin/sse/orders", names["sse.orders"])
	assert.Equal(t, "GET /metrics", names["metrics"])
}

func TestRateLimiterRejectsWith429(t *testing.T) {
	h := newKernel(t, middleware.NewLimiter(1, time.Minute)).Handler()

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	rec := httptest.NewRecorder()
	newKernel(t, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Not found"}`, rec.Body.String())
}

func TestFeedRequiresCredential(t *testing.T) {
	for _, path := range []string{"/api/admin/ws/orders", "/api/admin/sse/orders"} {
		rec := httptest.NewRecorder()
		newKernel(t, nil).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestOrderFeedUpgradesThroughMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(newKernelWithHub(t, nil, hub).Handler())
	defer srv.Close()

	header := http.Header{"Authorization": {"Bearer tok"}}
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/admin/ws/orders", header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Publish(map[string]string{"orderId": "o1", "status": "packing"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderId":"o1","status":"packing"}`, string(msg))
}
