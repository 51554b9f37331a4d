package graph_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afandal/storeadmin/app/graph"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/app/storefront"
	kgraphql "github.com/afandal/storeadmin/pkg/graphql"
	khttp "github.com/afandal/storeadmin/pkg/http"
	"github.com/afandal/storeadmin/pkg/testkit"
)

func mockBackend(t *testing.T, steps ...testkit.MockStep) *testkit.MockTransport {
	t.Helper()
	mt := testkit.NewMockTransport(&testkit.Scenario{Name: t.Name(), IsMockRequired: true, BackendMocks: steps})
	khttp.DefaultClient.Transport = mt
	t.Cleanup(khttp.ResetTransport)
	return mt
}

func step(method, path, body string) testkit.MockStep {
	return testkit.MockStep{Method: method, MatchURL: path, ReturnData: testkit.MockReturnData{Body: json.RawMessage(body)}}
}

func newSchemaCtx(t *testing.T) (context.Context, graph.Resolvers) {
	t.Helper()
	client := storefront.New("http://backend.test", 5*time.Second)
	audit := services.NewAuditService(nil, nil)
	r := graph.Resolvers{
		Catalog: services.NewCatalogService(client, audit),
		Offers:  services.NewOfferService(client, audit),
		Orders:  services.NewOrderService(client, audit),
	}
	return graph.WithSession(context.Background(), storefront.NewMemorySession("tok")), r
}

func run(t *testing.T, r graph.Resolvers, ctx context.Context, query string) map[string]interface{} {
	t.Helper()
	schema, err := graph.NewSchema(r)
	require.NoError(t, err)

	res := kgraphql.Execute(ctx, schema, kgraphql.Request{Query: query})
	require.False(t, res.HasErrors(), "%v", res.Errors)

	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestBoardQuery(t *testing.T) {
	mockBackend(t,
		step("GET", "/api/offer/all", `{"success":true,"offers":[
			{"_id":"o1","title":"All","discountPercent":10,"validTill":"2099-01-01T00:00:00Z","applyToAllProducts":true}
		]}`),
		step("GET", "/api/product/list", `{"success":true,"products":[
			{"_id":"p1","name":"Shirt","price":19.99,"stock":1,"sizes":["M"]}
		]}`),
	)
	ctx, r := newSchemaCtx(t)

	data := run(t, r, ctx, `{ board { activeOffers offers { id active } products { id price finalPrice discounted } } }`)

	board := data["board"].(map[string]interface{})
	assert.EqualValues(t, 1, board["activeOffers"])
	products := board["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, map[string]interface{}{
		"id": "p1", "price": "19.99", "finalPrice": "17.99", "discounted": true,
	}, products[0])
	assert.Equal(t, []interface{}{map[string]interface{}{"id": "o1", "active": true}}, board["offers"])
}

func TestOrdersQueryFiltersByStatusLabel(t *testing.T) {
	mockBackend(t, step("POST", "/api/order/list", `{"success":true,"orders":[
		{"_id":"a","status":"packing","amount":10,"address":{"firstName":"Ada"}},
		{"_id":"b","status":"delivered","amount":20}
	]}`))
	ctx, r := newSchemaCtx(t)

	data := run(t, r, ctx, `{ orders(status: "Packing") { id statusLabel indicator customerName amount } }`)

	assert.Equal(t, []interface{}{map[string]interface{}{
		"id": "a", "statusLabel": "Packing", "indicator": "orange", "customerName": "Ada", "amount": "10.00",
	}}, data["orders"])
}

func TestOrderStatusesNeedNoBackend(t *testing.T) {
	mt := mockBackend(t)
	ctx, r := newSchemaCtx(t)

	data := run(t, r, ctx, `{ orderStatuses { label code } }`)

	statuses := data["orderStatuses"].([]interface{})
	require.Len(t, statuses, 5)
	assert.Equal(t, map[string]interface{}{"label": "Order Placed", "code": "pending"}, statuses[0])
	assert.Empty(t, mt.Calls())
}

func TestUnauthorizedSurfacesAsError(t *testing.T) {
	mockBackend(t, testkit.MockStep{
		Method: "POST", MatchURL: "/api/order/list",
		ReturnData: testkit.MockReturnData{StatusCode: 401, Body: json.RawMessage(`{"success":false}`)},
	})
	_, r := newSchemaCtx(t)
	sess := storefront.NewMemorySession("tok")
	schema, err := graph.NewSchema(r)
	require.NoError(t, err)

	res := kgraphql.Execute(graph.WithSession(context.Background(), sess), schema, kgraphql.Request{Query: `{ orders { id } }`})

	assert.True(t, res.HasErrors())
	assert.Empty(t, sess.Token())
}
