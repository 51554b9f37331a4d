package routes

import (
	"fmt"

	"github.com/afandal/storeadmin/app/controllers"
	"github.com/afandal/storeadmin/app/graph"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/pkg/ctx"
	"github.com/afandal/storeadmin/pkg/router"
	"github.com/afandal/storeadmin/pkg/ws"
)

// Services are the dependencies the admin routes dispatch to. Nil services
// are allowed when only the route table is needed.
type Services struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Offers  *services.OfferService
	Orders  *services.OrderService
	Hub     *ws.Hub
}

func RegisterAPI(r *router.Router, s Services) error {
	schema, err := graph.NewSchema(graph.Resolvers{Catalog: s.Catalog, Offers: s.Offers, Orders: s.Orders})
	if err != nil {
		return fmt.Errorf("routes: graphql schema: %w", err)
	}

	auth := controllers.NewAuthController(s.Auth)
	products := controllers.NewProductController(s.Catalog)
	offers := controllers.NewOfferController(s.Offers)
	orders := controllers.NewOrderController(s.Orders)
	gql := controllers.NewGraphQLController(schema)
	feed := controllers.NewFeedController(s.Hub)

	admin := r.Group("/api/admin")
	admin.Post("/login", "auth.login", ctx.Wrap(auth.Login))
	admin.Post("/otp/send", "auth.otp.send", ctx.Wrap(auth.SendOTP))
	admin.Post("/otp/verify", "auth.otp.verify", ctx.Wrap(auth.VerifyOTP))
	admin.Post("/logout", "auth.logout", ctx.Wrap(auth.Logout))

	admin.Get("/products", "products.index", ctx.Wrap(products.Index))
	admin.Post("/products", "products.store", ctx.Wrap(products.Store))
	admin.Delete("/products/{id}", "products.destroy", ctx.Wrap(products.Destroy))

	admin.Get("/offers", "offers.index", ctx.Wrap(offers.Index))
	admin.Post("/offers", "offers.store", ctx.Wrap(offers.Store))
	admin.Delete("/offers/{id}", "offers.destroy", ctx.Wrap(offers.Destroy))

	admin.Get("/orders", "orders.index", ctx.Wrap(orders.Index))
	admin.Post("/orders/{id}/status", "orders.status", ctx.Wrap(orders.UpdateStatus))
	admin.Get("/order-statuses", "orders.statuses", ctx.Wrap(orders.Statuses))

	admin.Post("/graphql", "graphql", ctx.Wrap(gql.Query))
	admin.Get("/ws/orders", "ws.orders", ctx.Wrap(feed.Orders))
	admin.Get("/sse/orders", "sse.orders", ctx.Wrap(feed.OrderEvents))
	return nil
}
