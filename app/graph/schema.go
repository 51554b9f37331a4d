// Package graph is the read-only GraphQL view of the admin dashboard.
//
//	{ board { activeOffers products { name price finalPrice } } }
package graph

import (
	"context"
	"errors"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/app/orderstatus"
	"github.com/afandal/storeadmin/app/pricing"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/app/storefront"
	kgraphql "github.com/afandal/storeadmin/pkg/graphql"
)

type sessionKey struct{}

// WithSession makes sess the credential used by resolvers.
func WithSession(ctx context.Context, sess storefront.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

func sessionFrom(ctx context.Context) storefront.Session {
	if sess, ok := ctx.Value(sessionKey{}).(storefront.Session); ok {
		return sess
	}
	return storefront.NewMemorySession("")
}

// Resolvers holds the services queried by the schema.
type Resolvers struct {
	Catalog *services.CatalogService
	Offers  *services.OfferService
	Orders  *services.OrderService
}

var errNoService = errors.New("graph: service not configured")

var productRefType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductRef",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.String},
		"name": &graphql.Field{Type: graphql.String},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.String, Description: "Base price, two decimals."},
		"finalPrice":  &graphql.Field{Type: graphql.String, Description: "Price after active offers; equals price outside the board."},
		"discounted":  &graphql.Field{Type: graphql.Boolean},
		"stock":       &graphql.Field{Type: graphql.Int},
		"sizes":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		"bestseller":  &graphql.Field{Type: graphql.Boolean},
		"images":      &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

var offerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Offer",
	Fields: graphql.Fields{
		"id":                 &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"title":              &graphql.Field{Type: graphql.String},
		"discountPercent":    &graphql.Field{Type: graphql.String},
		"validTill":          &graphql.Field{Type: graphql.String},
		"active":             &graphql.Field{Type: graphql.Boolean},
		"applyToAllProducts": &graphql.Field{Type: graphql.Boolean},
		"applicableProducts": &graphql.Field{Type: graphql.NewList(productRefType)},
	},
})

var orderItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderItem",
	Fields: graphql.Fields{
		"name":     &graphql.Field{Type: graphql.String},
		"quantity": &graphql.Field{Type: graphql.Int},
		"size":     &graphql.Field{Type: graphql.String},
		"price":    &graphql.Field{Type: graphql.String},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"status":         &graphql.Field{Type: graphql.String},
		"statusLabel":    &graphql.Field{Type: graphql.String},
		"indicator":      &graphql.Field{Type: graphql.String},
		"selectedOption": &graphql.Field{Type: graphql.String},
		"amount":         &graphql.Field{Type: graphql.String},
		"paymentMethod":  &graphql.Field{Type: graphql.String},
		"payment":        &graphql.Field{Type: graphql.Boolean},
		"date":           &graphql.Field{Type: graphql.String},
		"customerName":   &graphql.Field{Type: graphql.String},
		"previewImage":   &graphql.Field{Type: graphql.String},
		"items":          &graphql.Field{Type: graphql.NewList(orderItemType)},
	},
})

var statusOptionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StatusOption",
	Fields: graphql.Fields{
		"label":     &graphql.Field{Type: graphql.String},
		"code":      &graphql.Field{Type: graphql.String},
		"indicator": &graphql.Field{Type: graphql.String},
	},
})

var boardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Board",
	Fields: graphql.Fields{
		"offers":       &graphql.Field{Type: graphql.NewList(offerType)},
		"activeOffers": &graphql.Field{Type: graphql.Int},
		"products":     &graphql.Field{Type: graphql.NewList(productType)},
		"pricedAt":     &graphql.Field{Type: graphql.String},
	},
})

// NewSchema builds the schema over r.
func NewSchema(r Resolvers) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r.Catalog == nil {
						return nil, errNoService
					}
					products, err := r.Catalog.List(p.Context, sessionFrom(p.Context))
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, len(products))
					for i, pr := range products {
						out[i] = productMap(pricing.PricedProduct{Product: pr, FinalPrice: pr.Price})
					}
					return out, nil
				},
			},
			"offers": &graphql.Field{
				Type: graphql.NewList(offerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r.Offers == nil {
						return nil, errNoService
					}
					offers, err := r.Offers.List(p.Context, sessionFrom(p.Context))
					if err != nil {
						return nil, err
					}
					return offerMaps(offers, time.Now()), nil
				},
			},
			"board": &graphql.Field{
				Type: boardType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r.Offers == nil {
						return nil, errNoService
					}
					board, err := r.Offers.Board(p.Context, sessionFrom(p.Context))
					if err != nil {
						return nil, err
					}
					products := make([]map[string]interface{}, len(board.Products))
					for i, pp := range board.Products {
						products[i] = productMap(pp)
					}
					return map[string]interface{}{
						"offers":       offerMaps(board.Offers, board.PricedAt),
						"activeOffers": board.ActiveOffers,
						"products":     products,
						"pricedAt":     board.PricedAt.UTC().Format(time.RFC3339),
					}, nil
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: "Only orders with this status label or code.",
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r.Orders == nil {
						return nil, errNoService
					}
					views, err := r.Orders.List(p.Context, sessionFrom(p.Context))
					if err != nil {
						return nil, err
					}
					want, _ := p.Args["status"].(string)
					if want != "" {
						want = orderstatus.CanonicalCodeFor(want)
					}
					out := make([]map[string]interface{}, 0, len(views))
					for _, v := range views {
						if want != "" && orderstatus.CanonicalCodeFor(v.Status) != want {
							continue
						}
						out = append(out, orderMap(v))
					}
					return out, nil
				},
			},
			"orderStatuses": &graphql.Field{
				Type: graphql.NewList(statusOptionType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					opts := orderstatus.Options()
					out := make([]map[string]interface{}, len(opts))
					for i, o := range opts {
						out[i] = map[string]interface{}{
							"label":     o.Label,
							"code":      string(o.Code),
							"indicator": string(o.Indicator),
						}
					}
					return out, nil
				},
			},
		},
	})
	return kgraphql.NewSchema(query)
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func productMap(p pricing.PricedProduct) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       money(p.Price),
		"finalPrice":  money(p.FinalPrice),
		"discounted":  p.Discounted(),
		"stock":       p.Stock,
		"sizes":       p.Sizes,
		"bestseller":  p.Bestseller,
		"images":      p.Images,
	}
}

func offerMaps(offers []models.Offer, now time.Time) []map[string]interface{} {
	out := make([]map[string]interface{}, len(offers))
	for i, o := range offers {
		refs := make([]map[string]interface{}, len(o.ApplicableProducts))
		for j, ref := range o.ApplicableProducts {
			refs[j] = map[string]interface{}{"id": ref.ID, "name": ref.Name}
		}
		out[i] = map[string]interface{}{
			"id":                 o.ID,
			"title":              o.Title,
			"discountPercent":    o.DiscountPercent.String(),
			"validTill":          o.ValidTill.UTC().Format(time.RFC3339),
			"active":             o.Active(now),
			"applyToAllProducts": o.ApplyToAllProducts,
			"applicableProducts": refs,
		}
	}
	return out
}

func orderMap(v services.OrderView) map[string]interface{} {
	items := make([]map[string]interface{}, len(v.Items))
	for i, it := range v.Items {
		items[i] = map[string]interface{}{
			"name":     it.Name,
			"quantity": it.Quantity,
			"size":     it.Size,
			"price":    money(it.Price),
		}
	}
	date := ""
	if !v.Date.IsZero() {
		date = v.Date.UTC().Format(time.RFC3339)
	}
	return map[string]interface{}{
		"id":             v.ID,
		"status":         v.Status,
		"statusLabel":    v.StatusLabel,
		"indicator":      string(v.Indicator),
		"selectedOption": v.SelectedOption,
		"amount":         money(v.Amount),
		"paymentMethod":  v.PaymentMethod,
		"payment":        v.Payment,
		"date":           date,
		"customerName":   v.CustomerName,
		"previewImage":   v.PreviewImage,
		"items":          items,
	}
}
