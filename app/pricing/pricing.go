// Package pricing computes what a product costs once the active offers are
// applied. Offers compound: each matching offer multiplies the running price
// by (1 - percent/100), in the order the offers are given, and the result is
// rounded once to cents (half up) at the end.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/pkg/collection"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// PricedProduct is a product with its effective price.
type PricedProduct struct {
	models.Product
	FinalPrice decimal.Decimal `json:"finalPrice"`
}

// Discounted reports whether at least one offer lowered the price.
func (p PricedProduct) Discounted() bool {
	return p.FinalPrice.LessThan(p.Price)
}

// ActiveOffers returns the offers still valid at now, in their given order.
func ActiveOffers(offers []models.Offer, now time.Time) []models.Offer {
	return collection.Filter(offers, func(o models.Offer) bool {
		return o.Active(now)
	})
}

// EffectivePrice applies every active offer that targets product.
func EffectivePrice(product models.Product, active []models.Offer) decimal.Decimal {
	price := product.Price
	for _, o := range active {
		if !o.AppliesTo(product.ID) {
			continue
		}
		price = price.Mul(factor(o.DiscountPercent))
	}
	price = price.Round(2)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// ComputeEffectivePrices prices every product against the offers active at
// now. It is pure: inputs are not modified.
func ComputeEffectivePrices(products []models.Product, offers []models.Offer, now time.Time) []PricedProduct {
	active := ActiveOffers(offers, now)
	return collection.Map(products, func(p models.Product) PricedProduct {
		return PricedProduct{Product: p, FinalPrice: EffectivePrice(p, active)}
	})
}

// factor is 1 - percent/100 clamped to [0, 1].
func factor(percent decimal.Decimal) decimal.Decimal {
	f := one.Sub(percent.Div(hundred))
	switch {
	case f.IsNegative():
		return decimal.Zero
	case f.GreaterThan(one):
		return one
	}
	return f
}
