package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afandal/storeadmin/app/models"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func product(id, price string) models.Product {
	return models.Product{ID: id, Name: id, Price: decimal.RequireFromString(price)}
}

func offer(percent int64, till time.Time, all bool, ids ...string) models.Offer {
	o := models.Offer{
		DiscountPercent:    decimal.NewFromInt(percent),
		ValidTill:          till,
		ApplyToAllProducts: all,
	}
	for _, id := range ids {
		o.ApplicableProducts = append(o.ApplicableProducts, models.ProductRef{ID: id})
	}
	return o
}

func TestOffersCompound(t *testing.T) {
	future := now.Add(24 * time.Hour)
	out := ComputeEffectivePrices(
		[]models.Product{product("A", "100")},
		[]models.Offer{offer(10, future, true), offer(20, future, false, "A")},
		now,
	)

	require.Len(t, out, 1)
	assert.Equal(t, "72", out[0].FinalPrice.String())
	assert.True(t, out[0].Discounted())
}

func TestExpiredOfferIgnored(t *testing.T) {
	out := ComputeEffectivePrices(
		[]models.Product{product("A", "100")},
		[]models.Offer{offer(50, now.Add(-time.Hour), true)},
		now,
	)
	assert.Equal(t, "100", out[0].FinalPrice.String())
	assert.False(t, out[0].Discounted())
}

func TestOfferExpiringExactlyNowIsInactive(t *testing.T) {
	out := ComputeEffectivePrices(
		[]models.Product{product("A", "10")},
		[]models.Offer{offer(50, now, true)},
		now,
	)
	assert.Equal(t, "10", out[0].FinalPrice.String())
}

func TestUnmatchedProductKeepsBasePrice(t *testing.T) {
	future := now.Add(time.Hour)
	out := ComputeEffectivePrices(
		[]models.Product{product("A", "40"), product("B", "40")},
		[]models.Offer{offer(25, future, false, "A")},
		now,
	)
	assert.Equal(t, "30", out[0].FinalPrice.String())
	assert.Equal(t, "40", out[1].FinalPrice.String())
}

func TestFullDiscountIsFree(t *testing.T) {
	out := ComputeEffectivePrices(
		[]models.Product{product("A", "59.99")},
		[]models.Offer{offer(100, now.Add(time.Hour), true)},
		now,
	)
	assert.True(t, out[0].FinalPrice.IsZero())
}

func TestRoundsOnceAtTheEnd(t *testing.T) {
	future := now.Add(time.Hour)
	// 9.99 * 0.85 * 0.85 = 7.217775 → 7.22
	out := ComputeEffectivePrices(
		[]models.Product{product("A", "9.99")},
		[]models.Offer{offer(15, future, true), offer(15, future, true)},
		now,
	)
	assert.Equal(t, "7.22", out[0].FinalPrice.StringFixed(2))
}

func TestRoundsHalfUp(t *testing.T) {
	// 0.05 * 0.9 = 0.045 → 0.05
	out := ComputeEffectivePrices(
		[]models.Product{product("A", "0.05")},
		[]models.Offer{offer(10, now.Add(time.Hour), true)},
		now,
	)
	assert.Equal(t, "0.05", out[0].FinalPrice.StringFixed(2))
}

func TestOutOfRangePercentIsClamped(t *testing.T) {
	bad := offer(0, now.Add(time.Hour), true)
	bad.DiscountPercent = decimal.NewFromInt(150)
	neg := offer(0, now.Add(time.Hour), true)
	neg.DiscountPercent = decimal.NewFromInt(-20)

	assert.True(t, EffectivePrice(product("A", "10"), []models.Offer{bad}).IsZero())
	assert.Equal(t, "10", EffectivePrice(product("A", "10"), []models.Offer{neg}).String())
}

func TestInputsNotMutated(t *testing.T) {
	products := []models.Product{product("A", "100")}
	offers := []models.Offer{offer(10, now.Add(time.Hour), true), offer(10, now.Add(-time.Hour), true)}

	_ = ComputeEffectivePrices(products, offers, now)

	assert.Equal(t, "100", products[0].Price.String())
	assert.Len(t, offers, 2)
}

func TestActiveOffersKeepsOrder(t *testing.T) {
	a := offer(10, now.Add(time.Hour), true)
	a.ID = "a"
	b := offer(10, now.Add(-time.Hour), true)
	b.ID = "b"
	c := offer(10, now.Add(2*time.Hour), true)
	c.ID = "c"

	active := ActiveOffers([]models.Offer{a, b, c}, now)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "c", active[1].ID)
}
