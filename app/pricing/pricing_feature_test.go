package pricing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/afandal/storeadmin/app/models"
)

type pricingFeature struct {
	now      time.Time
	products []models.Product
	offers   []models.Offer
	priced   map[string]PricedProduct
}

func (f *pricingFeature) reset() {
	f.now = time.Now().UTC()
	f.products = nil
	f.offers = nil
	f.priced = nil
}

func (f *pricingFeature) theTimeIs(ts string) error {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return err
	}
	f.now = t
	return nil
}

func (f *pricingFeature) aProductPriced(id, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	f.products = append(f.products, models.Product{ID: id, Name: id, Price: p})
	return nil
}

func (f *pricingFeature) addOffer(percent int, till time.Time, all bool, ids ...string) {
	o := models.Offer{
		ID:                 fmt.Sprintf("offer-%d", len(f.offers)+1),
		DiscountPercent:    decimal.NewFromInt(int64(percent)),
		ValidTill:          till,
		ApplyToAllProducts: all,
	}
	for _, id := range ids {
		o.ApplicableProducts = append(o.ApplicableProducts, models.ProductRef{ID: id})
	}
	f.offers = append(f.offers, o)
}

func (f *pricingFeature) storeWideOfferValidFor(percent, hours int) error {
	f.addOffer(percent, f.now.Add(time.Duration(hours)*time.Hour), true)
	return nil
}

func (f *pricingFeature) storeWideOfferExpired(percent, hours int) error {
	f.addOffer(percent, f.now.Add(-time.Duration(hours)*time.Hour), true)
	return nil
}

func (f *pricingFeature) targetedOfferValidFor(percent int, id string, hours int) error {
	f.addOffer(percent, f.now.Add(time.Duration(hours)*time.Hour), false, id)
	return nil
}

func (f *pricingFeature) pricesAreComputed() error {
	f.priced = map[string]PricedProduct{}
	for _, p := range ComputeEffectivePrices(f.products, f.offers, f.now) {
		f.priced[p.ID] = p
	}
	return nil
}

func (f *pricingFeature) productCosts(id, want string) error {
	p, ok := f.priced[id]
	if !ok {
		return fmt.Errorf("product %q was not priced", id)
	}
	if got := p.FinalPrice.StringFixed(2); got != want {
		return fmt.Errorf("product %q: expected %s, got %s", id, want, got)
	}
	return nil
}

func (f *pricingFeature) productIsDiscounted(id, not string) error {
	p, ok := f.priced[id]
	if !ok {
		return fmt.Errorf("product %q was not priced", id)
	}
	want := not == ""
	if p.Discounted() != want {
		return fmt.Errorf("product %q: discounted=%v, expected %v", id, p.Discounted(), want)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	f := &pricingFeature{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})

	ctx.Step(`^the time is "([^"]*)"$`, f.theTimeIs)
	ctx.Step(`^a product "([^"]*)" priced (\d+\.\d{2})$`, f.aProductPriced)
	ctx.Step(`^an offer of (\d+)% on all products valid for (\d+) hours$`, f.storeWideOfferValidFor)
	ctx.Step(`^an offer of (\d+)% on all products that expired (\d+) hours ago$`, f.storeWideOfferExpired)
	ctx.Step(`^an offer of (\d+)% on "([^"]*)" valid for (\d+) hours$`, f.targetedOfferValidFor)
	ctx.Step(`^effective prices are computed$`, f.pricesAreComputed)
	ctx.Step(`^"([^"]*)" costs (\d+\.\d{2})$`, f.productCosts)
	ctx.Step(`^"([^"]*)" is (not )?shown as discounted$`, f.productIsDiscounted)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
