package storefront

import (
	"context"
	"net/url"
	"time"

	"github.com/afandal/storeadmin/app/models"
	khttp "github.com/afandal/storeadmin/pkg/http"
)

// OfferPayload is the body of an add-offer call.
type OfferPayload struct {
	Title              string    `json:"title"`
	DiscountPercent    int       `json:"discountPercent"`
	ValidTill          time.Time `json:"validTill"`
	ApplyToAllProducts bool      `json:"applyToAllProducts"`
	ApplicableProducts []string  `json:"applicableProducts"`
}

func (c *Client) ListOffers(ctx context.Context, sess Session) ([]models.Offer, error) {
	env, err := c.do(ctx, sess, "offers.list", authRequired, khttp.Get(c.url("/api/offer/all")))
	if err != nil {
		return nil, err
	}
	if env.Offers == nil {
		return []models.Offer{}, nil
	}
	return env.Offers, nil
}

func (c *Client) AddOffer(ctx context.Context, sess Session, p OfferPayload) (string, error) {
	if p.ApplicableProducts == nil || p.ApplyToAllProducts {
		p.ApplicableProducts = []string{}
	}
	p.ValidTill = p.ValidTill.UTC()

	env, err := c.do(ctx, sess, "offers.add", authRequired,
		khttp.Post(c.url("/api/offer/add")).Body(p))
	if err != nil {
		return "", err
	}
	return messageOr(env, "Offer created"), nil
}

func (c *Client) DeleteOffer(ctx context.Context, sess Session, id string) (string, error) {
	env, err := c.do(ctx, sess, "offers.delete", authRequired,
		khttp.Delete(c.url("/api/offer/delete/"+url.PathEscape(id))))
	if err != nil {
		return "", err
	}
	return messageOr(env, "Offer deleted"), nil
}
