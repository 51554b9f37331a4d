package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/app/pricing"
	"github.com/afandal/storeadmin/app/storefront"
	"github.com/afandal/storeadmin/pkg/validate"
)

type OfferService struct {
	client *storefront.Client
	audit  Auditor
	now    func() time.Time
}

func NewOfferService(client *storefront.Client, audit Auditor) *OfferService {
	return &OfferService{client: client, audit: audit, now: time.Now}
}

// WithClock replaces time.Now.
func (s *OfferService) WithClock(now func() time.Time) *OfferService {
	s.now = now
	return s
}

// Board is the offers page: every offer plus the catalog priced against
// the active ones.
type Board struct {
	Offers       []models.Offer          `json:"offers"`
	ActiveOffers int                     `json:"activeOffers"`
	Products     []pricing.PricedProduct `json:"products"`
	PricedAt     time.Time               `json:"pricedAt"`
}

func (s *OfferService) List(ctx context.Context, sess storefront.Session) ([]models.Offer, error) {
	return s.client.ListOffers(ctx, sess)
}

// Board loads offers and products concurrently and prices the catalog.
// Either fetch failing fails the whole board.
func (s *OfferService) Board(ctx context.Context, sess storefront.Session) (*Board, error) {
	var (
		offers   []models.Offer
		products []models.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offers, err = s.client.ListOffers(gctx, sess)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.client.ListProducts(gctx, sess)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("offers board: %w", err)
	}

	now := s.now()
	return &Board{
		Offers:       offers,
		ActiveOffers: len(pricing.ActiveOffers(offers, now)),
		Products:     pricing.ComputeEffectivePrices(products, offers, now),
		PricedAt:     now.UTC(),
	}, nil
}

// Create validates and submits a new offer. A date-only validTill means
// midnight UTC and may not be before today; a timestamp must be in the
// future.
func (s *OfferService) Create(ctx context.Context, sess storefront.Session, in models.NewOffer) (string, error) {
	if err := check(&in); err != nil {
		return "", err
	}

	validTill, err := s.validTill(in.ValidTill)
	if err != nil {
		return "", err
	}

	payload := storefront.OfferPayload{
		Title:              in.Title,
		DiscountPercent:    in.DiscountPercent,
		ValidTill:          validTill,
		ApplyToAllProducts: in.ApplyToAllProducts,
	}
	if !in.ApplyToAllProducts {
		payload.ApplicableProducts = in.ApplicableProducts
	}

	msg, err := s.client.AddOffer(ctx, sess, payload)
	record(ctx, s.audit, ActionOfferAdd, in.Title, err)
	return msg, err
}

func (s *OfferService) validTill(raw string) (time.Time, error) {
	t, err := validate.Date(raw)
	if err != nil {
		return time.Time{}, invalid("validTill", "The validTill is not a valid date.")
	}

	now := s.now().UTC()
	if len(strings.TrimSpace(raw)) == len("2006-01-02") {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if t.Before(today) {
			return time.Time{}, invalid("validTill", "The validTill must be today or later.")
		}
		return t, nil
	}
	if !t.After(now) {
		return time.Time{}, invalid("validTill", "The validTill must be in the future.")
	}
	return t, nil
}

func (s *OfferService) Delete(ctx context.Context, sess storefront.Session, id string) (string, error) {
	if !validate.ObjectID(id) {
		return "", invalid("id", "The id must be a valid id.")
	}
	msg, err := s.client.DeleteOffer(ctx, sess, id)
	record(ctx, s.audit, ActionOfferRemove, id, err)
	return msg, err
}
