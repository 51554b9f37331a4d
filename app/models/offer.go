package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/afandal/storeadmin/pkg/collection"
)

// ProductRef points at a product from an offer. The backend populates
// references as {_id, name} objects but accepts bare ids on write; both
// decode here.
type ProductRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *ProductRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	type plain ProductRef
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("product reference: %w", err)
	}
	*r = ProductRef(p)
	return nil
}

// Offer is a time-limited percentage discount.
type Offer struct {
	ID                 string          `json:"_id"`
	Title              string          `json:"title"`
	DiscountPercent    decimal.Decimal `json:"discountPercent"`
	ValidTill          time.Time       `json:"validTill"`
	ApplyToAllProducts bool            `json:"applyToAllProducts"`
	ApplicableProducts []ProductRef    `json:"applicableProducts"`
}

// Active reports whether the offer is still valid at now. Expiry is strict:
// an offer whose validTill equals now is inactive.
func (o Offer) Active(now time.Time) bool {
	return o.ValidTill.After(now)
}

// AppliesTo reports whether the offer targets productID.
func (o Offer) AppliesTo(productID string) bool {
	return o.ApplyToAllProducts || collection.Any(o.ApplicableProducts, func(ref ProductRef) bool {
		return ref.ID == productID
	})
}

// NewOffer is the input for creating an offer. ValidTill accepts a date
// (2006-01-02) or an RFC 3339 timestamp.
type NewOffer struct {
	Title              string   `json:"title"              validate:"required,max=120"`
	DiscountPercent    int      `json:"discountPercent"    validate:"gte=1,lte=100"`
	ValidTill          string   `json:"validTill"          validate:"required,date"`
	ApplyToAllProducts bool     `json:"applyToAllProducts"`
	ApplicableProducts []string `json:"applicableProducts" validate:"each_objectid"`
}
