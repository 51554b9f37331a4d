package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp decodes the backend's order date, sent either as epoch
// milliseconds or as an ISO 8601 string.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			t.Time = time.UnixMilli(ms).UTC()
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("order date %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}
	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("order date %s: %w", b, err)
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

type OrderItem struct {
	ProductID string          `json:"_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Zipcode   string `json:"zipcode"`
	Phone     string `json:"phone"`
}

// FullName joins first and last name.
func (a Address) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Order is a customer order as returned by the storefront backend.
// Status is the raw stored code; see package orderstatus for its meaning.
type Order struct {
	ID            string          `json:"_id"`
	UserID        string          `json:"userId,omitempty"`
	Items         []OrderItem     `json:"items"`
	Address       Address         `json:"address"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Payment       bool            `json:"payment"`
	Date          Timestamp       `json:"date"`
	Status        string          `json:"status"`
}

// PlaceholderImage is shown for orders whose first item has no image.
const PlaceholderImage = "https://i.pinimg.com/736x/4f/11/e6/4f11e623f48c7cb463ea2f60deea1e40.jpg"

// PreviewImage is the first item's image, or PlaceholderImage.
func (o Order) PreviewImage() string {
	if len(o.Items) > 0 && o.Items[0].ImageURL != "" {
		return o.Items[0].ImageURL
	}
	return PlaceholderImage
}
