package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Prices go to the dashboard as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Sizes a product may be offered in.
var Sizes = []string{"S", "M", "L", "XL", "XXL"}

// MaxImages is the number of image slots a product has.
const MaxImages = 4

// Product is a catalog entry as returned by the storefront backend.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Sizes       []string        `json:"sizes"`
	Bestseller  bool            `json:"bestseller"`
	Images      []string        `json:"image,omitempty"`
}

// NewProduct is the input for creating a product. Images hold references
// resolved through the storage disks ("s3:products/front.png", "./a.png").
type NewProduct struct {
	Name        string          `json:"name"        validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"       validate:"gte=0"`
	Stock       int             `json:"stock"       validate:"gte=0"`
	Sizes       []string        `json:"sizes"       validate:"each_in=S,M,L,XL,XXL"`
	Bestseller  bool            `json:"bestseller"`
	Images      []string        `json:"images"      validate:"max_items=4"`
}
