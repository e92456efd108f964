package catalog

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the API's product record. The terminal only ever holds a
// read-only snapshot of it.
type Product struct {
	ID       int64           `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
	Stock    int             `json:"stock"`
	Category *string         `json:"category"`
}

// CategoryName returns the category, or "" when the product has none.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}

// Input is the body of product create/update calls (a Product minus id).
type Input struct {
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
	Stock    int             `json:"stock"`
	Category *string         `json:"category"`
}

var (
	ErrSKURequired  = errors.New("sku is required")
	ErrNameRequired = errors.New("name is required")
	ErrInvalidPrice = errors.New("price must not be negative")
	ErrInvalidCost  = errors.New("cost must not be negative")
	ErrInvalidStock = errors.New("stock must not be negative")
	ErrNotFound     = errors.New("product not found")
)

// Normalize trims text fields and turns a blank category into nil.
func (in Input) Normalize() Input {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.Category != nil {
		c := strings.TrimSpace(*in.Category)
		if c == "" {
			in.Category = nil
		} else {
			in.Category = &c
		}
	}
	return in
}

func (in Input) Validate() error {
	switch {
	case in.SKU == "":
		return ErrSKURequired
	case in.Name == "":
		return ErrNameRequired
	case in.Price.IsNegative():
		return ErrInvalidPrice
	case in.Cost.IsNegative():
		return ErrInvalidCost
	case in.Stock < 0:
		return ErrInvalidStock
	}
	return nil
}
