package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequestItem is one cart line as sent to POST /sales. No price travels
// with it; the server prices the sale.
type RequestItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type Request struct {
	Items []RequestItem `json:"items"`
}

// Confirmation is the POST /sales response.
type Confirmation struct {
	ID    int64           `json:"id"`
	Total decimal.Decimal `json:"total"`
}

type Item struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CostTotal   decimal.Decimal `json:"cost_total"`
}

// Sale is a server-confirmed receipt.
type Sale struct {
	ID        int64           `json:"id"`
	Timestamp Timestamp       `json:"timestamp"`
	Total     decimal.Decimal `json:"total"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
	Items     []Item          `json:"items"`
}

// Margin is revenue minus cost. It is computed rather than trusting the
// optional profit field.
func (s Sale) Margin() decimal.Decimal {
	return s.Total.Sub(s.Cost)
}

// Timestamp accepts RFC 3339 times and the zone-less ISO times the API
// emits; the latter are UTC.
type Timestamp struct {
	time.Time
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	for _, layout := range zonelessLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
