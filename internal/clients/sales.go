package clients

import (
	"context"
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/sales"
)

type SalesClient struct{ c *Client }

func NewSalesClient(c *Client) *SalesClient { return &SalesClient{c: c} }

// CreateSale posts the sale once. The API prices and stocks it and answers
// with the sale id and its own total.
func (sc *SalesClient) CreateSale(ctx context.Context, req sales.Request) (sales.Confirmation, error) {
	var out sales.Confirmation
	if err := sc.c.sendJSON(ctx, http.MethodPost, "/sales", req, &out); err != nil {
		return sales.Confirmation{}, err
	}
	return out, nil
}

func (sc *SalesClient) ListSales(ctx context.Context) ([]sales.Sale, error) {
	var out []sales.Sale
	if err := sc.c.getJSON(ctx, "/sales", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (sc *SalesClient) GetSale(ctx context.Context, id int64) (sales.Sale, error) {
	var out sales.Sale
	if err := sc.c.getJSON(ctx, "/sales/"+strconv.FormatInt(id, 10), "", &out); err != nil {
		return sales.Sale{}, notFound(err, sales.ErrNotFound)
	}
	return out, nil
}
