package clients

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
)

type ProductClient struct{ c *Client }

func NewProductClient(c *Client) *ProductClient { return &ProductClient{c: c} }

func (pc *ProductClient) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := pc.c.getJSON(ctx, "/products", "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (pc *ProductClient) CreateProduct(ctx context.Context, in catalog.Input) (catalog.Product, error) {
	var out catalog.Product
	if err := pc.c.sendJSON(ctx, http.MethodPost, "/products", in, &out); err != nil {
		return catalog.Product{}, err
	}
	return out, nil
}

func (pc *ProductClient) UpdateProduct(ctx context.Context, id int64, in catalog.Input) (catalog.Product, error) {
	var out catalog.Product
	if err := pc.c.sendJSON(ctx, http.MethodPut, productPath(id), in, &out); err != nil {
		return catalog.Product{}, notFound(err, catalog.ErrNotFound)
	}
	return out, nil
}

func (pc *ProductClient) DeleteProduct(ctx context.Context, id int64) error {
	return notFound(pc.c.sendJSON(ctx, http.MethodDelete, productPath(id), nil, nil), catalog.ErrNotFound)
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

// notFound turns a 404 into the domain's sentinel, keeping the API detail.
func notFound(err, sentinel error) error {
	if statusOf(err) == http.StatusNotFound {
		return errors.Join(sentinel, err)
	}
	return err
}
