package sales

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("sale not found")

// API is the read side of the sales endpoints.
type API interface {
	ListSales(ctx context.Context) ([]Sale, error)
	GetSale(ctx context.Context, id int64) (Sale, error)
}

// History serves the history, ticket and report views.
type History struct {
	api    API
	logger *zap.Logger
}

func NewHistory(api API, logger *zap.Logger) *History {
	return &History{api: api, logger: logger.With(zap.String("component", "sales"))}
}

// List returns every sale, newest first as the API orders them.
func (h *History) List(ctx context.Context) ([]Sale, error) {
	sales, err := h.api.ListSales(ctx)
	if err != nil {
		h.logger.Warn("list sales failed", zap.Error(err))
		return nil, err
	}
	return sales, nil
}

func (h *History) Get(ctx context.Context, id int64) (Sale, error) {
	s, err := h.api.GetSale(ctx, id)
	if err != nil {
		h.logger.Warn("get sale failed", zap.Int64("sale_id", id), zap.Error(err))
		return Sale{}, err
	}
	return s, nil
}

func (h *History) Daily(ctx context.Context, month string) ([]PeriodTotals, error) {
	sales, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	return Daily(sales, month), nil
}

func (h *History) Monthly(ctx context.Context, year string) ([]PeriodTotals, error) {
	sales, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	return Monthly(sales, year), nil
}
