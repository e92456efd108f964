package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Writer is the product write side of the remote API.
type Writer interface {
	CreateProduct(ctx context.Context, in Input) (Product, error)
	UpdateProduct(ctx context.Context, id int64, in Input) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// Inventory manages products and keeps the Source snapshot in step with
// every successful write.
type Inventory struct {
	api    Writer
	source *Source
	logger *zap.Logger
}

func NewInventory(api Writer, source *Source, logger *zap.Logger) *Inventory {
	return &Inventory{
		api:    api,
		source: source,
		logger: logger.With(zap.String("component", "inventory")),
	}
}

func (i *Inventory) Create(ctx context.Context, in Input) (Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	p, err := i.api.CreateProduct(ctx, in)
	if err != nil {
		return Product{}, fmt.Errorf("create product %s: %w", in.SKU, err)
	}
	i.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("sku", p.SKU))
	i.reload(ctx)
	return p, nil
}

func (i *Inventory) Update(ctx context.Context, id int64, in Input) (Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	p, err := i.api.UpdateProduct(ctx, id, in)
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	i.logger.Info("product updated", zap.Int64("product_id", id))
	i.reload(ctx)
	return p, nil
}

func (i *Inventory) Delete(ctx context.Context, id int64) error {
	if err := i.api.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	i.logger.Info("product deleted", zap.Int64("product_id", id))
	i.reload(ctx)
	return nil
}

// The write already succeeded; a failed reload only leaves the snapshot stale.
func (i *Inventory) reload(ctx context.Context) {
	if _, err := i.source.Load(ctx); err != nil {
		i.logger.Warn("reload after write failed", zap.Error(err))
	}
}
