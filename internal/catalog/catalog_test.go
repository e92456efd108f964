package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strptr(s string) *string { return &s }

func sampleProducts() []Product {
	return []Product{
		{ID: 1, SKU: "COKE-355", Name: "Coca Cola 355ml", Price: decimal.RequireFromString("1.50"), Stock: 10, Category: strptr("Drinks")},
		{ID: 2, SKU: "BREAD-01", Name: "White bread", Price: decimal.RequireFromString("2.00"), Stock: 4, Category: nil},
		{ID: 3, SKU: "water-1l", Name: "Water 1L", Price: decimal.RequireFromString("0.90"), Stock: 0, Category: strptr("Drinks")},
		{ID: 4, SKU: "SOAP", Name: "Hand soap", Price: decimal.RequireFromString("3.25"), Stock: 2, Category: strptr("")},
	}
}

type fakeAPI struct {
	products  []Product
	listErr   error
	listCalls int

	created  []Input
	writeErr error
}

func (f *fakeAPI) ListProducts(ctx context.Context) ([]Product, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, in Input) (Product, error) {
	if f.writeErr != nil {
		return Product{}, f.writeErr
	}
	f.created = append(f.created, in)
	p := Product{ID: int64(len(f.products) + 1), SKU: in.SKU, Name: in.Name, Price: in.Price, Cost: in.Cost, Stock: in.Stock, Category: in.Category}
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id int64, in Input) (Product, error) {
	if f.writeErr != nil {
		return Product{}, f.writeErr
	}
	for i := range f.products {
		if f.products[i].ID == id {
			f.products[i].Stock = in.Stock
			return f.products[i], nil
		}
	}
	return Product{}, ErrNotFound
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, id int64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func TestSnapshotLookups(t *testing.T) {
	snap := NewSnapshot(sampleProducts())

	p, ok := snap.Product(2)
	require.True(t, ok)
	assert.Equal(t, "BREAD-01", p.SKU)

	_, ok = snap.Product(99)
	assert.False(t, ok)

	_, ok = snap.ExactSKU("coke-355")
	assert.False(t, ok, "scanned codes are matched exactly")

	p, ok = snap.FindSKU(" coke-355 ")
	require.True(t, ok)
	assert.Equal(t, int64(1), p.ID)
}

func TestSnapshotIsolatedFromInput(t *testing.T) {
	products := sampleProducts()
	snap := NewSnapshot(products)
	products[0].Stock = 0

	p, _ := snap.Product(1)
	assert.Equal(t, 10, p.Stock)

	out := snap.Products()
	out[0].Stock = 99
	p, _ = snap.Product(1)
	assert.Equal(t, 10, p.Stock)
}

func TestSearch(t *testing.T) {
	snap := NewSnapshot(sampleProducts())

	assert.Nil(t, snap.Search("   "))
	assert.Len(t, snap.Search("WATER"), 1)
	assert.Len(t, snap.Search("bread"), 1)
	assert.Len(t, snap.Search("drinks"), 0, "suggestions do not match categories")
}

func TestFilter(t *testing.T) {
	snap := NewSnapshot(sampleProducts())

	assert.Len(t, snap.Filter(""), 4)
	assert.Len(t, snap.Filter("drinks"), 2)
	assert.Len(t, snap.Filter("soap"), 1)
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory(sampleProducts())

	require.Len(t, groups, 2)
	assert.Equal(t, "Drinks", groups[0].Category)
	assert.Len(t, groups[0].Products, 2)
	assert.Equal(t, UncategorizedLabel, groups[1].Category)
	assert.Len(t, groups[1].Products, 2)
}

func TestSourceLoad(t *testing.T) {
	api := &fakeAPI{products: sampleProducts()}
	src := NewSource(api, zap.NewNop())

	loaded, _ := src.Loaded()
	assert.False(t, loaded)
	assert.Equal(t, 0, src.Snapshot().Len())

	products, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 4)

	loaded, at := src.Loaded()
	assert.True(t, loaded)
	assert.False(t, at.IsZero())

	p, ok := src.Product(3)
	require.True(t, ok)
	assert.Equal(t, "Water 1L", p.Name)
}

func TestSourceLoadFailureKeepsSnapshot(t *testing.T) {
	api := &fakeAPI{products: sampleProducts()}
	src := NewSource(api, zap.NewNop())
	_, err := src.Load(context.Background())
	require.NoError(t, err)

	api.listErr = errors.New("connection refused")
	_, err = src.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 4, src.Snapshot().Len())
}

func TestInputValidate(t *testing.T) {
	base := Input{SKU: "A", Name: "Apple", Price: decimal.NewFromInt(1), Cost: decimal.Zero, Stock: 1}

	tests := map[string]struct {
		mutate func(*Input)
		want   error
	}{
		"valid":          {mutate: func(*Input) {}},
		"blank sku":      {mutate: func(in *Input) { in.SKU = "  " }, want: ErrSKURequired},
		"blank name":     {mutate: func(in *Input) { in.Name = "" }, want: ErrNameRequired},
		"negative price": {mutate: func(in *Input) { in.Price = decimal.NewFromInt(-1) }, want: ErrInvalidPrice},
		"negative cost":  {mutate: func(in *Input) { in.Cost = decimal.NewFromFloat(-0.01) }, want: ErrInvalidCost},
		"negative stock": {mutate: func(in *Input) { in.Stock = -1 }, want: ErrInvalidStock},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			err := in.Normalize().Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInputNormalizeBlankCategory(t *testing.T) {
	in := Input{SKU: " A ", Name: " Apple ", Category: strptr("  ")}.Normalize()
	assert.Equal(t, "A", in.SKU)
	assert.Equal(t, "Apple", in.Name)
	assert.Nil(t, in.Category)
}

func TestInventoryWritesReloadSnapshot(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{products: sampleProducts()}
	src := NewSource(api, zap.NewNop())
	inv := NewInventory(api, src, zap.NewNop())

	created, err := inv.Create(ctx, Input{SKU: "NEW", Name: "New thing", Price: decimal.NewFromInt(5), Stock: 3})
	require.NoError(t, err)
	_, ok := src.Snapshot().Product(created.ID)
	assert.True(t, ok, "snapshot reloaded after create")

	_, err = inv.Update(ctx, created.ID, Input{SKU: "NEW", Name: "New thing", Price: decimal.NewFromInt(5), Stock: 8})
	require.NoError(t, err)
	p, _ := src.Product(created.ID)
	assert.Equal(t, 8, p.Stock)

	require.NoError(t, inv.Delete(ctx, created.ID))
	_, ok = src.Product(created.ID)
	assert.False(t, ok)
}

func TestInventoryRejectsInvalidInputWithoutCalling(t *testing.T) {
	api := &fakeAPI{}
	inv := NewInventory(api, NewSource(api, zap.NewNop()), zap.NewNop())

	_, err := inv.Create(context.Background(), Input{SKU: "X", Name: "X", Stock: -2})
	assert.ErrorIs(t, err, ErrInvalidStock)
	assert.Empty(t, api.created)
	assert.Equal(t, 0, api.listCalls)
}

func TestInventoryDeleteMissing(t *testing.T) {
	api := &fakeAPI{products: sampleProducts()}
	inv := NewInventory(api, NewSource(api, zap.NewNop()), zap.NewNop())

	err := inv.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
