package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
)

// Products is the read side of the product snapshot. *catalog.Source
// implements it.
type Products interface {
	Product(id int64) (catalog.Product, bool)
}

// LineView is a cart line resolved against the product snapshot.
type LineView struct {
	ProductID int64           `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Manager owns the terminal's cart. Mutations are serialized and each one
// is persisted before it returns.
type Manager struct {
	products   Products
	store      Store
	terminalID string
	logger     *zap.Logger

	mu   sync.Mutex
	cart Cart
}

// NewManager restores the terminal's cart from store. A missing or
// unreadable stored cart starts empty.
func NewManager(ctx context.Context, products Products, store Store, terminalID string, logger *zap.Logger) *Manager {
	m := &Manager{
		products:   products,
		store:      store,
		terminalID: terminalID,
		logger:     logger.With(zap.String("component", "cart"), zap.String("terminal_id", terminalID)),
		cart:       Empty(),
	}

	restored, err := store.Load(ctx, terminalID)
	if err != nil {
		m.logger.Warn("stored cart unreadable, starting empty", zap.Error(err))
		return m
	}
	m.cart = restored
	if !restored.IsEmpty() {
		m.logger.Info("cart restored", zap.Int("lines", restored.Len()))
	}
	return m
}

// AddOne adds a single unit of p. Going over p.Stock leaves the cart as it
// was and returns *StockExceededError.
func (m *Manager) AddOne(ctx context.Context, p catalog.Product) (Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.cart.Quantity(p.ID) + 1
	if next > p.Stock {
		return m.cart, &StockExceededError{ProductID: p.ID, Max: max(p.Stock, 0)}
	}
	m.commit(ctx, m.cart.With(p.ID, next))
	return m.cart, nil
}

// SetQuantity sets the line for id to q. q <= 0 removes it; q over the
// snapshot's stock is clamped and reported with *StockExceededError. An id
// missing from the snapshot has no stock and is removed.
func (m *Manager) SetQuantity(ctx context.Context, id int64, q int) (Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q <= 0 {
		m.commit(ctx, m.cart.Without(id))
		return m.cart, nil
	}

	stock := 0
	if p, ok := m.products.Product(id); ok {
		stock = max(p.Stock, 0)
	}
	if q > stock {
		m.commit(ctx, m.cart.With(id, stock))
		return m.cart, &StockExceededError{ProductID: id, Max: stock}
	}
	m.commit(ctx, m.cart.With(id, q))
	return m.cart, nil
}

func (m *Manager) Remove(ctx context.Context, id int64) Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commit(ctx, m.cart.Without(id))
	return m.cart
}

// Clear empties the cart and erases its stored copy.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cart = Empty()
	if err := m.store.Erase(ctx, m.terminalID); err != nil {
		m.logger.Warn("erase stored cart failed", zap.Error(err))
	}
}

// Subtract removes the quantities in sold from the cart. Lines added or
// raised since sold was taken are kept; the stored copy is erased only once
// nothing remains.
func (m *Manager) Subtract(ctx context.Context, sold Cart) Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.cart
	for _, l := range sold.Lines() {
		next = next.With(l.ProductID, next.Quantity(l.ProductID)-l.Quantity)
	}
	if !next.IsEmpty() {
		m.commit(ctx, next)
		return m.cart
	}

	m.cart = Empty()
	if err := m.store.Erase(ctx, m.terminalID); err != nil {
		m.logger.Warn("erase stored cart failed", zap.Error(err))
	}
	return m.cart
}

func (m *Manager) Cart() Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart
}

// Total prices the cart against the snapshot at call time. Products that
// have left the snapshot count as zero.
func (m *Manager) Total() decimal.Decimal {
	c := m.Cart()
	total := decimal.Zero
	for _, l := range c.Lines() {
		p, ok := m.products.Product(l.ProductID)
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Lines resolves the cart for display, skipping products that have left
// the snapshot.
func (m *Manager) Lines() []LineView {
	c := m.Cart()
	out := make([]LineView, 0, c.Len())
	for _, l := range c.Lines() {
		p, ok := m.products.Product(l.ProductID)
		if !ok {
			continue
		}
		out = append(out, LineView{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
			Stock:     p.Stock,
			Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return out
}

// commit swaps in next and persists it. Must hold m.mu.
func (m *Manager) commit(ctx context.Context, next Cart) {
	if next.Equal(m.cart) {
		return
	}
	m.cart = next
	if err := m.store.Save(ctx, m.terminalID, next); err != nil {
		m.logger.Warn("persist cart failed", zap.Error(err))
	}
}
