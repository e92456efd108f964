package scan

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/middleware"
)

// Catalog resolves scanned codes. Scanners send the SKU verbatim, so the
// match is exact.
type Catalog interface {
	Snapshot() catalog.Snapshot
}

type CartAdder interface {
	AddOne(ctx context.Context, p catalog.Product) (cart.Cart, error)
}

type Outcome int

const (
	Added Outcome = iota
	UnknownCode
	StockLimited
	NoSession
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case UnknownCode:
		return "unknown_code"
	case StockLimited:
		return "stock_limited"
	case NoSession:
		return "no_session"
	default:
		return "unknown"
	}
}

// Event describes what one scan did. Product is zero for UnknownCode and
// NoSession; Err is set for StockLimited and NoSession.
type Event struct {
	Code    string
	Outcome Outcome
	Product catalog.Product
	Err     error
}

// Scanner feeds scanned codes into the cart.
type Scanner struct {
	catalog Catalog
	cart    CartAdder
	session middleware.SessionChecker
	notify  func(Event)
	logger  *zap.Logger
}

// NewScanner builds a scanner. Scans are refused while session reports no
// one logged in. notify may be nil.
func NewScanner(c Catalog, carts CartAdder, session middleware.SessionChecker, notify func(Event), logger *zap.Logger) *Scanner {
	if notify == nil {
		notify = func(Event) {}
	}
	return &Scanner{
		catalog: c,
		cart:    carts,
		session: session,
		notify:  notify,
		logger:  logger.With(zap.String("component", "scanner")),
	}
}

// Handle resolves one code and adds the product. Unknown codes and stock
// notices are reported, not returned.
func (s *Scanner) Handle(ctx context.Context, code string) Event {
	code = strings.TrimSpace(code)
	ev := Event{Code: code}

	if _, err := s.session.Require(); err != nil {
		ev.Outcome = NoSession
		ev.Err = err
		s.logger.Info("scan ignored without a session", zap.String("code", code))
		s.notify(ev)
		return ev
	}

	p, ok := s.catalog.Snapshot().ExactSKU(code)
	if !ok {
		ev.Outcome = UnknownCode
		s.logger.Info("scanned code not in catalog", zap.String("code", code))
		s.notify(ev)
		return ev
	}
	ev.Product = p

	if _, err := s.cart.AddOne(ctx, p); err != nil {
		ev.Outcome = StockLimited
		ev.Err = err
		s.logger.Info("scan refused", zap.String("code", code), zap.Error(err))
		s.notify(ev)
		return ev
	}

	ev.Outcome = Added
	s.logger.Debug("scanned", zap.String("code", code), zap.Int64("product_id", p.ID))
	s.notify(ev)
	return ev
}

// Run reads src until it ends or ctx is done. It returns nil when the
// source is exhausted.
func (s *Scanner) Run(ctx context.Context, src BarcodeSource) error {
	for {
		code, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("barcode source failed", zap.Error(err))
			return err
		}
		if code == "" {
			continue
		}
		s.Handle(middleware.WithCorrelationID(ctx, uuid.NewString()), code)
	}
}
