package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/sales"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/session"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// SaleRejectedError is the API refusing the sale. The cart is left as it
// was. Reason is the API's message, if it gave one.
type SaleRejectedError struct {
	Status int
	Reason string
	err    error
}

func (e *SaleRejectedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("sale rejected (status %d)", e.Status)
	}
	return "sale rejected: " + e.Reason
}

func (e *SaleRejectedError) Unwrap() error { return e.err }

// SalesAPI posts a sale.
type SalesAPI interface {
	CreateSale(ctx context.Context, req sales.Request) (sales.Confirmation, error)
}

// CartManager is the part of *cart.Manager a submit needs.
type CartManager interface {
	Cart() cart.Cart
	Subtract(ctx context.Context, sold cart.Cart) cart.Cart
}

type EventPublisher interface {
	PublishSaleCompleted(ctx context.Context, ev events.SaleCompletedEvent) error
}

// Cashier identifies who rang the sale, for the event only. *session.Gate
// implements it.
type Cashier interface {
	Current() (session.User, bool)
}

type Options struct {
	TerminalID string
	Timeout    time.Duration
	Publisher  EventPublisher
	Cashier    Cashier
}

// Submitter turns the cart into a sale. At most one submit runs at a time.
type Submitter struct {
	api    SalesAPI
	carts  CartManager
	opts   Options
	logger *zap.Logger
	tracer trace.Tracer

	inFlight atomic.Bool
}

func NewSubmitter(api SalesAPI, carts CartManager, opts Options, logger *zap.Logger) *Submitter {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NoopPublisher{}
	}
	return &Submitter{
		api:    api,
		carts:  carts,
		opts:   opts,
		logger: logger.With(zap.String("component", "checkout")),
		tracer: otel.Tracer("pos-terminal/checkout"),
	}
}

// BuildRequest lists the cart's lines in display order. Prices are left to
// the API.
func BuildRequest(c cart.Cart) sales.Request {
	lines := c.Lines()
	items := make([]sales.RequestItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, sales.RequestItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return sales.Request{Items: items}
}

// InProgress reports whether a submit is outstanding.
func (s *Submitter) InProgress() bool { return s.inFlight.Load() }

// Submit sends the current cart as a sale. The call to the API does not
// follow ctx's cancellation: once sent, its outcome is applied to the cart
// even if the caller has gone. It is bounded by the configured timeout.
func (s *Submitter) Submit(ctx context.Context) (sales.Confirmation, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return sales.Confirmation{}, ErrCheckoutInProgress
	}
	defer s.inFlight.Store(false)

	snapshot := s.carts.Cart()
	if snapshot.IsEmpty() {
		return sales.Confirmation{}, ErrEmptyCart
	}

	req := BuildRequest(snapshot)

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.Timeout)
	defer cancel()
	callCtx, span := s.tracer.Start(callCtx, "checkout.submit", trace.WithAttributes(
		attribute.String("pos.terminal_id", s.opts.TerminalID),
		attribute.Int("pos.cart.lines", len(req.Items)),
		attribute.Int("pos.cart.units", snapshot.Units()),
	))
	defer span.End()

	conf, err := s.api.CreateSale(callCtx, req)
	if err != nil {
		err = classify(callCtx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "sale not recorded")
		s.logger.Warn("checkout failed",
			zap.Int("lines", len(req.Items)),
			zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
			zap.Error(err),
		)
		return sales.Confirmation{}, err
	}

	// only what was sent leaves the cart; scans made meanwhile stay
	s.carts.Subtract(callCtx, snapshot)
	span.SetAttributes(attribute.Int64("pos.sale.id", conf.ID))
	s.logger.Info("sale recorded",
		zap.Int64("sale_id", conf.ID),
		zap.String("total", conf.Total.StringFixed(2)),
		zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
	)

	s.publish(callCtx, middleware.GetCorrelationID(ctx), conf, req)
	return conf, nil
}

func (s *Submitter) publish(ctx context.Context, correlationID string, conf sales.Confirmation, req sales.Request) {
	payload := events.SaleCompletedPayload{
		SaleID:     conf.ID,
		TerminalID: s.opts.TerminalID,
		Total:      conf.Total,
	}
	if s.opts.Cashier != nil {
		if u, ok := s.opts.Cashier.Current(); ok {
			payload.UserID = u.ID
		}
	}
	for _, it := range req.Items {
		payload.Items = append(payload.Items, events.SaleCompletedItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	ev := events.BuildSaleCompletedEvent(payload, events.EnvelopeOptions{
		CorrelationID: correlationID,
	})
	if err := s.opts.Publisher.PublishSaleCompleted(ctx, ev); err != nil {
		s.logger.Warn("publish SaleCompleted failed", zap.Int64("sale_id", conf.ID), zap.Error(err))
	}
}

// classify maps a CreateSale failure onto the checkout error kinds.
func classify(callCtx context.Context, err error) error {
	if clients.IsNetwork(err) {
		return err
	}
	if errors.Is(err, clients.ErrAuthExpired) {
		return &SaleRejectedError{Status: http.StatusUnauthorized, Reason: "session expired", err: err}
	}
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) {
		return &SaleRejectedError{Status: apiErr.Status, Reason: apiErr.Detail, err: err}
	}
	if callCtx.Err() != nil {
		return &clients.NetworkError{Op: "POST /sales", Err: err}
	}
	return err
}
