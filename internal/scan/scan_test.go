package scan

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/session"
)

type staticCatalog struct{ snap catalog.Snapshot }

func (s staticCatalog) Snapshot() catalog.Snapshot { return s.snap }

type fakeSession struct{ loggedIn bool }

func (f *fakeSession) Require() (session.User, error) {
	if !f.loggedIn {
		return session.User{}, session.ErrNoSession
	}
	return session.User{ID: 1}, nil
}

func newCatalog() staticCatalog {
	return staticCatalog{snap: catalog.NewSnapshot([]catalog.Product{
		{ID: 1, SKU: "7501234", Name: "Cola", Price: decimal.NewFromInt(1), Stock: 2},
		{ID: 2, SKU: "abc-9", Name: "Gum", Price: decimal.NewFromInt(1), Stock: 10},
	})}
}

func TestLineSource(t *testing.T) {
	src := NewLineSource(strings.NewReader("7501234\r\n\n  abc-9 \n"))
	ctx := context.Background()

	code, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7501234", code)

	code, err = src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc-9", code)

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestChanSourceHonoursContext(t *testing.T) {
	ch := make(chan string)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ChanSource(ch).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScannerRun(t *testing.T) {
	store := cart.NewMemoryStore()
	cat := newCatalog()
	m := cart.NewManager(context.Background(), cat.snap, store, "till-1", zap.NewNop())

	var events []Event
	s := NewScanner(cat, m, &fakeSession{loggedIn: true}, func(ev Event) { events = append(events, ev) }, zap.NewNop())

	ch := make(chan string, 5)
	for _, code := range []string{"7501234", "ABC-9", "7501234", "7501234", "abc-9"} {
		ch <- code
	}
	close(ch)

	require.NoError(t, s.Run(context.Background(), ChanSource(ch)))

	outcomes := make([]Outcome, 0, len(events))
	for _, ev := range events {
		outcomes = append(outcomes, ev.Outcome)
	}
	assert.Equal(t, []Outcome{Added, UnknownCode, Added, StockLimited, Added}, outcomes)

	var se *cart.StockExceededError
	require.ErrorAs(t, events[3].Err, &se)
	assert.Equal(t, 2, se.Max)

	assert.Equal(t, 2, m.Cart().Quantity(1))
	assert.Equal(t, 1, m.Cart().Quantity(2))
}

func TestScannerRefusesWithoutSession(t *testing.T) {
	store := cart.NewMemoryStore()
	cat := newCatalog()
	m := cart.NewManager(context.Background(), cat.snap, store, "till-1", zap.NewNop())
	sess := &fakeSession{}
	s := NewScanner(cat, m, sess, nil, zap.NewNop())

	ev := s.Handle(context.Background(), "7501234")
	assert.Equal(t, NoSession, ev.Outcome)
	assert.ErrorIs(t, ev.Err, session.ErrNoSession)
	assert.True(t, m.Cart().IsEmpty())
	_, stored := store.Raw("till-1")
	assert.False(t, stored)

	sess.loggedIn = true
	ev = s.Handle(context.Background(), "7501234")
	assert.Equal(t, Added, ev.Outcome)
	assert.Equal(t, 1, m.Cart().Quantity(1))
}

type failingSource struct{}

func (failingSource) Next(context.Context) (string, error) { return "", errors.New("device unplugged") }

func TestScannerRunStopsOnSourceError(t *testing.T) {
	cat := newCatalog()
	m := cart.NewManager(context.Background(), cat.snap, cart.NewMemoryStore(), "till-1", zap.NewNop())
	s := NewScanner(cat, m, &fakeSession{loggedIn: true}, nil, zap.NewNop())

	assert.EqualError(t, s.Run(context.Background(), failingSource{}), "device unplugged")
}

func TestScannerRunStopsOnCancel(t *testing.T) {
	cat := newCatalog()
	m := cart.NewManager(context.Background(), cat.snap, cart.NewMemoryStore(), "till-1", zap.NewNop())
	s := NewScanner(cat, m, &fakeSession{loggedIn: true}, nil, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Run(ctx, ChanSource(make(chan string)))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
