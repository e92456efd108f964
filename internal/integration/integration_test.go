//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/events"
)

type snapshotProducts map[int64]catalog.Product

func (s snapshotProducts) Product(id int64) (catalog.Product, bool) {
	p, ok := s[id]
	return p, ok
}

func TestPostgresCartStore(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pgC, dsn := startPostgres(ctx, t)
	defer terminateContainer(t, pgC)

	logger := zap.NewNop()
	require.NoError(t, db.RunMigrations(dsn, logger))
	// second run is a no-op
	require.NoError(t, db.RunMigrations(dsn, logger))

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	store := cart.NewPostgresStore(pool)
	products := snapshotProducts{
		7: {ID: 7, SKU: "COLA", Name: "Cola", Price: decimal.NewFromInt(10), Stock: 5},
	}

	m := cart.NewManager(ctx, products, store, "till-1", logger)
	_, err = m.SetQuantity(ctx, 7, 2)
	require.NoError(t, err)

	restarted := cart.NewManager(ctx, products, store, "till-1", logger)
	assert.Equal(t, 2, restarted.Cart().Quantity(7))

	var updated time.Time
	require.NoError(t, pool.QueryRow(ctx, `SELECT updated_at FROM cart_snapshots WHERE terminal_id=$1`, "till-1").Scan(&updated))
	assert.False(t, updated.IsZero())

	restarted.Clear(ctx)
	again := cart.NewManager(ctx, products, store, "till-1", logger)
	assert.True(t, again.Cart().IsEmpty())

	// a corrupt row is treated as no cart
	_, err = pool.Exec(ctx, `INSERT INTO cart_snapshots(terminal_id, payload) VALUES($1, $2)`, "till-2", []byte(`{"version":99}`))
	require.NoError(t, err)
	corrupt := cart.NewManager(ctx, products, store, "till-2", logger)
	assert.True(t, corrupt.Cart().IsEmpty())
}

func TestSaleCompletedPublished(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	rabbitC, rabbitURL := startRabbitMQ(ctx, t)
	defer terminateContainer(t, rabbitC)

	conn := dialAMQP(ctx, t, rabbitURL)
	defer conn.Close()

	pub, err := events.NewPublisher(conn)
	require.NoError(t, err)
	defer pub.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, events.SaleCompletedRoutingKey, events.EventsExchange, false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	ev := events.BuildSaleCompletedEvent(events.SaleCompletedPayload{
		SaleID:     101,
		TerminalID: "till-1",
		Items:      []events.SaleCompletedItem{{ProductID: 7, Quantity: 2}},
		Total:      decimal.NewFromInt(20),
	}, events.EnvelopeOptions{})
	require.NoError(t, pub.PublishSaleCompleted(ctx, ev))

	select {
	case d := <-deliveries:
		var got events.SaleCompletedEvent
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, ev.EventID, got.EventID)
		assert.Equal(t, int64(101), got.Payload.SaleID)
	case <-ctx.Done():
		t.Fatal("SaleCompleted not delivered")
	}
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "pos"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/pos?sslmode=disable", host, mappedPort.Port())
	return container, dsn
}

func startRabbitMQ(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return container, fmt.Sprintf("amqp://guest:guest@%s:%s/", host, mappedPort.Port())
}

func terminateContainer(t *testing.T, c testcontainers.Container) {
	t.Helper()
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Terminate(terminateCtx))
}

func dialAMQP(ctx context.Context, t *testing.T, rabbitURL string) *amqp.Connection {
	t.Helper()
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	conn, err := events.DialRabbit(dialCtx, rabbitURL, zaptest.NewLogger(t))
	require.NoError(t, err)
	return conn
}
