package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps carts in the cart_snapshots table, one row per
// terminal.
type PostgresStore struct {
	pool DBPool
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context, terminalID string) (Cart, error) {
	var raw []byte
	row := s.pool.QueryRow(ctx, `SELECT payload FROM cart_snapshots WHERE terminal_id=$1`, terminalID)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Empty(), nil
		}
		return Empty(), fmt.Errorf("select cart: %w", err)
	}
	return decode(raw)
}

func (s *PostgresStore) Save(ctx context.Context, terminalID string, c Cart) error {
	raw, err := encode(c)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO cart_snapshots(terminal_id, payload)
		VALUES($1, $2)
		ON CONFLICT (terminal_id) DO UPDATE SET payload=EXCLUDED.payload, updated_at=now()
	`, terminalID, raw)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}

func (s *PostgresStore) Erase(ctx context.Context, terminalID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM cart_snapshots WHERE terminal_id=$1`, terminalID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
