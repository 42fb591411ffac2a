package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allforyou/ordertext/internal/domain/order"
)

const (
	upsertOrderSQL = `INSERT INTO orders (number, items, date_created, date_modified)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (number) DO UPDATE
	SET items = EXCLUDED.items, date_modified = EXCLUDED.date_modified`

	getOrderSQL = `SELECT number, items, date_created, date_modified
	FROM orders WHERE number = $1`

	getAllOrdersSQL = `SELECT number, items, date_created, date_modified FROM orders`

	existsOrderSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE number = $1)`
)

var _ order.Repository = (*Store)(nil)

// Store implements order.Repository backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store that uses the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Save upserts the order row under its number. Items are serialized to JSON
// for the JSONB column. The upsert keeps the stored date_created on
// overwrite; the service already preserves it in the value as well.
func (s *Store) Save(ctx context.Context, number string, o order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	_, err = s.pool.Exec(ctx, upsertOrderSQL,
		number, itemsJSON, o.DateCreated, o.DateModified,
	)
	if err != nil {
		return errors.Wrapf(err, "upsert order %q", number)
	}
	return nil
}

// Get returns the order under number, or order.ErrNotFound.
func (s *Store) Get(ctx context.Context, number string) (*order.Order, error) {
	row := s.pool.QueryRow(ctx, getOrderSQL, number)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", number)
	}
	return o, nil
}

// GetAll returns the full number-to-order mapping.
func (s *Store) GetAll(ctx context.Context) (map[string]order.Order, error) {
	rows, err := s.pool.Query(ctx, getAllOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	orders := make(map[string]order.Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		orders[o.Number] = *o
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	return orders, nil
}

// Exists reports whether an order row exists under number.
func (s *Store) Exists(ctx context.Context, number string) (bool, error) {
	var ok bool
	if err := s.pool.QueryRow(ctx, existsOrderSQL, number).Scan(&ok); err != nil {
		return false, errors.Wrapf(err, "check order %q", number)
	}
	return ok, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
	)
	if err := row.Scan(&o.Number, &itemsJSON, &o.DateCreated, &o.DateModified); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, errors.Wrap(err, "unmarshal order items")
	}
	return &o, nil
}
