// Package sqlitestore provides a SQLite-backed shipping.Store.
//
// The pure-Go modernc.org/sqlite driver keeps the build CGO-free, so the
// store (and its tests) run anywhere the binary does.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/eshop-labs/checkout/internal/domain/shipping"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS shipments (
    shipping_id     TEXT PRIMARY KEY,
    shipping_type   TEXT NOT NULL,
    order_id        TEXT NOT NULL,
    product_ids     TEXT NOT NULL DEFAULT '',
    shipping_status TEXT NOT NULL,
    created_date    TEXT NOT NULL,
    due_date        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_shipments_order_id ON shipments(order_id);
`

type ShipmentStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// WAL lets the due-date worker update statuses while handlers read.
func Open(path string) (*ShipmentStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite shipment store: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite shipment store: apply schema: %w", err)
	}
	return &ShipmentStore{db: db}, nil
}

func (s *ShipmentStore) Close() error {
	return s.db.Close()
}

func (s *ShipmentStore) Put(ctx context.Context, shipment *domain.Shipment) error {
	if shipment == nil || shipment.ID == "" {
		return fmt.Errorf("sqlite shipment store: id is required")
	}

	const q = `
INSERT INTO shipments (shipping_id, shipping_type, order_id, product_ids, shipping_status, created_date, due_date)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(shipping_id) DO UPDATE SET
    shipping_type   = excluded.shipping_type,
    order_id        = excluded.order_id,
    product_ids     = excluded.product_ids,
    shipping_status = excluded.shipping_status,
    created_date    = excluded.created_date,
    due_date        = excluded.due_date`

	_, err := s.db.ExecContext(ctx, q,
		shipment.ID,
		shipment.Type,
		shipment.OrderID,
		strings.Join(shipment.ProductIDs, ","),
		string(shipment.Status),
		shipment.CreatedAt.UTC().Format(time.RFC3339Nano),
		shipment.DueAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite shipment store: upsert: %w", err)
	}
	return nil
}

func (s *ShipmentStore) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	const q = `
SELECT shipping_id, shipping_type, order_id, product_ids, shipping_status, created_date, due_date
FROM shipments WHERE shipping_id = ?`

	var (
		shipment    domain.Shipment
		productIDs  string
		status      string
		createdDate string
		dueDate     string
	)
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&shipment.ID,
		&shipment.Type,
		&shipment.OrderID,
		&productIDs,
		&status,
		&createdDate,
		&dueDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite shipment store: select: %w", err)
	}

	if productIDs != "" {
		shipment.ProductIDs = strings.Split(productIDs, ",")
	}
	shipment.Status = domain.Status(status)
	if shipment.CreatedAt, err = time.Parse(time.RFC3339Nano, createdDate); err != nil {
		return nil, fmt.Errorf("sqlite shipment store: parse created_date: %w", err)
	}
	if shipment.DueAt, err = time.Parse(time.RFC3339Nano, dueDate); err != nil {
		return nil, fmt.Errorf("sqlite shipment store: parse due_date: %w", err)
	}
	return &shipment, nil
}

func (s *ShipmentStore) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE shipments SET shipping_status = ? WHERE shipping_id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite shipment store: update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite shipment store: rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
