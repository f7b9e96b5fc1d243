// Package repository provides database access for orders and their audit
// trail.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/orders/domain"
	"marketplace_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Order struct {
	ID           uuid.UUID
	ServiceID    uuid.UUID
	PartnerID    *uuid.UUID
	CustomerID   uuid.UUID
	AmountCents  int64
	Status       domain.Status
	Priority     *string
	DeliveryDate *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type HistoryEntry struct {
	Status    string
	ChangedBy string
	ChangedAt time.Time
}

const orderColumns = `id, service_id, partner_id, customer_id, amount_cents, status, priority,
	delivery_date, created_at, updated_at`

// Create opens an order in pending and writes its first history row in the
// same transaction. When the order is routed to a partner, that partner must
// be approved.
func (r *Repository) Create(ctx context.Context, order Order, actor string) (Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if order.PartnerID != nil {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM partners WHERE id = $1`, *order.PartnerID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, apperr.NotFound("partner not found")
		}
		if err != nil {
			return Order{}, fmt.Errorf("create order: partner: %w", err)
		}
		if status != "approved" {
			return Order{}, apperr.Validation("orders can only be routed to approved partners")
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, service_id, partner_id, customer_id, amount_cents, status, priority, delivery_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.ServiceID, order.PartnerID, order.CustomerID, order.AmountCents,
		order.Status, order.Priority, order.DeliveryDate, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}

	if err := appendHistory(ctx, tx, order.ID, string(order.Status), actor); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

// UpdateStatus moves an order from one status to another and appends exactly
// one history row. Both writes commit or roll back together; the guard on
// the current status closes concurrent-transition races.
func (r *Repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to domain.Status, actor string) (Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE orders
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + orderColumns

	order, err := scanOrder(tx.QueryRow(ctx, query, orderID, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, r.classifyTransitionFailure(ctx, orderID, from, to)
		}
		return Order{}, fmt.Errorf("update order status: %w", err)
	}

	if err := appendHistory(ctx, tx, orderID, string(to), actor); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	return order, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, apperr.NotFound("order not found")
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// History returns the audit trail oldest-first.
func (r *Repository) History(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error) {
	if _, err := r.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, changed_by, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Status, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

func appendHistory(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status, actor string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, status, changed_by)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), orderID, status, actor,
	)
	if err != nil {
		return fmt.Errorf("append order history: %w", err)
	}
	return nil
}

func (r *Repository) classifyTransitionFailure(ctx context.Context, orderID uuid.UUID, from, to domain.Status) error {
	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return apperr.InvalidTransition(fmt.Sprintf("cannot transition from %s to %s: order is %s", from, to, order.Status))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var order Order
	err := row.Scan(
		&order.ID, &order.ServiceID, &order.PartnerID, &order.CustomerID,
		&order.AmountCents, &order.Status, &order.Priority, &order.DeliveryDate,
		&order.CreatedAt, &order.UpdatedAt,
	)
	return order, err
}
