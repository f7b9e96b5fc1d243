// Package repository provides database access for service assignments and
// the engine configuration.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/assignment/domain"
	"marketplace_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Assignment statuses.
const (
	StatusAvailable = "available"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
)

const pgForeignKeyViolation = "23503"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Assignment struct {
	ID             uuid.UUID
	ServiceID      uuid.UUID
	PartnerID      uuid.UUID
	Status         string
	AssignedDate   *time.Time
	CompletionDate *time.Time
	CommissionRate float64
	CommissionType string
	CreatedAt      time.Time
}

// Config is the single-row engine configuration.
type Config struct {
	Strategy  string
	Weights   domain.Weights
	UpdatedAt time.Time
}

// InsertParams describes one portfolio insert. The unique constraint on
// (service_id, partner_id) makes the insert idempotent.
type InsertParams struct {
	ServiceID      uuid.UUID
	PartnerID      uuid.UUID
	Status         string
	Assigned       bool // stamp assigned_date
	CommissionRate float64
	CommissionType string
}

const assignmentColumns = `id, service_id, partner_id, status, assigned_date, completion_date,
	commission_rate, commission_type, created_at`

// GetConfig reads the engine configuration. The row is seeded by migration
// and never deleted.
func (r *Repository) GetConfig(ctx context.Context) (Config, error) {
	query := `SELECT strategy, weight_rating, weight_load, weight_response, updated_at
		FROM assignment_config WHERE id = 1`

	var cfg Config
	err := r.pool.QueryRow(ctx, query).Scan(
		&cfg.Strategy, &cfg.Weights.Rating, &cfg.Weights.Load, &cfg.Weights.Response, &cfg.UpdatedAt,
	)
	if err != nil {
		return Config{}, fmt.Errorf("get assignment config: %w", err)
	}
	return cfg, nil
}

// UpdateConfig switches the strategy and, when provided, the combined
// weights. Nil weights keep their current values.
func (r *Repository) UpdateConfig(ctx context.Context, strategy string, rating, load, response *float64) (Config, error) {
	query := `
		UPDATE assignment_config
		SET strategy = $1,
			weight_rating = COALESCE($2, weight_rating),
			weight_load = COALESCE($3, weight_load),
			weight_response = COALESCE($4, weight_response),
			updated_at = now()
		WHERE id = 1
		RETURNING strategy, weight_rating, weight_load, weight_response, updated_at`

	var cfg Config
	err := r.pool.QueryRow(ctx, query, strategy, rating, load, response).Scan(
		&cfg.Strategy, &cfg.Weights.Rating, &cfg.Weights.Load, &cfg.Weights.Response, &cfg.UpdatedAt,
	)
	if err != nil {
		return Config{}, fmt.Errorf("update assignment config: %w", err)
	}
	return cfg, nil
}

// GetServiceCategory resolves the rotation category of an active service.
func (r *Repository) GetServiceCategory(ctx context.Context, serviceID uuid.UUID) (string, error) {
	var category string
	err := r.pool.QueryRow(ctx,
		`SELECT category FROM services WHERE id = $1 AND active`, serviceID,
	).Scan(&category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("service not found")
		}
		return "", fmt.Errorf("get service: %w", err)
	}
	return category, nil
}

// EligiblePartners returns the selection pool for a service: partners in one
// of the given lifecycle statuses that do not already hold this service.
// Ordered by creation time so the round-robin rotation is stable.
func (r *Repository) EligiblePartners(ctx context.Context, serviceID uuid.UUID, statuses []string) ([]domain.Candidate, error) {
	query := `
		SELECT p.id, p.average_rating, p.avg_response_minutes,
			COUNT(sa.id) FILTER (WHERE sa.status = 'assigned') AS active_assignments,
			COUNT(sa.id) FILTER (WHERE sa.status = 'completed') AS completed_assignments
		FROM partners p
		LEFT JOIN service_assignments sa ON sa.partner_id = p.id
		WHERE p.status = ANY($2)
			AND NOT EXISTS (
				SELECT 1 FROM service_assignments e
				WHERE e.partner_id = p.id AND e.service_id = $1
			)
		GROUP BY p.id, p.average_rating, p.avg_response_minutes, p.created_at
		ORDER BY p.created_at, p.id`

	rows, err := r.pool.Query(ctx, query, serviceID, statuses)
	if err != nil {
		return nil, fmt.Errorf("eligible partners: %w", err)
	}
	defer rows.Close()

	var pool []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.PartnerID, &c.AverageRating, &c.AvgResponseMinutes,
			&c.ActiveAssignments, &c.CompletedAssignments); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		pool = append(pool, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return pool, nil
}

// Insert records a service assignment. When the (service, partner) pair
// already exists the existing row is returned with created=false; the unique
// constraint closes the check-then-insert race.
func (r *Repository) Insert(ctx context.Context, p InsertParams) (Assignment, bool, error) {
	var assignedDate *time.Time
	if p.Assigned {
		now := time.Now().UTC()
		assignedDate = &now
	}

	query := `
		INSERT INTO service_assignments
			(id, service_id, partner_id, status, assigned_date, commission_rate, commission_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (service_id, partner_id) DO NOTHING
		RETURNING ` + assignmentColumns

	a, err := scanAssignment(r.pool.QueryRow(ctx, query,
		uuid.New(), p.ServiceID, p.PartnerID, p.Status, assignedDate, p.CommissionRate, p.CommissionType,
	))
	if err == nil {
		return a, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Assignment{}, false, apperr.NotFound("partner or service not found")
		}
		return Assignment{}, false, fmt.Errorf("insert assignment: %w", err)
	}

	existing, err := r.GetByPair(ctx, p.ServiceID, p.PartnerID)
	if err != nil {
		return Assignment{}, false, err
	}
	return existing, false, nil
}

func (r *Repository) GetByPair(ctx context.Context, serviceID, partnerID uuid.UUID) (Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM service_assignments WHERE service_id = $1 AND partner_id = $2`

	a, err := scanAssignment(r.pool.QueryRow(ctx, query, serviceID, partnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, apperr.NotFound("assignment not found")
		}
		return Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// Complete stamps the completion date. Completing an already completed
// assignment is a Conflict.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID) (Assignment, error) {
	query := `
		UPDATE service_assignments
		SET status = 'completed', completion_date = now()
		WHERE id = $1 AND status <> 'completed'
		RETURNING ` + assignmentColumns

	a, err := scanAssignment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, r.classifyCompleteFailure(ctx, id)
		}
		return Assignment{}, fmt.Errorf("complete assignment: %w", err)
	}
	return a, nil
}

func (r *Repository) classifyCompleteFailure(ctx context.Context, id uuid.UUID) error {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM service_assignments WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("assignment not found")
	}
	if err != nil {
		return fmt.Errorf("complete assignment: %w", err)
	}
	return apperr.Conflict("assignment is already completed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (Assignment, error) {
	var a Assignment
	err := row.Scan(
		&a.ID, &a.ServiceID, &a.PartnerID, &a.Status, &a.AssignedDate,
		&a.CompletionDate, &a.CommissionRate, &a.CommissionType, &a.CreatedAt,
	)
	return a, err
}
