// Package repository provides database access for trial services.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/trials/domain"
	"marketplace_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgForeignKeyViolation = "23503"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Trial struct {
	ID             uuid.UUID
	PartnerID      uuid.UUID
	ServiceID      uuid.UUID
	Status         string
	QualityRating  *int
	OnTimeDelivery *bool
	ResponseRating *int
	Feedback       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OutcomeFields are the evaluation values written when a trial closes.
type OutcomeFields struct {
	QualityRating  int
	OnTimeDelivery bool
	ResponseRating *int
	Feedback       string
}

const trialColumns = `id, partner_id, service_id, status, quality_rating, on_time_delivery,
	response_rating, feedback, created_at, updated_at`

// SeedForPartner creates one trial row per service in the partner's
// portfolio. Pairs that already have a trial are skipped, so re-entering the
// trial period is idempotent.
func (r *Repository) SeedForPartner(ctx context.Context, partnerID uuid.UUID) (int, error) {
	query := `
		INSERT INTO trial_services (id, partner_id, service_id, status)
		SELECT gen_random_uuid(), sa.partner_id, sa.service_id, 'assigned'
		FROM service_assignments sa
		WHERE sa.partner_id = $1
		ON CONFLICT (partner_id, service_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, partnerID)
	if err != nil {
		return 0, fmt.Errorf("seed trials: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Create adds a single trial for a (partner, service) pair. The existing
// trial is returned when the pair already has one.
func (r *Repository) Create(ctx context.Context, partnerID, serviceID uuid.UUID) (Trial, bool, error) {
	query := `
		INSERT INTO trial_services (id, partner_id, service_id, status)
		VALUES ($1, $2, $3, 'assigned')
		ON CONFLICT (partner_id, service_id) DO NOTHING
		RETURNING ` + trialColumns

	trial, err := scanTrial(r.pool.QueryRow(ctx, query, uuid.New(), partnerID, serviceID))
	if err == nil {
		return trial, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return Trial{}, false, apperr.NotFound("partner or service not found")
		}
		return Trial{}, false, fmt.Errorf("create trial: %w", err)
	}

	existing, err := scanTrial(r.pool.QueryRow(ctx,
		`SELECT `+trialColumns+` FROM trial_services WHERE partner_id = $1 AND service_id = $2`,
		partnerID, serviceID,
	))
	if err != nil {
		return Trial{}, false, fmt.Errorf("create trial: %w", err)
	}
	return existing, false, nil
}

// Start flips an assigned trial to in_progress.
func (r *Repository) Start(ctx context.Context, trialID uuid.UUID) (Trial, error) {
	query := `
		UPDATE trial_services
		SET status = 'in_progress', updated_at = now()
		WHERE id = $1 AND status = 'assigned'
		RETURNING ` + trialColumns

	trial, err := scanTrial(r.pool.QueryRow(ctx, query, trialID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Trial{}, r.classifyFailure(ctx, trialID, domain.StatusAssigned)
		}
		return Trial{}, fmt.Errorf("start trial: %w", err)
	}
	return trial, nil
}

// RecordOutcome closes an in_progress trial with the given status and
// evaluation fields. The guard makes recording on a closed trial an
// InvalidState error, not a silent overwrite.
func (r *Repository) RecordOutcome(ctx context.Context, trialID uuid.UUID, status string, f OutcomeFields) (Trial, error) {
	query := `
		UPDATE trial_services
		SET status = $2, quality_rating = $3, on_time_delivery = $4,
			response_rating = $5, feedback = NULLIF($6, ''), updated_at = now()
		WHERE id = $1 AND status = 'in_progress'
		RETURNING ` + trialColumns

	trial, err := scanTrial(r.pool.QueryRow(ctx, query,
		trialID, status, f.QualityRating, f.OnTimeDelivery, f.ResponseRating, f.Feedback,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Trial{}, r.classifyFailure(ctx, trialID, domain.StatusInProgress)
		}
		return Trial{}, fmt.Errorf("record trial outcome: %w", err)
	}
	return trial, nil
}

func (r *Repository) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]Trial, error) {
	query := `SELECT ` + trialColumns + ` FROM trial_services WHERE partner_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}
	defer rows.Close()

	var trials []Trial
	for rows.Next() {
		trial, err := scanTrial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		trials = append(trials, trial)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return trials, nil
}

// StatusesByPartner returns the bare status list used by readiness
// evaluation.
func (r *Repository) StatusesByPartner(ctx context.Context, partnerID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status FROM trial_services WHERE partner_id = $1`, partnerID)
	if err != nil {
		return nil, fmt.Errorf("trial statuses: %w", err)
	}
	defer rows.Close()

	var statuses []string
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return nil, fmt.Errorf("scan trial status: %w", err)
		}
		statuses = append(statuses, status)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return statuses, nil
}

func (r *Repository) classifyFailure(ctx context.Context, trialID uuid.UUID, want string) error {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM trial_services WHERE id = $1`, trialID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("trial not found")
	}
	if err != nil {
		return fmt.Errorf("get trial: %w", err)
	}
	return apperr.InvalidTransition(fmt.Sprintf("trial is %s, not %s", status, want))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrial(row rowScanner) (Trial, error) {
	var trial Trial
	err := row.Scan(
		&trial.ID, &trial.PartnerID, &trial.ServiceID, &trial.Status,
		&trial.QualityRating, &trial.OnTimeDelivery, &trial.ResponseRating,
		&trial.Feedback, &trial.CreatedAt, &trial.UpdatedAt,
	)
	return trial, err
}
