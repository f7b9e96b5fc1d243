package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/notification/outbox"
	"marketplace_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMsg = "lead not found"

// Lead statuses.
const (
	StatusNew       = "new"
	StatusInvited   = "invited"
	StatusConverted = "converted"
	StatusRejected  = "rejected"
)

// Repository provides database operations for leads.
type Repository struct {
	pool   *pgxpool.Pool
	outbox *outbox.Repository
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool, outboxRepo *outbox.Repository) *Repository {
	return &Repository{pool: pool, outbox: outboxRepo}
}

type Lead struct {
	ID          uuid.UUID
	FullName    string
	Email       string
	Phone       string
	Skills      []string
	Status      string
	ConvertedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ListParams struct {
	Status   string
	Page     int
	PageSize int
}

type ListResult struct {
	Items      []Lead
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const leadColumns = `id, full_name, email, phone, skills, status, converted_at, created_at, updated_at`

// Create inserts a new lead. A duplicate email is rejected with a Conflict
// error; the unique index on lower(email) closes the check-then-insert race.
func (r *Repository) Create(ctx context.Context, lead Lead) (Lead, error) {
	query := `
		INSERT INTO leads (id, full_name, email, phone, skills, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lower(email)) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query,
		lead.ID,
		lead.FullName,
		lead.Email,
		lead.Phone,
		lead.Skills,
		lead.Status,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Lead{}, apperr.Conflict("a lead with this email already exists")
	}

	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMsg)
		}
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}

	return lead, nil
}

// Invite flips a new lead to invited and records the invitation notification
// in the same transaction.
func (r *Repository) Invite(ctx context.Context, id uuid.UUID) (Lead, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Lead{}, fmt.Errorf("invite lead: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE leads
		SET status = 'invited', updated_at = now()
		WHERE id = $1 AND status = 'new'
		RETURNING ` + leadColumns

	lead, err := scanLead(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, r.classifyInviteFailure(ctx, id)
		}
		return Lead{}, fmt.Errorf("invite lead: %w", err)
	}

	_, err = r.outbox.InsertTx(ctx, tx, outbox.InsertParams{
		Kind:        outbox.KindInvitation,
		TargetEmail: lead.Email,
		Payload:     map[string]string{"fullName": lead.FullName},
	})
	if err != nil {
		return Lead{}, fmt.Errorf("invite lead: enqueue notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, fmt.Errorf("invite lead: %w", err)
	}
	return lead, nil
}

// Reject closes a lead that will not be converted.
func (r *Repository) Reject(ctx context.Context, id uuid.UUID) (Lead, error) {
	query := `
		UPDATE leads
		SET status = 'rejected', updated_at = now()
		WHERE id = $1 AND status IN ('new', 'invited')
		RETURNING ` + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, r.classifyInviteFailure(ctx, id)
		}
		return Lead{}, fmt.Errorf("reject lead: %w", err)
	}

	return lead, nil
}

func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 25
	}

	var statusParam *string
	if params.Status != "" {
		statusParam = &params.Status
	}

	baseQuery := `FROM leads WHERE ($1::text IS NULL OR status = $1)`

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, statusParam).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count leads: %w", err)
	}

	query := `SELECT ` + leadColumns + ` ` + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, statusParam, pageSize, (page-1)*pageSize)
	if err != nil {
		return ListResult{}, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var items []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("scan lead: %w", err)
		}
		items = append(items, lead)
	}
	if rows.Err() != nil {
		return ListResult{}, rows.Err()
	}

	totalPages := (total + pageSize - 1) / pageSize
	return ListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// classifyInviteFailure distinguishes "missing" from "wrong state" after a
// conditional update matched no rows.
func (r *Repository) classifyInviteFailure(ctx context.Context, id uuid.UUID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperr.InvalidTransition(fmt.Sprintf("lead is already %s", current.Status))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID,
		&lead.FullName,
		&lead.Email,
		&lead.Phone,
		&lead.Skills,
		&lead.Status,
		&lead.ConvertedAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	return lead, err
}
