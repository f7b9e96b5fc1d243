// Package repository provides database access for partners and their
// applications.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/lifecycle/domain"
	"marketplace_backend/internal/notification/outbox"
	"marketplace_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Application review statuses. The fine-grained lifecycle lives on the
// partner row; the application mirrors the coarse review outcome.
const (
	AppStatusSubmitted   = "submitted"
	AppStatusUnderReview = "under_review"
	AppStatusApproved    = "approved"
	AppStatusRejected    = "rejected"
)

type Repository struct {
	pool   *pgxpool.Pool
	outbox *outbox.Repository
}

func New(pool *pgxpool.Pool, outboxRepo *outbox.Repository) *Repository {
	return &Repository{pool: pool, outbox: outboxRepo}
}

type Partner struct {
	ID                 uuid.UUID
	UserID             *uuid.UUID
	BusinessName       string
	ContactEmail       string
	PartnerType        string
	Status             domain.Status
	AverageRating      float64
	AvgResponseMinutes float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Application struct {
	ID              uuid.UUID
	PartnerID       uuid.UUID
	Status          string
	BusinessDetails string
	Experience      string
	Qualifications  string
	PortfolioLinks  []string
	ApplicationDate time.Time
	ReviewDate      *time.Time
	RejectionReason *string
	PreviousStatus  *string
	SourceLeadID    *uuid.UUID
}

// ConvertLeadParams carries the conversion input for a single lead.
type ConvertLeadParams struct {
	LeadID          uuid.UUID
	BusinessName    string
	PartnerType     string
	BusinessDetails string
	Experience      string
	Qualifications  string
	PortfolioLinks  []string
}

// TransitionParams describes one guarded partner status change. The update
// only matches when the partner is still in From, which makes concurrent
// transitions on the same partner race-safe.
type TransitionParams struct {
	PartnerID       uuid.UUID
	From            domain.Status
	To              domain.Status
	AppStatus       string // application review mirror; empty leaves it unchanged
	RecordPrevious  bool   // stamp From into previous_status (suspend)
	ClearPrevious   bool   // erase previous_status (reinstate)
	SetReviewDate   bool
	RejectionReason string
	Outbox          *outbox.InsertParams
}

type ListPartnersParams struct {
	Status   string
	Page     int
	PageSize int
}

type ListPartnersResult struct {
	Items      []Partner
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const applicationColumns = `id, partner_id, status, business_details, experience, qualifications,
	portfolio_links, application_date, review_date, rejection_reason, previous_status, source_lead_id`

const partnerColumns = `id, user_id, business_name, contact_email, partner_type, status,
	average_rating, avg_response_minutes, created_at, updated_at`

// ConvertLead atomically flips the lead to converted, creates the partner
// with a submitted application and queues the onboarding invitation, all in
// one transaction. The conditional update guarantees that exactly one of any
// number of concurrent conversions succeeds. The lead status before the flip
// is returned for the audit trail.
func (r *Repository) ConvertLead(ctx context.Context, p ConvertLeadParams) (Partner, Application, string, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Partner{}, Application{}, "", fmt.Errorf("convert lead: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The CTE reads the row as it stood when the statement began, so
	// prior.status is the pre-flip lead status.
	claimQuery := `
		WITH prior AS (
			SELECT id, email, full_name, status FROM leads WHERE id = $1
		)
		UPDATE leads
		SET status = 'converted', converted_at = now(), updated_at = now()
		FROM prior
		WHERE leads.id = prior.id AND leads.status <> 'converted' AND leads.status <> 'rejected'
		RETURNING prior.email, prior.full_name, prior.status`

	var email, fullName, priorStatus string
	if err := tx.QueryRow(ctx, claimQuery, p.LeadID).Scan(&email, &fullName, &priorStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, Application{}, "", r.classifyConvertFailure(ctx, p.LeadID)
		}
		return Partner{}, Application{}, "", fmt.Errorf("convert lead: claim: %w", err)
	}

	now := time.Now().UTC()
	partner := Partner{
		ID:           uuid.New(),
		BusinessName: p.BusinessName,
		ContactEmail: email,
		PartnerType:  p.PartnerType,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO partners (id, business_name, contact_email, partner_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		partner.ID, partner.BusinessName, partner.ContactEmail, partner.PartnerType,
		partner.Status, partner.CreatedAt, partner.UpdatedAt,
	)
	if err != nil {
		return Partner{}, Application{}, "", fmt.Errorf("convert lead: partner: %w", err)
	}

	app := Application{
		ID:              uuid.New(),
		PartnerID:       partner.ID,
		Status:          AppStatusSubmitted,
		BusinessDetails: p.BusinessDetails,
		Experience:      p.Experience,
		Qualifications:  p.Qualifications,
		PortfolioLinks:  p.PortfolioLinks,
		ApplicationDate: now,
		SourceLeadID:    &p.LeadID,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO partner_applications
			(id, partner_id, status, business_details, experience, qualifications, portfolio_links, application_date, source_lead_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.ID, app.PartnerID, app.Status, app.BusinessDetails, app.Experience,
		app.Qualifications, app.PortfolioLinks, app.ApplicationDate, app.SourceLeadID,
	)
	if err != nil {
		return Partner{}, Application{}, "", fmt.Errorf("convert lead: application: %w", err)
	}

	if _, err := r.outbox.InsertTx(ctx, tx, invitationParams(email, fullName)); err != nil {
		return Partner{}, Application{}, "", fmt.Errorf("convert lead: enqueue notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Partner{}, Application{}, "", fmt.Errorf("convert lead: %w", err)
	}
	return partner, app, priorStatus, nil
}

// invitationParams builds the onboarding invitation queued for a lead the
// moment its conversion is claimed. It rides the conversion transaction, so
// the email is recorded if and only if the partner row exists.
func invitationParams(email, fullName string) outbox.InsertParams {
	return outbox.InsertParams{
		Kind:        outbox.KindInvitation,
		TargetEmail: email,
		Payload:     map[string]string{"fullName": fullName},
	}
}

// Transition applies one guarded status change. The partner update, the
// application mirror and the optional outbox record commit or roll back
// together.
func (r *Repository) Transition(ctx context.Context, p TransitionParams) (Partner, Application, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Partner{}, Application{}, fmt.Errorf("transition: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	partnerQuery := `
		UPDATE partners
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + partnerColumns

	partner, err := scanPartner(tx.QueryRow(ctx, partnerQuery, p.PartnerID, p.From, p.To))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, Application{}, r.classifyTransitionFailure(ctx, p.PartnerID, p.From, p.To)
		}
		return Partner{}, Application{}, fmt.Errorf("transition: %w", err)
	}

	appQuery := `
		UPDATE partner_applications
		SET status = COALESCE(NULLIF($2, ''), status),
			review_date = CASE WHEN $3 THEN now() ELSE review_date END,
			rejection_reason = CASE WHEN $4 <> '' THEN $4 ELSE rejection_reason END,
			previous_status = CASE
				WHEN $5 THEN $6
				WHEN $7 THEN NULL
				ELSE previous_status
			END
		WHERE partner_id = $1
		RETURNING ` + applicationColumns

	app, err := scanApplication(tx.QueryRow(ctx, appQuery,
		p.PartnerID, p.AppStatus, p.SetReviewDate, p.RejectionReason,
		p.RecordPrevious, string(p.From), p.ClearPrevious,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, Application{}, apperr.NotFound("application not found")
		}
		return Partner{}, Application{}, fmt.Errorf("transition: application: %w", err)
	}

	if p.Outbox != nil {
		if _, err := r.outbox.InsertTx(ctx, tx, *p.Outbox); err != nil {
			return Partner{}, Application{}, fmt.Errorf("transition: enqueue notification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Partner{}, Application{}, fmt.Errorf("transition: %w", err)
	}
	return partner, app, nil
}

func (r *Repository) GetPartner(ctx context.Context, id uuid.UUID) (Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id = $1`

	partner, err := scanPartner(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, apperr.NotFound("partner not found")
		}
		return Partner{}, fmt.Errorf("get partner: %w", err)
	}
	return partner, nil
}

func (r *Repository) GetApplicationByPartner(ctx context.Context, partnerID uuid.UUID) (Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM partner_applications WHERE partner_id = $1`

	app, err := scanApplication(r.pool.QueryRow(ctx, query, partnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, apperr.NotFound("application not found")
		}
		return Application{}, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (r *Repository) ListPartners(ctx context.Context, params ListPartnersParams) (ListPartnersResult, error) {
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

	baseQuery := `FROM partners WHERE ($1::text IS NULL OR status = $1)`

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, statusParam).Scan(&total); err != nil {
		return ListPartnersResult{}, fmt.Errorf("count partners: %w", err)
	}

	query := `SELECT ` + partnerColumns + ` ` + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, statusParam, pageSize, (page-1)*pageSize)
	if err != nil {
		return ListPartnersResult{}, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	var items []Partner
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return ListPartnersResult{}, fmt.Errorf("scan partner: %w", err)
		}
		items = append(items, partner)
	}
	if rows.Err() != nil {
		return ListPartnersResult{}, rows.Err()
	}

	totalPages := (total + pageSize - 1) / pageSize
	return ListPartnersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// BindUser links an authenticated account to the partner matched by contact
// email. The bind is lazy: partners exist before any account does.
func (r *Repository) BindUser(ctx context.Context, partnerID, userID uuid.UUID) (Partner, error) {
	query := `
		UPDATE partners
		SET user_id = $2, updated_at = now()
		WHERE id = $1 AND (user_id IS NULL OR user_id = $2)
		RETURNING ` + partnerColumns

	partner, err := scanPartner(r.pool.QueryRow(ctx, query, partnerID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetPartner(ctx, partnerID); getErr != nil {
				return Partner{}, getErr
			}
			return Partner{}, apperr.Conflict("partner is already linked to another user")
		}
		return Partner{}, fmt.Errorf("bind user: %w", err)
	}
	return partner, nil
}

func (r *Repository) classifyConvertFailure(ctx context.Context, leadID uuid.UUID) error {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM leads WHERE id = $1`, leadID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("lead not found")
	}
	if err != nil {
		return fmt.Errorf("convert lead: %w", err)
	}
	return apperr.Conflict(fmt.Sprintf("lead is already %s", status))
}

func (r *Repository) classifyTransitionFailure(ctx context.Context, partnerID uuid.UUID, from, to domain.Status) error {
	partner, err := r.GetPartner(ctx, partnerID)
	if err != nil {
		return err
	}
	return apperr.InvalidTransition(fmt.Sprintf("cannot transition from %s to %s: partner is %s", from, to, partner.Status))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(row rowScanner) (Partner, error) {
	var p Partner
	err := row.Scan(
		&p.ID, &p.UserID, &p.BusinessName, &p.ContactEmail, &p.PartnerType,
		&p.Status, &p.AverageRating, &p.AvgResponseMinutes, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	err := row.Scan(
		&app.ID, &app.PartnerID, &app.Status, &app.BusinessDetails, &app.Experience,
		&app.Qualifications, &app.PortfolioLinks, &app.ApplicationDate, &app.ReviewDate,
		&app.RejectionReason, &app.PreviousStatus, &app.SourceLeadID,
	)
	return app, err
}
