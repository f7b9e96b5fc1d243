// Package service holds the business logic of the lead registry.
package service

import (
	"context"
	"strings"
	"time"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/leads/repository"
	"marketplace_backend/internal/leads/transport"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/phone"

	"github.com/google/uuid"
)

// Service orchestrates lead intake and the admin review operations.
type Service struct {
	repo *repository.Repository
	bus  events.Bus
	cfg  config.AssignmentConfig
	log  *logger.Logger
}

func New(repo *repository.Repository, bus events.Bus, cfg config.AssignmentConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, cfg: cfg, log: log}
}

// Create registers an inbound lead. Email is normalized before the insert so
// the unique index catches case-variant duplicates.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	now := time.Now().UTC()
	lead := repository.Lead{
		ID:        uuid.New(),
		FullName:  strings.TrimSpace(req.FullName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     phone.NormalizeE164(req.Phone, s.cfg.GetLeadPhoneRegion()),
		Skills:    normalizeSkills(req.Skills),
		Status:    repository.StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadReceived{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    created.ID,
		Email:     created.Email,
	})

	return toResponse(created), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toResponse(lead), nil
}

func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.ListLeadsResponse, error) {
	result, err := s.repo.List(ctx, repository.ListParams{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return transport.ListLeadsResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(result.Items))
	for _, lead := range result.Items {
		items = append(items, toResponse(lead))
	}

	return transport.ListLeadsResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// Invite marks a lead as invited and queues the invitation email.
func (s *Service) Invite(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.Invite(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.log.StateTransition("lead", lead.ID.String(), repository.StatusNew, repository.StatusInvited, "admin")
	return toResponse(lead), nil
}

// Reject closes out a lead that will not proceed.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.Reject(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.log.StateTransition("lead", lead.ID.String(), "", repository.StatusRejected, "admin")
	return toResponse(lead), nil
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func toResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:          lead.ID,
		FullName:    lead.FullName,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Skills:      lead.Skills,
		Status:      lead.Status,
		ConvertedAt: lead.ConvertedAt,
		CreatedAt:   lead.CreatedAt,
	}
}
