// Package service orchestrates partner selection for services.
package service

import (
	"context"

	"marketplace_backend/internal/assignment/domain"
	"marketplace_backend/internal/assignment/repository"
	"marketplace_backend/internal/assignment/transport"
	"marketplace_backend/internal/events"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
)

// CursorStore advances the per-category rotation pointer. Implemented by the
// Redis-backed cursor store; faked in tests.
type CursorStore interface {
	Next(ctx context.Context, category string) (int64, error)
}

type Service struct {
	repo   *repository.Repository
	cursor CursorStore
	bus    events.Bus
	cfg    config.AssignmentConfig
	log    *logger.Logger
}

func New(repo *repository.Repository, cursor CursorStore, bus events.Bus, cfg config.AssignmentConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cursor: cursor, bus: bus, cfg: cfg, log: log}
}

// GetStrategy returns the current engine configuration.
func (s *Service) GetStrategy(ctx context.Context) (transport.StrategyResponse, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return transport.StrategyResponse{}, err
	}
	return toStrategyResponse(cfg), nil
}

// UpdateStrategy switches the process-wide strategy. Existing assignments
// are untouched; only future Assign calls read the new value.
func (s *Service) UpdateStrategy(ctx context.Context, req transport.UpdateStrategyRequest) (transport.StrategyResponse, error) {
	if !domain.ValidStrategy(req.Strategy) {
		return transport.StrategyResponse{}, apperr.Validation("unknown strategy: " + req.Strategy)
	}

	cfg, err := s.repo.UpdateConfig(ctx, req.Strategy, req.WeightRating, req.WeightLoad, req.WeightResponse)
	if err != nil {
		return transport.StrategyResponse{}, err
	}

	s.log.Info("assignment strategy updated", "strategy", cfg.Strategy)
	return toStrategyResponse(cfg), nil
}

// Assign routes a service to a partner picked by the configured strategy and
// records the assignment.
func (s *Service) Assign(ctx context.Context, serviceID uuid.UUID, req transport.AssignServiceRequest) (transport.AssignmentResponse, error) {
	category, err := s.repo.GetServiceCategory(ctx, serviceID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	statuses := []string{"approved"}
	if req.Pool == "trial" {
		statuses = []string{"trial_period"}
	}

	pool, err := s.repo.EligiblePartners(ctx, serviceID, statuses)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	if len(pool) == 0 {
		return transport.AssignmentResponse{}, apperr.NotFound("no eligible partners for this service")
	}

	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	picked, err := s.pick(ctx, cfg, category, pool)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	assignment, created, err := s.repo.Insert(ctx, repository.InsertParams{
		ServiceID:      serviceID,
		PartnerID:      picked.PartnerID,
		Status:         repository.StatusAssigned,
		Assigned:       true,
		CommissionRate: s.cfg.GetDefaultCommissionRate(),
		CommissionType: s.cfg.GetDefaultCommissionType(),
	})
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	if created {
		s.bus.Publish(ctx, events.ServiceAssigned{
			BaseEvent:    events.NewBaseEvent(),
			AssignmentID: assignment.ID,
			ServiceID:    serviceID,
			PartnerID:    picked.PartnerID,
			Strategy:     cfg.Strategy,
		})
	}

	return toAssignmentResponse(assignment, created), nil
}

func (s *Service) pick(ctx context.Context, cfg repository.Config, category string, pool []domain.Candidate) (domain.Candidate, error) {
	switch cfg.Strategy {
	case domain.StrategyRatingBased:
		return domain.SelectRatingBased(pool)
	case domain.StrategyCombined:
		cur, err := s.cursor.Next(ctx, category)
		if err != nil {
			return domain.Candidate{}, err
		}
		return domain.SelectCombined(pool, cfg.Weights, cur)
	default:
		cur, err := s.cursor.Next(ctx, category)
		if err != nil {
			return domain.Candidate{}, err
		}
		return domain.SelectRoundRobin(pool, cur)
	}
}

// AddToPortfolio idempotently adds a service to a partner's portfolio. A
// repeated call returns the first call's row instead of erroring.
func (s *Service) AddToPortfolio(ctx context.Context, serviceID uuid.UUID, req transport.AddToPortfolioRequest) (transport.AssignmentResponse, error) {
	assignment, created, err := s.repo.Insert(ctx, repository.InsertParams{
		ServiceID:      serviceID,
		PartnerID:      req.PartnerID,
		Status:         repository.StatusAvailable,
		CommissionRate: s.cfg.GetDefaultCommissionRate(),
		CommissionType: s.cfg.GetDefaultCommissionType(),
	})
	if err != nil {
		return transport.AssignmentResponse{}, err
	}

	return toAssignmentResponse(assignment, created), nil
}

// Complete stamps an assignment completed, feeding the completed-volume
// tie-break of the rating strategy.
func (s *Service) Complete(ctx context.Context, assignmentID uuid.UUID) (transport.AssignmentResponse, error) {
	assignment, err := s.repo.Complete(ctx, assignmentID)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	return toAssignmentResponse(assignment, false), nil
}

func toStrategyResponse(cfg repository.Config) transport.StrategyResponse {
	return transport.StrategyResponse{
		Strategy:       cfg.Strategy,
		WeightRating:   cfg.Weights.Rating,
		WeightLoad:     cfg.Weights.Load,
		WeightResponse: cfg.Weights.Response,
		UpdatedAt:      cfg.UpdatedAt,
	}
}

func toAssignmentResponse(a repository.Assignment, created bool) transport.AssignmentResponse {
	return transport.AssignmentResponse{
		ID:             a.ID,
		ServiceID:      a.ServiceID,
		PartnerID:      a.PartnerID,
		Status:         a.Status,
		AssignedDate:   a.AssignedDate,
		CompletionDate: a.CompletionDate,
		CommissionRate: a.CommissionRate,
		CommissionType: a.CommissionType,
		Created:        created,
	}
}
