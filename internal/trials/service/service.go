// Package service holds the business logic of the trial evaluation tracker.
package service

import (
	"context"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/trials/domain"
	"marketplace_backend/internal/trials/repository"
	"marketplace_backend/internal/trials/transport"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
)

// Repo is the persistence surface the tracker needs. Satisfied by
// *repository.Repository; faked in tests.
type Repo interface {
	SeedForPartner(ctx context.Context, partnerID uuid.UUID) (int, error)
	Create(ctx context.Context, partnerID, serviceID uuid.UUID) (repository.Trial, bool, error)
	Start(ctx context.Context, trialID uuid.UUID) (repository.Trial, error)
	RecordOutcome(ctx context.Context, trialID uuid.UUID, status string, f repository.OutcomeFields) (repository.Trial, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]repository.Trial, error)
	StatusesByPartner(ctx context.Context, partnerID uuid.UUID) ([]string, error)
}

// Promoter advances a partner out of the trial period. Implemented by the
// lifecycle service.
type Promoter interface {
	ApproveFromTrial(ctx context.Context, partnerID uuid.UUID) error
}

type Service struct {
	repo     Repo
	promoter Promoter
	bus      events.Bus
	log      *logger.Logger
}

func New(repo Repo, promoter Promoter, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, promoter: promoter, bus: bus, log: log}
}

// StartForPartner seeds one trial per portfolio service when a partner
// enters the trial period.
func (s *Service) StartForPartner(ctx context.Context, partnerID uuid.UUID) (int, error) {
	return s.repo.SeedForPartner(ctx, partnerID)
}

// Create adds a single trial service to a partner's evaluation.
func (s *Service) Create(ctx context.Context, partnerID uuid.UUID, req transport.CreateTrialRequest) (transport.TrialResponse, error) {
	trial, created, err := s.repo.Create(ctx, partnerID, req.ServiceID)
	if err != nil {
		return transport.TrialResponse{}, err
	}
	return toResponse(trial, created), nil
}

// Start flips an assigned trial to in_progress.
func (s *Service) Start(ctx context.Context, trialID uuid.UUID) (transport.TrialResponse, error) {
	trial, err := s.repo.Start(ctx, trialID)
	if err != nil {
		return transport.TrialResponse{}, err
	}
	s.log.StateTransition("trial", trialID.String(), domain.StatusAssigned, domain.StatusInProgress, "admin")
	return toResponse(trial, false), nil
}

// RecordOutcome closes an in-progress trial, deriving completed or failed
// from the threshold rule.
func (s *Service) RecordOutcome(ctx context.Context, trialID uuid.UUID, req transport.RecordOutcomeRequest) (transport.TrialResponse, error) {
	status := domain.EvaluateOutcome(req.QualityRating, *req.OnTimeDelivery)

	trial, err := s.repo.RecordOutcome(ctx, trialID, status, repository.OutcomeFields{
		QualityRating:  req.QualityRating,
		OnTimeDelivery: *req.OnTimeDelivery,
		ResponseRating: req.ResponseRating,
		Feedback:       req.Feedback,
	})
	if err != nil {
		return transport.TrialResponse{}, err
	}

	s.bus.Publish(ctx, events.TrialOutcomeRecorded{
		BaseEvent: events.NewBaseEvent(),
		TrialID:   trial.ID,
		PartnerID: trial.PartnerID,
		Status:    trial.Status,
	})
	s.log.StateTransition("trial", trialID.String(), domain.StatusInProgress, status, "admin")

	return toResponse(trial, false), nil
}

// HandleTrialOutcomeRecorded re-evaluates readiness whenever a trial closes,
// so a partner is promoted as soon as their last trial completes without an
// admin having to trigger the evaluation.
func (s *Service) HandleTrialOutcomeRecorded(ctx context.Context, e events.Event) error {
	rec, ok := e.(events.TrialOutcomeRecorded)
	if !ok {
		return nil
	}

	result, err := s.EvaluateReadiness(ctx, rec.PartnerID)
	if err != nil {
		return err
	}
	if result.Promoted {
		s.log.Info("partner promoted after final trial", "partnerId", rec.PartnerID, "completed", result.Completed)
	}
	return nil
}

// EvaluateReadiness aggregates a partner's trial outcomes and promotes them
// when every trial completed and at least one exists. A failed trial blocks
// promotion but never auto-rejects.
func (s *Service) EvaluateReadiness(ctx context.Context, partnerID uuid.UUID) (transport.EvaluationResponse, error) {
	statuses, err := s.repo.StatusesByPartner(ctx, partnerID)
	if err != nil {
		return transport.EvaluationResponse{}, err
	}

	result := transport.EvaluationResponse{PartnerID: partnerID, Total: len(statuses)}
	for _, status := range statuses {
		switch status {
		case domain.StatusCompleted:
			result.Completed++
		case domain.StatusFailed:
			result.Failed++
		case domain.StatusInProgress:
			result.InProgress++
		default:
			result.Assigned++
		}
	}

	if !domain.ReadyForPromotion(statuses) {
		return result, nil
	}

	if err := s.promoter.ApproveFromTrial(ctx, partnerID); err != nil {
		return transport.EvaluationResponse{}, err
	}
	result.Promoted = true
	return result, nil
}

func (s *Service) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]transport.TrialResponse, error) {
	trials, err := s.repo.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.TrialResponse, 0, len(trials))
	for _, trial := range trials {
		out = append(out, toResponse(trial, false))
	}
	return out, nil
}

func toResponse(trial repository.Trial, created bool) transport.TrialResponse {
	resp := transport.TrialResponse{
		ID:             trial.ID,
		PartnerID:      trial.PartnerID,
		ServiceID:      trial.ServiceID,
		Status:         trial.Status,
		QualityRating:  trial.QualityRating,
		OnTimeDelivery: trial.OnTimeDelivery,
		ResponseRating: trial.ResponseRating,
		CreatedAt:      trial.CreatedAt,
		Created:        created,
	}
	if trial.Feedback != nil {
		resp.Feedback = *trial.Feedback
	}
	return resp
}
