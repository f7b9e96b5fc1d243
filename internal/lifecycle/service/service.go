// Package service holds the business logic of the partner lifecycle.
package service

import (
	"context"
	"strings"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/lifecycle/domain"
	"marketplace_backend/internal/lifecycle/repository"
	"marketplace_backend/internal/lifecycle/transport"
	"marketplace_backend/internal/notification/outbox"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
)

// TrialStarter creates the trial rows for a partner entering the trial
// period. Implemented by the trials module; wired in at composition time to
// keep the modules decoupled.
type TrialStarter interface {
	StartForPartner(ctx context.Context, partnerID uuid.UUID) (int, error)
}

// Repo is the persistence surface the lifecycle needs. Satisfied by
// *repository.Repository; faked in tests.
type Repo interface {
	ConvertLead(ctx context.Context, p repository.ConvertLeadParams) (repository.Partner, repository.Application, string, error)
	Transition(ctx context.Context, p repository.TransitionParams) (repository.Partner, repository.Application, error)
	GetPartner(ctx context.Context, id uuid.UUID) (repository.Partner, error)
	GetApplicationByPartner(ctx context.Context, partnerID uuid.UUID) (repository.Application, error)
	ListPartners(ctx context.Context, params repository.ListPartnersParams) (repository.ListPartnersResult, error)
	BindUser(ctx context.Context, partnerID, userID uuid.UUID) (repository.Partner, error)
}

type Service struct {
	repo   Repo
	bus    events.Bus
	log    *logger.Logger
	trials TrialStarter
}

func New(repo Repo, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// SetTrialStarter wires the trials module in after both services exist.
func (s *Service) SetTrialStarter(t TrialStarter) { s.trials = t }

// ConvertLead promotes a lead into a partner with a submitted application.
// Concurrent conversions of the same lead resolve to exactly one winner.
func (s *Service) ConvertLead(ctx context.Context, leadID uuid.UUID, req transport.ConvertLeadRequest) (transport.ConvertLeadResponse, error) {
	partnerType := req.PartnerType
	if partnerType == "" {
		partnerType = "personal"
	}

	partner, app, priorStatus, err := s.repo.ConvertLead(ctx, repository.ConvertLeadParams{
		LeadID:          leadID,
		BusinessName:    strings.TrimSpace(req.BusinessName),
		PartnerType:     partnerType,
		BusinessDetails: req.BusinessDetails,
		Experience:      req.Experience,
		Qualifications:  req.Qualifications,
		PortfolioLinks:  req.PortfolioLinks,
	})
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		PartnerID: partner.ID,
		Email:     partner.ContactEmail,
	})
	s.log.StateTransition("lead", leadID.String(), priorStatus, "converted", "admin")

	return transport.ConvertLeadResponse{
		Partner:     toPartnerResponse(partner),
		Application: toApplicationResponse(app),
	}, nil
}

// Advance moves a partner exactly one step along the lifecycle. The target
// must be the immediate successor of the current status; skipping stages
// fails with InvalidTransition. Entering the trial period seeds the
// partner's trial services; reaching approved queues the approval email and
// unlocks order routing.
func (s *Service) Advance(ctx context.Context, partnerID uuid.UUID, req transport.AdvanceRequest) (transport.PartnerResponse, error) {
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return transport.PartnerResponse{}, err
	}

	next, err := partner.Status.Next()
	if err != nil {
		return transport.PartnerResponse{}, apperr.InvalidTransition(err.Error())
	}
	if target := domain.Status(req.TargetStatus); target != next {
		return transport.PartnerResponse{}, apperr.InvalidTransition(
			"cannot transition from " + string(partner.Status) + " to " + req.TargetStatus)
	}

	if next == domain.StatusApproved {
		return s.approve(ctx, partner)
	}

	params := repository.TransitionParams{
		PartnerID: partnerID,
		From:      partner.Status,
		To:        next,
	}
	if next == domain.StatusScreening {
		params.AppStatus = repository.AppStatusUnderReview
	}

	updated, _, err := s.repo.Transition(ctx, params)
	if err != nil {
		return transport.PartnerResponse{}, err
	}

	s.publishStatusChange(ctx, partnerID, partner.Status, next)

	if next == domain.StatusTrialPeriod && s.trials != nil {
		count, err := s.trials.StartForPartner(ctx, partnerID)
		if err != nil {
			s.log.Error("failed to seed trial services", "error", err, "partnerId", partnerID)
		} else {
			s.log.Info("trial services seeded", "partnerId", partnerID, "count", count)
		}
	}

	return toPartnerResponse(updated), nil
}

// ApproveFromTrial completes the lifecycle for a partner whose trial period
// passed evaluation.
func (s *Service) ApproveFromTrial(ctx context.Context, partnerID uuid.UUID) error {
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return err
	}
	if partner.Status != domain.StatusTrialPeriod {
		return apperr.InvalidTransition("partner is " + string(partner.Status) + ", not trial_period")
	}
	_, err = s.approve(ctx, partner)
	return err
}

func (s *Service) approve(ctx context.Context, partner repository.Partner) (transport.PartnerResponse, error) {
	updated, _, err := s.repo.Transition(ctx, repository.TransitionParams{
		PartnerID:     partner.ID,
		From:          partner.Status,
		To:            domain.StatusApproved,
		AppStatus:     repository.AppStatusApproved,
		SetReviewDate: true,
		Outbox: &outbox.InsertParams{
			Kind:        outbox.KindApproval,
			TargetEmail: partner.ContactEmail,
			Payload:     map[string]string{"businessName": partner.BusinessName},
		},
	})
	if err != nil {
		return transport.PartnerResponse{}, err
	}

	s.publishStatusChange(ctx, partner.ID, partner.Status, domain.StatusApproved)
	s.bus.Publish(ctx, events.PartnerApproved{
		BaseEvent:    events.NewBaseEvent(),
		PartnerID:    partner.ID,
		ContactEmail: partner.ContactEmail,
	})

	return toPartnerResponse(updated), nil
}

// Reject closes an application with a mandatory reason. Approved partners
// cannot be rejected; suspend them instead.
func (s *Service) Reject(ctx context.Context, partnerID uuid.UUID, req transport.RejectApplicationRequest) (transport.PartnerResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return transport.PartnerResponse{}, apperr.Validation("rejection reason is required")
	}

	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	if !partner.Status.CanReject() {
		return transport.PartnerResponse{}, apperr.InvalidTransition("cannot reject a partner that is " + string(partner.Status))
	}

	updated, _, err := s.repo.Transition(ctx, repository.TransitionParams{
		PartnerID:       partnerID,
		From:            partner.Status,
		To:              domain.StatusRejected,
		AppStatus:       repository.AppStatusRejected,
		SetReviewDate:   true,
		RejectionReason: reason,
		Outbox: &outbox.InsertParams{
			Kind:        outbox.KindRejection,
			TargetEmail: partner.ContactEmail,
			Payload: map[string]string{
				"businessName": partner.BusinessName,
				"reason":       reason,
			},
		},
	})
	if err != nil {
		return transport.PartnerResponse{}, err
	}

	s.publishStatusChange(ctx, partnerID, partner.Status, domain.StatusRejected)
	s.bus.Publish(ctx, events.PartnerRejected{
		BaseEvent:    events.NewBaseEvent(),
		PartnerID:    partnerID,
		ContactEmail: partner.ContactEmail,
		Reason:       reason,
	})

	return toPartnerResponse(updated), nil
}

// Suspend pauses a partner at any active stage. The current stage is
// recorded so reinstatement can resume from it.
func (s *Service) Suspend(ctx context.Context, partnerID uuid.UUID) (transport.PartnerResponse, error) {
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	if !partner.Status.CanSuspend() {
		return transport.PartnerResponse{}, apperr.InvalidTransition("cannot suspend a partner that is " + string(partner.Status))
	}

	updated, _, err := s.repo.Transition(ctx, repository.TransitionParams{
		PartnerID:      partnerID,
		From:           partner.Status,
		To:             domain.StatusSuspended,
		RecordPrevious: true,
	})
	if err != nil {
		return transport.PartnerResponse{}, err
	}

	s.publishStatusChange(ctx, partnerID, partner.Status, domain.StatusSuspended)
	return toPartnerResponse(updated), nil
}

// Reinstate resumes a suspended partner at the stage the caller names. The
// caller supplies the resume target because the state machine keeps only the
// current status, not its history.
func (s *Service) Reinstate(ctx context.Context, partnerID uuid.UUID, req transport.ReinstateRequest) (transport.PartnerResponse, error) {
	target := domain.Status(req.ResumeStatus)
	if !domain.ValidResumeTarget(target) {
		return transport.PartnerResponse{}, apperr.Validation("invalid resume status: " + req.ResumeStatus)
	}

	updated, _, err := s.repo.Transition(ctx, repository.TransitionParams{
		PartnerID:     partnerID,
		From:          domain.StatusSuspended,
		To:            target,
		ClearPrevious: true,
	})
	if err != nil {
		return transport.PartnerResponse{}, err
	}

	s.publishStatusChange(ctx, partnerID, domain.StatusSuspended, target)
	return toPartnerResponse(updated), nil
}

// GetApplication returns the application plus the partner's lifecycle
// position for the dashboard progress widget.
func (s *Service) GetApplication(ctx context.Context, partnerID uuid.UUID) (transport.ApplicationStatusResponse, error) {
	app, err := s.repo.GetApplicationByPartner(ctx, partnerID)
	if err != nil {
		return transport.ApplicationStatusResponse{}, err
	}
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return transport.ApplicationStatusResponse{}, err
	}

	return transport.ApplicationStatusResponse{
		Application:   toApplicationResponse(app),
		PartnerStatus: string(partner.Status),
		ProgressSteps: progressSteps(partner.Status),
	}, nil
}

func (s *Service) GetPartner(ctx context.Context, partnerID uuid.UUID) (transport.PartnerResponse, error) {
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return toPartnerResponse(partner), nil
}

func (s *Service) ListPartners(ctx context.Context, req transport.ListPartnersRequest) (transport.ListPartnersResponse, error) {
	result, err := s.repo.ListPartners(ctx, repository.ListPartnersParams{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return transport.ListPartnersResponse{}, err
	}

	items := make([]transport.PartnerResponse, 0, len(result.Items))
	for _, partner := range result.Items {
		items = append(items, toPartnerResponse(partner))
	}

	return transport.ListPartnersResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// BindUser links an authenticated account to a partner.
func (s *Service) BindUser(ctx context.Context, partnerID uuid.UUID, req transport.BindUserRequest) (transport.PartnerResponse, error) {
	partner, err := s.repo.BindUser(ctx, partnerID, req.UserID)
	if err != nil {
		return transport.PartnerResponse{}, err
	}
	return toPartnerResponse(partner), nil
}

func (s *Service) publishStatusChange(ctx context.Context, partnerID uuid.UUID, from, to domain.Status) {
	s.bus.Publish(ctx, events.PartnerStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		PartnerID: partnerID,
		OldStatus: string(from),
		NewStatus: string(to),
	})
	s.log.StateTransition("partner", partnerID.String(), string(from), string(to), "admin")
}

func progressSteps(current domain.Status) []transport.ProgressStep {
	idx := current.Index()
	steps := make([]transport.ProgressStep, 0, 5)
	for i, st := range domain.Progression() {
		steps = append(steps, transport.ProgressStep{
			Status:  string(st),
			Reached: idx >= 0 && i <= idx,
			Current: st == current,
		})
	}
	return steps
}

func toPartnerResponse(p repository.Partner) transport.PartnerResponse {
	return transport.PartnerResponse{
		ID:                 p.ID,
		UserID:             p.UserID,
		BusinessName:       p.BusinessName,
		ContactEmail:       p.ContactEmail,
		PartnerType:        p.PartnerType,
		Status:             string(p.Status),
		AverageRating:      p.AverageRating,
		AvgResponseMinutes: p.AvgResponseMinutes,
		CreatedAt:          p.CreatedAt,
	}
}

func toApplicationResponse(app repository.Application) transport.ApplicationResponse {
	resp := transport.ApplicationResponse{
		ID:              app.ID,
		PartnerID:       app.PartnerID,
		Status:          app.Status,
		BusinessDetails: app.BusinessDetails,
		Experience:      app.Experience,
		Qualifications:  app.Qualifications,
		PortfolioLinks:  app.PortfolioLinks,
		ApplicationDate: app.ApplicationDate,
		ReviewDate:      app.ReviewDate,
	}
	if app.RejectionReason != nil {
		resp.RejectionReason = *app.RejectionReason
	}
	if app.PreviousStatus != nil {
		resp.PreviousStatus = *app.PreviousStatus
	}
	return resp
}
