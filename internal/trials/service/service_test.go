package service

import (
	"context"
	"testing"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/trials/domain"
	"marketplace_backend/internal/trials/repository"
	"marketplace_backend/internal/trials/transport"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	statuses map[uuid.UUID][]string
	trials   map[uuid.UUID]repository.Trial
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		statuses: make(map[uuid.UUID][]string),
		trials:   make(map[uuid.UUID]repository.Trial),
	}
}

func (f *fakeRepo) SeedForPartner(_ context.Context, partnerID uuid.UUID) (int, error) {
	return len(f.statuses[partnerID]), nil
}

func (f *fakeRepo) Create(_ context.Context, partnerID, serviceID uuid.UUID) (repository.Trial, bool, error) {
	trial := repository.Trial{ID: uuid.New(), PartnerID: partnerID, ServiceID: serviceID, Status: domain.StatusAssigned}
	f.trials[trial.ID] = trial
	return trial, true, nil
}

func (f *fakeRepo) Start(_ context.Context, trialID uuid.UUID) (repository.Trial, error) {
	trial := f.trials[trialID]
	trial.Status = domain.StatusInProgress
	f.trials[trialID] = trial
	return trial, nil
}

func (f *fakeRepo) RecordOutcome(_ context.Context, trialID uuid.UUID, status string, fields repository.OutcomeFields) (repository.Trial, error) {
	trial := f.trials[trialID]
	trial.Status = status
	trial.QualityRating = &fields.QualityRating
	trial.OnTimeDelivery = &fields.OnTimeDelivery
	f.trials[trialID] = trial
	return trial, nil
}

func (f *fakeRepo) ListByPartner(_ context.Context, partnerID uuid.UUID) ([]repository.Trial, error) {
	var out []repository.Trial
	for _, trial := range f.trials {
		if trial.PartnerID == partnerID {
			out = append(out, trial)
		}
	}
	return out, nil
}

func (f *fakeRepo) StatusesByPartner(_ context.Context, partnerID uuid.UUID) ([]string, error) {
	return f.statuses[partnerID], nil
}

type fakePromoter struct {
	promoted []uuid.UUID
}

func (f *fakePromoter) ApproveFromTrial(_ context.Context, partnerID uuid.UUID) error {
	f.promoted = append(f.promoted, partnerID)
	return nil
}

func newTestService(repo Repo, promoter Promoter) *Service {
	return New(repo, promoter, events.NewInMemoryBus(logger.New("test")), logger.New("test"))
}

func TestEvaluateReadinessPromotesWhenAllCompleted(t *testing.T) {
	repo := newFakeRepo()
	promoter := &fakePromoter{}
	partnerID := uuid.New()
	repo.statuses[partnerID] = []string{domain.StatusCompleted, domain.StatusCompleted}

	svc := newTestService(repo, promoter)
	result, err := svc.EvaluateReadiness(context.Background(), partnerID)
	if err != nil {
		t.Fatalf("EvaluateReadiness: %v", err)
	}

	if !result.Promoted {
		t.Error("Promoted = false, want true")
	}
	if len(promoter.promoted) != 1 || promoter.promoted[0] != partnerID {
		t.Errorf("promoter called with %v, want [%s]", promoter.promoted, partnerID)
	}
	if result.Completed != 2 || result.Total != 2 {
		t.Errorf("result = %+v, want 2 completed of 2", result)
	}
}

func TestEvaluateReadinessMixedOutcomesDoNotPromote(t *testing.T) {
	repo := newFakeRepo()
	promoter := &fakePromoter{}
	partnerID := uuid.New()
	// One trial failed on quality 2, one completed on quality 5 — the failed
	// trial blocks promotion.
	repo.statuses[partnerID] = []string{domain.StatusFailed, domain.StatusCompleted}

	svc := newTestService(repo, promoter)
	result, err := svc.EvaluateReadiness(context.Background(), partnerID)
	if err != nil {
		t.Fatalf("EvaluateReadiness: %v", err)
	}

	if result.Promoted {
		t.Error("Promoted = true, want false")
	}
	if len(promoter.promoted) != 0 {
		t.Errorf("promoter called %d times, want 0", len(promoter.promoted))
	}
	if result.Failed != 1 || result.Completed != 1 {
		t.Errorf("result = %+v, want 1 failed and 1 completed", result)
	}
}

func TestEvaluateReadinessNoTrialsDoesNotPromote(t *testing.T) {
	repo := newFakeRepo()
	promoter := &fakePromoter{}
	svc := newTestService(repo, promoter)

	result, err := svc.EvaluateReadiness(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("EvaluateReadiness: %v", err)
	}
	if result.Promoted || len(promoter.promoted) != 0 {
		t.Error("a partner with zero trials must not be promoted")
	}
}

func TestTrialOutcomeEventPromotesAfterFinalTrial(t *testing.T) {
	repo := newFakeRepo()
	promoter := &fakePromoter{}
	svc := newTestService(repo, promoter)

	partnerID := uuid.New()
	repo.statuses[partnerID] = []string{domain.StatusCompleted, domain.StatusCompleted}

	bus := events.NewInMemoryBus(logger.New("test"))
	bus.Subscribe(events.TrialOutcomeRecorded{}.EventName(),
		events.HandlerFunc(svc.HandleTrialOutcomeRecorded))

	err := bus.PublishSync(context.Background(), events.TrialOutcomeRecorded{
		BaseEvent: events.NewBaseEvent(),
		TrialID:   uuid.New(),
		PartnerID: partnerID,
		Status:    domain.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if len(promoter.promoted) != 1 || promoter.promoted[0] != partnerID {
		t.Errorf("promoter called with %v, want [%s]", promoter.promoted, partnerID)
	}
}

func TestTrialOutcomeEventLeavesOpenTrialsAlone(t *testing.T) {
	repo := newFakeRepo()
	promoter := &fakePromoter{}
	svc := newTestService(repo, promoter)

	partnerID := uuid.New()
	repo.statuses[partnerID] = []string{domain.StatusCompleted, domain.StatusInProgress}

	err := svc.HandleTrialOutcomeRecorded(context.Background(), events.TrialOutcomeRecorded{
		BaseEvent: events.NewBaseEvent(),
		TrialID:   uuid.New(),
		PartnerID: partnerID,
		Status:    domain.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("HandleTrialOutcomeRecorded: %v", err)
	}
	if len(promoter.promoted) != 0 {
		t.Errorf("promoter called %d times, want 0 while a trial is still open", len(promoter.promoted))
	}
}

func TestRecordOutcomeDerivesStatusFromThreshold(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePromoter{})
	ctx := context.Background()

	partnerID := uuid.New()
	created, err := svc.Create(ctx, partnerID, transport.CreateTrialRequest{ServiceID: uuid.New()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Start(ctx, created.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	onTime := true
	resp, err := svc.RecordOutcome(ctx, created.ID, transport.RecordOutcomeRequest{
		QualityRating:  2,
		OnTimeDelivery: &onTime,
	})
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
	if resp.Status != domain.StatusFailed {
		t.Errorf("status = %s, want %s for quality 2", resp.Status, domain.StatusFailed)
	}
}
