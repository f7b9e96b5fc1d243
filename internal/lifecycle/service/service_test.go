package service

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"marketplace_backend/internal/events"
	"marketplace_backend/internal/lifecycle/domain"
	"marketplace_backend/internal/lifecycle/repository"
	"marketplace_backend/internal/lifecycle/transport"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	convertParams repository.ConvertLeadParams
	priorStatus   string
	partner       repository.Partner
	application   repository.Application
	transitions   []repository.TransitionParams
}

func (f *fakeRepo) ConvertLead(_ context.Context, p repository.ConvertLeadParams) (repository.Partner, repository.Application, string, error) {
	f.convertParams = p
	return f.partner, f.application, f.priorStatus, nil
}

func (f *fakeRepo) Transition(_ context.Context, p repository.TransitionParams) (repository.Partner, repository.Application, error) {
	f.transitions = append(f.transitions, p)
	partner := f.partner
	partner.Status = p.To
	return partner, f.application, nil
}

func (f *fakeRepo) GetPartner(_ context.Context, _ uuid.UUID) (repository.Partner, error) {
	return f.partner, nil
}

func (f *fakeRepo) GetApplicationByPartner(_ context.Context, _ uuid.UUID) (repository.Application, error) {
	return f.application, nil
}

func (f *fakeRepo) ListPartners(_ context.Context, _ repository.ListPartnersParams) (repository.ListPartnersResult, error) {
	return repository.ListPartnersResult{}, nil
}

func (f *fakeRepo) BindUser(_ context.Context, _, userID uuid.UUID) (repository.Partner, error) {
	partner := f.partner
	partner.UserID = &userID
	return partner, nil
}

func captureLogger(buf *bytes.Buffer) *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
}

func TestConvertLeadDefaultsPartnerType(t *testing.T) {
	repo := &fakeRepo{priorStatus: "invited"}
	svc := New(repo, events.NewInMemoryBus(logger.New("test")), logger.New("test"))

	_, err := svc.ConvertLead(context.Background(), uuid.New(), transport.ConvertLeadRequest{
		BusinessName: "  Acme Cleaning  ",
	})
	if err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}

	if repo.convertParams.PartnerType != "personal" {
		t.Errorf("partner type = %q, want personal when omitted", repo.convertParams.PartnerType)
	}
	if repo.convertParams.BusinessName != "Acme Cleaning" {
		t.Errorf("business name = %q, want it trimmed", repo.convertParams.BusinessName)
	}
}

func TestConvertLeadLogsClaimedStatus(t *testing.T) {
	// Conversion may claim a lead that is still new, not only an invited
	// one; the audit line must carry the status the claim actually found.
	repo := &fakeRepo{
		priorStatus: "new",
		partner: repository.Partner{
			ID:           uuid.New(),
			BusinessName: "Acme Cleaning",
			ContactEmail: "lena@example.com",
			Status:       domain.StatusPending,
		},
	}

	var buf bytes.Buffer
	svc := New(repo, events.NewInMemoryBus(logger.New("test")), captureLogger(&buf))

	if _, err := svc.ConvertLead(context.Background(), uuid.New(), transport.ConvertLeadRequest{
		BusinessName: "Acme Cleaning",
	}); err != nil {
		t.Fatalf("ConvertLead: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"from":"new"`) {
		t.Errorf("transition log = %s, want from=new", out)
	}
	if !strings.Contains(out, `"to":"converted"`) {
		t.Errorf("transition log = %s, want to=converted", out)
	}
}
