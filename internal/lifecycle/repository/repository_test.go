package repository

import (
	"testing"

	"marketplace_backend/internal/notification/outbox"
)

func TestInvitationParamsForClaimedLead(t *testing.T) {
	p := invitationParams("lena@example.com", "Lena Fischer")

	if p.Kind != outbox.KindInvitation {
		t.Errorf("kind = %s, want %s", p.Kind, outbox.KindInvitation)
	}
	if p.TargetEmail != "lena@example.com" {
		t.Errorf("target = %s, want the claimed lead's email", p.TargetEmail)
	}
	payload, ok := p.Payload.(map[string]string)
	if !ok {
		t.Fatalf("payload = %T, want map[string]string", p.Payload)
	}
	if payload["fullName"] != "Lena Fischer" {
		t.Errorf("payload fullName = %q, want the claimed lead's name", payload["fullName"])
	}
}
