package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"marketplace_backend/internal/notification/outbox"
	"marketplace_backend/platform/logger"
)

type fakeSender struct {
	failures int
	calls    int
}

func (f *fakeSender) send() error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (f *fakeSender) SendInvitationEmail(context.Context, string, string) error { return f.send() }
func (f *fakeSender) SendApprovalEmail(context.Context, string, string) error   { return f.send() }
func (f *fakeSender) SendRejectionEmail(context.Context, string, string, string) error {
	return f.send()
}

func newTestDispatcher(sender Sender) (*Dispatcher, *[]time.Duration) {
	d := NewDispatcher(sender, logger.New("test"))
	var slept []time.Duration
	d.sleep = func(_ context.Context, dur time.Duration) error {
		slept = append(slept, dur)
		return nil
	}
	return d, &slept
}

func TestSendSucceedsOnThirdAttempt(t *testing.T) {
	sender := &fakeSender{failures: 2}
	d, slept := newTestDispatcher(sender)

	payload, _ := json.Marshal(ApprovalPayload{BusinessName: "Acme"})
	err := d.Send(context.Background(), outbox.KindApproval, "partner@example.com", payload)
	if err != nil {
		t.Fatalf("Send after two failures: %v", err)
	}

	if sender.calls != 3 {
		t.Errorf("sender called %d times, want 3", sender.calls)
	}
	// Backoff doubles per attempt: 2s after the first failure, 4s after the
	// second.
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("slept %v, want %v", *slept, want)
	}
	for i, dur := range want {
		if (*slept)[i] != dur {
			t.Errorf("backoff %d = %v, want %v", i+1, (*slept)[i], dur)
		}
	}
}

func TestSendExhaustsRetriesWithSoftFailure(t *testing.T) {
	sender := &fakeSender{failures: 5}
	d, slept := newTestDispatcher(sender)

	payload, _ := json.Marshal(RejectionPayload{BusinessName: "Acme", Reason: "incomplete"})
	err := d.Send(context.Background(), outbox.KindRejection, "partner@example.com", payload)
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("err = %v, want ErrDeliveryFailed", err)
	}

	if sender.calls != 3 {
		t.Errorf("sender called %d times, want exactly 3", sender.calls)
	}
	if len(*slept) != 2 {
		t.Errorf("slept %d times, want 2 (no sleep after the final attempt)", len(*slept))
	}
}

func TestSendFirstAttemptSuccessSkipsBackoff(t *testing.T) {
	sender := &fakeSender{}
	d, slept := newTestDispatcher(sender)

	payload, _ := json.Marshal(InvitationPayload{FullName: "Jane Doe"})
	if err := d.Send(context.Background(), outbox.KindInvitation, "jane@example.com", payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sender.calls != 1 || len(*slept) != 0 {
		t.Errorf("calls = %d, sleeps = %d; want 1 call and 0 sleeps", sender.calls, len(*slept))
	}
}

func TestSendUnknownKind(t *testing.T) {
	d, _ := newTestDispatcher(&fakeSender{})

	err := d.Send(context.Background(), outbox.Kind("newsletter"), "a@example.com", json.RawMessage(`{}`))
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("err = %v, want ErrDeliveryFailed", err)
	}
}
