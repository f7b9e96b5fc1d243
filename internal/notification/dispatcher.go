// Package notification delivers outbound status-change notifications with
// retry and backoff. It is invoked internally only; failures are soft and
// never unwind the business transition that triggered them.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace_backend/internal/notification/outbox"
	"marketplace_backend/platform/logger"
)

const maxAttempts = 3

// ErrDeliveryFailed is returned after all delivery attempts are exhausted.
// Callers treat it as a warning, not a transaction failure.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Sender is the outbound email channel owned by the dispatcher.
type Sender interface {
	SendInvitationEmail(ctx context.Context, toEmail, fullName string) error
	SendApprovalEmail(ctx context.Context, toEmail, businessName string) error
	SendRejectionEmail(ctx context.Context, toEmail, businessName, reason string) error
}

// InvitationPayload is the outbox payload for invitation notifications.
type InvitationPayload struct {
	FullName string `json:"fullName"`
}

// ApprovalPayload is the outbox payload for approval notifications.
type ApprovalPayload struct {
	BusinessName string `json:"businessName"`
}

// RejectionPayload is the outbox payload for rejection notifications.
type RejectionPayload struct {
	BusinessName string `json:"businessName"`
	Reason       string `json:"reason"`
}

// Dispatcher attempts delivery up to three times with exponential backoff
// (2^attempt seconds between attempts). A transport error and a non-success
// response are treated identically.
type Dispatcher struct {
	sender Sender
	log    *logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewDispatcher creates a dispatcher over the given outbound channel.
func NewDispatcher(sender Sender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		log:    log,
		sleep:  sleepContext,
	}
}

// Send delivers one notification, retrying with backoff. On exhaustion it
// logs the final outcome for manual follow-up and returns ErrDeliveryFailed.
func (d *Dispatcher) Send(ctx context.Context, kind outbox.Kind, targetEmail string, payload json.RawMessage) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = d.deliver(ctx, kind, targetEmail, payload)
		if lastErr == nil {
			d.log.NotificationOutcome(string(kind), targetEmail, attempt, nil)
			return nil
		}

		if attempt < maxAttempts {
			backoff := time.Duration(1<<attempt) * time.Second
			if err := d.sleep(ctx, backoff); err != nil {
				lastErr = err
				break
			}
		}
	}

	d.log.NotificationOutcome(string(kind), targetEmail, maxAttempts, lastErr)
	return fmt.Errorf("%w: %v", ErrDeliveryFailed, lastErr)
}

func (d *Dispatcher) deliver(ctx context.Context, kind outbox.Kind, targetEmail string, payload json.RawMessage) error {
	switch kind {
	case outbox.KindInvitation:
		var p InvitationPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("invitation payload: %w", err)
		}
		return d.sender.SendInvitationEmail(ctx, targetEmail, p.FullName)
	case outbox.KindApproval:
		var p ApprovalPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("approval payload: %w", err)
		}
		return d.sender.SendApprovalEmail(ctx, targetEmail, p.BusinessName)
	case outbox.KindRejection:
		var p RejectionPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("rejection payload: %w", err)
		}
		return d.sender.SendRejectionEmail(ctx, targetEmail, p.BusinessName, p.Reason)
	default:
		return fmt.Errorf("unknown notification kind %q", kind)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
