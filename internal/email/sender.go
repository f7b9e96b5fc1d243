// Package email implements the outbound email channel of the notification
// dispatcher.
package email

import (
	"context"

	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
)

// Sender mirrors notification.Sender so this package stays import-free of
// the notification module.
type Sender interface {
	SendInvitationEmail(ctx context.Context, toEmail, fullName string) error
	SendApprovalEmail(ctx context.Context, toEmail, businessName string) error
	SendRejectionEmail(ctx context.Context, toEmail, businessName, reason string) error
}

// NewSender selects the SMTP sender when email is enabled, and a log-only
// sender otherwise (local development without an SMTP server).
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email disabled; notifications will be logged only")
		return &logSender{log: log}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

type logSender struct {
	log *logger.Logger
}

func (s *logSender) SendInvitationEmail(_ context.Context, toEmail, fullName string) error {
	s.log.Info("email skipped", "kind", "invitation", "to", toEmail, "fullName", fullName)
	return nil
}

func (s *logSender) SendApprovalEmail(_ context.Context, toEmail, businessName string) error {
	s.log.Info("email skipped", "kind", "approval", "to", toEmail, "businessName", businessName)
	return nil
}

func (s *logSender) SendRejectionEmail(_ context.Context, toEmail, businessName, reason string) error {
	s.log.Info("email skipped", "kind", "rejection", "to", toEmail, "businessName", businessName, "reason", reason)
	return nil
}
