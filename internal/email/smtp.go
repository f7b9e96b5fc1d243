package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers notification emails over a direct SMTP connection
// via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendInvitationEmail(ctx context.Context, toEmail, fullName string) error {
	content, err := renderEmailTemplate("invitation.html", invitationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Welcome to the partner program",
			Heading: "Welcome to the partner program",
		},
		FullName: fullName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectInvitation, content)
}

func (s *SMTPSender) SendApprovalEmail(ctx context.Context, toEmail, businessName string) error {
	content, err := renderEmailTemplate("approval.html", approvalEmailData{
		baseEmailData: baseEmailData{
			Title:   "Application approved",
			Heading: "Application approved",
		},
		BusinessName: businessName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectApproval, content)
}

func (s *SMTPSender) SendRejectionEmail(ctx context.Context, toEmail, businessName, reason string) error {
	content, err := renderEmailTemplate("rejection.html", rejectionEmailData{
		baseEmailData: baseEmailData{
			Title:   "Application update",
			Heading: "Application update",
		},
		BusinessName: businessName,
		Reason:       reason,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectRejection, content)
}
