package email

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	subjectInvitation = "You're invited to join the partner program"
	subjectApproval   = "Your partner application has been approved"
	subjectRejection  = "Update on your partner application"
)

type baseEmailData struct {
	Title   string
	Heading string
}

type invitationEmailData struct {
	baseEmailData
	FullName string
}

type approvalEmailData struct {
	baseEmailData
	BusinessName string
}

type rejectionEmailData struct {
	baseEmailData
	BusinessName string
	Reason       string
}

func renderEmailTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
