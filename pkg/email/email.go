package email

import (
	"bytes"
	"fmt"
	"go-jobboard-backend/config"
	"html/template"
	"mime"
	"net/smtp"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	appURL    string
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NotificationEmailData holds the data rendered into a notification email
type NotificationEmailData struct {
	RecipientName  string
	RecipientEmail string
	Title          string
	Message        string
	ActionURL      string // absolute; internal paths are resolved against the app URL
}

// NewEmailService creates a new email service with Brevo SMTP configuration
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		appURL:    cfg.FrontendURL,
		send:      smtp.SendMail,
	}
}

// notificationEmailTemplate is the HTML template for notification emails
const notificationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0066cc; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #0066cc; margin-top: 10px; }
        .button { display: inline-block; margin-top: 20px; padding: 10px 20px; background: #0066cc; color: white; text-decoration: none; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
        </div>
        <div class="content">
            <p>Hi {{if .RecipientName}}{{.RecipientName}}{{else}}there{{end}},</p>
            <div class="message-box">{{.Message}}</div>
            {{if .ActionURL}}<a class="button" href="{{.ActionURL}}">View details</a>{{end}}
        </div>
        <div class="footer">
            <p>You receive this email because notifications are enabled in your profile settings.</p>
        </div>
    </div>
</body>
</html>`

var notificationTmpl = template.Must(template.New("notification").Parse(notificationEmailTemplate))

// ResolveActionURL turns an in-app path into an absolute link.
func (s *EmailService) ResolveActionURL(ref string) string {
	if ref == "" {
		return ""
	}
	if ref[0] == '/' && (len(ref) == 1 || ref[1] != '/') {
		return s.appURL + ref
	}
	return ref
}

// BuildNotificationMessage renders the full MIME message.
func (s *EmailService) BuildNotificationMessage(data NotificationEmailData) ([]byte, error) {
	var body bytes.Buffer
	if err := notificationTmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		data.RecipientEmail,
		mime.QEncoding.Encode("utf-8", data.Title),
		body.String(),
	))
	return msg, nil
}

// SendNotificationEmail sends one notification to its recipient
func (s *EmailService) SendNotificationEmail(data NotificationEmailData) error {
	msg, err := s.BuildNotificationMessage(data)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{data.RecipientEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
