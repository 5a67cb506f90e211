package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"gopkg.in/gomail.v2"
)

var emailTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .button { display: inline-block; padding: 10px 20px; background-color: #3498db; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>{{.Title}}</h2>
    </div>

    <div class="content">
        <p>{{.Body}}</p>
        {{if .Link}}
        <p style="text-align: center;">
            <a href="{{.Link}}" class="button">Open worksheet</a>
        </p>
        {{end}}
    </div>

    <div class="footer">
        <p>You are receiving this email because of activity on a worksheet involving you.</p>
    </div>
</body>
</html>`))

type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends notification emails over SMTP.
type Mailer struct {
	cfg    MailerConfig
	logger *slog.Logger
}

func NewMailer(cfg MailerConfig, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// SendTo renders the notification into the shared email template and
// delivers it to the given address.
func (m *Mailer) SendTo(ctx context.Context, email string, n Notification) error {
	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, n); err != nil {
		return fmt.Errorf("render notification email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", n.Title)
	msg.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}

	m.logger.Info("notification email sent", "recipient_id", n.RecipientID)
	return nil
}
