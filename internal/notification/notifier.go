package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"FlowTagger/internal/config"
	"FlowTagger/internal/model"
	"FlowTagger/internal/report"

	"github.com/gomarkdown/markdown"
)

// EmailNotifier implements the Notifier interface for sending emails.
type EmailNotifier struct {
	cfg  config.SMTPConfig
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	var auth smtp.Auth
	if cfg.Username != "" {
		// PlainAuth will not send credentials until the server identifies itself as a trusted one.
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &EmailNotifier{cfg: cfg, auth: auth, send: smtp.SendMail}
}

// Send sends an email to the configured recipients.
func (n *EmailNotifier) Send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, n.auth, n.cfg.From, n.recipients(), n.message(subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (n *EmailNotifier) recipients() []string {
	var to []string
	for _, r := range strings.Split(n.cfg.To, ",") {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return to
}

func (n *EmailNotifier) message(subject, body string) []byte {
	return []byte("To: " + n.cfg.To + "\r\n" +
		"From: " + n.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		body)
}

// ReportHTML renders the report summary as HTML, listing at most top tags.
func ReportHTML(r *model.Report, top int) string {
	return string(markdown.ToHTML([]byte(report.Markdown(r, top)), nil, nil))
}

// NotifyReport sends the report summary through notifier.
func NotifyReport(notifier model.Notifier, subject string, r *model.Report, top int) error {
	return notifier.Send(subject, ReportHTML(r, top))
}
