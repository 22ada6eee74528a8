// Package notification delivers the account emails over SMTP.
package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// Base URL the links in the emails point at, e.g. https://hub.example.com
	PublicBaseURL string
}

type Sender struct {
	dialer    *gomail.Dialer
	from      string
	baseURL   string
	templates *template.Template
}

func NewSender(cfg Config) (*Sender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp host and from address must be set")
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &Sender{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.From,
		baseURL:   cfg.PublicBaseURL,
		templates: templates,
	}, nil
}

func (s *Sender) SendVerificationEmail(ctx context.Context, to string, username string, token string) error {
	link, err := url.JoinPath(s.baseURL, "/api/users/verify_email/", token)
	if err != nil {
		return fmt.Errorf("failed to build verification link: %w", err)
	}

	return s.send(to, "Verify Your Email Address", "verification_email.html", map[string]string{
		"Username": username,
		"Link":     link,
	})
}

func (s *Sender) SendPasswordResetEmail(ctx context.Context, to string, username string, token string) error {
	link, err := url.JoinPath(s.baseURL, "/reset_password/", token)
	if err != nil {
		return fmt.Errorf("failed to build reset link: %w", err)
	}

	return s.send(to, "Password Reset Request", "password_reset_email.html", map[string]string{
		"Username": username,
		"Link":     link,
	})
}

func (s *Sender) send(to string, subject string, templateName string, data any) error {
	buf := new(bytes.Buffer)
	if err := s.templates.ExecuteTemplate(buf, templateName, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", buf.String())

	return s.dialer.DialAndSend(m)
}
