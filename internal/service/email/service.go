package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"

	"github.com/resend/resend-go/v3"
	"go.uber.org/zap"

	"human-connection/internal/config"
	"human-connection/internal/pkg/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

type Service interface {
	SendSignupEmail(ctx context.Context, toEmail, name string) error
	SendEmailVerification(ctx context.Context, toEmail, name, nonce string) error
}

type service struct {
	client  *resend.Client
	catalog *i18n.Catalog
	config  *config.Config
	logger  *zap.Logger
}

func NewService(cfg *config.Config, catalog *i18n.Catalog, logger *zap.Logger) Service {
	return &service{
		client:  resend.NewClient(cfg.ResendAPIKey),
		catalog: catalog,
		config:  cfg,
		logger:  logger,
	}
}

// message is what every template renders. Text holds the localized strings of
// one EMAILS section.
type message struct {
	Text   map[string]string
	Footer string
	Name   string
	Email  string
	Nonce  string
	Link   string
}

func render(templateName string, msg message) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		return "", fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", msg); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func (s *service) compose(section string, msg message) message {
	locale := s.config.EmailLocale
	msg.Text = s.catalog.Section(locale, "emails."+section)
	msg.Footer = s.catalog.Translate(locale, "emails.footer")
	return msg
}

func (s *service) sendEmail(toEmail, templateName string, msg message) error {
	body, err := render(templateName, msg)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Human Connection <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body,
		Subject: msg.Text["subject"],
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Warn("email delivery failed", zap.String("template", templateName), zap.Error(err))
		return err
	}
	s.logger.Debug("email sent", zap.String("template", templateName), zap.String("id", sent.Id))
	return nil
}

func (s *service) SendSignupEmail(ctx context.Context, toEmail, name string) error {
	msg := s.compose("signup", message{
		Name: name,
		Link: s.config.ClientURI + "/login",
	})
	return s.sendEmail(toEmail, "signup.html", msg)
}

func (s *service) SendEmailVerification(ctx context.Context, toEmail, name, nonce string) error {
	query := url.Values{"email": {toEmail}, "nonce": {nonce}}
	msg := s.compose("verification", message{
		Name:  name,
		Email: toEmail,
		Nonce: nonce,
		Link:  s.config.ClientURI + "/settings/my-email-address/verify?" + query.Encode(),
	})
	return s.sendEmail(toEmail, "email_verification.html", msg)
}
