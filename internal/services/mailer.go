package services

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	notifdomain "github.com/partaj-app/partaj-backend/internal/domain/notifications"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
	"github.com/partaj-app/partaj-backend/internal/platform/sendgrid"
)

// MailTemplates maps notification types to SendGrid dynamic template
// IDs. Loaded from a YAML file so template rotations do not need a
// redeploy.
type MailTemplates struct {
	Templates map[string]string `yaml:"templates"`
}

func LoadMailTemplates(path string) (*MailTemplates, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mail templates: %w", err)
	}
	var cfg MailTemplates
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &cfg, nil
}

func (t *MailTemplates) For(notificationType string) string {
	if t == nil {
		return ""
	}
	return t.Templates[notificationType]
}

// MailerService dispatches one templated email per recipient. A nil
// mail client means the provider is unconfigured and sends are silently
// skipped; delivery failures are logged, never propagated, so a failed
// send can never roll back the transition that triggered it.
type MailerService interface {
	Send(ctx context.Context, notificationType, toEmail, toName string, data map[string]any)
}

type mailerService struct {
	log       *logger.Logger
	client    sendgrid.Client
	templates *MailTemplates
}

func NewMailerService(log *logger.Logger, client sendgrid.Client, templates *MailTemplates) MailerService {
	serviceLog := log.With("service", "MailerService")
	return &mailerService{log: serviceLog, client: client, templates: templates}
}

func (ms *mailerService) Send(ctx context.Context, notificationType, toEmail, toName string, data map[string]any) {
	if ms.client == nil {
		return
	}
	templateID := ms.templates.For(notificationType)
	if templateID == "" {
		ms.log.Warn("no mail template configured", "notification_type", notificationType)
		return
	}

	_, err := ms.client.Send(ctx, sendgrid.SendEmailRequest{
		To:                  []sendgrid.EmailAddress{{Email: toEmail, Name: toName}},
		TemplateID:          templateID,
		DynamicTemplateData: data,
		Categories:          []string{"partaj", notificationType},
	})
	if err != nil {
		ms.log.Warn("mail send failed", "notification_type", notificationType, "error", err)
	}
}

// DefaultMailTemplates backs deployments that never mount a template
// file; real IDs come from environment-specific YAML.
func DefaultMailTemplates() *MailTemplates {
	return &MailTemplates{Templates: map[string]string{
		notifdomain.TypeReferralSent:           "",
		notifdomain.TypeReferralAssigned:       "",
		notifdomain.TypeReferralUnitAssigned:   "",
		notifdomain.TypeReferralUnitUnassigned: "",
		notifdomain.TypeRequesterAdded:         "",
		notifdomain.TypeObserverAdded:          "",
		notifdomain.TypeUrgencyLevelChanged:    "",
		notifdomain.TypeNewMessage:             "",
		notifdomain.TypeValidationRequested:    "",
		notifdomain.TypeValidationPerformed:    "",
		notifdomain.TypeVersionAdded:           "",
		notifdomain.TypeReferralAnswered:       "",
		notifdomain.TypeReferralClosed:         "",
	}}
}
