// Package email provides transactional email delivery for the negotiation
// lifecycle. The Sender interface keeps callers independent from the
// transport; delivery goes through the tenant platform's SMTP relay.
package email

import (
	"context"
	"fmt"

	"tradeportal_backend/platform/config"
)

type Sender interface {
	SendQuotationSentEmail(ctx context.Context, toEmail, contactName, orderRef, portalURL, total, message string) error
	SendQuotationRevisedEmail(ctx context.Context, toEmail, contactName, orderRef, portalURL, total, notes string) error
	SendQuotationCounteredEmail(ctx context.Context, toEmail, contactName, orderRef, portalURL, total, notes string) error
	SendQuotationFollowUpEmail(ctx context.Context, toEmail, contactName, orderRef, portalURL string) error
	SendQuotationAcceptedEmail(ctx context.Context, toEmail, contactName, orderRef, total string) error
	SendQuotationRejectedEmail(ctx context.Context, toEmail, contactName, orderRef, reason string) error
}

// NoopSender is used when email delivery is disabled (no SMTP host
// configured). Every send succeeds without doing anything.
type NoopSender struct{}

func (NoopSender) SendQuotationSentEmail(context.Context, string, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendQuotationRevisedEmail(context.Context, string, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendQuotationCounteredEmail(context.Context, string, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendQuotationFollowUpEmail(context.Context, string, string, string, string) error {
	return nil
}

func (NoopSender) SendQuotationAcceptedEmail(context.Context, string, string, string, string) error {
	return nil
}

func (NoopSender) SendQuotationRejectedEmail(context.Context, string, string, string, string) error {
	return nil
}

// NewSender builds the configured Sender implementation.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	if cfg.GetSMTPHost() == "" {
		return nil, fmt.Errorf("email enabled but SMTP host not configured")
	}
	if cfg.GetEmailFromAddress() == "" {
		return nil, fmt.Errorf("email enabled but from address not configured")
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
