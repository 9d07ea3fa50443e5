package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
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

func (s *SMTPSender) SendQuotationSentEmail(ctx context.Context, toEmail, contactName, orderRef, portalURL, total, message string) error {
	subject := fmt.Sprintf(subjectQuotationSentFmt, orderRef)
	content, err := renderEmailTemplate("quotation_sent.html", quotationSentEmailData{
		baseEmailData: baseEmailData{
			Title:    "Uw offerte staat klaar",
			Heading:  "Uw offerte staat klaar",
			CTALabel: "Bekijk offerte",
			CTAURL:   portalURL,
		},
		ContactName: contactName,
		OrderRef:    orderRef,
		Total:       total,
		Message:     message,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendQuotationRevisedEmail(ctx context.Context, toEmail, contactName, orderRef, portalURL, total, notes string) error {
	subject := fmt.Sprintf(subjectQuotationRevisedFmt, orderRef)
	content, err := renderEmailTemplate("quotation_revised.html", quotationRevisedEmailData{
		baseEmailData: baseEmailData{
			Title:    "Offerte bijgewerkt",
			Heading:  "Offerte bijgewerkt",
			CTALabel: "Bekijk wijzigingen",
			CTAURL:   portalURL,
		},
		ContactName: contactName,
		OrderRef:    orderRef,
		Total:       total,
		Notes:       notes,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendQuotationCounteredEmail(ctx context.Context, toEmail, contactName, orderRef, portalURL, total, notes string) error {
	subject := fmt.Sprintf(subjectQuotationCounteredFmt, orderRef)
	content, err := renderEmailTemplate("quotation_countered.html", quotationCounteredEmailData{
		baseEmailData: baseEmailData{
			Title:    "Tegenvoorstel ontvangen",
			Heading:  "Tegenvoorstel ontvangen",
			CTALabel: "Bekijk tegenvoorstel",
			CTAURL:   portalURL,
		},
		ContactName: contactName,
		OrderRef:    orderRef,
		Total:       total,
		Notes:       notes,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendQuotationFollowUpEmail(ctx context.Context, toEmail, contactName, orderRef, portalURL string) error {
	subject := fmt.Sprintf(subjectQuotationFollowUpFmt, orderRef)
	content, err := renderEmailTemplate("quotation_follow_up.html", quotationFollowUpEmailData{
		baseEmailData: baseEmailData{
			Title:    "Uw offerte wacht op een reactie",
			Heading:  "Uw offerte wacht op een reactie",
			CTALabel: "Bekijk offerte",
			CTAURL:   portalURL,
		},
		ContactName: contactName,
		OrderRef:    orderRef,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendQuotationAcceptedEmail(ctx context.Context, toEmail, contactName, orderRef, total string) error {
	subject := fmt.Sprintf(subjectQuotationAcceptedFmt, orderRef)
	content, err := renderEmailTemplate("quotation_accepted.html", quotationAcceptedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Offerte geaccepteerd",
			Heading: "Offerte geaccepteerd",
		},
		ContactName: contactName,
		OrderRef:    orderRef,
		Total:       total,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendQuotationRejectedEmail(ctx context.Context, toEmail, contactName, orderRef, reason string) error {
	subject := fmt.Sprintf(subjectQuotationRejectedFmt, orderRef)
	content, err := renderEmailTemplate("quotation_rejected.html", quotationRejectedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Offerte afgewezen",
			Heading: "Offerte afgewezen",
		},
		ContactName: contactName,
		OrderRef:    orderRef,
		Reason:      reason,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
