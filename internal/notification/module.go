// Package notification turns negotiation domain events into outbox-backed
// email notifications. Domain modules publish events and stay unaware of
// recipients, templates, and SMTP; this module owns that edge.
//
// Customer contacts and tenant sales inboxes live in read-model tables synced
// from the platform's identity service; this service only reads them.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"tradeportal_backend/internal/email"
	"tradeportal_backend/internal/events"
	"tradeportal_backend/internal/notification/outbox"
	"tradeportal_backend/platform/config"
	"tradeportal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FollowUpScheduler schedules a quotation follow-up reminder task.
type FollowUpScheduler interface {
	ScheduleQuotationFollowUp(ctx context.Context, orderID, tenantID, customerID uuid.UUID, runAt time.Time) error
}

const (
	kindEmail = "email"

	templateQuotationSent      = "quotation_sent"
	templateQuotationRevised   = "quotation_revised"
	templateQuotationCountered = "quotation_countered"
	templateQuotationFollowUp  = "quotation_follow_up"
	templateQuotationAccepted  = "quotation_accepted"
	templateQuotationRejected  = "quotation_rejected"

	invalidOutboxPayloadPrefix = "invalid payload: "
	maxOutboxRetryAttempts     = 5
	outboxRetryBaseDelay       = time.Minute
	outboxRetryMaxDelay        = 60 * time.Minute

	contactCacheTTL     = 10 * time.Minute
	defaultTeamName     = "verkoopteam"
	defaultContactName  = "relatie"
	portalOrderPathFmt  = "%s/orders/%s"
	shortOrderRefLength = 8
)

// quotationEmailPayload is the JSON body of every email outbox row this
// module writes. Note carries the message, revision notes, or rejection
// reason depending on the template.
type quotationEmailPayload struct {
	ToEmail     string `json:"toEmail"`
	ContactName string `json:"contactName"`
	OrderID     string `json:"orderId"`
	OrderRef    string `json:"orderRef"`
	PortalURL   string `json:"portalUrl,omitempty"`
	Total       string `json:"total,omitempty"`
	Note        string `json:"note,omitempty"`
}

// customerContact is the read-model row for a customer's billing contact.
type customerContact struct {
	CompanyName string
	ContactName string
	Email       string
}

type cachedContact struct {
	contact   customerContact
	expiresAt time.Time
}

type cachedInbox struct {
	email      string
	tenantName string
	expiresAt  time.Time
}

// Module handles all notification-related event subscriptions.
type Module struct {
	pool         *pgxpool.Pool
	sender       email.Sender
	cfg          config.NotificationConfig
	log          *logger.Logger
	outboxRepo   *outbox.Repository
	followUp     FollowUpScheduler
	contactCache sync.Map // map[string]cachedContact, keyed "tenant/customer"
	inboxCache   sync.Map // map[uuid.UUID]cachedInbox
}

// New creates a new notification module.
func New(pool *pgxpool.Pool, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		pool:   pool,
		sender: sender,
		cfg:    cfg,
		log:    log,
	}
}

// SetNotificationOutbox injects the outbox repository. Without it, events are
// logged and dropped instead of queued for delivery.
func (m *Module) SetNotificationOutbox(repo *outbox.Repository) {
	m.outboxRepo = repo
}

// SetFollowUpScheduler injects the follow-up reminder scheduler.
func (m *Module) SetFollowUpScheduler(s FollowUpScheduler) {
	m.followUp = s
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuotationSent{}.EventName(), m)
	bus.Subscribe(events.QuotationAccepted{}.EventName(), m)
	bus.Subscribe(events.QuotationRejected{}.EventName(), m)
	bus.Subscribe(events.QuotationRevised{}.EventName(), m)
	bus.Subscribe(events.QuotationCountered{}.EventName(), m)
	bus.Subscribe(events.ShareLinkCreated{}.EventName(), m)
	bus.Subscribe(events.QuotationFollowUpDue{}.EventName(), m)
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuotationSent:
		return m.handleQuotationSent(ctx, e)
	case events.QuotationAccepted:
		return m.handleQuotationAccepted(ctx, e)
	case events.QuotationRejected:
		return m.handleQuotationRejected(ctx, e)
	case events.QuotationRevised:
		return m.handleQuotationRevised(ctx, e)
	case events.QuotationCountered:
		return m.handleQuotationCountered(ctx, e)
	case events.ShareLinkCreated:
		return m.handleShareLinkCreated(ctx, e)
	case events.QuotationFollowUpDue:
		return m.handleQuotationFollowUpDue(ctx, e)
	case events.NotificationOutboxDue:
		return m.handleNotificationOutboxDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleQuotationSent(ctx context.Context, e events.QuotationSent) error {
	contact, ok := m.resolveCustomerContact(ctx, e.TenantID, e.CustomerID)
	if !ok {
		m.log.Info("no contact for customer; quotation sent email skipped",
			"orderId", e.OrderID, "customerId", e.CustomerID)
	} else {
		m.enqueueEmail(ctx, e.TenantID, templateQuotationSent, quotationEmailPayload{
			ToEmail:     contact.Email,
			ContactName: contact.DisplayName(),
			OrderID:     e.OrderID.String(),
			OrderRef:    shortOrderRef(e.OrderID),
			PortalURL:   m.portalOrderURL(e.OrderID),
			Total:       e.OrderTotal,
			Note:        e.Message,
		})
	}

	m.scheduleFollowUp(ctx, e)
	return nil
}

func (m *Module) handleQuotationAccepted(ctx context.Context, e events.QuotationAccepted) error {
	inbox, ok := m.resolveSalesInbox(ctx, e.TenantID)
	if !ok {
		m.log.Info("no sales inbox for tenant; quotation accepted email skipped",
			"orderId", e.OrderID, "tenantId", e.TenantID)
		return nil
	}
	m.enqueueEmail(ctx, e.TenantID, templateQuotationAccepted, quotationEmailPayload{
		ToEmail:     inbox.email,
		ContactName: inbox.teamName(),
		OrderID:     e.OrderID.String(),
		OrderRef:    shortOrderRef(e.OrderID),
		Total:       e.OrderTotal,
	})
	return nil
}

func (m *Module) handleQuotationRejected(ctx context.Context, e events.QuotationRejected) error {
	inbox, ok := m.resolveSalesInbox(ctx, e.TenantID)
	if !ok {
		m.log.Info("no sales inbox for tenant; quotation rejected email skipped",
			"orderId", e.OrderID, "tenantId", e.TenantID)
		return nil
	}
	m.enqueueEmail(ctx, e.TenantID, templateQuotationRejected, quotationEmailPayload{
		ToEmail:     inbox.email,
		ContactName: inbox.teamName(),
		OrderID:     e.OrderID.String(),
		OrderRef:    shortOrderRef(e.OrderID),
		Note:        e.Reason,
	})
	return nil
}

func (m *Module) handleQuotationRevised(ctx context.Context, e events.QuotationRevised) error {
	contact, ok := m.resolveCustomerContact(ctx, e.TenantID, e.CustomerID)
	if !ok {
		m.log.Info("no contact for customer; quotation revised email skipped",
			"orderId", e.OrderID, "customerId", e.CustomerID)
		return nil
	}
	m.enqueueEmail(ctx, e.TenantID, templateQuotationRevised, quotationEmailPayload{
		ToEmail:     contact.Email,
		ContactName: contact.DisplayName(),
		OrderID:     e.OrderID.String(),
		OrderRef:    shortOrderRef(e.OrderID),
		PortalURL:   m.portalOrderURL(e.OrderID),
		Total:       e.OrderTotal,
		Note:        e.Notes,
	})
	return nil
}

func (m *Module) handleQuotationCountered(ctx context.Context, e events.QuotationCountered) error {
	inbox, ok := m.resolveSalesInbox(ctx, e.TenantID)
	if !ok {
		m.log.Info("no sales inbox for tenant; quotation countered email skipped",
			"orderId", e.OrderID, "tenantId", e.TenantID)
		return nil
	}
	m.enqueueEmail(ctx, e.TenantID, templateQuotationCountered, quotationEmailPayload{
		ToEmail:     inbox.email,
		ContactName: inbox.teamName(),
		OrderID:     e.OrderID.String(),
		OrderRef:    shortOrderRef(e.OrderID),
		PortalURL:   m.portalOrderURL(e.OrderID),
		Total:       e.OrderTotal,
		Note:        e.Notes,
	})
	return nil
}

func (m *Module) handleShareLinkCreated(ctx context.Context, e events.ShareLinkCreated) error {
	// Share links are handed to the customer by sales; no email is sent.
	m.log.Info("share link created",
		"orderId", e.OrderID, "tenantId", e.TenantID, "actorId", e.ActorID)
	return nil
}

func (m *Module) handleQuotationFollowUpDue(ctx context.Context, e events.QuotationFollowUpDue) error {
	contact, ok := m.resolveCustomerContact(ctx, e.TenantID, e.CustomerID)
	if !ok {
		m.log.Info("no contact for customer; follow-up email skipped",
			"orderId", e.OrderID, "customerId", e.CustomerID)
		return nil
	}
	m.enqueueEmail(ctx, e.TenantID, templateQuotationFollowUp, quotationEmailPayload{
		ToEmail:     contact.Email,
		ContactName: contact.DisplayName(),
		OrderID:     e.OrderID.String(),
		OrderRef:    shortOrderRef(e.OrderID),
		PortalURL:   m.portalOrderURL(e.OrderID),
	})
	return nil
}

func (m *Module) scheduleFollowUp(ctx context.Context, e events.QuotationSent) {
	if m.followUp == nil {
		m.log.Debug("follow-up scheduler not configured; reminder skipped", "orderId", e.OrderID)
		return
	}
	delay := m.cfg.GetFollowUpDelay()
	if delay <= 0 {
		return
	}
	runAt := time.Now().Add(delay)
	if err := m.followUp.ScheduleQuotationFollowUp(ctx, e.OrderID, e.TenantID, e.CustomerID, runAt); err != nil {
		m.log.Error("failed to schedule quotation follow-up", "orderId", e.OrderID, "error", err)
		return
	}
	m.log.Info("quotation follow-up scheduled", "orderId", e.OrderID, "runAt", runAt)
}

// enqueueEmail writes an outbox row for asynchronous delivery. Failures are
// logged, not returned; a lost notification must never fail the negotiation
// action that triggered it.
func (m *Module) enqueueEmail(ctx context.Context, tenantID uuid.UUID, template string, payload quotationEmailPayload) {
	if m.outboxRepo == nil {
		m.log.Debug("notification outbox not configured; enqueue skipped",
			"tenantId", tenantID, "template", template)
		return
	}
	id, err := m.outboxRepo.Insert(ctx, outbox.InsertParams{
		TenantID: tenantID,
		Kind:     kindEmail,
		Template: template,
		Payload:  payload,
	})
	if err != nil {
		m.log.Error("failed to enqueue outbox message",
			"tenantId", tenantID, "template", template, "error", err)
		return
	}
	m.log.Info("outbox message enqueued",
		"outboxId", id.String(), "kind", kindEmail, "template", template, "tenantId", tenantID)
}

// =============================================================================
// Outbox delivery
// =============================================================================

func (m *Module) handleNotificationOutboxDue(ctx context.Context, e events.NotificationOutboxDue) error {
	if m.outboxRepo == nil {
		m.log.Debug("notification outbox repository not configured; skipping outbox due event",
			"outboxId", e.OutboxID, "tenantId", e.TenantID)
		return nil
	}

	rec, process, err := m.prepareOutboxRecord(ctx, e.OutboxID)
	if err != nil || !process {
		if err != nil {
			m.log.Error("failed to prepare outbox record", "outboxId", e.OutboxID, "error", err)
		}
		return err
	}

	if rec.Kind != kindEmail {
		m.markOutboxUnsupported(ctx, rec)
		return nil
	}

	if processErr := m.processQuotationEmailOutbox(ctx, rec); processErr != nil {
		m.handleOutboxDeliveryError(ctx, rec, processErr)
		return processErr
	}
	return nil
}

func (m *Module) prepareOutboxRecord(ctx context.Context, outboxID uuid.UUID) (outbox.Record, bool, error) {
	rec, err := m.outboxRepo.GetByID(ctx, outboxID)
	if err != nil {
		return outbox.Record{}, false, err
	}
	if rec.Status == outbox.StatusSucceeded {
		m.log.Debug("outbox record already succeeded; skipping", "outboxId", rec.ID.String())
		return rec, false, nil
	}
	if err := m.outboxRepo.MarkProcessing(ctx, rec.ID); err != nil {
		return outbox.Record{}, false, err
	}
	return rec, true, nil
}

func (m *Module) processQuotationEmailOutbox(ctx context.Context, rec outbox.Record) error {
	var payload quotationEmailPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		_ = m.outboxRepo.MarkFailed(ctx, rec.ID, invalidOutboxPayloadPrefix+err.Error())
		return nil
	}
	if strings.TrimSpace(payload.ToEmail) == "" {
		m.log.Debug("outbox email payload has no recipient; marking succeeded", "outboxId", rec.ID.String())
		_ = m.outboxRepo.MarkSucceeded(ctx, rec.ID)
		return nil
	}

	var err error
	switch rec.Template {
	case templateQuotationSent:
		err = m.sender.SendQuotationSentEmail(ctx, payload.ToEmail, payload.ContactName, payload.OrderRef, payload.PortalURL, payload.Total, payload.Note)
	case templateQuotationRevised:
		err = m.sender.SendQuotationRevisedEmail(ctx, payload.ToEmail, payload.ContactName, payload.OrderRef, payload.PortalURL, payload.Total, payload.Note)
	case templateQuotationCountered:
		err = m.sender.SendQuotationCounteredEmail(ctx, payload.ToEmail, payload.ContactName, payload.OrderRef, payload.PortalURL, payload.Total, payload.Note)
	case templateQuotationFollowUp:
		err = m.sender.SendQuotationFollowUpEmail(ctx, payload.ToEmail, payload.ContactName, payload.OrderRef, payload.PortalURL)
	case templateQuotationAccepted:
		err = m.sender.SendQuotationAcceptedEmail(ctx, payload.ToEmail, payload.ContactName, payload.OrderRef, payload.Total)
	case templateQuotationRejected:
		err = m.sender.SendQuotationRejectedEmail(ctx, payload.ToEmail, payload.ContactName, payload.OrderRef, payload.Note)
	default:
		m.markOutboxUnsupported(ctx, rec)
		return nil
	}
	if err != nil {
		return err
	}

	_ = m.outboxRepo.MarkSucceeded(ctx, rec.ID)
	m.log.Info("email outbox delivered",
		"outboxId", rec.ID.String(), "template", rec.Template, "toEmail", payload.ToEmail)
	return nil
}

func (m *Module) markOutboxUnsupported(ctx context.Context, rec outbox.Record) {
	msg := fmt.Sprintf("unsupported outbox kind/template: %s/%s", rec.Kind, rec.Template)
	_ = m.outboxRepo.MarkFailed(ctx, rec.ID, msg)
	m.log.Warn("unsupported outbox record", "outboxId", rec.ID.String(), "kind", rec.Kind, "template", rec.Template)
}

func (m *Module) handleOutboxDeliveryError(ctx context.Context, rec outbox.Record, deliveryErr error) {
	attempt := rec.Attempts + 1
	if attempt >= maxOutboxRetryAttempts {
		_ = m.outboxRepo.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Warn("notification outbox exhausted retries",
			"outboxId", rec.ID.String(),
			"template", rec.Template,
			"attempt", attempt,
			"maxAttempts", maxOutboxRetryAttempts,
			"error", deliveryErr,
		)
		return
	}

	retryAt := time.Now().UTC().Add(computeOutboxRetryDelay(attempt))
	if err := m.outboxRepo.ScheduleRetry(ctx, rec.ID, retryAt, deliveryErr.Error()); err != nil {
		_ = m.outboxRepo.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Error("notification outbox retry scheduling failed; marked failed",
			"outboxId", rec.ID.String(), "attempt", attempt, "error", err)
		return
	}

	m.log.Warn("notification outbox scheduled retry",
		"outboxId", rec.ID.String(),
		"template", rec.Template,
		"attempt", attempt,
		"maxAttempts", maxOutboxRetryAttempts,
		"retryAt", retryAt,
		"error", deliveryErr,
	)
}

func computeOutboxRetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := outboxRetryBaseDelay << (attempt - 1)
	if delay > outboxRetryMaxDelay {
		return outboxRetryMaxDelay
	}
	return delay
}

// =============================================================================
// Recipient resolution (platform-synced read models)
// =============================================================================

func (c customerContact) DisplayName() string {
	if c.ContactName != "" {
		return c.ContactName
	}
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return defaultContactName
}

func (c cachedInbox) teamName() string {
	if c.tenantName != "" {
		return "verkoopteam " + c.tenantName
	}
	return defaultTeamName
}

func (m *Module) resolveCustomerContact(ctx context.Context, tenantID, customerID uuid.UUID) (customerContact, bool) {
	if m.pool == nil || tenantID == uuid.Nil || customerID == uuid.Nil {
		return customerContact{}, false
	}

	key := tenantID.String() + "/" + customerID.String()
	if cached, ok := m.contactCache.Load(key); ok {
		entry := cached.(cachedContact)
		if time.Now().Before(entry.expiresAt) {
			return entry.contact, entry.contact.Email != ""
		}
		m.contactCache.Delete(key)
	}

	var contact customerContact
	err := m.pool.QueryRow(ctx,
		`SELECT company_name, contact_name, email
		   FROM tp_customer_contacts
		  WHERE tenant_id = $1 AND customer_id = $2`,
		tenantID, customerID,
	).Scan(&contact.CompanyName, &contact.ContactName, &contact.Email)
	if err != nil {
		return customerContact{}, false
	}

	contact.Email = strings.TrimSpace(contact.Email)
	m.contactCache.Store(key, cachedContact{contact: contact, expiresAt: time.Now().Add(contactCacheTTL)})
	return contact, contact.Email != ""
}

func (m *Module) resolveSalesInbox(ctx context.Context, tenantID uuid.UUID) (cachedInbox, bool) {
	if m.pool == nil || tenantID == uuid.Nil {
		return cachedInbox{}, false
	}

	if cached, ok := m.inboxCache.Load(tenantID); ok {
		entry := cached.(cachedInbox)
		if time.Now().Before(entry.expiresAt) {
			return entry, entry.email != ""
		}
		m.inboxCache.Delete(tenantID)
	}

	var inbox cachedInbox
	err := m.pool.QueryRow(ctx,
		`SELECT name, sales_inbox_email FROM tp_tenants WHERE tenant_id = $1`,
		tenantID,
	).Scan(&inbox.tenantName, &inbox.email)
	if err != nil {
		return cachedInbox{}, false
	}

	inbox.email = strings.TrimSpace(inbox.email)
	inbox.expiresAt = time.Now().Add(contactCacheTTL)
	m.inboxCache.Store(tenantID, inbox)
	return inbox, inbox.email != ""
}

func (m *Module) portalOrderURL(orderID uuid.UUID) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	return fmt.Sprintf(portalOrderPathFmt, base, orderID.String())
}

func shortOrderRef(orderID uuid.UUID) string {
	return strings.ToUpper(orderID.String()[:shortOrderRefLength])
}
