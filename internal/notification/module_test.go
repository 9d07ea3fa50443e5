package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"tradeportal_backend/internal/events"
	"tradeportal_backend/internal/notification/outbox"
	"tradeportal_backend/platform/logger"

	"github.com/google/uuid"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string           { return "https://portal.example.com" }
func (testNotificationConfig) GetFollowUpDelay() time.Duration { return 72 * time.Hour }

type testSender struct {
	sentCalls      int
	revisedCalls   int
	counteredCalls int
	followUpCalls  int
	acceptedCalls  int
	rejectedCalls  int
	lastToEmail    string
	lastOrderRef   string
}

func (s *testSender) SendQuotationSentEmail(_ context.Context, toEmail, _, orderRef, _, _, _ string) error {
	s.sentCalls++
	s.lastToEmail = toEmail
	s.lastOrderRef = orderRef
	return nil
}

func (s *testSender) SendQuotationRevisedEmail(_ context.Context, toEmail, _, orderRef, _, _, _ string) error {
	s.revisedCalls++
	s.lastToEmail = toEmail
	s.lastOrderRef = orderRef
	return nil
}

func (s *testSender) SendQuotationCounteredEmail(_ context.Context, toEmail, _, orderRef, _, _, _ string) error {
	s.counteredCalls++
	s.lastToEmail = toEmail
	s.lastOrderRef = orderRef
	return nil
}

func (s *testSender) SendQuotationFollowUpEmail(_ context.Context, toEmail, _, orderRef, _ string) error {
	s.followUpCalls++
	s.lastToEmail = toEmail
	s.lastOrderRef = orderRef
	return nil
}

func (s *testSender) SendQuotationAcceptedEmail(_ context.Context, toEmail, _, orderRef, _ string) error {
	s.acceptedCalls++
	s.lastToEmail = toEmail
	s.lastOrderRef = orderRef
	return nil
}

func (s *testSender) SendQuotationRejectedEmail(_ context.Context, toEmail, _, orderRef, _ string) error {
	s.rejectedCalls++
	s.lastToEmail = toEmail
	s.lastOrderRef = orderRef
	return nil
}

type testFollowUpScheduler struct {
	calls   int
	orderID uuid.UUID
	runAt   time.Time
}

func (s *testFollowUpScheduler) ScheduleQuotationFollowUp(_ context.Context, orderID, _, _ uuid.UUID, runAt time.Time) error {
	s.calls++
	s.orderID = orderID
	s.runAt = runAt
	return nil
}

func TestHandleQuotationSentWithoutPoolSkipsEmail(t *testing.T) {
	sender := &testSender{}
	m := New(nil, sender, testNotificationConfig{}, logger.New("development"))

	err := m.handleQuotationSent(context.Background(), events.QuotationSent{
		BaseEvent:  events.NewBaseEvent(),
		OrderID:    uuid.New(),
		TenantID:   uuid.New(),
		CustomerID: uuid.New(),
		OrderTotal: "1250.00",
	})
	if err != nil {
		t.Fatalf("handleQuotationSent returned error: %v", err)
	}
	if sender.sentCalls != 0 {
		t.Fatalf("expected no direct sends without an outbox, got %d", sender.sentCalls)
	}
}

func TestHandleQuotationSentSchedulesFollowUp(t *testing.T) {
	scheduler := &testFollowUpScheduler{}
	m := New(nil, &testSender{}, testNotificationConfig{}, logger.New("development"))
	m.SetFollowUpScheduler(scheduler)

	orderID := uuid.New()
	before := time.Now()
	err := m.handleQuotationSent(context.Background(), events.QuotationSent{
		BaseEvent:  events.NewBaseEvent(),
		OrderID:    orderID,
		TenantID:   uuid.New(),
		CustomerID: uuid.New(),
		OrderTotal: "980.50",
	})
	if err != nil {
		t.Fatalf("handleQuotationSent returned error: %v", err)
	}

	if scheduler.calls != 1 {
		t.Fatalf("expected follow-up to be scheduled once, got %d", scheduler.calls)
	}
	if scheduler.orderID != orderID {
		t.Fatalf("follow-up scheduled for wrong order: got %s want %s", scheduler.orderID, orderID)
	}
	wantEarliest := before.Add(72 * time.Hour)
	if scheduler.runAt.Before(wantEarliest) {
		t.Fatalf("follow-up scheduled too early: %s before %s", scheduler.runAt, wantEarliest)
	}
}

func TestProcessQuotationEmailOutboxRoutesTemplates(t *testing.T) {
	payload, err := json.Marshal(quotationEmailPayload{
		ToEmail:     "inkoop@bouwbedrijf.example.com",
		ContactName: "J. van den Berg",
		OrderRef:    "7A1B2C3D",
		Total:       "1250.00",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	cases := []struct {
		template string
		calls    func(s *testSender) int
	}{
		{templateQuotationSent, func(s *testSender) int { return s.sentCalls }},
		{templateQuotationRevised, func(s *testSender) int { return s.revisedCalls }},
		{templateQuotationCountered, func(s *testSender) int { return s.counteredCalls }},
		{templateQuotationFollowUp, func(s *testSender) int { return s.followUpCalls }},
		{templateQuotationAccepted, func(s *testSender) int { return s.acceptedCalls }},
		{templateQuotationRejected, func(s *testSender) int { return s.rejectedCalls }},
	}

	for _, tc := range cases {
		sender := &testSender{}
		m := New(nil, sender, testNotificationConfig{}, logger.New("development"))

		rec := outbox.Record{ID: uuid.New(), Kind: kindEmail, Template: tc.template, Payload: payload}
		if err := m.processQuotationEmailOutbox(context.Background(), rec); err != nil {
			t.Fatalf("template %s: unexpected error: %v", tc.template, err)
		}
		if got := tc.calls(sender); got != 1 {
			t.Fatalf("template %s: expected exactly one send, got %d", tc.template, got)
		}
		if sender.lastToEmail != "inkoop@bouwbedrijf.example.com" {
			t.Fatalf("template %s: wrong recipient %q", tc.template, sender.lastToEmail)
		}
		if sender.lastOrderRef != "7A1B2C3D" {
			t.Fatalf("template %s: wrong order ref %q", tc.template, sender.lastOrderRef)
		}
	}
}

func TestProcessQuotationEmailOutboxSkipsEmptyRecipient(t *testing.T) {
	payload, err := json.Marshal(quotationEmailPayload{ContactName: "J. van den Berg"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	sender := &testSender{}
	m := New(nil, sender, testNotificationConfig{}, logger.New("development"))

	rec := outbox.Record{ID: uuid.New(), Kind: kindEmail, Template: templateQuotationSent, Payload: payload}
	if err := m.processQuotationEmailOutbox(context.Background(), rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.sentCalls != 0 {
		t.Fatalf("expected no send for empty recipient, got %d", sender.sentCalls)
	}
}

func TestComputeOutboxRetryDelay(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Minute},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{5, 16 * time.Minute},
		{7, 60 * time.Minute},
		{12, 60 * time.Minute},
	}
	for _, tc := range cases {
		if got := computeOutboxRetryDelay(tc.attempt); got != tc.want {
			t.Errorf("attempt %d: got %s want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestCustomerContactDisplayName(t *testing.T) {
	full := customerContact{CompanyName: "Bouwbedrijf Jansen BV", ContactName: "J. van den Berg"}
	if got := full.DisplayName(); got != "J. van den Berg" {
		t.Fatalf("expected contact name to win, got %q", got)
	}

	companyOnly := customerContact{CompanyName: "Bouwbedrijf Jansen BV"}
	if got := companyOnly.DisplayName(); got != "Bouwbedrijf Jansen BV" {
		t.Fatalf("expected company fallback, got %q", got)
	}

	empty := customerContact{}
	if got := empty.DisplayName(); got != defaultContactName {
		t.Fatalf("expected default fallback, got %q", got)
	}
}

func TestPortalOrderURLAndShortRef(t *testing.T) {
	m := New(nil, &testSender{}, testNotificationConfig{}, logger.New("development"))

	orderID := uuid.MustParse("7a1b2c3d-0000-4000-8000-000000000000")
	want := "https://portal.example.com/orders/7a1b2c3d-0000-4000-8000-000000000000"
	if got := m.portalOrderURL(orderID); got != want {
		t.Fatalf("portalOrderURL: got %q want %q", got, want)
	}
	if got := shortOrderRef(orderID); got != "7A1B2C3D" {
		t.Fatalf("shortOrderRef: got %q want %q", got, "7A1B2C3D")
	}
}
