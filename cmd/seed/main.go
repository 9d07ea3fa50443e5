// Command seed loads local development fixtures: notification read-model
// rows and one order per lifecycle stage. Negotiation states are driven
// through the order engine so every seeded aggregate satisfies its
// invariants; the platform-owned statuses are written directly, the way the
// fulfilment side would.
package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"tradeportal_backend/internal/orders/domain"
	ordersrepo "tradeportal_backend/internal/orders/repository"
	"tradeportal_backend/platform/config"
	"tradeportal_backend/platform/db"
	"tradeportal_backend/platform/logger"
	"tradeportal_backend/platform/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

var salesActor = domain.Actor{
	ID:   uuid.MustParse("9d8c7b6a-5e4f-4d3c-8b2a-1f0e9d8c7b01"),
	Name: "Iris Jansen",
	Role: domain.RoleSales,
}

type fixtures struct {
	Tenants  []tenantFixture  `yaml:"tenants"`
	Contacts []contactFixture `yaml:"customerContacts"`
	Orders   []orderFixture   `yaml:"orders"`
}

type tenantFixture struct {
	TenantID        string `yaml:"tenantId"`
	Name            string `yaml:"name"`
	SalesInboxEmail string `yaml:"salesInboxEmail"`
}

type contactFixture struct {
	TenantID    string `yaml:"tenantId"`
	CustomerID  string `yaml:"customerId"`
	CompanyName string `yaml:"companyName"`
	ContactName string `yaml:"contactName"`
	Email       string `yaml:"email"`
}

type itemFixture struct {
	EntityCode string `yaml:"entityCode"`
	Quantity   int    `yaml:"quantity"`
	ListPrice  string `yaml:"listPrice"`
	UnitPrice  string `yaml:"unitPrice"`
	VATRate    string `yaml:"vatRate"`
	IsGiftLine bool   `yaml:"isGiftLine"`
}

// roundFixture is one extra negotiation round on a sent quotation. A revise
// may add a percentage cart discount, a counter may change the first line's
// quantity; both are enough to give the ledger realistic shape.
type roundFixture struct {
	Action          string `yaml:"action"`
	Notes           string `yaml:"notes"`
	InternalNotes   string `yaml:"internalNotes"`
	DiscountPercent string `yaml:"discountPercent"`
	FirstLineQty    int    `yaml:"firstLineQty"`
}

type orderFixture struct {
	OrderID         string         `yaml:"orderId"`
	TenantID        string         `yaml:"tenantId"`
	CustomerID      string         `yaml:"customerId"`
	Lifecycle       string         `yaml:"lifecycle"`
	Message         string         `yaml:"message"`
	RejectionReason string         `yaml:"rejectionReason"`
	ShippingCost    string         `yaml:"shippingCost"`
	Items           []itemFixture  `yaml:"items"`
	Rounds          []roundFixture `yaml:"rounds"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("seeding development fixtures")

	data := defaultFixtures
	if len(os.Args) > 1 {
		data, err = os.ReadFile(os.Args[1])
		if err != nil {
			log.Error("failed to read fixtures file", "path", os.Args[1], "error", err)
			panic("failed to read fixtures file: " + err.Error())
		}
	}

	var fx fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		log.Error("failed to parse fixtures", "error", err)
		panic("failed to parse fixtures: " + err.Error())
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}

	for _, t := range fx.Tenants {
		if err := upsertTenant(ctx, pool, t); err != nil {
			log.Error("failed to upsert tenant", "tenantId", t.TenantID, "error", err)
			return
		}
	}
	log.Info("tenants seeded", "count", len(fx.Tenants))

	for _, c := range fx.Contacts {
		if err := upsertContact(ctx, pool, c); err != nil {
			log.Error("failed to upsert customer contact", "customerId", c.CustomerID, "error", err)
			return
		}
	}
	log.Info("customer contacts seeded", "count", len(fx.Contacts))

	repo := ordersrepo.New(pool)
	seeded := 0
	for _, f := range fx.Orders {
		orderID, err := uuid.Parse(f.OrderID)
		if err != nil {
			log.Error("invalid order id in fixture", "orderId", f.OrderID, "error", err)
			return
		}

		exists, err := orderExists(ctx, pool, orderID)
		if err != nil {
			log.Error("failed to check order existence", "orderId", orderID, "error", err)
			return
		}
		if exists {
			log.Info("order already seeded, skipping", "orderId", orderID)
			continue
		}

		order, err := buildOrder(f, contactName(fx.Contacts, f.CustomerID))
		if err != nil {
			log.Error("failed to build fixture order", "orderId", orderID, "error", err)
			return
		}
		if err := repo.Create(ctx, order); err != nil {
			log.Error("failed to insert fixture order", "orderId", orderID, "error", err)
			return
		}
		log.Info("order seeded", "orderId", orderID, "status", order.Status)
		seeded++
	}

	log.Info("seeding complete", "ordersSeeded", seeded, "ordersSkipped", len(fx.Orders)-seeded)
}

// buildOrder drives one fixture through the order engine until it reaches
// its target lifecycle stage. Timestamps step forward a day per round so the
// seeded history reads like a real negotiation.
func buildOrder(f orderFixture, customerName string) (*domain.Order, error) {
	orderID, err := uuid.Parse(f.OrderID)
	if err != nil {
		return nil, fmt.Errorf("order id: %w", err)
	}
	tenantID, err := uuid.Parse(f.TenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant id: %w", err)
	}
	customerID, err := uuid.Parse(f.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer id: %w", err)
	}

	customerActor := domain.Actor{ID: customerID, Name: customerName, Role: domain.RoleCustomer}

	now := time.Now().UTC().AddDate(0, 0, -14)
	order := domain.NewDraft(orderID, tenantID, customerID, now)

	for _, it := range f.Items {
		input, err := toItemInput(it)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.EntityCode, err)
		}
		order, _, err = domain.AddItem(order, input, now)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.EntityCode, err)
		}
	}
	if f.ShippingCost != "" {
		cost, err := money.FromString(f.ShippingCost)
		if err != nil {
			return nil, fmt.Errorf("shipping cost: %w", err)
		}
		order, err = domain.SetShippingCost(order, cost, now)
		if err != nil {
			return nil, fmt.Errorf("shipping cost: %w", err)
		}
	}

	lifecycle := domain.Status(f.Lifecycle)
	if !lifecycle.Valid() {
		return nil, fmt.Errorf("unknown lifecycle %q", f.Lifecycle)
	}

	advance := func() time.Time {
		now = now.AddDate(0, 0, 1)
		return now
	}

	send := func() error {
		next, err := domain.Apply(order, domain.Send{Message: f.Message}, salesActor, advance())
		if err != nil {
			return err
		}
		order = next
		return nil
	}

	switch lifecycle {
	case domain.StatusDraft:
		// stays as built

	case domain.StatusPendingQuotation:
		// written by the order intake side of the platform, never by the engine
		order.Status = domain.StatusPendingQuotation
		order.UpdatedAt = advance()

	case domain.StatusQuotationSent:
		if err := send(); err != nil {
			return nil, err
		}
		for _, round := range f.Rounds {
			next, err := applyRound(order, round, customerActor, advance())
			if err != nil {
				return nil, err
			}
			order = next
		}

	case domain.StatusAccepted:
		if err := send(); err != nil {
			return nil, err
		}
		next, err := domain.Apply(order, domain.Accept{}, customerActor, advance())
		if err != nil {
			return nil, err
		}
		order = next

	case domain.StatusRejected:
		if err := send(); err != nil {
			return nil, err
		}
		next, err := domain.Apply(order, domain.Reject{Reason: f.RejectionReason}, customerActor, advance())
		if err != nil {
			return nil, err
		}
		order = next

	case domain.StatusConfirmed:
		if err := send(); err != nil {
			return nil, err
		}
		next, err := domain.Apply(order, domain.Accept{}, customerActor, advance())
		if err != nil {
			return nil, err
		}
		order = next
		// confirmation is written by fulfilment after acceptance
		order.Status = domain.StatusConfirmed
		order.UpdatedAt = advance()

	case domain.StatusCancelled:
		if err := send(); err != nil {
			return nil, err
		}
		// cancellation is written by fulfilment, not by the engine
		order.Status = domain.StatusCancelled
		order.UpdatedAt = advance()
	}

	return &order, nil
}

func applyRound(order domain.Order, round roundFixture, customerActor domain.Actor, now time.Time) (domain.Order, error) {
	switch round.Action {
	case "revise":
		delta := domain.RevisionDelta{Notes: round.Notes, InternalNotes: round.InternalNotes}
		if round.DiscountPercent != "" {
			value, err := decimal.NewFromString(round.DiscountPercent)
			if err != nil {
				return domain.Order{}, fmt.Errorf("round discount: %w", err)
			}
			delta.CartDiscountsAdded = []domain.CartDiscountInput{{
				Type:   domain.DiscountPercentage,
				Value:  value,
				Reason: domain.ReasonVolumeDiscount,
			}}
		}
		return domain.Apply(order, domain.Revise{Delta: delta}, salesActor, now)

	case "counter":
		delta := domain.RevisionDelta{Notes: round.Notes, InternalNotes: round.InternalNotes}
		if round.FirstLineQty > 0 && len(order.Items) > 0 {
			delta.ItemsQtyChanged = []domain.QtyChangeInput{{
				LineNumber:  order.Items[0].LineNumber,
				NewQuantity: round.FirstLineQty,
			}}
		}
		return domain.Apply(order, domain.Counter{Delta: delta}, customerActor, now)

	default:
		return domain.Order{}, fmt.Errorf("unknown round action %q", round.Action)
	}
}

func toItemInput(it itemFixture) (domain.NewItemInput, error) {
	listPrice, err := decimal.NewFromString(it.ListPrice)
	if err != nil {
		return domain.NewItemInput{}, fmt.Errorf("list price: %w", err)
	}
	unitPrice, err := decimal.NewFromString(it.UnitPrice)
	if err != nil {
		return domain.NewItemInput{}, fmt.Errorf("unit price: %w", err)
	}
	vatRate, err := decimal.NewFromString(it.VATRate)
	if err != nil {
		return domain.NewItemInput{}, fmt.Errorf("vat rate: %w", err)
	}

	return domain.NewItemInput{
		EntityCode: it.EntityCode,
		Quantity:   it.Quantity,
		ListPrice:  listPrice,
		UnitPrice:  unitPrice,
		VATRate:    vatRate,
		IsGiftLine: it.IsGiftLine,
	}, nil
}

func contactName(contacts []contactFixture, customerID string) string {
	for _, c := range contacts {
		if c.CustomerID != customerID {
			continue
		}
		if c.ContactName != "" {
			return c.ContactName
		}
		if c.CompanyName != "" {
			return c.CompanyName
		}
	}
	return "Klant"
}

func orderExists(ctx context.Context, pool *pgxpool.Pool, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tp_orders WHERE order_id = $1)`, orderID).Scan(&exists)
	return exists, err
}

func upsertTenant(ctx context.Context, pool *pgxpool.Pool, t tenantFixture) error {
	tenantID, err := uuid.Parse(t.TenantID)
	if err != nil {
		return fmt.Errorf("tenant id: %w", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO tp_tenants (tenant_id, name, sales_inbox_email)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id) DO UPDATE
		SET name = EXCLUDED.name, sales_inbox_email = EXCLUDED.sales_inbox_email, updated_at = now()
	`, tenantID, t.Name, t.SalesInboxEmail)
	return err
}

func upsertContact(ctx context.Context, pool *pgxpool.Pool, c contactFixture) error {
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return fmt.Errorf("tenant id: %w", err)
	}
	customerID, err := uuid.Parse(c.CustomerID)
	if err != nil {
		return fmt.Errorf("customer id: %w", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO tp_customer_contacts (tenant_id, customer_id, company_name, contact_name, email)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, customer_id) DO UPDATE
		SET company_name = EXCLUDED.company_name,
		    contact_name = EXCLUDED.contact_name,
		    email = EXCLUDED.email,
		    updated_at = now()
	`, tenantID, customerID, c.CompanyName, c.ContactName, c.Email)
	return err
}
