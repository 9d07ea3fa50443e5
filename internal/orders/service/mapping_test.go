package service

import (
	"testing"
	"time"

	"tradeportal_backend/internal/orders/domain"
	"tradeportal_backend/internal/orders/transport"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestToDelta_SanitizesText(t *testing.T) {
	req := transport.RevisionDeltaRequest{
		ItemsAdded: []transport.NewItemRequest{{
			EntityCode: "  PMP-4410 ",
			Quantity:   2,
			ListPrice:  decimal.NewFromInt(100),
			UnitPrice:  decimal.NewFromInt(80),
			VATRate:    decimal.NewFromInt(22),
		}},
		ItemsRemoved:  []int{20},
		Notes:         "<script>alert(1)</script>tweede ronde",
		InternalNotes: "<b>marge</b> check",
	}

	delta := toDelta(req)

	if delta.Notes != "tweede ronde" {
		t.Fatalf("expected notes to be stripped, got %q", delta.Notes)
	}
	if delta.InternalNotes != "marge check" {
		t.Fatalf("expected internal notes to be stripped, got %q", delta.InternalNotes)
	}
	if delta.ItemsAdded[0].EntityCode != "PMP-4410" {
		t.Fatalf("expected trimmed entity code, got %q", delta.ItemsAdded[0].EntityCode)
	}
	if len(delta.ItemsRemoved) != 1 || delta.ItemsRemoved[0] != 20 {
		t.Fatalf("expected removal of line 20, got %v", delta.ItemsRemoved)
	}
}

func TestToOrderResponse_InternalNotesVisibility(t *testing.T) {
	now := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	order := domain.NewDraft(uuid.New(), uuid.New(), uuid.New(), now)
	order.Revisions = []domain.Revision{{
		RevisionID:    uuid.New(),
		CreatedBy:     uuid.New(),
		CreatedByName: "Iris Jansen",
		ActorRole:     domain.RoleSales,
		CreatedAt:     now,
		Notes:         "Offerte verstuurd.",
		InternalNotes: "Marge blijft boven 20%.",
	}}

	sales := toOrderResponse(&order, true)
	if sales.Revisions[0].InternalNotes != "Marge blijft boven 20%." {
		t.Fatalf("expected internal notes for sales, got %q", sales.Revisions[0].InternalNotes)
	}

	customer := toOrderResponse(&order, false)
	if customer.Revisions[0].InternalNotes != "" {
		t.Fatalf("expected internal notes hidden from customer, got %q", customer.Revisions[0].InternalNotes)
	}
	if customer.Revisions[0].Notes != "Offerte verstuurd." {
		t.Fatalf("expected public notes kept, got %q", customer.Revisions[0].Notes)
	}
}

func TestToOrderResponse_EmptySlicesNotNil(t *testing.T) {
	now := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	order := domain.NewDraft(uuid.New(), uuid.New(), uuid.New(), now)

	resp := toOrderResponse(&order, true)
	if resp.Items == nil || resp.CartDiscounts == nil || resp.Revisions == nil {
		t.Fatalf("expected empty slices, not null, in the response")
	}
	if resp.OrderTotal.String() != "0.00" {
		t.Fatalf("expected zero total on a fresh draft, got %s", resp.OrderTotal)
	}
}
