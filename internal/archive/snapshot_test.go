package archive

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"tradeportal_backend/internal/orders/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestObjectKey(t *testing.T) {
	tenantID := uuid.MustParse("11111111-2222-4333-8444-555555555555")
	orderID := uuid.MustParse("7a1b2c3d-0000-4000-8000-000000000000")

	got := objectKey(tenantID, orderID, 3)
	want := "11111111-2222-4333-8444-555555555555/7a1b2c3d-0000-4000-8000-000000000000/revision-0003.json"
	if got != want {
		t.Fatalf("expected key %q, got %q", want, got)
	}

	if key := objectKey(tenantID, orderID, 1234); !strings.HasSuffix(key, "/revision-1234.json") {
		t.Fatalf("expected four-digit padding to widen past 9999 inputs, got %q", key)
	}
}

func TestBuildSnapshot_PicksPositionedRevision(t *testing.T) {
	createdAt := time.Date(2026, time.April, 2, 11, 0, 0, 0, time.UTC)
	first := domain.Revision{
		RevisionID:    uuid.New(),
		CreatedBy:     uuid.New(),
		CreatedByName: "Iris Jansen",
		ActorRole:     domain.RoleSales,
		CreatedAt:     createdAt,
		Notes:         "eerste ronde",
		InternalNotes: "marge 8%",
		ItemsQtyChanged: []domain.QtyChange{
			{LineNumber: 10, OldQty: 4, NewQty: 6},
		},
	}
	second := domain.Revision{
		RevisionID: uuid.New(),
		CreatedBy:  uuid.New(),
		ActorRole:  domain.RoleCustomer,
		CreatedAt:  createdAt.Add(time.Hour),
		Notes:      "tegenvoorstel",
	}
	order := &domain.Order{
		OrderID:    uuid.New(),
		TenantID:   uuid.New(),
		CustomerID: uuid.New(),
		Revisions:  []domain.Revision{first, second},
	}

	snap := buildSnapshot(order, order.CustomerID, 1, "1250.00")

	if snap.Position != 1 {
		t.Fatalf("expected position 1, got %d", snap.Position)
	}
	if snap.Revision.RevisionID != first.RevisionID {
		t.Fatalf("expected first revision %s, got %s", first.RevisionID, snap.Revision.RevisionID)
	}
	if snap.Revision.InternalNotes != "marge 8%" {
		t.Fatalf("expected internal notes in archive, got %q", snap.Revision.InternalNotes)
	}
	if snap.OrderTotal != "1250.00" {
		t.Fatalf("expected event total to be carried, got %q", snap.OrderTotal)
	}
	if len(snap.Revision.ItemsQtyChanged) != 1 || snap.Revision.ItemsQtyChanged[0].NewQty != 6 {
		t.Fatalf("qty change missing from snapshot: %+v", snap.Revision.ItemsQtyChanged)
	}
	if snap.ArchivedAt.IsZero() {
		t.Fatalf("expected archive timestamp to be set")
	}
}

func TestSnapshotJSON_MatchesAPIWireShape(t *testing.T) {
	value, err := decimal.NewFromString("12.5")
	if err != nil {
		t.Fatalf("bad decimal: %v", err)
	}
	rev := domain.Revision{
		RevisionID: uuid.New(),
		ActorRole:  domain.RoleSales,
		CreatedAt:  time.Date(2026, time.April, 2, 11, 0, 0, 0, time.UTC),
		CartDiscountsAdded: []domain.CartDiscount{{
			DiscountID: uuid.New(),
			Type:       domain.DiscountPercentage,
			Value:      value,
			Reason:     domain.ReasonVolumeDiscount,
		}},
	}
	order := &domain.Order{
		OrderID:   uuid.New(),
		TenantID:  uuid.New(),
		Revisions: []domain.Revision{rev},
	}

	data, err := json.Marshal(buildSnapshot(order, uuid.New(), 1, "980.10"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"orderId", "tenantId", "customerId", "position", "orderTotal", "revision", "archivedAt"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("expected top-level key %q in %s", key, data)
		}
	}
	revDoc, ok := doc["revision"].(map[string]any)
	if !ok {
		t.Fatalf("expected revision object, got %T", doc["revision"])
	}
	discounts, ok := revDoc["cartDiscountsAdded"].([]any)
	if !ok || len(discounts) != 1 {
		t.Fatalf("expected one cart discount in revision body, got %v", revDoc["cartDiscountsAdded"])
	}
	if discounts[0].(map[string]any)["value"] != "12.5" {
		t.Fatalf("expected discount value as exact string, got %v", discounts[0].(map[string]any)["value"])
	}
}
