package archive

import (
	"fmt"
	"time"

	"tradeportal_backend/internal/orders/domain"
	"tradeportal_backend/internal/orders/transport"

	"github.com/google/uuid"
)

// revisionSnapshot is one archived negotiation round. The revision body uses
// the same wire shape the API serves, so a snapshot reads like the matching
// ledger entry without this service's database. OrderTotal is the total as
// it stood after the round, taken from the publishing event. Internal notes
// are kept; the archive is an audit record, not a customer surface.
type revisionSnapshot struct {
	OrderID    uuid.UUID                  `json:"orderId"`
	TenantID   uuid.UUID                  `json:"tenantId"`
	CustomerID uuid.UUID                  `json:"customerId"`
	Position   int                        `json:"position"`
	OrderTotal string                     `json:"orderTotal"`
	Revision   transport.RevisionResponse `json:"revision"`
	ArchivedAt time.Time                  `json:"archivedAt"`
}

func buildSnapshot(order *domain.Order, customerID uuid.UUID, position int, orderTotal string) revisionSnapshot {
	return revisionSnapshot{
		OrderID:    order.OrderID,
		TenantID:   order.TenantID,
		CustomerID: customerID,
		Position:   position,
		OrderTotal: orderTotal,
		Revision:   toRevisionResponse(order.Revisions[position-1]),
		ArchivedAt: time.Now().UTC(),
	}
}

func toRevisionResponse(rev domain.Revision) transport.RevisionResponse {
	resp := transport.RevisionResponse{
		RevisionID:           rev.RevisionID,
		CreatedBy:            rev.CreatedBy,
		CreatedByName:        rev.CreatedByName,
		ActorRole:            string(rev.ActorRole),
		CreatedAt:            rev.CreatedAt,
		CartDiscountsAdded:   make([]transport.CartDiscountResponse, 0, len(rev.CartDiscountsAdded)),
		LineAdjustmentsAdded: make([]transport.LineAdjustmentResponse, 0, len(rev.LineAdjustmentsAdded)),
		ItemsAdded:           make([]transport.RevisionItemAddedResponse, 0, len(rev.ItemsAdded)),
		ItemsRemoved:         make([]transport.RevisionItemRemovedResponse, 0, len(rev.ItemsRemoved)),
		ItemsQtyChanged:      make([]transport.QtyChangeResponse, 0, len(rev.ItemsQtyChanged)),
		Notes:                rev.Notes,
		InternalNotes:        rev.InternalNotes,
	}

	for _, d := range rev.CartDiscountsAdded {
		resp.CartDiscountsAdded = append(resp.CartDiscountsAdded, transport.CartDiscountResponse{
			DiscountID:  d.DiscountID,
			Type:        string(d.Type),
			Value:       d.Value,
			Reason:      string(d.Reason),
			Description: d.Description,
			AppliedBy:   d.AppliedBy,
			AppliedAt:   d.AppliedAt,
		})
	}
	for _, a := range rev.LineAdjustmentsAdded {
		resp.LineAdjustmentsAdded = append(resp.LineAdjustmentsAdded, transport.LineAdjustmentResponse{
			AdjustmentID:  a.AdjustmentID,
			LineNumber:    a.LineNumber,
			Type:          string(a.Type),
			OriginalValue: a.OriginalValue,
			NewValue:      a.NewValue,
			Reason:        string(a.Reason),
			Description:   a.Description,
			AppliedBy:     a.AppliedBy,
			AppliedAt:     a.AppliedAt,
		})
	}
	for _, it := range rev.ItemsAdded {
		resp.ItemsAdded = append(resp.ItemsAdded, transport.RevisionItemAddedResponse{
			LineNumber: it.LineNumber,
			EntityCode: it.EntityCode,
			Quantity:   it.Quantity,
			ListPrice:  it.ListPrice,
			UnitPrice:  it.UnitPrice,
			VATRate:    it.VATRate,
			IsGiftLine: it.IsGiftLine,
		})
	}
	for _, it := range rev.ItemsRemoved {
		resp.ItemsRemoved = append(resp.ItemsRemoved, transport.RevisionItemRemovedResponse{
			LineNumber: it.LineNumber,
			EntityCode: it.EntityCode,
		})
	}
	for _, q := range rev.ItemsQtyChanged {
		resp.ItemsQtyChanged = append(resp.ItemsQtyChanged, transport.QtyChangeResponse{
			LineNumber: q.LineNumber,
			OldQty:     q.OldQty,
			NewQty:     q.NewQty,
		})
	}
	return resp
}

// objectKey lays snapshots out as tenant/order/revision so a bucket listing
// under a tenant or order prefix returns that scope's history in order.
func objectKey(tenantID, orderID uuid.UUID, position int) string {
	return fmt.Sprintf("%s/%s/revision-%04d.json", tenantID, orderID, position)
}
