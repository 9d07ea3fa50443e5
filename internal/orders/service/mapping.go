package service

import (
	"tradeportal_backend/internal/orders/domain"
	"tradeportal_backend/internal/orders/repository"
	"tradeportal_backend/internal/orders/transport"
	"tradeportal_backend/platform/sanitize"
)

// ── Request mapping ───────────────────────────────────────────────────────────

func toItemInput(req transport.NewItemRequest) domain.NewItemInput {
	return domain.NewItemInput{
		EntityCode: sanitize.Text(req.EntityCode),
		Quantity:   req.Quantity,
		ListPrice:  req.ListPrice,
		UnitPrice:  req.UnitPrice,
		VATRate:    req.VATRate,
		IsGiftLine: req.IsGiftLine,
	}
}

func toDiscountInput(req transport.CartDiscountRequest) domain.CartDiscountInput {
	return domain.CartDiscountInput{
		Type:        domain.DiscountType(req.Type),
		Value:       req.Value,
		Reason:      domain.AdjustmentReason(req.Reason),
		Description: sanitize.Text(req.Description),
	}
}

func toAdjustmentInput(req transport.LineAdjustmentRequest) domain.LineAdjustmentInput {
	return domain.LineAdjustmentInput{
		LineNumber:  req.LineNumber,
		Type:        domain.AdjustmentType(req.Type),
		NewValue:    req.NewValue,
		Reason:      domain.AdjustmentReason(req.Reason),
		Description: sanitize.Text(req.Description),
	}
}

func toDelta(req transport.RevisionDeltaRequest) domain.RevisionDelta {
	delta := domain.RevisionDelta{
		ItemsRemoved:  req.ItemsRemoved,
		Notes:         sanitize.Text(req.Notes),
		InternalNotes: sanitize.Text(req.InternalNotes),
	}
	for _, d := range req.CartDiscountsAdded {
		delta.CartDiscountsAdded = append(delta.CartDiscountsAdded, toDiscountInput(d))
	}
	for _, a := range req.LineAdjustmentsAdded {
		delta.LineAdjustmentsAdded = append(delta.LineAdjustmentsAdded, toAdjustmentInput(a))
	}
	for _, it := range req.ItemsAdded {
		delta.ItemsAdded = append(delta.ItemsAdded, toItemInput(it))
	}
	for _, q := range req.ItemsQtyChanged {
		delta.ItemsQtyChanged = append(delta.ItemsQtyChanged, domain.QtyChangeInput{
			LineNumber:  q.LineNumber,
			NewQuantity: q.NewQuantity,
		})
	}
	return delta
}

// ── Response mapping ──────────────────────────────────────────────────────────

func toAdjustmentResponse(a domain.LineAdjustment) transport.LineAdjustmentResponse {
	return transport.LineAdjustmentResponse{
		AdjustmentID:  a.AdjustmentID,
		LineNumber:    a.LineNumber,
		Type:          string(a.Type),
		OriginalValue: a.OriginalValue,
		NewValue:      a.NewValue,
		Reason:        string(a.Reason),
		Description:   a.Description,
		AppliedBy:     a.AppliedBy,
		AppliedAt:     a.AppliedAt,
	}
}

func toDiscountResponse(d domain.CartDiscount) transport.CartDiscountResponse {
	return transport.CartDiscountResponse{
		DiscountID:  d.DiscountID,
		Type:        string(d.Type),
		Value:       d.Value,
		Reason:      string(d.Reason),
		Description: d.Description,
		AppliedBy:   d.AppliedBy,
		AppliedAt:   d.AppliedAt,
	}
}

func toItemResponse(it domain.LineItem) transport.OrderItemResponse {
	adjustments := make([]transport.LineAdjustmentResponse, 0, len(it.Adjustments))
	for _, a := range it.Adjustments {
		adjustments = append(adjustments, toAdjustmentResponse(a))
	}
	return transport.OrderItemResponse{
		LineNumber:  it.LineNumber,
		EntityCode:  it.EntityCode,
		Quantity:    it.Quantity,
		ListPrice:   it.ListPrice,
		UnitPrice:   it.UnitPrice,
		VATRate:     it.VATRate,
		IsGiftLine:  it.IsGiftLine,
		LineGross:   it.LineGross,
		LineNet:     it.LineNet,
		LineVAT:     it.LineVAT,
		LineTotal:   it.LineTotal,
		Adjustments: adjustments,
	}
}

func toRevisionResponse(rev domain.Revision, includeInternal bool) transport.RevisionResponse {
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
	}
	if includeInternal {
		resp.InternalNotes = rev.InternalNotes
	}

	for _, d := range rev.CartDiscountsAdded {
		resp.CartDiscountsAdded = append(resp.CartDiscountsAdded, toDiscountResponse(d))
	}
	for _, a := range rev.LineAdjustmentsAdded {
		resp.LineAdjustmentsAdded = append(resp.LineAdjustmentsAdded, toAdjustmentResponse(a))
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

func toOrderResponse(o *domain.Order, includeInternal bool) *transport.OrderResponse {
	items := make([]transport.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, toItemResponse(it))
	}
	discounts := make([]transport.CartDiscountResponse, 0, len(o.CartDiscounts))
	for _, d := range o.CartDiscounts {
		discounts = append(discounts, toDiscountResponse(d))
	}
	revisions := make([]transport.RevisionResponse, 0, len(o.Revisions))
	for _, rev := range o.Revisions {
		revisions = append(revisions, toRevisionResponse(rev, includeInternal))
	}

	return &transport.OrderResponse{
		OrderID:         o.OrderID,
		CustomerID:      o.CustomerID,
		Status:          string(o.Status),
		Items:           items,
		CartDiscounts:   discounts,
		ShippingCost:    o.ShippingCost,
		SubtotalGross:   o.SubtotalGross,
		SubtotalNet:     o.SubtotalNet,
		TotalDiscount:   o.TotalDiscount,
		TotalVAT:        o.TotalVAT,
		OrderTotal:      o.OrderTotal,
		Revisions:       revisions,
		RejectionReason: o.RejectionReason,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toListResponse(result *repository.ListResult) *transport.ListOrdersResponse {
	items := make([]transport.OrderSummaryResponse, 0, len(result.Items))
	for _, h := range result.Items {
		items = append(items, transport.OrderSummaryResponse{
			OrderID:       h.OrderID,
			CustomerID:    h.CustomerID,
			Status:        h.Status,
			SubtotalGross: h.SubtotalGross,
			SubtotalNet:   h.SubtotalNet,
			TotalDiscount: h.TotalDiscount,
			TotalVAT:      h.TotalVAT,
			OrderTotal:    h.OrderTotal,
			ItemCount:     h.ItemCount,
			RevisionCount: h.RevisionCount,
			CreatedAt:     h.CreatedAt,
			UpdatedAt:     h.UpdatedAt,
		})
	}
	return &transport.ListOrdersResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
}
