package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"tradeportal_backend/internal/orders/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JSONB records. Decimals marshal as strings, so stored values keep their
// exact precision.

type lineAdjustmentRecord struct {
	AdjustmentID  uuid.UUID       `json:"adjustmentId"`
	LineNumber    int             `json:"lineNumber"`
	Type          string          `json:"type"`
	OriginalValue decimal.Decimal `json:"originalValue"`
	NewValue      decimal.Decimal `json:"newValue"`
	Reason        string          `json:"reason"`
	Description   string          `json:"description,omitempty"`
	AppliedBy     uuid.UUID       `json:"appliedBy"`
	AppliedAt     time.Time       `json:"appliedAt"`
}

type cartDiscountRecord struct {
	DiscountID  uuid.UUID       `json:"discountId"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Reason      string          `json:"reason"`
	Description string          `json:"description,omitempty"`
	AppliedBy   uuid.UUID       `json:"appliedBy"`
	AppliedAt   time.Time       `json:"appliedAt"`
}

type revisionItemAddedRecord struct {
	LineNumber int             `json:"lineNumber"`
	EntityCode string          `json:"entityCode"`
	Quantity   int             `json:"quantity"`
	ListPrice  decimal.Decimal `json:"listPrice"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	VATRate    decimal.Decimal `json:"vatRate"`
	IsGiftLine bool            `json:"isGiftLine,omitempty"`
}

type revisionItemRemovedRecord struct {
	LineNumber int    `json:"lineNumber"`
	EntityCode string `json:"entityCode"`
}

type qtyChangeRecord struct {
	LineNumber int `json:"lineNumber"`
	OldQty     int `json:"oldQty"`
	NewQty     int `json:"newQty"`
}

type revisionPayload struct {
	CartDiscountsAdded   []cartDiscountRecord        `json:"cartDiscountsAdded,omitempty"`
	LineAdjustmentsAdded []lineAdjustmentRecord      `json:"lineAdjustmentsAdded,omitempty"`
	ItemsAdded           []revisionItemAddedRecord   `json:"itemsAdded,omitempty"`
	ItemsRemoved         []revisionItemRemovedRecord `json:"itemsRemoved,omitempty"`
	ItemsQtyChanged      []qtyChangeRecord           `json:"itemsQtyChanged,omitempty"`
	Notes                string                      `json:"notes,omitempty"`
	InternalNotes        string                      `json:"internalNotes,omitempty"`
}

func toAdjustmentRecord(a domain.LineAdjustment) lineAdjustmentRecord {
	return lineAdjustmentRecord{
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

func fromAdjustmentRecord(rec lineAdjustmentRecord) domain.LineAdjustment {
	return domain.LineAdjustment{
		AdjustmentID:  rec.AdjustmentID,
		LineNumber:    rec.LineNumber,
		Type:          domain.AdjustmentType(rec.Type),
		OriginalValue: rec.OriginalValue,
		NewValue:      rec.NewValue,
		Reason:        domain.AdjustmentReason(rec.Reason),
		Description:   rec.Description,
		AppliedBy:     rec.AppliedBy,
		AppliedAt:     rec.AppliedAt,
	}
}

func toDiscountRecord(d domain.CartDiscount) cartDiscountRecord {
	return cartDiscountRecord{
		DiscountID:  d.DiscountID,
		Type:        string(d.Type),
		Value:       d.Value,
		Reason:      string(d.Reason),
		Description: d.Description,
		AppliedBy:   d.AppliedBy,
		AppliedAt:   d.AppliedAt,
	}
}

func fromDiscountRecord(rec cartDiscountRecord) domain.CartDiscount {
	return domain.CartDiscount{
		DiscountID:  rec.DiscountID,
		Type:        domain.DiscountType(rec.Type),
		Value:       rec.Value,
		Reason:      domain.AdjustmentReason(rec.Reason),
		Description: rec.Description,
		AppliedBy:   rec.AppliedBy,
		AppliedAt:   rec.AppliedAt,
	}
}

func marshalAdjustments(adjustments []domain.LineAdjustment) ([]byte, error) {
	records := make([]lineAdjustmentRecord, len(adjustments))
	for i, a := range adjustments {
		records[i] = toAdjustmentRecord(a)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal adjustments: %w", err)
	}
	return data, nil
}

func unmarshalAdjustments(data []byte) ([]domain.LineAdjustment, error) {
	var records []lineAdjustmentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal adjustments: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	adjustments := make([]domain.LineAdjustment, len(records))
	for i, rec := range records {
		adjustments[i] = fromAdjustmentRecord(rec)
	}
	return adjustments, nil
}

func marshalRevisionPayload(rev domain.Revision) ([]byte, error) {
	p := revisionPayload{
		Notes:         rev.Notes,
		InternalNotes: rev.InternalNotes,
	}
	for _, d := range rev.CartDiscountsAdded {
		p.CartDiscountsAdded = append(p.CartDiscountsAdded, toDiscountRecord(d))
	}
	for _, a := range rev.LineAdjustmentsAdded {
		p.LineAdjustmentsAdded = append(p.LineAdjustmentsAdded, toAdjustmentRecord(a))
	}
	for _, it := range rev.ItemsAdded {
		p.ItemsAdded = append(p.ItemsAdded, revisionItemAddedRecord{
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
		p.ItemsRemoved = append(p.ItemsRemoved, revisionItemRemovedRecord{
			LineNumber: it.LineNumber,
			EntityCode: it.EntityCode,
		})
	}
	for _, q := range rev.ItemsQtyChanged {
		p.ItemsQtyChanged = append(p.ItemsQtyChanged, qtyChangeRecord{
			LineNumber: q.LineNumber,
			OldQty:     q.OldQty,
			NewQty:     q.NewQty,
		})
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal revision payload: %w", err)
	}
	return data, nil
}

func unmarshalRevisionPayload(data []byte, rev *domain.Revision) error {
	var p revisionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to unmarshal revision payload: %w", err)
	}

	for _, rec := range p.CartDiscountsAdded {
		rev.CartDiscountsAdded = append(rev.CartDiscountsAdded, fromDiscountRecord(rec))
	}
	for _, rec := range p.LineAdjustmentsAdded {
		rev.LineAdjustmentsAdded = append(rev.LineAdjustmentsAdded, fromAdjustmentRecord(rec))
	}
	for _, rec := range p.ItemsAdded {
		rev.ItemsAdded = append(rev.ItemsAdded, domain.RevisionItemAdded{
			LineNumber: rec.LineNumber,
			EntityCode: rec.EntityCode,
			Quantity:   rec.Quantity,
			ListPrice:  rec.ListPrice,
			UnitPrice:  rec.UnitPrice,
			VATRate:    rec.VATRate,
			IsGiftLine: rec.IsGiftLine,
		})
	}
	for _, rec := range p.ItemsRemoved {
		rev.ItemsRemoved = append(rev.ItemsRemoved, domain.RevisionItemRemoved{
			LineNumber: rec.LineNumber,
			EntityCode: rec.EntityCode,
		})
	}
	for _, rec := range p.ItemsQtyChanged {
		rev.ItemsQtyChanged = append(rev.ItemsQtyChanged, domain.QtyChange{
			LineNumber: rec.LineNumber,
			OldQty:     rec.OldQty,
			NewQty:     rec.NewQty,
		})
	}
	rev.Notes = p.Notes
	rev.InternalNotes = p.InternalNotes
	return nil
}
