// Package repository persists order aggregates. An order is stored as a
// header row plus item, cart-discount, and revision rows; writes replace the
// mutable parts inside one transaction guarded by a version check, while
// revision rows are append-only.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradeportal_backend/internal/orders/domain"
	"tradeportal_backend/platform/apperr"
	"tradeportal_backend/platform/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	orderNotFoundMsg = "order not found"
	shareNotFoundMsg = "share link not found"
	concurrentMsg    = "order was modified concurrently"
)

// OrderHeader is the database model for an order list row. Items and the
// revision ledger are not loaded; only their counts are.
type OrderHeader struct {
	OrderID       uuid.UUID
	TenantID      uuid.UUID
	CustomerID    uuid.UUID
	Status        string
	SubtotalGross money.Money
	SubtotalNet   money.Money
	TotalDiscount money.Money
	TotalVAT      money.Money
	OrderTotal    money.Money
	ItemCount     int
	RevisionCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListParams contains parameters for listing orders.
type ListParams struct {
	TenantID   uuid.UUID
	CustomerID *uuid.UUID
	Status     *string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// ListResult contains the paginated result of listing orders.
type ListResult struct {
	Items      []OrderHeader
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Repository provides database operations for orders.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new orders repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new order aggregate.
func (r *Repository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tp_orders (
			order_id, tenant_id, customer_id, status,
			shipping_cost, subtotal_gross, subtotal_net, total_discount, total_vat, order_total,
			rejection_reason, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	if _, err := tx.Exec(ctx, query,
		o.OrderID, o.TenantID, o.CustomerID, string(o.Status),
		o.ShippingCost, o.SubtotalGross, o.SubtotalNet, o.TotalDiscount, o.TotalVAT, o.OrderTotal,
		o.RejectionReason, o.Version, o.CreatedAt, o.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if err := r.insertItems(ctx, tx, o.OrderID, o.Items); err != nil {
		return err
	}
	if err := r.insertCartDiscounts(ctx, tx, o.OrderID, o.CartDiscounts); err != nil {
		return err
	}
	if err := r.insertRevisions(ctx, tx, o.OrderID, o.Revisions); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update writes an order aggregate back using a compare-and-swap on the
// version column. When two writers race, exactly one succeeds; the loser
// gets a conflict and must reload.
func (r *Repository) Update(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	expected := o.Version
	query := `
		UPDATE tp_orders SET
			status = $4, shipping_cost = $5,
			subtotal_gross = $6, subtotal_net = $7, total_discount = $8, total_vat = $9, order_total = $10,
			rejection_reason = $11, version = $12, updated_at = $13
		WHERE order_id = $1 AND tenant_id = $2 AND version = $3`

	result, err := tx.Exec(ctx, query,
		o.OrderID, o.TenantID, expected,
		string(o.Status), o.ShippingCost,
		o.SubtotalGross, o.SubtotalNet, o.TotalDiscount, o.TotalVAT, o.OrderTotal,
		o.RejectionReason, expected+1, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.RowsAffected() == 0 {
		var exists bool
		check := `SELECT EXISTS (SELECT 1 FROM tp_orders WHERE order_id = $1 AND tenant_id = $2)`
		if err := tx.QueryRow(ctx, check, o.OrderID, o.TenantID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if exists {
			return apperr.Conflict(concurrentMsg)
		}
		return apperr.NotFound(orderNotFoundMsg)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tp_order_items WHERE order_id = $1`, o.OrderID); err != nil {
		return fmt.Errorf("failed to delete old order items: %w", err)
	}
	if err := r.insertItems(ctx, tx, o.OrderID, o.Items); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tp_order_cart_discounts WHERE order_id = $1`, o.OrderID); err != nil {
		return fmt.Errorf("failed to delete old cart discounts: %w", err)
	}
	if err := r.insertCartDiscounts(ctx, tx, o.OrderID, o.CartDiscounts); err != nil {
		return err
	}

	if err := r.insertRevisions(ctx, tx, o.OrderID, o.Revisions); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	o.Version = expected + 1
	return nil
}

func (r *Repository) insertItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []domain.LineItem) error {
	query := `
		INSERT INTO tp_order_items (
			order_id, line_number, entity_code, quantity,
			list_price, unit_price, vat_rate, is_gift_line,
			line_gross, line_net, line_vat, line_total, adjustments
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	for _, it := range items {
		adjustments, err := marshalAdjustments(it.Adjustments)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query,
			orderID, it.LineNumber, it.EntityCode, it.Quantity,
			it.ListPrice, it.UnitPrice, it.VATRate, it.IsGiftLine,
			it.LineGross, it.LineNet, it.LineVAT, it.LineTotal, adjustments,
		); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func (r *Repository) insertCartDiscounts(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, discounts []domain.CartDiscount) error {
	query := `
		INSERT INTO tp_order_cart_discounts (
			discount_id, order_id, position, type, value, reason, description, applied_by, applied_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for i, d := range discounts {
		if _, err := tx.Exec(ctx, query,
			d.DiscountID, orderID, i, string(d.Type), d.Value, string(d.Reason), d.Description, d.AppliedBy, d.AppliedAt,
		); err != nil {
			return fmt.Errorf("failed to insert cart discount: %w", err)
		}
	}
	return nil
}

// insertRevisions appends ledger rows. Revisions are immutable, so rows whose
// position is already stored are skipped rather than rewritten.
func (r *Repository) insertRevisions(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, revisions []domain.Revision) error {
	query := `
		INSERT INTO tp_order_revisions (
			revision_id, order_id, position, created_by, created_by_name, actor_role, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id, position) DO NOTHING`

	for i, rev := range revisions {
		payload, err := marshalRevisionPayload(rev)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query,
			rev.RevisionID, orderID, i+1, rev.CreatedBy, rev.CreatedByName, string(rev.ActorRole), payload, rev.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert revision: %w", err)
		}
	}
	return nil
}

// GetByID loads a full order aggregate scoped to a tenant.
func (r *Repository) GetByID(ctx context.Context, orderID, tenantID uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	var status string

	query := `
		SELECT order_id, tenant_id, customer_id, status,
			shipping_cost, subtotal_gross, subtotal_net, total_discount, total_vat, order_total,
			rejection_reason, version, created_at, updated_at
		FROM tp_orders WHERE order_id = $1 AND tenant_id = $2`

	err := r.pool.QueryRow(ctx, query, orderID, tenantID).Scan(
		&o.OrderID, &o.TenantID, &o.CustomerID, &status,
		&o.ShippingCost, &o.SubtotalGross, &o.SubtotalNet, &o.TotalDiscount, &o.TotalVAT, &o.OrderTotal,
		&o.RejectionReason, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(orderNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	o.Status = domain.Status(status)

	if err := r.loadAggregate(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByShareToken loads a full order aggregate by its public share token
// along with the token's expiry. The token is the capability; no tenant
// scoping applies.
func (r *Repository) GetByShareToken(ctx context.Context, token string) (*domain.Order, time.Time, error) {
	var o domain.Order
	var status string
	var expiresAt time.Time

	query := `
		SELECT order_id, tenant_id, customer_id, status,
			shipping_cost, subtotal_gross, subtotal_net, total_discount, total_vat, order_total,
			rejection_reason, version, created_at, updated_at, share_expires_at
		FROM tp_orders WHERE share_token = $1`

	err := r.pool.QueryRow(ctx, query, token).Scan(
		&o.OrderID, &o.TenantID, &o.CustomerID, &status,
		&o.ShippingCost, &o.SubtotalGross, &o.SubtotalNet, &o.TotalDiscount, &o.TotalVAT, &o.OrderTotal,
		&o.RejectionReason, &o.Version, &o.CreatedAt, &o.UpdatedAt, &expiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, time.Time{}, apperr.NotFound(shareNotFoundMsg)
		}
		return nil, time.Time{}, fmt.Errorf("failed to get order by share token: %w", err)
	}
	o.Status = domain.Status(status)

	if err := r.loadAggregate(ctx, &o); err != nil {
		return nil, time.Time{}, err
	}
	return &o, expiresAt, nil
}

// SetShareToken stores (or rotates) the public share token for an order.
func (r *Repository) SetShareToken(ctx context.Context, orderID, tenantID uuid.UUID, token string, expiresAt time.Time) error {
	query := `UPDATE tp_orders SET share_token = $3, share_expires_at = $4 WHERE order_id = $1 AND tenant_id = $2`
	result, err := r.pool.Exec(ctx, query, orderID, tenantID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set share token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(orderNotFoundMsg)
	}
	return nil
}

func (r *Repository) loadAggregate(ctx context.Context, o *domain.Order) error {
	items, err := r.loadItems(ctx, o.OrderID)
	if err != nil {
		return err
	}
	o.Items = items

	discounts, err := r.loadCartDiscounts(ctx, o.OrderID)
	if err != nil {
		return err
	}
	o.CartDiscounts = discounts

	revisions, err := r.loadRevisions(ctx, o.OrderID)
	if err != nil {
		return err
	}
	o.Revisions = revisions
	return nil
}

func (r *Repository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.LineItem, error) {
	query := `
		SELECT line_number, entity_code, quantity, list_price, unit_price, vat_rate, is_gift_line,
			line_gross, line_net, line_vat, line_total, adjustments
		FROM tp_order_items WHERE order_id = $1
		ORDER BY line_number ASC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var it domain.LineItem
		var adjustments []byte
		if err := rows.Scan(
			&it.LineNumber, &it.EntityCode, &it.Quantity, &it.ListPrice, &it.UnitPrice, &it.VATRate, &it.IsGiftLine,
			&it.LineGross, &it.LineNet, &it.LineVAT, &it.LineTotal, &adjustments,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if it.Adjustments, err = unmarshalAdjustments(adjustments); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return items, nil
}

func (r *Repository) loadCartDiscounts(ctx context.Context, orderID uuid.UUID) ([]domain.CartDiscount, error) {
	query := `
		SELECT discount_id, type, value, reason, description, applied_by, applied_at
		FROM tp_order_cart_discounts WHERE order_id = $1
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart discounts: %w", err)
	}
	defer rows.Close()

	var discounts []domain.CartDiscount
	for rows.Next() {
		var d domain.CartDiscount
		var discountType, reason string
		if err := rows.Scan(&d.DiscountID, &discountType, &d.Value, &reason, &d.Description, &d.AppliedBy, &d.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart discount: %w", err)
		}
		d.Type = domain.DiscountType(discountType)
		d.Reason = domain.AdjustmentReason(reason)
		discounts = append(discounts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart discounts: %w", err)
	}
	return discounts, nil
}

func (r *Repository) loadRevisions(ctx context.Context, orderID uuid.UUID) ([]domain.Revision, error) {
	query := `
		SELECT revision_id, created_by, created_by_name, actor_role, payload, created_at
		FROM tp_order_revisions WHERE order_id = $1
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query revisions: %w", err)
	}
	defer rows.Close()

	var revisions []domain.Revision
	for rows.Next() {
		var rev domain.Revision
		var role string
		var payload []byte
		if err := rows.Scan(&rev.RevisionID, &rev.CreatedBy, &rev.CreatedByName, &role, &payload, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		rev.ActorRole = domain.Role(role)
		if err := unmarshalRevisionPayload(payload, &rev); err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revisions: %w", err)
	}
	return revisions, nil
}

// List retrieves order headers with filtering and pagination.
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	sortBy, err := resolveSortBy(params.SortBy)
	if err != nil {
		return nil, err
	}
	sortOrder, err := resolveSortOrder(params.SortOrder)
	if err != nil {
		return nil, err
	}

	var customerParam any
	if params.CustomerID != nil {
		customerParam = *params.CustomerID
	}
	var statusParam any
	if params.Status != nil {
		statusParam = *params.Status
	}

	baseQuery := `
		FROM tp_orders
		WHERE tenant_id = $1
			AND ($2::uuid IS NULL OR customer_id = $2)
			AND ($3::text IS NULL OR status = $3)
	`
	args := []any{params.TenantID, customerParam, statusParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	selectQuery := `
		SELECT order_id, tenant_id, customer_id, status,
			subtotal_gross, subtotal_net, total_discount, total_vat, order_total,
			(SELECT COUNT(*) FROM tp_order_items i WHERE i.order_id = tp_orders.order_id) AS item_count,
			(SELECT COUNT(*) FROM tp_order_revisions v WHERE v.order_id = tp_orders.order_id) AS revision_count,
			created_at, updated_at
		` + baseQuery + `
		ORDER BY
			CASE WHEN $4 = 'status' AND $5 = 'asc' THEN status END ASC,
			CASE WHEN $4 = 'status' AND $5 = 'desc' THEN status END DESC,
			CASE WHEN $4 = 'orderTotal' AND $5 = 'asc' THEN order_total END ASC,
			CASE WHEN $4 = 'orderTotal' AND $5 = 'desc' THEN order_total END DESC,
			CASE WHEN $4 = 'createdAt' AND $5 = 'asc' THEN created_at END ASC,
			CASE WHEN $4 = 'createdAt' AND $5 = 'desc' THEN created_at END DESC,
			CASE WHEN $4 = 'updatedAt' AND $5 = 'asc' THEN updated_at END ASC,
			CASE WHEN $4 = 'updatedAt' AND $5 = 'desc' THEN updated_at END DESC,
			created_at DESC
		LIMIT $6 OFFSET $7`

	args = append(args, sortBy, sortOrder, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var items []OrderHeader
	for rows.Next() {
		var h OrderHeader
		if err := rows.Scan(
			&h.OrderID, &h.TenantID, &h.CustomerID, &h.Status,
			&h.SubtotalGross, &h.SubtotalNet, &h.TotalDiscount, &h.TotalVAT, &h.OrderTotal,
			&h.ItemCount, &h.RevisionCount,
			&h.CreatedAt, &h.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func resolveSortBy(sortBy string) (string, error) {
	if sortBy == "" {
		return "createdAt", nil
	}
	switch sortBy {
	case "status", "orderTotal", "createdAt", "updatedAt":
		return sortBy, nil
	default:
		return "", apperr.BadRequest("invalid sort field")
	}
}

func resolveSortOrder(sortOrder string) (string, error) {
	if sortOrder == "" {
		return "desc", nil
	}
	switch sortOrder {
	case "asc", "desc":
		return sortOrder, nil
	default:
		return "", apperr.BadRequest("invalid sort order")
	}
}
