package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"tradeportal_backend/internal/events"
	"tradeportal_backend/internal/orders/domain"
	"tradeportal_backend/internal/orders/transport"
	"tradeportal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const (
	msgLinkExpired = "share link has expired"
	qrCodeSize     = 256
)

// CreateShareLink issues a public read-only link for a quotation. Calling it
// again rotates the token, which invalidates the previous link.
func (s *Service) CreateShareLink(ctx context.Context, tenantID uuid.UUID, actor domain.Actor, orderID uuid.UUID) (*transport.ShareLinkResponse, error) {
	if err := requireSales(actor); err != nil {
		return nil, err
	}

	order, err := s.repo.GetByID(ctx, orderID, tenantID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.StatusDraft {
		return nil, apperr.Conflict("draft orders cannot be shared")
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(s.shareCfg.GetShareTokenTTL())

	if err := s.repo.SetShareToken(ctx, orderID, tenantID, token, expiresAt); err != nil {
		return nil, err
	}

	shareURL := s.shareURL(token)
	s.publish(ctx, events.ShareLinkCreated{
		BaseEvent:  events.NewBaseEvent(),
		OrderID:    order.OrderID,
		TenantID:   tenantID,
		CustomerID: order.CustomerID,
		ActorID:    actor.ID,
		ShareURL:   shareURL,
	})

	return &transport.ShareLinkResponse{
		ShareURL:  shareURL,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// GetSharedOrder returns the customer view of an order behind a share token.
// Internal notes are never included.
func (s *Service) GetSharedOrder(ctx context.Context, token string) (*transport.OrderResponse, error) {
	order, _, err := s.resolveShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order, false), nil
}

// ShareQRCode renders the share link as a PNG QR code.
func (s *Service) ShareQRCode(ctx context.Context, token string) ([]byte, error) {
	if _, _, err := s.resolveShareToken(ctx, token); err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(s.shareURL(strings.TrimSpace(token)), qrcode.Medium, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

func (s *Service) resolveShareToken(ctx context.Context, token string) (*domain.Order, time.Time, error) {
	order, expiresAt, err := s.repo.GetByShareToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, time.Time{}, err
	}
	if expiresAt.Before(time.Now()) {
		return nil, time.Time{}, apperr.Gone(msgLinkExpired)
	}
	return order, expiresAt, nil
}

func (s *Service) shareURL(token string) string {
	base := strings.TrimRight(s.shareCfg.GetAppBaseURL(), "/")
	return fmt.Sprintf("%s/public/orders/%s", base, token)
}

func generateShareToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
