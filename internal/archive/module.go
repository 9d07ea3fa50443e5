// Package archive writes immutable JSON snapshots of quotation revisions to
// object storage. Every negotiation round that lands on the ledger (send,
// revise, counter) becomes one object, so rounds stay reconstructable for
// audit and dispute handling even outside this service's database.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"tradeportal_backend/internal/events"
	"tradeportal_backend/internal/orders/domain"
	"tradeportal_backend/platform/apperr"
	"tradeportal_backend/platform/config"
	"tradeportal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const snapshotContentType = "application/json"

// OrderReader loads the order aggregate whose revision is being archived.
// The orders repository satisfies it.
type OrderReader interface {
	GetByID(ctx context.Context, orderID, tenantID uuid.UUID) (*domain.Order, error)
}

// Module subscribes to revision-recording order events and uploads one JSON
// snapshot per ledger entry.
type Module struct {
	client *minio.Client
	bucket string
	orders OrderReader
	log    *logger.Logger
}

// New creates the archive module. Callers gate construction on
// cfg.IsArchiveEnabled(); endpoint and credentials must be set.
func New(cfg config.ArchiveConfig, orders OrderReader, log *logger.Logger) (*Module, error) {
	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Module{
		client: client,
		bucket: cfg.GetMinioBucketRevisionArchives(),
		orders: orders,
		log:    log,
	}, nil
}

// EnsureBucket creates the archive bucket if it doesn't exist.
func (m *Module) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", m.bucket, err)
		}
	}
	return nil
}

// RegisterHandlers subscribes the module to every event that records a
// ledger revision.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuotationSent{}.EventName(), m)
	bus.Subscribe(events.QuotationRevised{}.EventName(), m)
	bus.Subscribe(events.QuotationCountered{}.EventName(), m)

	m.log.Info("archive module registered event handlers")
}

// Handle routes events to the archiver.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuotationSent:
		return m.archiveRevision(ctx, e.OrderID, e.TenantID, e.CustomerID, e.RevisionCount, e.OrderTotal)
	case events.QuotationRevised:
		return m.archiveRevision(ctx, e.OrderID, e.TenantID, e.CustomerID, e.RevisionCount, e.OrderTotal)
	case events.QuotationCountered:
		return m.archiveRevision(ctx, e.OrderID, e.TenantID, e.CustomerID, e.RevisionCount, e.OrderTotal)
	default:
		return nil
	}
}

// archiveRevision uploads the ledger entry at the given 1-based position.
// The position comes from the event, so a later round landing before this
// handler runs cannot shift which entry gets archived, and a replay
// overwrites the same key with the same content.
func (m *Module) archiveRevision(ctx context.Context, orderID, tenantID, customerID uuid.UUID, position int, orderTotal string) error {
	if position < 1 {
		return nil
	}

	order, err := m.orders.GetByID(ctx, orderID, tenantID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			m.log.Warn("order no longer exists; revision archive skipped",
				"orderId", orderID, "position", position)
			return nil
		}
		return err
	}
	if position > len(order.Revisions) {
		m.log.Warn("revision not on ledger; archive skipped",
			"orderId", orderID, "position", position, "ledgerSize", len(order.Revisions))
		return nil
	}

	snap := buildSnapshot(order, customerID, position, orderTotal)
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal revision snapshot: %w", err)
	}

	key := objectKey(tenantID, orderID, position)
	_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: snapshotContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload revision snapshot %s: %w", key, err)
	}

	m.log.Info("revision archived", "orderId", orderID, "position", position, "key", key)
	return nil
}
