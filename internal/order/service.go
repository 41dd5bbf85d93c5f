package order

import (
	"context"
	"fmt"
	"time"

	"shopdesk-be/internal/db"
	"shopdesk-be/internal/inventory"
	"shopdesk-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetOrder(ctx context.Context, tenantID int64, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, tenantID int64, filter ListFilter) ([]*Order, error)
	StatusHistory(ctx context.Context, tenantID int64, id uuid.UUID) ([]StatusChange, error)
	UpdateStatus(ctx context.Context, tenantID int64, id uuid.UUID, target, actor string) (*Order, error)
	BulkUpdateStatus(ctx context.Context, tenantID int64, ids []uuid.UUID, target, actor string) []BulkResult
}

type service struct {
	repo   Repository
	tx     db.TxManager
	ledger inventory.Ledger
	now    func() time.Time
}

func NewService(repo Repository, tx db.TxManager, ledger inventory.Ledger) Service {
	return &service{
		repo:   repo,
		tx:     tx,
		ledger: ledger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) GetOrder(ctx context.Context, tenantID int64, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *service) ListOrders(ctx context.Context, tenantID int64, filter ListFilter) ([]*Order, error) {
	return s.repo.List(ctx, tenantID, filter.Normalize())
}

func (s *service) StatusHistory(ctx context.Context, tenantID int64, id uuid.UUID) ([]StatusChange, error) {
	if _, err := s.repo.GetByID(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, tenantID, id)
}

func (s *service) UpdateStatus(ctx context.Context, tenantID int64, id uuid.UUID, target, actor string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", id.String()),
		zap.String("target", target),
		zap.String("actor", actor),
	)

	next, known := ParseStatus(target)

	var updated *Order
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		o, err := s.repo.GetForUpdate(txCtx, tenantID, id)
		if err != nil {
			return err
		}

		if !known {
			return &IllegalStateTransitionError{From: o.Status, To: Status(target)}
		}

		change, err := Transition(o, next, actor, s.now())
		if err != nil {
			return err
		}

		if next == StatusCancelled {
			if err := s.restock(txCtx, o); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatus(txCtx, o); err != nil {
			return err
		}
		if err := s.repo.InsertStatusChange(txCtx, change); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		log.Warn("status update rejected", zap.Error(err))
		return nil, err
	}

	log.Info("order status updated", zap.String("status", string(updated.Status)))
	return updated, nil
}

// restock returns the stock of every line of a cancelled order.
func (s *service) restock(ctx context.Context, o *Order) error {
	for _, item := range o.Items {
		if _, err := s.ledger.IncreaseStock(ctx, o.TenantID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("restock product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

func (s *service) BulkUpdateStatus(ctx context.Context, tenantID int64, ids []uuid.UUID, target, actor string) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		o, err := s.UpdateStatus(ctx, tenantID, id, target, actor)
		results = append(results, BulkResult{OrderID: id, Order: o, Err: err})
	}
	return results
}
