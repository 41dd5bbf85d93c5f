package inventory

import (
	"context"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/metrics"
	"shopdesk-be/internal/product"

	"go.uber.org/zap"
)

// Ledger owns every stock mutation. Both operations are atomic per product.
type Ledger interface {
	// DecreaseStock succeeds iff the product holds at least qty units and
	// returns the remaining stock. Otherwise it returns
	// *InsufficientStockError and changes nothing.
	DecreaseStock(ctx context.Context, tenantID, productID int64, qty int) (int, error)
	// IncreaseStock adds qty units unconditionally and returns the new stock.
	IncreaseStock(ctx context.Context, tenantID, productID int64, qty int) (int, error)
}

type ledger struct {
	repo    product.Repository
	metrics *metrics.Metrics
}

func NewLedger(repo product.Repository, m *metrics.Metrics) Ledger {
	return &ledger{repo: repo, metrics: m}
}

func (l *ledger) DecreaseStock(ctx context.Context, tenantID, productID int64, qty int) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("method", "DecreaseStock"),
		zap.Int64("product_id", productID),
		zap.Int("quantity", qty),
	)

	if qty <= 0 {
		return 0, apperr.Invalid("quantity", "must be greater than zero")
	}

	stock, applied, err := l.repo.TryDecreaseStock(ctx, tenantID, productID, qty)
	if err != nil {
		log.Error("failed to decrease stock", zap.Error(err))
		return 0, err
	}

	if !applied {
		available, err := l.repo.GetStock(ctx, tenantID, productID)
		if err != nil {
			log.Warn("stock lookup failed after rejected decrement", zap.Error(err))
			return 0, err
		}
		log.Info("insufficient stock", zap.Int("available", available))
		return 0, &InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
	}

	l.metrics.StockMoved("decrease", qty)
	log.Debug("stock decreased", zap.Int("stock", stock))

	return stock, nil
}

func (l *ledger) IncreaseStock(ctx context.Context, tenantID, productID int64, qty int) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("method", "IncreaseStock"),
		zap.Int64("product_id", productID),
		zap.Int("quantity", qty),
	)

	if qty <= 0 {
		return 0, apperr.Invalid("quantity", "must be greater than zero")
	}

	stock, err := l.repo.IncreaseStock(ctx, tenantID, productID, qty)
	if err != nil {
		log.Error("failed to increase stock", zap.Error(err))
		return 0, err
	}

	l.metrics.StockMoved("increase", qty)
	log.Debug("stock increased", zap.Int("stock", stock))

	return stock, nil
}
