package product

import (
	"context"
	"database/sql"
	"errors"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/db"
	"shopdesk-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	FindByIDs(ctx context.Context, tenantID int64, ids []int64) (map[int64]*Product, error)
	GetStock(ctx context.Context, tenantID, productID int64) (int, error)
	// TryDecreaseStock subtracts qty only if enough stock is left. applied is
	// false, with a nil error, when the row exists but holds less than qty or
	// when the row does not exist.
	TryDecreaseStock(ctx context.Context, tenantID, productID int64, qty int) (newStock int, applied bool, err error)
	IncreaseStock(ctx context.Context, tenantID, productID int64, qty int) (newStock int, err error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByIDs(ctx context.Context, tenantID int64, ids []int64) (map[int64]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindByIDs"),
		zap.Int("id_count", len(ids)),
	)

	rows, err := db.Executor(ctx, r.db).QueryContext(ctx, `
		SELECT id, tenant_id, name, sku, price, stock_quantity, status, created_at, updated_at
		FROM products
		WHERE tenant_id = $1 AND id = ANY($2)
	`, tenantID, pq.Array(ids))
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make(map[int64]*Product, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.TenantID,
			&p.Name,
			&p.SKU,
			&p.Price,
			&p.StockQuantity,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			log.Error("failed to scan product row", zap.Error(err))
			return nil, err
		}
		products[p.ID] = &p
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	return products, nil
}

func (r *repository) GetStock(ctx context.Context, tenantID, productID int64) (int, error) {
	var stock int
	err := db.Executor(ctx, r.db).QueryRowContext(ctx, `
		SELECT stock_quantity
		FROM products
		WHERE id = $1 AND tenant_id = $2
	`, productID, tenantID).Scan(&stock)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("product", productID)
	}
	return stock, err
}

func (r *repository) TryDecreaseStock(ctx context.Context, tenantID, productID int64, qty int) (int, bool, error) {
	// The WHERE guard and the decrement are one statement, so concurrent
	// callers serialize on the row lock and can never oversell.
	var stock int
	err := db.Executor(ctx, r.db).QueryRowContext(ctx, `
		UPDATE products
		SET
			stock_quantity = stock_quantity - $1,
			status = CASE
				WHEN status = 'active' AND stock_quantity - $1 = 0 THEN 'out_of_stock'
				ELSE status
			END,
			updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND stock_quantity >= $1
		RETURNING stock_quantity
	`, qty, productID, tenantID).Scan(&stock)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}

func (r *repository) IncreaseStock(ctx context.Context, tenantID, productID int64, qty int) (int, error) {
	var stock int
	err := db.Executor(ctx, r.db).QueryRowContext(ctx, `
		UPDATE products
		SET
			stock_quantity = stock_quantity + $1,
			status = CASE
				WHEN status = 'out_of_stock' AND stock_quantity + $1 > 0 THEN 'active'
				ELSE status
			END,
			updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3
		RETURNING stock_quantity
	`, qty, productID, tenantID).Scan(&stock)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFound("product", productID)
	}
	return stock, err
}
