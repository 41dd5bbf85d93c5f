package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/db"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const maxOrderNumberAttempts = 5

type Repository interface {
	// Create writes the order, its items and the initial status record.
	// It must run inside a transaction started by db.TxManager.
	Create(ctx context.Context, o *Order, initial StatusChange) error
	GetByID(ctx context.Context, tenantID int64, id uuid.UUID) (*Order, error)
	// GetForUpdate row-locks the order until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, tenantID int64, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, o *Order) error
	InsertStatusChange(ctx context.Context, change StatusChange) error
	List(ctx context.Context, tenantID int64, filter ListFilter) ([]*Order, error)
	History(ctx context.Context, tenantID int64, id uuid.UUID) ([]StatusChange, error)
}

type repository struct {
	db        *sql.DB
	newNumber func(time.Time) string
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db, newNumber: utils.GenerateOrderNumber}
}

const orderColumns = `
	id, tenant_id, contact_id, order_number,
	subtotal, discount, tax, shipping, total, promo_code, currency,
	status, payment_status, payment_method, payment_url,
	source, notes, status_updated_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.TenantID,
		&o.ContactID,
		&o.OrderNumber,
		&o.Subtotal,
		&o.Discount,
		&o.Tax,
		&o.Shipping,
		&o.Total,
		&o.PromoCode,
		&o.Currency,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.PaymentURL,
		&o.Source,
		&o.Notes,
		&o.StatusUpdatedAt,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order, initial StatusChange) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_id", o.ID.String()),
	)

	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}

	exec := db.Executor(ctx, r.db)

	inserted := false
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		var id uuid.UUID
		err := exec.QueryRowContext(ctx, `
			INSERT INTO orders (
				id, tenant_id, contact_id, order_number,
				subtotal, discount, tax, shipping, total, promo_code, currency,
				status, payment_status, payment_method, payment_url,
				source, notes, status_updated_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			ON CONFLICT (tenant_id, order_number) DO NOTHING
			RETURNING id
		`,
			o.ID,
			o.TenantID,
			o.ContactID,
			o.OrderNumber,
			o.Subtotal,
			o.Discount,
			o.Tax,
			o.Shipping,
			o.Total,
			o.PromoCode,
			o.Currency,
			o.Status,
			o.PaymentStatus,
			o.PaymentMethod,
			o.PaymentURL,
			o.Source,
			o.Notes,
			o.StatusUpdatedAt,
			o.CreatedAt,
		).Scan(&id)

		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("order number collision, regenerating",
				zap.String("order_number", o.OrderNumber),
				zap.Int("attempt", attempt),
			)
			o.OrderNumber = r.newNumber(o.CreatedAt)
			continue
		}
		if err != nil {
			log.Error("failed to insert order", zap.Error(err))
			return err
		}

		inserted = true
		break
	}

	if !inserted {
		log.Error("order number attempts exhausted")
		return ErrOrderNumberExhausted
	}

	for _, item := range o.Items {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, sku,
				unit_price, quantity, line_total
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			o.ID,
			item.ProductID,
			item.ProductName,
			item.SKU,
			item.UnitPrice,
			item.Quantity,
			item.LineTotal,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	if err := r.InsertStatusChange(ctx, initial); err != nil {
		return err
	}

	log.Info("order created", zap.String("order_number", o.OrderNumber))
	return nil
}

func (r *repository) GetByID(ctx context.Context, tenantID int64, id uuid.UUID) (*Order, error) {
	return r.get(ctx, tenantID, id, false)
}

func (r *repository) GetForUpdate(ctx context.Context, tenantID int64, id uuid.UUID) (*Order, error) {
	return r.get(ctx, tenantID, id, true)
}

func (r *repository) get(ctx context.Context, tenantID int64, id uuid.UUID, forUpdate bool) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetOrder"),
		zap.String("order_id", id.String()),
		zap.Bool("for_update", forUpdate),
	)

	query := `SELECT` + orderColumns + `
		FROM orders
		WHERE id = $1 AND tenant_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	exec := db.Executor(ctx, r.db)

	o, err := scanOrder(exec.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order", id.String())
	}
	if err != nil {
		log.Error("failed to query order", zap.Error(err))
		return nil, err
	}

	items, err := r.fetchItems(ctx, exec, []uuid.UUID{o.ID})
	if err != nil {
		log.Error("failed to fetch order items", zap.Error(err))
		return nil, err
	}
	o.Items = items[o.ID]

	return o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, o *Order) error {
	res, err := db.Executor(ctx, r.db).ExecContext(ctx, `
		UPDATE orders
		SET status = $1, status_updated_at = $2
		WHERE id = $3 AND tenant_id = $4
	`, o.Status, o.StatusUpdatedAt, o.ID, o.TenantID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order status",
			zap.String("layer", "repository"),
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound("order", o.ID.String())
	}

	return nil
}

func (r *repository) InsertStatusChange(ctx context.Context, change StatusChange) error {
	old := sql.NullString{String: string(change.OldStatus), Valid: change.OldStatus != ""}

	_, err := db.Executor(ctx, r.db).ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, old_status, new_status, actor, changed_at)
		VALUES ($1,$2,$3,$4,$5)
	`, change.OrderID, old, change.NewStatus, change.Actor, change.ChangedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert status history",
			zap.String("layer", "repository"),
			zap.String("order_id", change.OrderID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (r *repository) List(ctx context.Context, tenantID int64, filter ListFilter) ([]*Order, error) {
	filter = filter.Normalize()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
		zap.Int("limit", filter.Limit),
		zap.Int("page", filter.Page),
	)

	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	argPos := 2

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}

	query := fmt.Sprintf(`SELECT`+orderColumns+`
		FROM orders
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(where, " AND "), argPos, argPos+1,
	)
	args = append(args, filter.Limit, filter.Offset())

	exec := db.Executor(ctx, r.db)

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var (
		orders []*Order
		ids    []uuid.UUID
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	if len(orders) == 0 {
		return []*Order{}, nil
	}

	items, err := r.fetchItems(ctx, exec, ids)
	if err != nil {
		log.Error("failed to fetch order items", zap.Error(err))
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}

	log.Debug("orders listed", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) fetchItems(ctx context.Context, exec db.DBTX, orderIDs []uuid.UUID) (map[uuid.UUID][]Item, error) {
	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	rows, err := exec.QueryContext(ctx, `
		SELECT order_id, product_id, product_name, sku, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]Item, len(orderIDs))
	for rows.Next() {
		var (
			orderID uuid.UUID
			it      Item
		)
		if err := rows.Scan(
			&orderID,
			&it.ProductID,
			&it.ProductName,
			&it.SKU,
			&it.UnitPrice,
			&it.Quantity,
			&it.LineTotal,
		); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], it)
	}

	return items, rows.Err()
}

func (r *repository) History(ctx context.Context, tenantID int64, id uuid.UUID) ([]StatusChange, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "History"),
		zap.String("order_id", id.String()),
	)

	rows, err := db.Executor(ctx, r.db).QueryContext(ctx, `
		SELECT h.order_id, h.old_status, h.new_status, h.actor, h.changed_at
		FROM order_status_history h
		JOIN orders o ON o.id = h.order_id
		WHERE h.order_id = $1 AND o.tenant_id = $2
		ORDER BY h.changed_at, h.id
	`, id, tenantID)
	if err != nil {
		log.Error("failed to query status history", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	history := []StatusChange{}
	for rows.Next() {
		var (
			c   StatusChange
			old sql.NullString
		)
		if err := rows.Scan(&c.OrderID, &old, &c.NewStatus, &c.Actor, &c.ChangedAt); err != nil {
			log.Error("failed to scan status history row", zap.Error(err))
			return nil, err
		}
		c.OldStatus = Status(old.String)
		history = append(history, c)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	return history, nil
}
