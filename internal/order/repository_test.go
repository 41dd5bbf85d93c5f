package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopdesk-be/internal/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{
	"id", "tenant_id", "contact_id", "order_number",
	"subtotal", "discount", "tax", "shipping", "total", "promo_code", "currency",
	"status", "payment_status", "payment_method", "payment_url",
	"source", "notes", "status_updated_at", "created_at",
}

var itemRowColumns = []string{
	"order_id", "product_id", "product_name", "sku", "unit_price", "quantity", "line_total",
}

func newOrderForInsert() *Order {
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	return &Order{
		ID:            uuid.New(),
		TenantID:      1,
		ContactID:     9,
		OrderNumber:   "ORD-20260601-AAAAAA",
		Subtotal:      decimal.NewFromInt(100),
		Tax:           decimal.NewFromInt(8),
		Total:         decimal.NewFromInt(108),
		Currency:      "USD",
		Status:        StatusPending,
		PaymentStatus: PaymentStatusPending,
		PaymentMethod: "cod",
		Source:        SourceStorefront,
		Items: []Item{
			{ProductID: 1, ProductName: "Mug", UnitPrice: decimal.NewFromInt(50), Quantity: 2, LineTotal: decimal.NewFromInt(100)},
		},
		StatusUpdatedAt: now,
		CreatedAt:       now,
	}
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		sqlDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		repo := NewRepository(sqlDB)
		o := newOrderForInsert()

		mock.ExpectQuery(`INSERT INTO orders .* ON CONFLICT \(tenant_id, order_number\) DO NOTHING RETURNING id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(o.ID.String()))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(sqlmock.AnyArg(), int64(1), "Mug", nil, sqlmock.AnyArg(), 2, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_status_history`).
			WithArgs(sqlmock.AnyArg(), nil, "pending", "checkout", o.CreatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Create(ctx, o, InitialStatusChange(o, "checkout"))

		assert.NoError(t, err)
		assert.Equal(t, "ORD-20260601-AAAAAA", o.OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OrderNumberCollisionRegenerates", func(t *testing.T) {
		sqlDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		repo := NewRepository(sqlDB).(*repository)
		repo.newNumber = func(time.Time) string { return "ORD-20260601-BBBBBB" }
		o := newOrderForInsert()

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "ORD-20260601-BBBBBB",
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(o.ID.String()))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_status_history`).WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Create(ctx, o, InitialStatusChange(o, "checkout"))

		assert.NoError(t, err)
		assert.Equal(t, "ORD-20260601-BBBBBB", o.OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CollisionsExhausted", func(t *testing.T) {
		sqlDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		repo := NewRepository(sqlDB)
		o := newOrderForInsert()

		for i := 0; i < maxOrderNumberAttempts; i++ {
			mock.ExpectQuery(`INSERT INTO orders`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		}

		err = repo.Create(ctx, o, InitialStatusChange(o, "checkout"))

		assert.ErrorIs(t, err, ErrOrderNumberExhausted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ItemInsertFails", func(t *testing.T) {
		sqlDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		repo := NewRepository(sqlDB)
		o := newOrderForInsert()

		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(o.ID.String()))
		mock.ExpectExec(`INSERT INTO order_items`).WillReturnError(errors.New("fk violation"))

		err = repo.Create(ctx, o, InitialStatusChange(o, "checkout"))

		assert.EqualError(t, err, "fk violation")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyOrder", func(t *testing.T) {
		sqlDB, _, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		o := newOrderForInsert()
		o.Items = nil

		err = NewRepository(sqlDB).Create(ctx, o, InitialStatusChange(o, "checkout"))
		assert.ErrorIs(t, err, ErrEmptyOrder)
	})
}

func TestRepository_GetForUpdate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewRepository(sqlDB)
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1 AND tenant_id = \$2 FOR UPDATE`).
			WithArgs(id.String(), int64(1)).
			WillReturnRows(sqlmock.NewRows(orderRowColumns).AddRow(
				id.String(), 1, 9, "ORD-20260601-AAAAAA",
				"100.00", "0.00", "8.00", "0.00", "108.00", nil, "USD",
				"confirmed", "pending", "cod", nil,
				"storefront", "leave at door", now, now,
			))
		mock.ExpectQuery(`SELECT order_id, product_id, .* FROM order_items WHERE order_id = ANY`).
			WillReturnRows(sqlmock.NewRows(itemRowColumns).
				AddRow(id.String(), 1, "Mug", "MUG-1", "50.00", 2, "100.00"))

		o, err := repo.GetForUpdate(ctx, 1, id)

		require.NoError(t, err)
		assert.Equal(t, id, o.ID)
		assert.Equal(t, StatusConfirmed, o.Status)
		assert.Equal(t, "108", o.Total.String())
		assert.Nil(t, o.PromoCode)
		assert.Equal(t, "leave at door", *o.Notes)
		require.Len(t, o.Items, 1)
		assert.Equal(t, "MUG-1", *o.Items[0].SKU)
		assert.Equal(t, 2, o.Items[0].Quantity)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders`).
			WillReturnRows(sqlmock.NewRows(orderRowColumns))

		_, err := repo.GetForUpdate(ctx, 1, id)

		assert.True(t, apperr.IsNotFound(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewRepository(sqlDB)
	ctx := context.Background()
	o := newOrderForInsert()
	o.Status = StatusConfirmed

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders SET status = \$1, status_updated_at = \$2 WHERE id = \$3 AND tenant_id = \$4`).
			WithArgs("confirmed", o.StatusUpdatedAt, o.ID.String(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(ctx, o))
	})

	t.Run("NoRows", func(t *testing.T) {
		mock.ExpectExec(`UPDATE orders`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.True(t, apperr.IsNotFound(repo.UpdateStatus(ctx, o)))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewRepository(sqlDB)
	ctx := context.Background()
	now := time.Now()

	t.Run("FilteredByStatus", func(t *testing.T) {
		status := StatusShipped
		first, second := uuid.New(), uuid.New()

		mock.ExpectQuery(`SELECT .* FROM orders WHERE tenant_id = \$1 AND status = \$2 ORDER BY created_at DESC, id DESC LIMIT \$3 OFFSET \$4`).
			WithArgs(int64(1), "shipped", 10, 10).
			WillReturnRows(sqlmock.NewRows(orderRowColumns).
				AddRow(first.String(), 1, 9, "ORD-1", "10", "0", "0.8", "9.99", "20.79", nil, "USD",
					"shipped", "pending", "cod", nil, "storefront", nil, now, now).
				AddRow(second.String(), 1, 9, "ORD-2", "10", "0", "0.8", "9.99", "20.79", nil, "USD",
					"shipped", "pending", "cod", nil, "storefront", nil, now, now.Add(-time.Hour)))
		mock.ExpectQuery(`FROM order_items`).
			WillReturnRows(sqlmock.NewRows(itemRowColumns).
				AddRow(first.String(), 1, "Mug", nil, "10", 1, "10").
				AddRow(second.String(), 2, "Tea", nil, "10", 1, "10"))

		orders, err := repo.List(ctx, 1, ListFilter{Status: &status, Limit: 10, Page: 2})

		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "ORD-1", orders[0].OrderNumber)
		assert.Equal(t, int64(1), orders[0].Items[0].ProductID)
		assert.Equal(t, int64(2), orders[1].Items[0].ProductID)
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM orders WHERE tenant_id = \$1 ORDER BY`).
			WithArgs(int64(1), 20, 0).
			WillReturnRows(sqlmock.NewRows(orderRowColumns))

		orders, err := repo.List(ctx, 1, ListFilter{})

		assert.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_History(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewRepository(sqlDB)
	id := uuid.New()
	t0 := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT h.order_id, h.old_status, h.new_status, h.actor, h.changed_at FROM order_status_history h JOIN orders o`).
		WithArgs(id.String(), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "old_status", "new_status", "actor", "changed_at"}).
			AddRow(id.String(), nil, "pending", "checkout", t0).
			AddRow(id.String(), "pending", "cancelled", "ops@shop", t0.Add(time.Hour)))

	history, err := repo.History(context.Background(), 1, id)

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, Status(""), history[0].OldStatus)
	assert.Equal(t, StatusPending, history[0].NewStatus)
	assert.Equal(t, StatusPending, history[1].OldStatus)
	assert.Equal(t, StatusCancelled, history[1].NewStatus)
	assert.Equal(t, "ops@shop", history[1].Actor)
	assert.NoError(t, mock.ExpectationsWereMet())
}
