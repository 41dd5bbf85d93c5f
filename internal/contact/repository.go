package contact

import (
	"context"
	"database/sql"

	"shopdesk-be/internal/db"
	"shopdesk-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// Upsert creates the contact for (tenantID, phone) or refreshes name,
	// and email/address when given. created reports which one happened.
	Upsert(ctx context.Context, tenantID int64, info Info) (c *Contact, created bool, err error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, tenantID int64, info Info) (*Contact, bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpsertContact"),
	)

	// One statement, so two first orders from the same phone racing each
	// other still end up with a single contact row.
	var c Contact
	var created bool
	err := db.Executor(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO contacts (tenant_id, phone, name, email, address)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, phone) DO UPDATE
		SET
			name = EXCLUDED.name,
			email = COALESCE(EXCLUDED.email, contacts.email),
			address = COALESCE(EXCLUDED.address, contacts.address),
			updated_at = NOW()
		RETURNING id, tenant_id, phone, name, email, address, created_at, updated_at, (xmax = 0) AS created
	`,
		tenantID,
		info.Phone,
		info.Name,
		info.Email,
		info.Address,
	).Scan(
		&c.ID,
		&c.TenantID,
		&c.Phone,
		&c.Name,
		&c.Email,
		&c.Address,
		&c.CreatedAt,
		&c.UpdatedAt,
		&created,
	)
	if err != nil {
		log.Error("failed to upsert contact", zap.Error(err))
		return nil, false, err
	}

	return &c, created, nil
}
