package contact

import (
	"context"
	"strings"

	"shopdesk-be/internal/apperr"
	"shopdesk-be/internal/logger"
	"shopdesk-be/internal/utils"

	"go.uber.org/zap"
)

type Resolver interface {
	FindOrCreate(ctx context.Context, tenantID int64, info Info) (*Contact, error)
}

type resolver struct {
	repo Repository
}

func NewResolver(repo Repository) Resolver {
	return &resolver{repo: repo}
}

// FindOrCreate looks the contact up by phone within the tenant. Missing
// contacts are created; existing ones get their name refreshed and email or
// address replaced only when supplied. Phone and id never change.
func (r *resolver) FindOrCreate(ctx context.Context, tenantID int64, info Info) (*Contact, error) {
	info, err := Normalize(info)
	if err != nil {
		return nil, err
	}

	c, created, err := r.repo.Upsert(ctx, tenantID, info)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Debug("contact resolved",
		zap.String("layer", "service"),
		zap.Int64("contact_id", c.ID),
		zap.Bool("created", created),
	)

	return c, nil
}

// Normalize trims input, canonicalises the phone number and rejects a
// missing name or phone.
func Normalize(info Info) (Info, error) {
	info.Name = strings.TrimSpace(info.Name)
	info.Phone = utils.NormalizePhone(info.Phone)
	info.Email = utils.TrimPtr(info.Email)
	info.Address = utils.TrimPtr(info.Address)

	if info.Name == "" {
		return info, apperr.Invalid("customer_info.name", "is required")
	}
	if info.Phone == "" {
		return info, apperr.Invalid("customer_info.phone", "is required")
	}
	return info, nil
}
