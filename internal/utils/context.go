package utils

import "context"

type contextKey string

const (
	TenantIDKey contextKey = "tenant_id"
	ActorKey    contextKey = "actor"
)

// SetTenantContext sets tenant scope and acting user into context (called by middleware)
func SetTenantContext(ctx context.Context, tenantID int64, actor string) context.Context {
	ctx = context.WithValue(ctx, TenantIDKey, tenantID)
	ctx = context.WithValue(ctx, ActorKey, actor)
	return ctx
}

// GetTenantIDFromContext retrieves tenantID safely
func GetTenantIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(TenantIDKey).(int64)
	return id, ok && id > 0
}

func GetActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)
	return actor
}
