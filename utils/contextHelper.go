package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/dra_backend/appctx"
)

var (
	ContextKeyCenterId      = appctx.ContextKeyCenterId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetCenterIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyCenterId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCenterIdInContext(ctx context.Context, centerId int) context.Context {
	return appctx.Set(ctx, ContextKeyCenterId, centerId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
