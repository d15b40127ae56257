package utils

import (
	"context"

	"github.com/google/uuid"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

// CreateCtxWithRqID keeps an existing rqID from parent, otherwise generates a new one.
func CreateCtxWithRqID(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	if rqID := GetRequestIDFromCtx(parent); rqID != "" {
		return parent
	}
	return context.WithValue(parent, rqIDKey{}, uuid.NewString())
}

func WithRequestID(parent context.Context, rqID string) context.Context {
	return context.WithValue(parent, rqIDKey{}, rqID)
}
