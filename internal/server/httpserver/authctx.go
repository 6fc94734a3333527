package httpserver

import (
	"context"

	"github.com/and161185/storefront/internal/model"
)

type ctxKey string

const capabilityKey ctxKey = "sf.capability"

// WithCapability stores the caller capability in context.
func WithCapability(ctx context.Context, c model.Capability) context.Context {
	return context.WithValue(ctx, capabilityKey, c)
}

// CapabilityFromCtx fetches the caller capability; Guest when absent.
func CapabilityFromCtx(ctx context.Context) model.Capability {
	if c, ok := ctx.Value(capabilityKey).(model.Capability); ok && c != nil {
		return c
	}
	return model.Guest{}
}
