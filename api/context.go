package api

import (
	"context"
)

type keyType string

const capabilityKey keyType = "capability"

// Capability is a permission granted to a request. AdminAccess is the only
// one; it is granted by presenting the shared admin token.
type Capability string

const AdminAccess Capability = "admin"

func ctxWithCapability(ctx context.Context, c Capability) context.Context {
	return context.WithValue(ctx, capabilityKey, c)
}

func ctxHasCapability(ctx context.Context, c Capability) bool {
	got, ok := ctx.Value(capabilityKey).(Capability)
	return ok && got == c
}
