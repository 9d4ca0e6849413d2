package testutil

import (
	"context"

	"github.com/walaka/walaka/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	ctx = context.WithValue(ctx, types.CtxEnvironmentID, "env_sandbox")
	return ctx
}
