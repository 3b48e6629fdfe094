package testutil

import (
	"context"

	"github.com/gpinvoice/invoicegen/internal/types"
)

func SetupContext() context.Context {
	return types.SetRequestID(context.Background(), types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
}
