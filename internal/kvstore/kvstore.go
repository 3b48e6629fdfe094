// Package kvstore is the Local Cache Store: a small key/value layer holding the
// fallback invoice sequence counter.
package kvstore

import (
	"context"
	"strconv"

	ierr "github.com/gpinvoice/invoicegen/internal/errors"
)

// Store persists integers by key. GetInt returns 0 for unknown keys.
// SetInt fails with ierr.ErrQuotaExceeded when the store is full.
type Store interface {
	GetInt(ctx context.Context, key string) (int, error)
	SetInt(ctx context.Context, key string, value int) error
}

func encodeInt(v int) []byte {
	return []byte(strconv.Itoa(v))
}

// decodeInt treats a corrupt value like a missing one
func decodeInt(raw []byte) int {
	if raw == nil {
		return 0
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return v
}

func quotaError(key string, used, quota int) error {
	return ierr.NewErrorf("writing %q would use %d of %d bytes", key, used, quota).
		WithHint("Local storage is full, the invoice sequence could not be saved").
		WithReportableDetails(map[string]any{
			"key":   key,
			"used":  used,
			"quota": quota,
		}).
		Mark(ierr.ErrQuotaExceeded)
}
