package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	ierr "github.com/gpinvoice/invoicegen/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoltStore(t *testing.T, quota int) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "nested", "cache.db"), quota)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T, quota int) Store{
		"bolt":   func(t *testing.T, quota int) Store { return newBoltStore(t, quota) },
		"memory": func(_ *testing.T, quota int) Store { return NewMemoryStore(quota) },
	}

	for name, newStore := range stores {
		t.Run(name+"/missing key defaults to zero", func(t *testing.T) {
			s := newStore(t, 0)
			v, err := s.GetInt(context.Background(), "seq")
			require.NoError(t, err)
			assert.Equal(t, 0, v)
		})

		t.Run(name+"/set then get", func(t *testing.T) {
			s := newStore(t, 0)
			ctx := context.Background()
			require.NoError(t, s.SetInt(ctx, "seq", 41))
			require.NoError(t, s.SetInt(ctx, "seq", 42))

			v, err := s.GetInt(ctx, "seq")
			require.NoError(t, err)
			assert.Equal(t, 42, v)
		})

		t.Run(name+"/quota exceeded", func(t *testing.T) {
			s := newStore(t, 10)
			ctx := context.Background()
			require.NoError(t, s.SetInt(ctx, "seq", 7))

			err := s.SetInt(ctx, "another-key", 123456)
			assert.True(t, ierr.IsQuotaExceeded(err))

			// overwriting an existing key is measured without its old value
			assert.NoError(t, s.SetInt(ctx, "seq", 8))
		})
	}
}

func TestBoltStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewBoltStore(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.SetInt(context.Background(), "seq", 9))
	require.NoError(t, s.Close())

	reopened, err := NewBoltStore(path, 0)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.GetInt(context.Background(), "seq")
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}
