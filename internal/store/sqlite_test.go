package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T, ttl time.Duration) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteGetMissing(t *testing.T) {
	s := newTestSQLite(t, time.Hour)

	data, err := s.Get(context.Background(), Key("enrichment", "nobody", ""))
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestSQLiteSetGet(t *testing.T) {
	s := newTestSQLite(t, time.Hour)
	ctx := context.Background()
	key := Key("enrichment", "Acme", "https://acme.example")

	require.NoError(t, s.Set(ctx, key, []byte(`{"name":"Acme"}`)))

	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"name":"Acme"}`), data)
}

func TestSQLiteSetOverwrites(t *testing.T) {
	s := newTestSQLite(t, time.Hour)
	ctx := context.Background()
	key := Key("search", "Zahnarzt", "Berlin", "DE", "20")

	require.NoError(t, s.Set(ctx, key, []byte(`old`)))
	require.NoError(t, s.Set(ctx, key, []byte(`new`)))

	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte(`new`), data)
}

func TestSQLiteTTLExpiry(t *testing.T) {
	s := newTestSQLite(t, time.Hour)
	ctx := context.Background()
	key := Key("enrichment", "Acme", "https://acme.example")

	base := time.Now().UTC()
	s.now = func() time.Time { return base }
	require.NoError(t, s.Set(ctx, key, []byte(`value`)))

	// Fresh within the TTL.
	s.now = func() time.Time { return base.Add(59 * time.Minute) }
	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, data)

	// Aged past the TTL: logically absent.
	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	data, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.Nil(t, data)

	// Re-setting refreshes the timestamp.
	require.NoError(t, s.Set(ctx, key, []byte(`value`)))
	data, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, data)
}

func TestSQLitePurgeExpired(t *testing.T) {
	s := newTestSQLite(t, time.Hour)
	ctx := context.Background()

	base := time.Now().UTC()
	s.now = func() time.Time { return base }
	require.NoError(t, s.Set(ctx, Key("enrichment", "old", "a"), []byte(`a`)))
	require.NoError(t, s.Set(ctx, Key("enrichment", "old", "b"), []byte(`b`)))

	s.now = func() time.Time { return base.Add(3 * time.Hour) }
	require.NoError(t, s.Set(ctx, Key("enrichment", "fresh", "c"), []byte(`c`)))

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	data, err := s.Get(ctx, Key("enrichment", "fresh", "c"))
	require.NoError(t, err)
	require.NotNil(t, data)
}
