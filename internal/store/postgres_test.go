package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func newTestPostgres(t *testing.T, ttl time.Duration) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &PostgresStore{pool: mock, ttl: ttl, now: time.Now}, mock
}

func TestPostgresGetMissing(t *testing.T) {
	s, mock := newTestPostgres(t, time.Hour)
	key := Key("enrichment", "nobody", "")

	mock.ExpectQuery("SELECT value, created_at FROM cache").
		WithArgs(key).
		WillReturnError(pgx.ErrNoRows)

	data, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	require.Nil(t, data)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetFresh(t *testing.T) {
	s, mock := newTestPostgres(t, time.Hour)
	key := Key("enrichment", "Acme", "https://acme.example")

	mock.ExpectQuery("SELECT value, created_at FROM cache").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"value", "created_at"}).
			AddRow(`{"name":"Acme"}`, time.Now().UTC().Add(-10*time.Minute)))

	data, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"name":"Acme"}`), data)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetExpired(t *testing.T) {
	s, mock := newTestPostgres(t, time.Hour)
	key := Key("enrichment", "Acme", "https://acme.example")

	mock.ExpectQuery("SELECT value, created_at FROM cache").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"value", "created_at"}).
			AddRow(`{"name":"Acme"}`, time.Now().UTC().Add(-2*time.Hour)))

	data, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	require.Nil(t, data)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSet(t *testing.T) {
	s, mock := newTestPostgres(t, time.Hour)
	key := Key("search", "Zahnarzt", "Berlin", "DE", "20")

	mock.ExpectExec("INSERT INTO cache").
		WithArgs(key, `[{"name":"Acme"}]`, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Set(context.Background(), key, []byte(`[{"name":"Acme"}]`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPurgeExpired(t *testing.T) {
	s, mock := newTestPostgres(t, time.Hour)

	mock.ExpectExec("DELETE FROM cache").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newTestPostgres(t, time.Hour)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cache").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
