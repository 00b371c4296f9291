//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bselens/bselens/internal/config"
	"github.com/bselens/bselens/internal/exchange"
	"github.com/bselens/bselens/internal/lookup"
)

var _ exchange.ScripCache = (*Store)(nil)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), config.StoreConfig{
		Driver: "libsql",
		Path:   ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestOpenMemoryStore(t *testing.T) {
	store := openMemoryStore(t)
	require.Equal(t, "libsql", store.Driver())
	require.NoError(t, store.CheckHealth(context.Background()))
}

func TestOpenLocalStore_ConfiguresSQLite(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, config.StoreConfig{
		Driver: "libsql",
		Path:   "file:" + t.TempDir() + "/bselens.db",
	})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.Equal(t, 1, store.DB.Stats().MaxOpenConnections)

	var journalMode string
	require.NoError(t, store.DB.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode))
	require.Contains(t, journalMode, "wal")

	var busyTimeout int
	require.NoError(t, store.DB.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busyTimeout))
	require.GreaterOrEqual(t, busyTimeout, 1000)
}

func TestScripCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	hdfc := lookup.Entry{
		CompanyName: "HDFC Bank Ltd",
		Symbol:      "hdfcbank",
		ISIN:        "INE040A01034",
		BSECode:     "500180",
	}
	require.NoError(t, store.PutScrip(ctx, hdfc, time.Hour))

	byCode, err := store.GetScrip(ctx, "500180")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	require.Equal(t, "HDFCBANK", byCode.Symbol)
	require.Equal(t, "HDFC Bank Ltd", byCode.CompanyName)

	bySymbol, err := store.GetScrip(ctx, "HdfcBank")
	require.NoError(t, err)
	require.NotNil(t, bySymbol)
	require.Equal(t, "500180", bySymbol.BSECode)

	miss, err := store.GetScrip(ctx, "500209")
	require.NoError(t, err)
	require.Nil(t, miss)
}

func TestPutScripKeepsKnownDetails(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	require.NoError(t, store.PutScrip(ctx, lookup.Entry{
		CompanyName: "HDFC Bank Ltd",
		Symbol:      "HDFCBANK",
		ISIN:        "INE040A01034",
		BSECode:     "500180",
	}, time.Hour))
	require.NoError(t, store.PutScrip(ctx, lookup.Entry{Symbol: "HDFCBANK", BSECode: "500180"}, time.Hour))

	got, err := store.GetScrip(ctx, "500180")
	require.NoError(t, err)
	require.Equal(t, "INE040A01034", got.ISIN)
	require.Equal(t, "HDFC Bank Ltd", got.CompanyName)
}

func TestPutScripIgnoresIncompleteEntries(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	require.NoError(t, store.PutScrip(ctx, lookup.Entry{Symbol: "HDFCBANK"}, time.Hour))
	require.NoError(t, store.PutScrip(ctx, lookup.Entry{Symbol: "INFY", BSECode: "500209"}, 0))

	entries, err := store.ListScrips(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPurgeScrips(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	require.NoError(t, store.PutScrip(ctx, lookup.Entry{Symbol: "HDFCBANK", BSECode: "500180"}, time.Hour))
	require.NoError(t, store.PutScrip(ctx, lookup.Entry{Symbol: "INFY", BSECode: "500209"}, time.Hour))

	past := time.Now().Add(-time.Minute).UTC().Unix()
	_, err := store.DB.ExecContext(ctx, `UPDATE scrip_cache SET expires_at = ? WHERE scrip_code = ?`, past, "500209")
	require.NoError(t, err)

	expired, err := store.GetScrip(ctx, "500209")
	require.NoError(t, err)
	require.Nil(t, expired)

	entries, err := store.ListScrips(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "500180", entries[0].BSECode)
	require.True(t, entries[1].Expired(time.Now()))

	removed, err := store.PurgeScrips(ctx, true)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	removed, err = store.PurgeScrips(ctx, false)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	entries, err = store.ListScrips(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}
