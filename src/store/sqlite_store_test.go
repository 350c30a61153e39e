package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/investfolio/src/database"
	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) LedgerStore {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	// A single connection serializes writes the way a deployed sqlite
	// file does, so racing inserts resolve through the constraint
	// instead of a busy error.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(database.Schema)
	require.NoError(t, err)

	return NewSQLLedgerStore(db)
}

func TestAddAssetNormalizesAndLooksUpCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddAsset("aapl", "Apple Inc.", "stock", "usd")
	require.NoError(t, err)

	found, err := s.FindAssetIDBySymbol("AAPL")
	require.NoError(t, err)
	assert.Equal(t, id, found)

	found, err = s.FindAssetIDBySymbol("aApL")
	require.NoError(t, err)
	assert.Equal(t, id, found)

	assets, err := s.ListAssets()
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "AAPL", assets[0].Symbol)
	assert.Equal(t, "USD", assets[0].Currency)
}

func TestAddAssetDuplicateSymbol(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddAsset("NOVO", "Novo Nordisk", "stock", "DKK")
	require.NoError(t, err)

	_, err = s.AddAsset("novo", "Novo Nordisk again", "stock", "DKK")
	require.ErrorIs(t, err, ErrDuplicateSymbol)

	assets, err := s.ListAssets()
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}

func TestConcurrentDuplicateAddAsset(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.AddAsset("XYZ", "Duplicate Co", "stock", "EUR")
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrDuplicateSymbol):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, duplicates)
}

func TestAddTransactionUnknownAsset(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddTransaction(42, "buy", "2024-01-01", 10, 100, 0)
	require.ErrorIs(t, err, ErrUnknownAsset)
}

func TestAddTransactionAcceptsAnyKind(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddAsset("VWCE", "Vanguard FTSE All-World", "etf", "EUR")
	require.NoError(t, err)

	// Kinds are not validated at insert time; the replay treats
	// everything that is not "buy" as a subtraction.
	for _, kind := range []string{"buy", "sell", "transfer_out"} {
		_, err := s.AddTransaction(id, kind, "2024-01-01", 1, 10, 0.5)
		require.NoError(t, err)
	}

	txs, err := s.ListTransactions(id)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestAddPriceEntryDuplicateRejected(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddAsset("GLD", "Gold ETC", "commodity", "USD")
	require.NoError(t, err)

	require.NoError(t, s.AddPriceEntry(id, "2024-01-01", 184.5))

	err = s.AddPriceEntry(id, "2024-01-01", 999.9)
	require.ErrorIs(t, err, ErrDuplicatePriceEntry)

	// The first entry survives untouched.
	history, err := s.PriceHistory(id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 184.5, history[0].Price)
}

func TestAddPriceEntryUnknownAsset(t *testing.T) {
	s := newTestStore(t)

	err := s.AddPriceEntry(7, "2024-01-01", 10)
	require.ErrorIs(t, err, ErrUnknownAsset)
}

func TestLatestPrice(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddAsset("NOVO", "Novo Nordisk", "stock", "DKK")
	require.NoError(t, err)

	_, ok, err := s.LatestPrice(id)
	require.NoError(t, err)
	assert.False(t, ok, "no price recorded yet")

	require.NoError(t, s.AddPriceEntry(id, "2024-01-02", 710.0))
	require.NoError(t, s.AddPriceEntry(id, "2024-01-05", 725.5))
	require.NoError(t, s.AddPriceEntry(id, "2024-01-03", 700.0))

	price, ok, err := s.LatestPrice(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 725.5, price, "latest price is the one with the maximum date, not the last inserted")
}

func TestPriceHistoryOrderedAscending(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddAsset("BTC", "Bitcoin", "crypto", "USD")
	require.NoError(t, err)

	require.NoError(t, s.AddPriceEntry(id, "2024-03-01", 62000))
	require.NoError(t, s.AddPriceEntry(id, "2024-01-01", 44000))
	require.NoError(t, s.AddPriceEntry(id, "2024-02-01", 51000))

	history, err := s.PriceHistory(id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"2024-01-01", "2024-02-01", "2024-03-01"},
		[]string{history[0].Date, history[1].Date, history[2].Date})
}

func TestFindAssetIDBySymbolUnknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindAssetIDBySymbol("NOPE")
	require.ErrorIs(t, err, ErrUnknownAsset)
}
