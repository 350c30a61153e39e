package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/username/investfolio/src/models"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqlLedgerStore implements LedgerStore on a sqlite database opened by
// the database package. Uniqueness violations are detected from the
// engine's constraint codes and mapped to the typed errors above.
type sqlLedgerStore struct {
	db *sql.DB
}

func NewSQLLedgerStore(db *sql.DB) LedgerStore {
	return &sqlLedgerStore{db: db}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func (s *sqlLedgerStore) AddAsset(symbol, name, assetType, currency string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO assets (symbol, name, asset_type, currency)
		VALUES (?, ?, ?, ?)`,
		strings.ToUpper(symbol), name, assetType, strings.ToUpper(currency))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("adding asset %q: %w", symbol, ErrDuplicateSymbol)
		}
		return 0, fmt.Errorf("adding asset %q: %w", symbol, err)
	}
	return res.LastInsertId()
}

func (s *sqlLedgerStore) AddTransaction(assetID int64, kind, date string, quantity, pricePerUnit, fees float64) (int64, error) {
	// The schema only declares the foreign key; existence is checked
	// here so callers get a typed error instead of an orphan row.
	if err := s.assetExists(assetID); err != nil {
		return 0, err
	}

	res, err := s.db.Exec(`
		INSERT INTO transactions (asset_id, transaction_type, date, quantity, price_per_unit, fees)
		VALUES (?, ?, ?, ?, ?, ?)`,
		assetID, kind, date, quantity, pricePerUnit, fees)
	if err != nil {
		return 0, fmt.Errorf("adding transaction for asset %d: %w", assetID, err)
	}
	return res.LastInsertId()
}

func (s *sqlLedgerStore) AddPriceEntry(assetID int64, date string, price float64) error {
	if err := s.assetExists(assetID); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO price_history (asset_id, date, price)
		VALUES (?, ?, ?)`,
		assetID, date, price)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("adding price for asset %d on %s: %w", assetID, date, ErrDuplicatePriceEntry)
		}
		return fmt.Errorf("adding price for asset %d on %s: %w", assetID, date, err)
	}
	return nil
}

func (s *sqlLedgerStore) ListAssets() ([]models.Asset, error) {
	rows, err := s.db.Query(`
		SELECT id, symbol, name, asset_type, currency
		FROM assets
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Name, &a.AssetType, &a.Currency); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assets: %w", err)
	}
	return assets, nil
}

func (s *sqlLedgerStore) ListTransactions(assetID int64) ([]models.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, asset_id, transaction_type, date, quantity, price_per_unit, fees
		FROM transactions
		WHERE asset_id = ?
		ORDER BY date, id`, assetID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions for asset %d: %w", assetID, err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.AssetID, &tx.Kind, &tx.Date, &tx.Quantity, &tx.PricePerUnit, &tx.Fees); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return txs, nil
}

func (s *sqlLedgerStore) LatestPrice(assetID int64) (float64, bool, error) {
	var price float64
	err := s.db.QueryRow(`
		SELECT price FROM price_history
		WHERE asset_id = ?
		ORDER BY date DESC
		LIMIT 1`, assetID).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("fetching latest price for asset %d: %w", assetID, err)
	}
	return price, true, nil
}

func (s *sqlLedgerStore) PriceHistory(assetID int64) ([]models.PriceEntry, error) {
	rows, err := s.db.Query(`
		SELECT asset_id, date, price FROM price_history
		WHERE asset_id = ?
		ORDER BY date ASC`, assetID)
	if err != nil {
		return nil, fmt.Errorf("fetching price history for asset %d: %w", assetID, err)
	}
	defer rows.Close()

	var entries []models.PriceEntry
	for rows.Next() {
		var e models.PriceEntry
		if err := rows.Scan(&e.AssetID, &e.Date, &e.Price); err != nil {
			return nil, fmt.Errorf("scanning price entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating price history: %w", err)
	}
	return entries, nil
}

func (s *sqlLedgerStore) FindAssetIDBySymbol(symbol string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		SELECT id FROM assets
		WHERE symbol = ?`, strings.ToUpper(symbol)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("symbol %q: %w", symbol, ErrUnknownAsset)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up symbol %q: %w", symbol, err)
	}
	return id, nil
}

func (s *sqlLedgerStore) assetExists(assetID int64) error {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM assets WHERE id = ?`, assetID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("asset %d: %w", assetID, ErrUnknownAsset)
	}
	if err != nil {
		return fmt.Errorf("checking asset %d: %w", assetID, err)
	}
	return nil
}
