package store

import (
	"errors"

	"github.com/username/investfolio/src/models"
)

// Typed failures surfaced at the store boundary. Callers branch on
// these with errors.Is instead of matching engine error strings.
var (
	// ErrDuplicateSymbol is returned when an asset with the same
	// (case-insensitive) symbol already exists.
	ErrDuplicateSymbol = errors.New("asset symbol already exists")

	// ErrUnknownAsset is returned when an operation references an
	// asset ID or symbol that does not exist.
	ErrUnknownAsset = errors.New("asset does not exist")

	// ErrDuplicatePriceEntry is returned when a price is already
	// recorded for the same asset and date.
	ErrDuplicatePriceEntry = errors.New("price already recorded for asset and date")
)

// LedgerStore is the durable record of assets, transactions and EOD
// prices, abstracted over the storage engine. Every method is a single
// logical unit of work; no multi-statement transactions are exposed.
type LedgerStore interface {
	// AddAsset creates an asset and returns its ID. The symbol and
	// currency are normalized to uppercase before insert.
	AddAsset(symbol, name, assetType, currency string) (int64, error)

	// AddTransaction appends a transaction for an existing asset and
	// returns its ID. Kinds other than "buy" are accepted as-is; the
	// holdings replay treats every non-buy kind as a subtraction.
	AddTransaction(assetID int64, kind, date string, quantity, pricePerUnit, fees float64) (int64, error)

	// AddPriceEntry records an EOD price for (assetID, date).
	AddPriceEntry(assetID int64, date string, price float64) error

	ListAssets() ([]models.Asset, error)
	ListTransactions(assetID int64) ([]models.Transaction, error)

	// LatestPrice returns the price with the maximum date for the
	// asset. ok is false when no price has been recorded.
	LatestPrice(assetID int64) (price float64, ok bool, err error)

	// PriceHistory returns all recorded prices ordered ascending by date.
	PriceHistory(assetID int64) ([]models.PriceEntry, error)

	// FindAssetIDBySymbol resolves a symbol case-insensitively.
	// Returns ErrUnknownAsset when no asset carries the symbol.
	FindAssetIDBySymbol(symbol string) (int64, error)
}
