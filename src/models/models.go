package models

// Asset is an instrument the portfolio can hold. Symbols and currency
// codes are stored uppercase; the symbol is unique across the table.
type Asset struct {
	ID        int64  `json:"id"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	AssetType string `json:"asset_type"`
	Currency  string `json:"currency"` // 3-letter code the asset's prices are denominated in
}

// Transaction is a single buy or sell of an asset. Transactions are
// append-only; there are no update or delete operations.
type Transaction struct {
	ID           int64   `json:"id"`
	AssetID      int64   `json:"asset_id"`
	Kind         string  `json:"transaction_type"` // "buy" or "sell"
	Date         string  `json:"date"`             // ISO 8601 (2006-01-02)
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"price_per_unit"` // in the asset's denomination currency
	Fees         float64 `json:"fees"`
}

// PriceEntry is an end-of-day price snapshot. At most one entry exists
// per (asset, date) pair.
type PriceEntry struct {
	AssetID int64   `json:"asset_id"`
	Date    string  `json:"date"`
	Price   float64 `json:"price"`
}

// HoldingSummary describes one held position in the portfolio summary.
// It is derived on every request and never persisted. Price fields are
// nil when no price is recorded or conversion is unavailable.
type HoldingSummary struct {
	AssetID     int64    `json:"asset_id"`
	NetQuantity float64  `json:"net_quantity"`
	AssetType   string   `json:"asset_type"`
	LatestPrice *float64 `json:"latest_price"`
	Currency    string   `json:"currency"`
	HomePrice   *float64 `json:"home_price"` // latest price converted to the home currency
}
