package services

import (
	"errors"

	"github.com/username/investfolio/src/models"
)

// ErrRateUnavailable covers every way a conversion can fail: gateway
// transport errors, timeouts, malformed or non-success payloads, and
// target currencies missing from a fetched table. Callers degrade the
// affected figure to absent instead of failing the whole request.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// ExchangeRateService fetches all conversion rates quoted against a
// base currency from the remote provider. It is the only component
// that touches the network.
type ExchangeRateService interface {
	FetchRates(baseCurrency string) (map[string]float64, error)
}

// CurrencyService converts amounts between currency codes, caching
// whole rate tables per base currency so repeat conversions from the
// same base avoid the gateway.
type CurrencyService interface {
	Convert(amount float64, fromCurrency, toCurrency string) (float64, error)
}

// PortfolioService derives the current portfolio state from the ledger.
type PortfolioService interface {
	// NetQuantity replays an asset's transactions into its current
	// holding: "buy" adds the quantity, any other kind subtracts it.
	// The result can go negative and is reported as-is.
	NetQuantity(assetID int64) (float64, error)

	// Summary maps each held symbol to its holding summary. Assets
	// whose net quantity is not strictly positive are excluded.
	Summary() (map[string]models.HoldingSummary, error)

	// TotalValue sums netQuantity * home-currency price over the
	// summary. Entries without a convertible price contribute zero.
	TotalValue() (float64, error)
}
