package services

import (
	"strings"

	"github.com/username/investfolio/src/logger"
	"github.com/username/investfolio/src/models"
	"github.com/username/investfolio/src/store"
)

// portfolioServiceImpl orchestrates the ledger store, the holdings
// replay and the currency converter. Summaries are recomputed on every
// call; a single asset with a missing price or an unreachable rate
// degrades to absent fields instead of failing the request.
type portfolioServiceImpl struct {
	ledger       store.LedgerStore
	currency     CurrencyService
	homeCurrency string
}

func NewPortfolioService(ledger store.LedgerStore, currency CurrencyService, homeCurrency string) PortfolioService {
	return &portfolioServiceImpl{
		ledger:       ledger,
		currency:     currency,
		homeCurrency: strings.ToUpper(homeCurrency),
	}
}

func (s *portfolioServiceImpl) NetQuantity(assetID int64) (float64, error) {
	txs, err := s.ledger.ListTransactions(assetID)
	if err != nil {
		return 0, err
	}

	// Pure sum reduction, not sign validation: anything that is not
	// literally "buy" reduces the holding. Order does not matter.
	var net float64
	for _, tx := range txs {
		if tx.Kind == "buy" {
			net += tx.Quantity
		} else {
			net -= tx.Quantity
		}
	}
	return net, nil
}

func (s *portfolioServiceImpl) Summary() (map[string]models.HoldingSummary, error) {
	assets, err := s.ledger.ListAssets()
	if err != nil {
		return nil, err
	}

	holdings := make(map[string]models.HoldingSummary)
	for _, asset := range assets {
		net, err := s.NetQuantity(asset.ID)
		if err != nil {
			logger.L.Warn("Skipping asset in summary, transactions unavailable", "symbol", asset.Symbol, "error", err)
			continue
		}

		// Flat and oversold positions never appear in the summary.
		if net <= 0 {
			continue
		}

		summary := models.HoldingSummary{
			AssetID:     asset.ID,
			NetQuantity: net,
			AssetType:   capitalize(asset.AssetType),
			Currency:    asset.Currency,
		}

		price, ok, err := s.ledger.LatestPrice(asset.ID)
		if err != nil {
			logger.L.Warn("Latest price unavailable", "symbol", asset.Symbol, "error", err)
		} else if ok {
			summary.LatestPrice = &price
			converted, convErr := s.currency.Convert(price, asset.Currency, s.homeCurrency)
			if convErr != nil {
				logger.L.Warn("Conversion to home currency unavailable", "symbol", asset.Symbol, "currency", asset.Currency, "error", convErr)
			} else {
				summary.HomePrice = &converted
			}
		}

		holdings[asset.Symbol] = summary
	}
	return holdings, nil
}

func (s *portfolioServiceImpl) TotalValue() (float64, error) {
	holdings, err := s.Summary()
	if err != nil {
		return 0, err
	}

	// Entries missing a converted price contribute zero: one stale
	// asset must not block reporting the rest of the portfolio.
	var total float64
	for _, h := range holdings {
		if h.HomePrice != nil {
			total += h.NetQuantity * *h.HomePrice
		}
	}
	return total, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
