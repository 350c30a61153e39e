package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/investfolio/src/logger"
)

// currencyServiceImpl composes the rate cache and the gateway. The
// cache keeps whole rate tables keyed by base currency, so one gateway
// call amortizes every future conversion from that base. Tables are
// never persisted; a restart always starts cold.
type currencyServiceImpl struct {
	rates ExchangeRateService
	cache *cache.Cache
}

// NewCurrencyService builds a converter over the given gateway. A zero
// ttl caches rate tables for the lifetime of the process.
func NewCurrencyService(rates ExchangeRateService, ttl time.Duration) CurrencyService {
	expiration := ttl
	if ttl <= 0 {
		expiration = cache.NoExpiration
	}
	return &currencyServiceImpl{
		rates: rates,
		cache: cache.New(expiration, 2*expiration),
	}
}

func (s *currencyServiceImpl) Convert(amount float64, fromCurrency, toCurrency string) (float64, error) {
	from := strings.ToUpper(fromCurrency)
	to := strings.ToUpper(toCurrency)

	// Identity conversion needs no rate table at all.
	if from == to {
		return amount, nil
	}

	var table map[string]float64
	if cached, found := s.cache.Get(from); found {
		table = cached.(map[string]float64)
	} else {
		fetched, err := s.rates.FetchRates(from)
		if err != nil {
			// Nothing is cached on failure, so the next call
			// retries the gateway.
			return 0, err
		}
		s.cache.Set(from, fetched, cache.DefaultExpiration)
		logger.L.Info("Cached exchange rates", "base", from, "currencies", len(fetched))
		table = fetched
	}

	rate, ok := table[to]
	if !ok {
		logger.L.Warn("Target currency missing from rate table", "base", from, "target", to)
		return 0, fmt.Errorf("no rate from %s to %s: %w", from, to, ErrRateUnavailable)
	}

	return amount * rate, nil
}
