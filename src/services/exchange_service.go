package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/investfolio/src/logger"
)

// rateResponse mirrors the provider payload, e.g.
// {"result": "success", "conversion_rates": {"USD": 1, "DKK": 6.95, ...}}
type rateResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// exchangeRateServiceImpl implements ExchangeRateService against a
// keyed HTTP rate provider. The client carries its own timeout so a
// hung call cannot stall the valuation pipeline.
type exchangeRateServiceImpl struct {
	httpClient http.Client
	baseURL    string
	apiKey     string
}

func NewExchangeRateService(baseURL, apiKey string, timeout time.Duration) ExchangeRateService {
	return &exchangeRateServiceImpl{
		httpClient: http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

func (s *exchangeRateServiceImpl) FetchRates(baseCurrency string) (map[string]float64, error) {
	base := strings.ToUpper(baseCurrency)
	url := fmt.Sprintf("%s/%s/latest/%s", s.baseURL, s.apiKey, base)

	resp, err := s.httpClient.Get(url)
	if err != nil {
		logger.L.Warn("Exchange rate request failed", "base", base, "error", err)
		return nil, fmt.Errorf("fetching rates for %s: %v: %w", base, err, ErrRateUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.L.Warn("Exchange rate provider returned non-OK status", "base", base, "status", resp.StatusCode)
		return nil, fmt.Errorf("rate provider returned status %d for %s: %w", resp.StatusCode, base, ErrRateUnavailable)
	}

	var data rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		logger.L.Warn("Failed to parse exchange rate response", "base", base, "error", err)
		return nil, fmt.Errorf("parsing rate response for %s: %v: %w", base, err, ErrRateUnavailable)
	}

	if data.Result != "success" || data.ConversionRates == nil {
		logger.L.Warn("Exchange rate provider reported failure", "base", base, "result", data.Result, "errorType", data.ErrorType)
		return nil, fmt.Errorf("rate provider reported %q for %s: %w", data.Result, base, ErrRateUnavailable)
	}

	return data.ConversionRates, nil
}
