package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/investfolio/src/database"
	"github.com/username/investfolio/src/logger"
	"github.com/username/investfolio/src/services"
	"github.com/username/investfolio/src/store"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// fixedConverter converts through a flat per-currency rate table.
type fixedConverter struct {
	rates map[string]float64
}

func (c *fixedConverter) Convert(amount float64, fromCurrency, toCurrency string) (float64, error) {
	if strings.EqualFold(fromCurrency, toCurrency) {
		return amount, nil
	}
	rate, ok := c.rates[strings.ToUpper(fromCurrency)]
	if !ok {
		return 0, services.ErrRateUnavailable
	}
	return amount * rate, nil
}

func newTestMux(t *testing.T, converter services.CurrencyService) (*http.ServeMux, store.LedgerStore) {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(database.Schema)
	require.NoError(t, err)

	ledger := store.NewSQLLedgerStore(db)
	portfolioService := services.NewPortfolioService(ledger, converter, "DKK")

	assetHandler := NewAssetHandler(ledger)
	txHandler := NewTransactionHandler(ledger)
	priceHandler := NewPriceHandler(ledger)
	portfolioHandler := NewPortfolioHandler(portfolioService, "DKK")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/portfolio/summary", portfolioHandler.HandleGetSummary)
	mux.HandleFunc("GET /api/assets", assetHandler.HandleListAssets)
	mux.HandleFunc("POST /api/assets", assetHandler.HandleAddAsset)
	mux.HandleFunc("POST /api/transactions", txHandler.HandleAddTransaction)
	mux.HandleFunc("POST /api/prices", priceHandler.HandleAddPrice)
	mux.HandleFunc("GET /api/price-history/{assetID}", priceHandler.HandleGetPriceHistory)

	return mux, ledger
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAddAssetEndpoint(t *testing.T) {
	mux, _ := newTestMux(t, &fixedConverter{})

	rec := doJSON(t, mux, "POST", "/api/assets",
		`{"symbol":"aapl","name":"Apple Inc.","asset_type":"stock","currency":"usd"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID     int64  `json:"id"`
		Symbol string `json:"symbol"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "AAPL", created.Symbol)

	// Same symbol in a different case is a conflict.
	rec = doJSON(t, mux, "POST", "/api/assets",
		`{"symbol":"AAPL","name":"Apple again","asset_type":"stock","currency":"USD"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, mux, "POST", "/api/assets", `{"symbol":"","name":"x","asset_type":"stock","currency":"USD"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, "POST", "/api/assets", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddTransactionEndpoint(t *testing.T) {
	mux, _ := newTestMux(t, &fixedConverter{})

	rec := doJSON(t, mux, "POST", "/api/transactions",
		`{"symbol":"GHOST","transaction_type":"buy","date":"2024-01-01","quantity":1,"price_per_unit":10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "transactions require an existing asset")

	rec = doJSON(t, mux, "POST", "/api/assets",
		`{"symbol":"NOVO","name":"Novo Nordisk","asset_type":"stock","currency":"DKK"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, "POST", "/api/transactions",
		`{"symbol":"novo","transaction_type":"BUY","date":"2024-01-02","quantity":5,"price_per_unit":700,"fees":29}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, mux, "POST", "/api/transactions",
		`{"symbol":"NOVO","transaction_type":"buy","date":"02-01-2024","quantity":5,"price_per_unit":700}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "dates must be ISO 8601")

	rec = doJSON(t, mux, "POST", "/api/transactions",
		`{"symbol":"NOVO","transaction_type":"buy","date":"2024-01-02","quantity":-5,"price_per_unit":700}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "quantity must be positive")
}

func TestAddPriceEndpointDuplicate(t *testing.T) {
	mux, _ := newTestMux(t, &fixedConverter{})

	rec := doJSON(t, mux, "POST", "/api/assets",
		`{"symbol":"GLD","name":"Gold ETC","asset_type":"commodity","currency":"USD"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, "POST", "/api/prices", `{"symbol":"GLD","date":"2024-01-01","price":184.5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, "POST", "/api/prices", `{"symbol":"GLD","date":"2024-01-01","price":200}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, mux, "POST", "/api/prices", `{"symbol":"NONE","date":"2024-01-01","price":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPriceHistoryEndpointETag(t *testing.T) {
	mux, ledger := newTestMux(t, &fixedConverter{})

	id, err := ledger.AddAsset("BTC", "Bitcoin", "crypto", "USD")
	require.NoError(t, err)
	require.NoError(t, ledger.AddPriceEntry(id, "2024-01-01", 44000))
	require.NoError(t, ledger.AddPriceEntry(id, "2024-02-01", 51000))

	req := httptest.NewRequest("GET", "/api/price-history/1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var points []struct {
		Date  string  `json:"date"`
		Price float64 `json:"price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-01", points[0].Date)

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req = httptest.NewRequest("GET", "/api/price-history/1", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestPortfolioSummaryEndpoint(t *testing.T) {
	converter := &fixedConverter{rates: map[string]float64{"USD": 2}}
	mux, ledger := newTestMux(t, converter)

	usdID, err := ledger.AddAsset("GOOD", "Priced Co", "stock", "USD")
	require.NoError(t, err)
	gbpID, err := ledger.AddAsset("STALE", "Unpriceable Plc", "stock", "GBP")
	require.NoError(t, err)

	_, err = ledger.AddTransaction(usdID, "buy", "2024-01-01", 10, 90, 0)
	require.NoError(t, err)
	_, err = ledger.AddTransaction(gbpID, "buy", "2024-01-01", 7, 40, 0)
	require.NoError(t, err)

	require.NoError(t, ledger.AddPriceEntry(usdID, "2024-01-31", 100))
	require.NoError(t, ledger.AddPriceEntry(gbpID, "2024-01-31", 50))

	rec := doJSON(t, mux, "GET", "/api/portfolio/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Holdings map[string]struct {
			NetQuantity float64  `json:"net_quantity"`
			LatestPrice *float64 `json:"latest_price"`
			HomePrice   *float64 `json:"home_price"`
		} `json:"holdings"`
		TotalValue   float64 `json:"total_value"`
		HomeCurrency string  `json:"home_currency"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "DKK", resp.HomeCurrency)
	require.Len(t, resp.Holdings, 2)

	good := resp.Holdings["GOOD"]
	require.NotNil(t, good.HomePrice)
	assert.Equal(t, 200.0, *good.HomePrice)

	stale := resp.Holdings["STALE"]
	require.NotNil(t, stale.LatestPrice)
	assert.Nil(t, stale.HomePrice, "unavailable conversion is reported as null")

	assert.Equal(t, 2000.0, resp.TotalValue, "the unconvertible asset contributes zero")
}
