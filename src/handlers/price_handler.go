package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/investfolio/src/logger"
	"github.com/username/investfolio/src/store"
	"github.com/username/investfolio/src/utils"
)

type PriceHandler struct {
	ledger store.LedgerStore
}

func NewPriceHandler(ledger store.LedgerStore) *PriceHandler {
	return &PriceHandler{ledger: ledger}
}

type addPriceRequest struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
}

func (h *PriceHandler) HandleAddPrice(w http.ResponseWriter, r *http.Request) {
	var req addPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	req.Symbol = strings.TrimSpace(req.Symbol)
	if req.Symbol == "" || req.Date == "" {
		utils.SendJSONError(w, "symbol and date are required", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateDate(req.Date); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	assetID, err := h.ledger.FindAssetIDBySymbol(req.Symbol)
	if err != nil {
		if errors.Is(err, store.ErrUnknownAsset) {
			utils.SendJSONError(w, fmt.Sprintf("asset %q not found", strings.ToUpper(req.Symbol)), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error resolving symbol: %v", err), http.StatusInternalServerError)
		return
	}

	if err := h.ledger.AddPriceEntry(assetID, req.Date, req.Price); err != nil {
		if errors.Is(err, store.ErrDuplicatePriceEntry) {
			utils.SendJSONError(w, fmt.Sprintf("price for %s on %s already exists", strings.ToUpper(req.Symbol), req.Date), http.StatusConflict)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error adding price: %v", err), http.StatusInternalServerError)
		return
	}

	logger.L.Info("Price recorded", "symbol", strings.ToUpper(req.Symbol), "date", req.Date, "price", req.Price)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"symbol": strings.ToUpper(req.Symbol),
		"date":   req.Date,
		"price":  req.Price,
	})
}

// HandleGetPriceHistory serves the ascending price series for one asset,
// with an ETag so the dashboard charts can skip unchanged payloads.
func (h *PriceHandler) HandleGetPriceHistory(w http.ResponseWriter, r *http.Request) {
	assetID, err := strconv.ParseInt(r.PathValue("assetID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "asset ID must be an integer", http.StatusBadRequest)
		return
	}

	entries, err := h.ledger.PriceHistory(assetID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error fetching price history for asset %d: %v", assetID, err), http.StatusInternalServerError)
		return
	}

	type pricePoint struct {
		Date  string  `json:"date"`
		Price float64 `json:"price"`
	}
	points := make([]pricePoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, pricePoint{Date: e.Date, Price: e.Price})
	}

	etag, err := utils.GenerateETag(points)
	if err == nil {
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}
