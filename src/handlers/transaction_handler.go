package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/investfolio/src/logger"
	"github.com/username/investfolio/src/store"
	"github.com/username/investfolio/src/utils"
)

type TransactionHandler struct {
	ledger store.LedgerStore
}

func NewTransactionHandler(ledger store.LedgerStore) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

type addTransactionRequest struct {
	Symbol          string  `json:"symbol"`
	TransactionType string  `json:"transaction_type"`
	Date            string  `json:"date"`
	Quantity        float64 `json:"quantity"`
	PricePerUnit    float64 `json:"price_per_unit"`
	Fees            float64 `json:"fees"`
}

func (h *TransactionHandler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	req.Symbol = strings.TrimSpace(req.Symbol)
	req.TransactionType = strings.ToLower(strings.TrimSpace(req.TransactionType))
	if req.Symbol == "" || req.TransactionType == "" || req.Date == "" {
		utils.SendJSONError(w, "symbol, transaction_type and date are required", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateDate(req.Date); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		utils.SendJSONError(w, "quantity must be a positive number", http.StatusBadRequest)
		return
	}

	// The ledger accepts any kind; everything that is not "buy"
	// subtracts from holdings during replay.
	assetID, err := h.ledger.FindAssetIDBySymbol(req.Symbol)
	if err != nil {
		if errors.Is(err, store.ErrUnknownAsset) {
			utils.SendJSONError(w, fmt.Sprintf("asset %q not found, create it first", strings.ToUpper(req.Symbol)), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error resolving symbol: %v", err), http.StatusInternalServerError)
		return
	}

	id, err := h.ledger.AddTransaction(assetID, req.TransactionType, req.Date, req.Quantity, req.PricePerUnit, req.Fees)
	if err != nil {
		if errors.Is(err, store.ErrUnknownAsset) {
			utils.SendJSONError(w, fmt.Sprintf("asset %q not found", strings.ToUpper(req.Symbol)), http.StatusNotFound)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error adding transaction: %v", err), http.StatusInternalServerError)
		return
	}

	logger.L.Info("Transaction recorded", "id", id, "symbol", strings.ToUpper(req.Symbol), "kind", req.TransactionType, "quantity", req.Quantity)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"id": id})
}
