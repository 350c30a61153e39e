package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/investfolio/src/logger"
	"github.com/username/investfolio/src/models"
	"github.com/username/investfolio/src/store"
	"github.com/username/investfolio/src/utils"
)

type AssetHandler struct {
	ledger store.LedgerStore
}

func NewAssetHandler(ledger store.LedgerStore) *AssetHandler {
	return &AssetHandler{ledger: ledger}
}

type addAssetRequest struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	AssetType string `json:"asset_type"`
	Currency  string `json:"currency"`
}

func (h *AssetHandler) HandleAddAsset(w http.ResponseWriter, r *http.Request) {
	var req addAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	req.Symbol = strings.TrimSpace(req.Symbol)
	req.Name = strings.TrimSpace(req.Name)
	req.Currency = strings.TrimSpace(req.Currency)
	if req.Symbol == "" || req.Name == "" || req.AssetType == "" || req.Currency == "" {
		utils.SendJSONError(w, "symbol, name, asset_type and currency are required", http.StatusBadRequest)
		return
	}
	if len(req.Currency) != 3 {
		utils.SendJSONError(w, fmt.Sprintf("currency %q must be a 3-letter code", req.Currency), http.StatusBadRequest)
		return
	}

	id, err := h.ledger.AddAsset(req.Symbol, req.Name, req.AssetType, req.Currency)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSymbol) {
			utils.SendJSONError(w, fmt.Sprintf("asset %q already exists", strings.ToUpper(req.Symbol)), http.StatusConflict)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("error adding asset: %v", err), http.StatusInternalServerError)
		return
	}

	logger.L.Info("Asset added", "id", id, "symbol", strings.ToUpper(req.Symbol))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"id":     id,
		"symbol": strings.ToUpper(req.Symbol),
	})
}

func (h *AssetHandler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.ledger.ListAssets()
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error listing assets: %v", err), http.StatusInternalServerError)
		return
	}
	if assets == nil {
		assets = []models.Asset{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assets)
}
