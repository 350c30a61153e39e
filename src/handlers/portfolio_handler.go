package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/investfolio/src/services"
	"github.com/username/investfolio/src/utils"
)

type PortfolioHandler struct {
	portfolioService services.PortfolioService
	homeCurrency     string
}

func NewPortfolioHandler(portfolioService services.PortfolioService, homeCurrency string) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		homeCurrency:     homeCurrency,
	}
}

func (h *PortfolioHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.portfolioService.Summary()
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error building portfolio summary: %v", err), http.StatusInternalServerError)
		return
	}

	// Holdings without a convertible price show up with nil price
	// fields and contribute zero to the total.
	totalValue, err := h.portfolioService.TotalValue()
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("error computing total value: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"holdings":      holdings,
		"total_value":   totalValue,
		"home_currency": h.homeCurrency,
	})
}
