// backend/src/handlers/calculator_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/models"
	"github.com/username/protrade/backend/src/services"
	"github.com/username/protrade/backend/src/utils"
)

// CalculatorHandler expõe as três calculadoras da página de ferramentas. Os
// cálculos são puros; não há estado por utilizador.
type CalculatorHandler struct{}

func NewCalculatorHandler() *CalculatorHandler {
	return &CalculatorHandler{}
}

func (h *CalculatorHandler) HandleMiniContract(w http.ResponseWriter, r *http.Request) {
	var req models.MiniContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := services.CalculateMiniContract(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCalculatorInput) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Mini contract calculation failed", "error", err)
		utils.SendJSONError(w, "Calculation failed", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, result)
}

func (h *CalculatorHandler) HandleRiskReward(w http.ResponseWriter, r *http.Request) {
	var req models.RiskRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := services.CalculateRiskReward(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCalculatorInput) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Risk/reward calculation failed", "error", err)
		utils.SendJSONError(w, "Calculation failed", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, result)
}

func (h *CalculatorHandler) HandleAveragePrice(w http.ResponseWriter, r *http.Request) {
	var entries []models.AveragePriceEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := services.CalculateAveragePrice(entries)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCalculatorInput) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Average price calculation failed", "error", err)
		utils.SendJSONError(w, "Calculation failed", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, result)
}
