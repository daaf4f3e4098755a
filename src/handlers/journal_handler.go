// backend/src/handlers/journal_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/protrade/backend/src/journal"
	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/services"
	"github.com/username/protrade/backend/src/utils"
)

type JournalHandler struct {
	journalService services.JournalService
}

func NewJournalHandler(journalService services.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
	}
}

func journalTradeID(w http.ResponseWriter, r *http.Request) (userID, tradeID int64, ok bool) {
	userID, ok = GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return 0, 0, false
	}
	tradeID, err := strconv.ParseInt(chi.URLParam(r, "tradeID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade ID", http.StatusBadRequest)
		return 0, 0, false
	}
	return userID, tradeID, true
}

// HandleGetJournal devolve o documento do diário; trades sem diário recebem o
// template padrão (sem persistir).
func (h *JournalHandler) HandleGetJournal(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := journalTradeID(w, r)
	if !ok {
		return
	}

	doc, err := h.journalService.GetJournal(userID, tradeID)
	if err != nil {
		if errors.Is(err, services.ErrTradeNotFound) {
			utils.SendJSONError(w, "Trade não encontrado", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to load journal", "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, "Failed to load journal", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, doc)
}

// HandleSaveJournal é o save explícito: valida, sanitiza, deriva a estratégia
// e persiste tudo numa transação.
func (h *JournalHandler) HandleSaveJournal(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := journalTradeID(w, r)
	if !ok {
		return
	}

	var doc journal.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		utils.SendJSONError(w, "Invalid journal document: "+err.Error(), http.StatusBadRequest)
		return
	}

	saved, strategy, err := h.journalService.SaveJournal(userID, tradeID, doc)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTradeNotFound):
			utils.SendJSONError(w, "Trade não encontrado", http.StatusNotFound)
		case errors.Is(err, journal.ErrImageLimit):
			utils.SendJSONError(w, journal.ErrImageLimit.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrInvalidDocument):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.L.Error("Failed to save journal", "tradeID", tradeID, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]interface{}{
		"journal":  saved,
		"strategy": strategy,
	})
}

// HandleApplyJournalOps aplica edições estruturais nomeadas (PATCH). A
// estratégia derivada não é recalculada aqui.
func (h *JournalHandler) HandleApplyJournalOps(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := journalTradeID(w, r)
	if !ok {
		return
	}

	var ops []journal.Op
	if err := json.NewDecoder(r.Body).Decode(&ops); err != nil {
		utils.SendJSONError(w, "Invalid operations payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(ops) == 0 {
		utils.SendJSONError(w, "At least one operation is required", http.StatusBadRequest)
		return
	}

	doc, err := h.journalService.ApplyJournalOps(userID, tradeID, ops)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTradeNotFound):
			utils.SendJSONError(w, "Trade não encontrado", http.StatusNotFound)
		case errors.Is(err, journal.ErrImageLimit):
			utils.SendJSONError(w, journal.ErrImageLimit.Error(), http.StatusBadRequest)
		default:
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	utils.SendJSON(w, http.StatusOK, doc)
}
