// backend/src/handlers/trade_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/protrade/backend/src/database"
	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/models"
	"github.com/username/protrade/backend/src/security/validation"
	"github.com/username/protrade/backend/src/services"
	"github.com/username/protrade/backend/src/utils"
)

type TradeHandler struct {
	journalService services.JournalService
}

func NewTradeHandler(journalService services.JournalService) *TradeHandler {
	return &TradeHandler{
		journalService: journalService,
	}
}

const tradeSelectColumns = `id, user_id, date, asset, type, status, quantity, entry_price, exit_price, pnl, strategy, journal, created_at, updated_at`

func scanTrade(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Trade, error) {
	var t models.Trade
	var exitPrice, pnl sql.NullFloat64
	var journal sql.NullString
	err := scanner.Scan(
		&t.ID, &t.UserID, &t.Date, &t.Asset, &t.Type, &t.Status, &t.Quantity, &t.EntryPrice,
		&exitPrice, &pnl, &t.Strategy, &journal, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if exitPrice.Valid {
		t.ExitPrice = &exitPrice.Float64
	}
	if pnl.Valid {
		t.PnL = &pnl.Float64
	}
	if journal.Valid && journal.String != "" {
		t.Journal = json.RawMessage(journal.String)
	}
	return t, nil
}

// queryTrades lists a user's trades applying the optional filter. It is
// shared with the admin user-details view.
func queryTrades(userID int64, filter models.TradeFilter, limit int) ([]models.Trade, error) {
	query := "SELECT " + tradeSelectColumns + " FROM trades WHERE user_id = ?"
	args := []interface{}{userID}

	if filter.Asset != "" {
		query += " AND asset LIKE ?"
		args = append(args, "%"+strings.ToUpper(strings.TrimSpace(filter.Asset))+"%")
	}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.DateFrom != "" {
		query += " AND date >= ?"
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		query += " AND date <= ?"
		args = append(args, filter.DateTo)
	}

	query += " ORDER BY date DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func tradeFilterFromQuery(r *http.Request) models.TradeFilter {
	q := r.URL.Query()
	return models.TradeFilter{
		Asset:    q.Get("asset"),
		Type:     models.TradeType(q.Get("type")),
		Status:   models.TradeStatus(q.Get("status")),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	}
}

func (h *TradeHandler) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	trades, err := queryTrades(userID, tradeFilterFromQuery(r), 0)
	if err != nil {
		logger.L.Error("Failed to query trades", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to fetch trades", http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}

	utils.SendJSON(w, http.StatusOK, trades)
}

func (h *TradeHandler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(chi.URLParam(r, "tradeID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade ID", http.StatusBadRequest)
		return
	}

	row := database.DB.QueryRow("SELECT "+tradeSelectColumns+" FROM trades WHERE id = ? AND user_id = ?", tradeID, userID)
	trade, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.SendJSONError(w, "Trade não encontrado", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to fetch trade", "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, "Failed to fetch trade", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, trade)
}

// validateTradePayload aplica as regras comuns de criação/atualização.
func validateTradePayload(t *models.Trade) error {
	if _, err := validation.ValidateDateString(t.Date, "Data"); err != nil {
		return err
	}
	if err := validation.ValidateAsset(t.Asset); err != nil {
		return err
	}
	t.Asset = strings.ToUpper(strings.TrimSpace(t.Asset))
	if !t.Type.Valid() {
		return fmt.Errorf("tipo de operação inválido: '%s'", t.Type)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("status inválido: '%s'", t.Status)
	}
	if err := validation.ValidateFloatRange(t.Quantity, "Quantidade", false, 0.000001, 1e12); err != nil {
		return err
	}
	if err := validation.ValidateFloatRange(t.EntryPrice, "Preço de entrada", false, 0.000001, 1e12); err != nil {
		return err
	}
	if t.ExitPrice != nil {
		if err := validation.ValidateFloatRange(*t.ExitPrice, "Preço de saída", false, 0, 1e12); err != nil {
			return err
		}
	}
	if err := validation.ValidateStringMaxLength(t.Strategy, validation.MaxStrategyLength, "Estratégia"); err != nil {
		return err
	}
	t.Strategy = validation.SanitizeText(t.Strategy)
	return nil
}

// resolvePnL mantém a coluna pnl coerente: calculada apenas para trades
// fechados com preço de saída, ignorando o valor enviado pelo cliente.
func resolvePnL(t *models.Trade) {
	if t.Status != models.TradeClosed || t.ExitPrice == nil {
		t.PnL = nil
		return
	}
	var pnl float64
	if t.Type == models.TradeSell {
		pnl = (t.EntryPrice - *t.ExitPrice) * t.Quantity
	} else {
		pnl = (*t.ExitPrice - t.EntryPrice) * t.Quantity
	}
	t.PnL = &pnl
}

func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateTradePayload(&trade); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	resolvePnL(&trade)

	var exitPrice, pnl interface{}
	if trade.ExitPrice != nil {
		exitPrice = *trade.ExitPrice
	}
	if trade.PnL != nil {
		pnl = *trade.PnL
	}

	res, err := database.DB.Exec(`
		INSERT INTO trades (user_id, date, asset, type, status, quantity, entry_price, exit_price, pnl, strategy, journal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		userID, trade.Date, trade.Asset, trade.Type, trade.Status, trade.Quantity, trade.EntryPrice, exitPrice, pnl, trade.Strategy)
	if err != nil {
		logger.L.Error("Failed to insert trade", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create trade", http.StatusInternalServerError)
		return
	}

	trade.ID, _ = res.LastInsertId()
	trade.UserID = userID
	logger.L.Info("Trade created", "userID", userID, "tradeID", trade.ID, "asset", trade.Asset)

	utils.SendJSON(w, http.StatusCreated, trade)
}

func (h *TradeHandler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(chi.URLParam(r, "tradeID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade ID", http.StatusBadRequest)
		return
	}

	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateTradePayload(&trade); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	resolvePnL(&trade)

	var exitPrice, pnl interface{}
	if trade.ExitPrice != nil {
		exitPrice = *trade.ExitPrice
	}
	if trade.PnL != nil {
		pnl = *trade.PnL
	}

	res, err := database.DB.Exec(`
		UPDATE trades
		SET date = ?, asset = ?, type = ?, status = ?, quantity = ?, entry_price = ?, exit_price = ?, pnl = ?, strategy = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		trade.Date, trade.Asset, trade.Type, trade.Status, trade.Quantity, trade.EntryPrice, exitPrice, pnl, trade.Strategy, tradeID, userID)
	if err != nil {
		logger.L.Error("Failed to update trade", "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, "Failed to update trade", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		utils.SendJSONError(w, "Trade não encontrado", http.StatusNotFound)
		return
	}

	trade.ID = tradeID
	trade.UserID = userID
	utils.SendJSON(w, http.StatusOK, trade)
}

func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	tradeID, err := strconv.ParseInt(chi.URLParam(r, "tradeID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade ID", http.StatusBadRequest)
		return
	}

	res, err := database.DB.Exec("DELETE FROM trades WHERE id = ? AND user_id = ?", tradeID, userID)
	if err != nil {
		logger.L.Error("Failed to delete trade", "tradeID", tradeID, "error", err)
		utils.SendJSONError(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		utils.SendJSONError(w, "Trade não encontrado", http.StatusNotFound)
		return
	}

	h.journalService.InvalidateUserCache(userID)
	logger.L.Info("Trade deleted", "userID", userID, "tradeID", tradeID)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTradesRequest define a estrutura para o corpo do pedido de eliminação em massa.
type DeleteTradesRequest struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// HandleDeleteTrades lida com a eliminação de trades com base nos critérios
// fornecidos ('all', 'asset', 'year').
func (h *TradeHandler) HandleDeleteTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req DeleteTradesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger.L.Info("Handling DeleteTrades request", "userID", userID, "type", req.Type, "values", req.Values)

	var result sql.Result
	var err error
	switch req.Type {
	case "all":
		result, err = database.DB.Exec("DELETE FROM trades WHERE user_id = ?", userID)
	case "asset":
		if len(req.Values) == 0 {
			utils.SendJSONError(w, "asset values cannot be empty for type 'asset'", http.StatusBadRequest)
			return
		}
		query := "DELETE FROM trades WHERE user_id = ? AND asset IN (?" + strings.Repeat(",?", len(req.Values)-1) + ")"
		args := make([]interface{}, len(req.Values)+1)
		args[0] = userID
		for i, v := range req.Values {
			args[i+1] = strings.ToUpper(strings.TrimSpace(v))
		}
		result, err = database.DB.Exec(query, args...)
	case "year":
		if len(req.Values) != 1 {
			utils.SendJSONError(w, "exactly one year value is required for type 'year'", http.StatusBadRequest)
			return
		}
		result, err = database.DB.Exec("DELETE FROM trades WHERE user_id = ? AND SUBSTR(date, 1, 4) = ?", userID, req.Values[0])
	default:
		utils.SendJSONError(w, "invalid deletion type specified", http.StatusBadRequest)
		return
	}

	if err != nil {
		logger.L.Error("Error executing delete statement", "userID", userID, "type", req.Type, "error", err)
		utils.SendJSONError(w, "Failed to delete trades", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := result.RowsAffected()
	logger.L.Info("Successfully deleted trades", "userID", userID, "type", req.Type, "rowsAffected", rowsAffected)

	h.journalService.InvalidateUserCache(userID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetDashboardStats calcula os KPIs sobre os trades fechados do
// utilizador, respeitando os mesmos filtros da listagem.
func (h *TradeHandler) HandleGetDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	trades, err := queryTrades(userID, tradeFilterFromQuery(r), 0)
	if err != nil {
		logger.L.Error("Failed to query trades for dashboard", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, computeDashboardStats(trades))
}

func computeDashboardStats(trades []models.Trade) models.DashboardStats {
	stats := models.DashboardStats{TotalTrades: len(trades)}

	var wins, losses int
	var winTotal, lossTotal float64
	for _, t := range trades {
		if t.PnL == nil {
			continue
		}
		stats.TotalPnL += *t.PnL
		if *t.PnL > 0 {
			wins++
			winTotal += *t.PnL
		} else if *t.PnL < 0 {
			losses++
			lossTotal += -*t.PnL
		}
	}

	if closed := wins + losses; closed > 0 {
		stats.WinRate = (float64(wins) / float64(closed)) * 100
	}
	if wins > 0 && losses > 0 && lossTotal > 0 {
		avgWin := winTotal / float64(wins)
		avgLoss := lossTotal / float64(losses)
		stats.RiskReturn = avgWin / avgLoss
	}
	return stats
}

// --- CSV Export ---

// formatDecimalBR escreve números com vírgula decimal (formato esperado pelo
// Excel em PT).
func formatDecimalBR(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', 2, 64), ".", ",")
}

// buildTradesCSV monta o ficheiro com separador ';' e BOM UTF-8 para o Excel
// abrir com acentuação correta. Campos de texto passam pela proteção contra
// injeção de fórmulas.
func buildTradesCSV(trades []models.Trade) []byte {
	var sb strings.Builder
	sb.WriteString("\uFEFF")
	sb.WriteString("Data;Ativo;Tipo;Status;Quantidade;Preço Entrada;Preço Saída;Resultado;Estratégia\n")

	for _, t := range trades {
		exit := ""
		if t.ExitPrice != nil {
			exit = formatDecimalBR(*t.ExitPrice)
		}
		pnl := ""
		if t.PnL != nil {
			pnl = formatDecimalBR(*t.PnL)
		}

		row := []string{
			validation.SanitizeForFormulaInjection(t.Date),
			validation.SanitizeForFormulaInjection(t.Asset),
			validation.SanitizeForFormulaInjection(string(t.Type)),
			validation.SanitizeForFormulaInjection(string(t.Status)),
			formatDecimalBR(t.Quantity),
			formatDecimalBR(t.EntryPrice),
			exit,
			pnl,
			validation.SanitizeForFormulaInjection(t.Strategy),
		}
		sb.WriteString(strings.Join(row, ";"))
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

func (h *TradeHandler) HandleExportTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	trades, err := queryTrades(userID, tradeFilterFromQuery(r), 0)
	if err != nil {
		logger.L.Error("Failed to query trades for export", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to export trades", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("ProTrade_Export_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(buildTradesCSV(trades))

	logger.L.Info("Trades exported", "userID", userID, "count", len(trades))
}
