// backend/src/handlers/mindset_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/protrade/backend/src/database"
	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/models"
	"github.com/username/protrade/backend/src/security/validation"
	"github.com/username/protrade/backend/src/services"
	"github.com/username/protrade/backend/src/utils"
)

type MindsetHandler struct {
	progressService services.ProgressService
}

func NewMindsetHandler(progressService services.ProgressService) *MindsetHandler {
	return &MindsetHandler{
		progressService: progressService,
	}
}

const mindsetSelectColumns = `id, user_id, date, emotion_pre, emotion_during, emotion_post, dominant_emotion,
	clarity_level, stress_level, slept_well, observations, good_habits, bad_habits, discipline_score,
	planned_trades, executed_trades, impulsive_trades, loss_control_time,
	sabotage_patterns, reflection_error, reflection_correction`

func scanMindsetEntry(scanner interface {
	Scan(dest ...interface{}) error
}) (models.MindsetEntry, error) {
	var e models.MindsetEntry
	var goodHabits, badHabits, sabotage, lossControl sql.NullString
	err := scanner.Scan(
		&e.ID, &e.UserID, &e.Date, &e.EmotionPre, &e.EmotionDuring, &e.EmotionPost, &e.DominantEmotion,
		&e.ClarityLevel, &e.StressLevel, &e.SleptWell, &e.Observations, &goodHabits, &badHabits, &e.DisciplineScore,
		&e.PlannedTrades, &e.ExecutedTrades, &e.ImpulsiveTrades, &lossControl,
		&sabotage, &e.ReflectionError, &e.ReflectionCorrection)
	if err != nil {
		return e, err
	}
	e.LossControlTime = lossControl.String
	decodeStringList(goodHabits, &e.GoodHabits)
	decodeStringList(badHabits, &e.BadHabits)
	decodeStringList(sabotage, &e.SabotagePatterns)
	return e, nil
}

func decodeStringList(col sql.NullString, dst *[]string) {
	if col.Valid && col.String != "" {
		if err := json.Unmarshal([]byte(col.String), dst); err != nil {
			logger.L.Warn("Could not decode stored string list, treating as empty", "raw", col.String, "error", err)
		}
	}
	if *dst == nil {
		*dst = []string{}
	}
}

func encodeStringList(list []string) string {
	if list == nil {
		list = []string{}
	}
	encoded, _ := json.Marshal(list)
	return string(encoded)
}

// queryMindsetEntries lista as entradas mais recentes. Partilhado com a vista
// de detalhe de utilizador do admin.
func queryMindsetEntries(userID int64, limit int) ([]models.MindsetEntry, error) {
	query := "SELECT " + mindsetSelectColumns + " FROM mindset_entries WHERE user_id = ? ORDER BY date DESC"
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.MindsetEntry
	for rows.Next() {
		e, err := scanMindsetEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (h *MindsetHandler) HandleGetMindsetEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	entries, err := queryMindsetEntries(userID, 0)
	if err != nil {
		logger.L.Error("Failed to query mindset entries", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to fetch mindset entries", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.MindsetEntry{}
	}

	utils.SendJSON(w, http.StatusOK, entries)
}

func (h *MindsetHandler) HandleGetMindsetEntryByDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	date := chi.URLParam(r, "date")
	if _, err := validation.ValidateDateString(date, "Data"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	row := database.DB.QueryRow("SELECT "+mindsetSelectColumns+" FROM mindset_entries WHERE user_id = ? AND date = ?", userID, date)
	entry, err := scanMindsetEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.SendJSONError(w, "Sem registo para esta data", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to fetch mindset entry", "userID", userID, "date", date, "error", err)
		utils.SendJSONError(w, "Failed to fetch mindset entry", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, entry)
}

func validateMindsetEntry(e *models.MindsetEntry) error {
	if _, err := validation.ValidateDateString(e.Date, "Data"); err != nil {
		return err
	}
	if err := validation.ValidateScore(e.ClarityLevel, "Nível de clareza"); err != nil {
		return err
	}
	if err := validation.ValidateScore(e.StressLevel, "Nível de stress"); err != nil {
		return err
	}
	if err := validation.ValidatePercentScore(e.DisciplineScore, "Pontuação de disciplina"); err != nil {
		return err
	}
	if err := validation.ValidateIntRange(e.PlannedTrades, "Trades planeados", 0, 1000); err != nil {
		return err
	}
	if err := validation.ValidateIntRange(e.ExecutedTrades, "Trades executados", 0, 1000); err != nil {
		return err
	}
	if err := validation.ValidateIntRange(e.ImpulsiveTrades, "Trades impulsivos", 0, 1000); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(e.Observations, validation.MaxObservationsLength, "Observações"); err != nil {
		return err
	}

	e.Observations = validation.SanitizeText(e.Observations)
	e.ReflectionError = validation.SanitizeText(e.ReflectionError)
	e.ReflectionCorrection = validation.SanitizeText(e.ReflectionCorrection)
	sanitizeList := func(list []string) []string {
		for i := range list {
			list[i] = validation.SanitizeText(list[i])
		}
		return list
	}
	e.GoodHabits = sanitizeList(e.GoodHabits)
	e.BadHabits = sanitizeList(e.BadHabits)
	e.SabotagePatterns = sanitizeList(e.SabotagePatterns)
	return nil
}

// HandleSaveMindsetEntry faz upsert por (user, date) e recalcula de seguida a
// streak e o nível de consistência do utilizador.
func (h *MindsetHandler) HandleSaveMindsetEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var entry models.MindsetEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateMindsetEntry(&entry); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var lossControl interface{}
	if entry.LossControlTime != "" {
		lossControl = entry.LossControlTime
	}

	res, err := database.DB.Exec(`
		INSERT INTO mindset_entries (user_id, date, emotion_pre, emotion_during, emotion_post, dominant_emotion,
			clarity_level, stress_level, slept_well, observations, good_habits, bad_habits, discipline_score,
			planned_trades, executed_trades, impulsive_trades, loss_control_time,
			sabotage_patterns, reflection_error, reflection_correction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			emotion_pre = excluded.emotion_pre,
			emotion_during = excluded.emotion_during,
			emotion_post = excluded.emotion_post,
			dominant_emotion = excluded.dominant_emotion,
			clarity_level = excluded.clarity_level,
			stress_level = excluded.stress_level,
			slept_well = excluded.slept_well,
			observations = excluded.observations,
			good_habits = excluded.good_habits,
			bad_habits = excluded.bad_habits,
			discipline_score = excluded.discipline_score,
			planned_trades = excluded.planned_trades,
			executed_trades = excluded.executed_trades,
			impulsive_trades = excluded.impulsive_trades,
			loss_control_time = excluded.loss_control_time,
			sabotage_patterns = excluded.sabotage_patterns,
			reflection_error = excluded.reflection_error,
			reflection_correction = excluded.reflection_correction`,
		userID, entry.Date, entry.EmotionPre, entry.EmotionDuring, entry.EmotionPost, entry.DominantEmotion,
		entry.ClarityLevel, entry.StressLevel, entry.SleptWell, entry.Observations,
		encodeStringList(entry.GoodHabits), encodeStringList(entry.BadHabits), entry.DisciplineScore,
		entry.PlannedTrades, entry.ExecutedTrades, entry.ImpulsiveTrades, lossControl,
		encodeStringList(entry.SabotagePatterns), entry.ReflectionError, entry.ReflectionCorrection)
	if err != nil {
		logger.L.Error("Failed to upsert mindset entry", "userID", userID, "date", entry.Date, "error", err)
		utils.SendJSONError(w, "Failed to save mindset entry", http.StatusInternalServerError)
		return
	}

	if id, _ := res.LastInsertId(); id > 0 {
		entry.ID = id
	}
	entry.UserID = userID

	// O registo do dia alimenta diretamente a streak; atualizar já o snapshot.
	progress, err := h.progressService.RefreshUserMetrics(userID)
	if err != nil {
		logger.L.Error("Failed to refresh progress after mindset save", "userID", userID, "error", err)
	}

	response := map[string]interface{}{"entry": entry}
	if progress != nil {
		response["progress"] = progress
	}
	utils.SendJSON(w, http.StatusOK, response)
}

func (h *MindsetHandler) HandleDeleteMindsetEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	date := chi.URLParam(r, "date")
	if _, err := validation.ValidateDateString(date, "Data"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := database.DB.Exec("DELETE FROM mindset_entries WHERE user_id = ? AND date = ?", userID, date)
	if err != nil {
		logger.L.Error("Failed to delete mindset entry", "userID", userID, "date", date, "error", err)
		utils.SendJSONError(w, "Failed to delete mindset entry", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		utils.SendJSONError(w, "Sem registo para esta data", http.StatusNotFound)
		return
	}

	if _, err := h.progressService.RefreshUserMetrics(userID); err != nil {
		logger.L.Error("Failed to refresh progress after mindset delete", "userID", userID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGetMindsetSummary agrega o período pedido (dateFrom/dateTo opcionais)
// para os widgets do dashboard.
func (h *MindsetHandler) HandleGetMindsetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	query := `
		SELECT COUNT(*),
			COALESCE(AVG(discipline_score), 0),
			COALESCE(AVG(clarity_level), 0),
			COALESCE(AVG(stress_level), 0),
			COALESCE(SUM(CASE WHEN executed_trades > planned_trades THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(impulsive_trades), 0)
		FROM mindset_entries WHERE user_id = ?`
	args := []interface{}{userID}

	if from := r.URL.Query().Get("dateFrom"); from != "" {
		query += " AND date >= ?"
		args = append(args, from)
	}
	if to := r.URL.Query().Get("dateTo"); to != "" {
		query += " AND date <= ?"
		args = append(args, to)
	}

	var summary models.MindsetSummary
	err := database.DB.QueryRow(query, args...).Scan(
		&summary.Entries, &summary.AvgDiscipline, &summary.AvgClarity, &summary.AvgStress,
		&summary.OvertradingDays, &summary.ImpulsiveTrades)
	if err != nil {
		logger.L.Error("Failed to compute mindset summary", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to compute summary", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, summary)
}
