// backend/src/handlers/strategy_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/protrade/backend/src/database"
	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/models"
	"github.com/username/protrade/backend/src/security/validation"
	"github.com/username/protrade/backend/src/utils"
)

type StrategyHandler struct{}

func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

// --- Folders ---

func (h *StrategyHandler) HandleGetFolders(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	rows, err := database.DB.Query("SELECT id, user_id, name FROM strategy_folders WHERE user_id = ? ORDER BY name ASC", userID)
	if err != nil {
		logger.L.Error("Failed to query strategy folders", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to fetch folders", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	folders := []models.StrategyFolder{}
	for rows.Next() {
		var f models.StrategyFolder
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name); err != nil {
			utils.SendJSONError(w, "Failed to fetch folders", http.StatusInternalServerError)
			return
		}
		folders = append(folders, f)
	}

	utils.SendJSON(w, http.StatusOK, folders)
}

func (h *StrategyHandler) HandleCreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var folder models.StrategyFolder
	if err := json.NewDecoder(r.Body).Decode(&folder); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateStringNotEmpty(folder.Name, "Nome da pasta"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringMaxLength(folder.Name, validation.DefaultMaxStringLength, "Nome da pasta"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	folder.Name = validation.SanitizeText(folder.Name)

	res, err := database.DB.Exec("INSERT INTO strategy_folders (user_id, name) VALUES (?, ?)", userID, folder.Name)
	if err != nil {
		logger.L.Error("Failed to insert strategy folder", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create folder", http.StatusInternalServerError)
		return
	}

	folder.ID, _ = res.LastInsertId()
	folder.UserID = userID
	utils.SendJSON(w, http.StatusCreated, folder)
}

// HandleDeleteFolder remove a pasta; as estratégias dentro dela ficam sem
// pasta (folder_id a NULL), não são apagadas.
func (h *StrategyHandler) HandleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	folderID, err := strconv.ParseInt(chi.URLParam(r, "folderID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		utils.SendJSONError(w, "Failed to delete folder", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE strategies SET folder_id = NULL WHERE folder_id = ? AND user_id = ?", folderID, userID); err != nil {
		logger.L.Error("Failed to unfile strategies", "folderID", folderID, "error", err)
		utils.SendJSONError(w, "Failed to delete folder", http.StatusInternalServerError)
		return
	}

	res, err := tx.Exec("DELETE FROM strategy_folders WHERE id = ? AND user_id = ?", folderID, userID)
	if err != nil {
		logger.L.Error("Failed to delete strategy folder", "folderID", folderID, "error", err)
		utils.SendJSONError(w, "Failed to delete folder", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		utils.SendJSONError(w, "Pasta não encontrada", http.StatusNotFound)
		return
	}

	if err := tx.Commit(); err != nil {
		utils.SendJSONError(w, "Failed to delete folder", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Strategies ---

const strategySelectColumns = `id, user_id, folder_id, name, description, timeframes, entry_criteria, exit_criteria, image_url, win_rate, custom_fields`

func scanStrategy(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Strategy, error) {
	var s models.Strategy
	var folderID sql.NullInt64
	var winRate sql.NullFloat64
	var timeframes, entryCriteria, exitCriteria, customFields sql.NullString
	err := scanner.Scan(&s.ID, &s.UserID, &folderID, &s.Name, &s.Description,
		&timeframes, &entryCriteria, &exitCriteria, &s.ImageURL, &winRate, &customFields)
	if err != nil {
		return s, err
	}
	if folderID.Valid {
		s.FolderID = &folderID.Int64
	}
	if winRate.Valid {
		s.WinRate = &winRate.Float64
	}
	decodeStringList(timeframes, &s.Timeframes)
	decodeStringList(entryCriteria, &s.EntryCriteria)
	decodeStringList(exitCriteria, &s.ExitCriteria)
	if customFields.Valid && customFields.String != "" {
		if err := json.Unmarshal([]byte(customFields.String), &s.CustomFields); err != nil {
			logger.L.Warn("Could not decode stored custom fields, treating as empty", "strategyID", s.ID, "error", err)
		}
	}
	return s, nil
}

func (h *StrategyHandler) HandleGetStrategies(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	query := "SELECT " + strategySelectColumns + " FROM strategies WHERE user_id = ?"
	args := []interface{}{userID}

	if folderParam := r.URL.Query().Get("folderId"); folderParam != "" {
		folderID, err := strconv.ParseInt(folderParam, 10, 64)
		if err != nil {
			utils.SendJSONError(w, "Invalid folder ID", http.StatusBadRequest)
			return
		}
		query += " AND folder_id = ?"
		args = append(args, folderID)
	}
	query += " ORDER BY name ASC"

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		logger.L.Error("Failed to query strategies", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to fetch strategies", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	strategies := []models.Strategy{}
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			utils.SendJSONError(w, "Failed to fetch strategies", http.StatusInternalServerError)
			return
		}
		strategies = append(strategies, s)
	}

	utils.SendJSON(w, http.StatusOK, strategies)
}

func validateStrategyPayload(s *models.Strategy) error {
	if err := validation.ValidateStringNotEmpty(s.Name, "Nome da estratégia"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(s.Name, validation.MaxStrategyLength, "Nome da estratégia"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(s.Description, validation.MaxObservationsLength, "Descrição"); err != nil {
		return err
	}
	if s.WinRate != nil {
		if err := validation.ValidateFloatRange(*s.WinRate, "Taxa de acerto", false, 0, 100); err != nil {
			return err
		}
	}

	s.Name = validation.SanitizeText(s.Name)
	s.Description = validation.SanitizeText(s.Description)
	s.ImageURL = validation.SanitizeText(s.ImageURL)
	sanitizeList := func(list []string) []string {
		for i := range list {
			list[i] = validation.SanitizeText(list[i])
		}
		return list
	}
	s.Timeframes = sanitizeList(s.Timeframes)
	s.EntryCriteria = sanitizeList(s.EntryCriteria)
	s.ExitCriteria = sanitizeList(s.ExitCriteria)
	for i := range s.CustomFields {
		s.CustomFields[i].Label = validation.SanitizeText(s.CustomFields[i].Label)
		s.CustomFields[i].Value = validation.SanitizeText(s.CustomFields[i].Value)
	}
	return nil
}

func strategyExecArgs(userID int64, s *models.Strategy) []interface{} {
	var folderID interface{}
	if s.FolderID != nil {
		folderID = *s.FolderID
	}
	var winRate interface{}
	if s.WinRate != nil {
		winRate = *s.WinRate
	}
	customFields, _ := json.Marshal(s.CustomFields)
	return []interface{}{
		folderID, s.Name, s.Description,
		encodeStringList(s.Timeframes), encodeStringList(s.EntryCriteria), encodeStringList(s.ExitCriteria),
		s.ImageURL, winRate, string(customFields), userID,
	}
}

func (h *StrategyHandler) HandleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var strategy models.Strategy
	if err := json.NewDecoder(r.Body).Decode(&strategy); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateStrategyPayload(&strategy); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	args := strategyExecArgs(userID, &strategy)
	res, err := database.DB.Exec(`
		INSERT INTO strategies (folder_id, name, description, timeframes, entry_criteria, exit_criteria, image_url, win_rate, custom_fields, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		logger.L.Error("Failed to insert strategy", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create strategy", http.StatusInternalServerError)
		return
	}

	strategy.ID, _ = res.LastInsertId()
	strategy.UserID = userID
	utils.SendJSON(w, http.StatusCreated, strategy)
}

func (h *StrategyHandler) HandleUpdateStrategy(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	strategyID, err := strconv.ParseInt(chi.URLParam(r, "strategyID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid strategy ID", http.StatusBadRequest)
		return
	}

	var strategy models.Strategy
	if err := json.NewDecoder(r.Body).Decode(&strategy); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateStrategyPayload(&strategy); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	args := append(strategyExecArgs(userID, &strategy), strategyID)
	res, err := database.DB.Exec(`
		UPDATE strategies
		SET folder_id = ?, name = ?, description = ?, timeframes = ?, entry_criteria = ?, exit_criteria = ?, image_url = ?, win_rate = ?, custom_fields = ?
		WHERE user_id = ? AND id = ?`, args...)
	if err != nil {
		logger.L.Error("Failed to update strategy", "strategyID", strategyID, "error", err)
		utils.SendJSONError(w, "Failed to update strategy", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		utils.SendJSONError(w, "Estratégia não encontrada", http.StatusNotFound)
		return
	}

	strategy.ID = strategyID
	strategy.UserID = userID
	utils.SendJSON(w, http.StatusOK, strategy)
}

func (h *StrategyHandler) HandleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	strategyID, err := strconv.ParseInt(chi.URLParam(r, "strategyID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid strategy ID", http.StatusBadRequest)
		return
	}

	res, err := database.DB.Exec("DELETE FROM strategies WHERE id = ? AND user_id = ?", strategyID, userID)
	if err != nil {
		logger.L.Error("Failed to delete strategy", "strategyID", strategyID, "error", err)
		utils.SendJSONError(w, "Failed to delete strategy", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		utils.SendJSONError(w, "Estratégia não encontrada", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
