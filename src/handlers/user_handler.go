// backend/src/handlers/user_handler.go

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/username/protrade/backend/src/config"
	"github.com/username/protrade/backend/src/database"
	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/model"
	"github.com/username/protrade/backend/src/models"
	"github.com/username/protrade/backend/src/security"
	"github.com/username/protrade/backend/src/services"
	"golang.org/x/oauth2"
)

type contextKey string

const userIDContextKey contextKey = "userID"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var passwordRegex = regexp.MustCompile(`^.{6,}$`)

var (
	googleOauthConfig *oauth2.Config
	oauthStateString  = "random-string-for-security"
)

type UserHandler struct {
	authService     *security.AuthService
	emailService    services.EmailService
	progressService services.ProgressService
	cache           *cache.Cache
	mfaService      *services.MFAService
}

func NewUserHandler(authService *security.AuthService, emailService services.EmailService, progressService services.ProgressService, mfaService *services.MFAService, reportCache *cache.Cache) *UserHandler {
	return &UserHandler{
		authService:     authService,
		emailService:    emailService,
		progressService: progressService,
		mfaService:      mfaService,
		cache:           reportCache,
	}
}

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	logger.L.Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *UserHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		sendJSONError(w, "Verification token is missing", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByVerificationToken(database.DB, token)
	if err != nil {
		logger.L.Warn("Verification token lookup failed", "tokenPrefix", token[:min(10, len(token))], "error", err)
		sendJSONError(w, "Invalid or expired verification token.", http.StatusBadRequest)
		return
	}

	if user.IsEmailVerified {
		logger.L.Info("Email already verified", "userID", user.ID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Email already verified. You can log in."})
		return
	}

	if time.Now().After(user.EmailVerificationTokenExpiresAt) {
		logger.L.Warn("Verification token expired", "userID", user.ID, "tokenExpiry", user.EmailVerificationTokenExpiresAt)
		sendJSONError(w, "Verification token has expired. Please request a new one.", http.StatusBadRequest)
		return
	}

	if err := user.UpdateUserVerificationStatus(database.DB, true); err != nil {
		logger.L.Error("Failed to update user verification status in DB", "userID", user.ID, "error", err)
		sendJSONError(w, "Failed to verify email. Please try again or contact support.", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Email verified successfully", "userID", user.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Email verified successfully! You can now log in."})
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// --- PROGRESS (TraderMap) ---

// HandleGetUserProgress devolve a streak de disciplina e o nível de
// consistência calculados a partir das entradas de mindset.
func (h *UserHandler) HandleGetUserProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	progress, err := h.progressService.GetProgress(userID)
	if err != nil {
		logger.L.Error("Failed to compute user progress", "userID", userID, "error", err)
		sendJSONError(w, "Failed to compute progress", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(progress)
}

// --- ADMIN FUNCTIONS ---

func (h *UserHandler) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		if !ok {
			sendJSONError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		user, err := model.GetUserByID(database.DB, userID)
		if err != nil {
			sendJSONError(w, "User not found", http.StatusNotFound)
			return
		}

		isUserAdmin := false
		for _, adminEmail := range config.Cfg.AdminEmails {
			if strings.EqualFold(user.Email, adminEmail) {
				isUserAdmin = true
				break
			}
		}

		if !isUserAdmin {
			logger.L.Warn("Admin access denied for user", "userID", user.ID)
			sendJSONError(w, "Forbidden: Administrator access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AdminStats agrega as métricas que a AdminDashboardPage consome.
type AdminStats struct {
	TotalUsers         int     `json:"totalUsers"`
	DeletedUserCount   int     `json:"deletedUserCount"`
	TotalTrades        int     `json:"totalTrades"`
	TotalMindsetDays   int     `json:"totalMindsetDays"`
	DailyActiveUsers   int     `json:"dailyActiveUsers"`
	MonthlyActiveUsers int     `json:"monthlyActiveUsers"`
	NewUsersToday      int     `json:"newUsersToday"`
	NewUsersThisWeek   int     `json:"newUsersThisWeek"`
	NewUsersThisMonth  int     `json:"newUsersThisMonth"`
	ActivationRate     float64 `json:"activation_rate"`

	// Period Specific Metrics
	NewUsersInPeriod       int     `json:"newUsersInPeriod"`
	ActiveUsersInPeriod    int     `json:"activeUsersInPeriod"`
	TradesInPeriod         int     `json:"tradesInPeriod"`
	JournaledTradeRate     float64 `json:"journaledTradeRate"`
	MindsetEntriesInPeriod int     `json:"mindsetEntriesInPeriod"`
	AvgDisciplineInPeriod  float64 `json:"avgDisciplineInPeriod"`
	TotalPnLInPeriod       float64 `json:"totalPnLInPeriod"`

	// Lists / Charts
	TopUsersByLogins  []AdminUserView `json:"topUsersByLogins"`
	TopUsersByStreak  []AdminUserView `json:"topUsersByStreak"`
	VerificationStats map[string]int  `json:"verificationStats"`
	AuthProviderStats []ChartData     `json:"authProviderStats"`
	PlanStats         []ChartData     `json:"planStats"`
	TradesByAsset     []ChartData     `json:"tradesByAsset"`
	TradesByStrategy  []ChartData     `json:"tradesByStrategy"`

	// Time Series
	ActiveUsersPerDay []TimeSeriesData `json:"activeUsersPerDay"`
	UsersPerDay       []TimeSeriesData `json:"usersPerDay"`
	TradesPerDay      []TimeSeriesData `json:"tradesPerDay"`
}

type ChartData struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type TimeSeriesData struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func (h *UserHandler) HandleGetAdminStats(w http.ResponseWriter, r *http.Request) {
	rangeParam := r.URL.Query().Get("range")

	cacheKey := "admin_stats_" + rangeParam
	if cached, found := h.cache.Get(cacheKey); found {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cached)
		return
	}

	stats := AdminStats{
		VerificationStats: make(map[string]int),
	}

	var userTimeFilter string
	var loginFilter string
	var tradeFilter string
	var mindsetFilter string

	// Filtros de tempo para os contadores simples
	switch rangeParam {
	case "last_7_days":
		userTimeFilter = "created_at >= date('now', '-7 days')"
		loginFilter = "login_at >= date('now', '-7 days')"
		tradeFilter = "created_at >= date('now', '-7 days')"
		mindsetFilter = "date >= date('now', '-7 days')"
	case "last_30_days":
		userTimeFilter = "created_at >= date('now', '-30 days')"
		loginFilter = "login_at >= date('now', '-30 days')"
		tradeFilter = "created_at >= date('now', '-30 days')"
		mindsetFilter = "date >= date('now', '-30 days')"
	case "last_365_days":
		userTimeFilter = "created_at >= date('now', '-365 days')"
		loginFilter = "login_at >= date('now', '-365 days')"
		tradeFilter = "created_at >= date('now', '-365 days')"
		mindsetFilter = "date >= date('now', '-365 days')"
	default:
		userTimeFilter = "1=1"
		loginFilter = "1=1"
		tradeFilter = "1=1"
		mindsetFilter = "1=1"
	}

	// 1. Métricas Gerais
	database.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&stats.TotalUsers)
	database.DB.QueryRow("SELECT metric_value FROM system_metrics WHERE metric_name = 'deleted_user_count'").Scan(&stats.DeletedUserCount)
	database.DB.QueryRow("SELECT COUNT(*) FROM trades").Scan(&stats.TotalTrades)
	database.DB.QueryRow("SELECT COUNT(*) FROM mindset_entries").Scan(&stats.TotalMindsetDays)
	database.DB.QueryRow("SELECT COUNT(DISTINCT user_id) FROM login_history WHERE login_at > date('now', '-1 day')").Scan(&stats.DailyActiveUsers)
	database.DB.QueryRow("SELECT COUNT(DISTINCT user_id) FROM login_history WHERE login_at > date('now', '-30 days')").Scan(&stats.MonthlyActiveUsers)

	// Ativação = utilizadores com pelo menos um trade registado
	var usersWithTrades int
	database.DB.QueryRow("SELECT COUNT(DISTINCT user_id) FROM trades").Scan(&usersWithTrades)
	if stats.TotalUsers > 0 {
		stats.ActivationRate = (float64(usersWithTrades) / float64(stats.TotalUsers)) * 100
	}

	// 2. Novos Utilizadores (Hoje, Semana, Mês)
	database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE created_at > date('now', 'start of day')").Scan(&stats.NewUsersToday)
	database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE created_at > date('now', '-7 days')").Scan(&stats.NewUsersThisWeek)
	database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE created_at > date('now', 'start of month')").Scan(&stats.NewUsersThisMonth)

	// 3. Métricas no Período Selecionado
	database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE " + userTimeFilter).Scan(&stats.NewUsersInPeriod)
	database.DB.QueryRow("SELECT COUNT(DISTINCT user_id) FROM login_history WHERE " + loginFilter).Scan(&stats.ActiveUsersInPeriod)
	database.DB.QueryRow("SELECT COUNT(*) FROM trades WHERE " + tradeFilter).Scan(&stats.TradesInPeriod)
	database.DB.QueryRow("SELECT COUNT(*) FROM mindset_entries WHERE " + mindsetFilter).Scan(&stats.MindsetEntriesInPeriod)
	database.DB.QueryRow("SELECT COALESCE(AVG(discipline_score), 0) FROM mindset_entries WHERE " + mindsetFilter).Scan(&stats.AvgDisciplineInPeriod)
	database.DB.QueryRow("SELECT COALESCE(SUM(pnl), 0) FROM trades WHERE pnl IS NOT NULL AND " + tradeFilter).Scan(&stats.TotalPnLInPeriod)

	var journaledTrades int
	database.DB.QueryRow("SELECT COUNT(*) FROM trades WHERE journal IS NOT NULL AND journal != '' AND " + tradeFilter).Scan(&journaledTrades)
	if stats.TradesInPeriod > 0 {
		stats.JournaledTradeRate = (float64(journaledTrades) / float64(stats.TradesInPeriod)) * 100
	}

	// 4. Estatísticas de Verificação de Email
	var verified, unverified int
	database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE is_email_verified = 1").Scan(&verified)
	database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE is_email_verified = 0").Scan(&unverified)
	stats.VerificationStats = map[string]int{"verified": verified, "unverified": unverified}

	// 5. Top Utilizadores
	fetchUsers := func(query string) []AdminUserView {
		rows, _ := database.DB.Query(query)
		if rows == nil {
			return []AdminUserView{}
		}
		defer rows.Close()
		var users []AdminUserView
		for rows.Next() {
			var u AdminUserView
			var lastLoginIP, consistencyLevel sql.NullString
			var lastLoginAt sql.NullTime
			rows.Scan(&u.ID, &u.Email, &u.LoginCount, &u.Streak, &u.AvgDiscipline, &consistencyLevel, &lastLoginAt, &lastLoginIP)
			u.LastLoginAt = lastLoginAt
			u.LastLoginIP = lastLoginIP.String
			u.ConsistencyLevel = consistencyLevel.String
			users = append(users, u)
		}
		return users
	}

	stats.TopUsersByLogins = fetchUsers(`
		SELECT id, email, login_count, streak, avg_discipline, consistency_level, last_login_at, last_login_ip
		FROM users ORDER BY login_count DESC LIMIT 5`)

	stats.TopUsersByStreak = fetchUsers(`
		SELECT id, email, login_count, streak, avg_discipline, consistency_level, last_login_at, last_login_ip
		FROM users ORDER BY streak DESC LIMIT 5`)

	// 6. Gráficos: Ativos mais negociados e estratégias mais usadas
	fetchChart := func(query string) []ChartData {
		rows, _ := database.DB.Query(query)
		if rows == nil {
			return nil
		}
		defer rows.Close()
		var data []ChartData
		for rows.Next() {
			var d ChartData
			rows.Scan(&d.Name, &d.Value)
			data = append(data, d)
		}
		return data
	}

	stats.TradesByAsset = fetchChart("SELECT asset, COUNT(*) FROM trades GROUP BY asset ORDER BY COUNT(*) DESC LIMIT 10")
	stats.TradesByStrategy = fetchChart("SELECT strategy, COUNT(*) FROM trades WHERE strategy != '' GROUP BY strategy ORDER BY COUNT(*) DESC LIMIT 10")
	stats.AuthProviderStats = fetchChart("SELECT auth_provider, COUNT(*) FROM users GROUP BY auth_provider")
	stats.PlanStats = fetchChart("SELECT plan, COUNT(*) FROM users GROUP BY plan")

	// 7. Séries temporais (últimos 30 dias)
	fetchSeries := func(query string) []TimeSeriesData {
		rows, _ := database.DB.Query(query)
		if rows == nil {
			return nil
		}
		defer rows.Close()
		var data []TimeSeriesData
		for rows.Next() {
			var d TimeSeriesData
			rows.Scan(&d.Date, &d.Count)
			data = append(data, d)
		}
		return data
	}

	stats.UsersPerDay = fetchSeries(`
		SELECT strftime('%Y-%m-%d', created_at) as day, COUNT(*)
		FROM users
		WHERE created_at >= date('now', '-30 days')
		GROUP BY day ORDER BY day ASC`)

	stats.ActiveUsersPerDay = fetchSeries(`
		SELECT strftime('%Y-%m-%d', login_at) as day, COUNT(DISTINCT user_id)
		FROM login_history
		WHERE login_at >= date('now', '-30 days')
		GROUP BY day ORDER BY day ASC`)

	stats.TradesPerDay = fetchSeries(`
		SELECT strftime('%Y-%m-%d', created_at) as day, COUNT(*)
		FROM trades
		WHERE created_at >= date('now', '-30 days')
		GROUP BY day ORDER BY day ASC`)

	h.cache.Set(cacheKey, stats, 5*time.Minute)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (h *UserHandler) HandleGetAdminUsers(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 25
	}
	offset := (page - 1) * pageSize

	sortBy := r.URL.Query().Get("sortBy")
	order := r.URL.Query().Get("order")

	validSorts := map[string]bool{"created_at": true, "login_count": true, "streak": true, "avg_discipline": true, "email": true}
	if !validSorts[sortBy] {
		sortBy = "created_at"
	}
	if order != "asc" {
		order = "desc"
	}

	query := fmt.Sprintf(`
		SELECT id, username, email, auth_provider, plan, created_at,
		(SELECT COUNT(*) FROM trades WHERE user_id = u.id) as trade_count,
		(SELECT COUNT(*) FROM mindset_entries WHERE user_id = u.id) as mindset_entry_count,
		streak, avg_discipline, consistency_level, last_login_at, last_login_ip, login_count
		FROM users u
		ORDER BY %s %s LIMIT ? OFFSET ?`, sortBy, order)

	rows, err := database.DB.Query(query, pageSize, offset)
	if err != nil {
		logger.L.Error("Failed to list users", "error", err)
		sendJSONError(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var users []AdminUserView
	for rows.Next() {
		var u AdminUserView
		var lastLoginIP, consistencyLevel sql.NullString
		var lastLoginAt sql.NullTime
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.AuthProvider, &u.Plan, &u.CreatedAt, &u.TradeCount, &u.MindsetEntryCount, &u.Streak, &u.AvgDiscipline, &consistencyLevel, &lastLoginAt, &lastLoginIP, &u.LoginCount); err == nil {
			u.LastLoginAt = lastLoginAt
			u.LastLoginIP = lastLoginIP.String
			u.ConsistencyLevel = consistencyLevel.String
			users = append(users, u)
		}
	}

	var totalRows int
	database.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&totalRows)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"users":     users,
		"totalRows": totalRows,
	})
}

// HandleAdminRefreshUserMetrics recalcula a streak e o nível de consistência
// de um utilizador e persiste o snapshot na linha do utilizador.
func (h *UserHandler) HandleAdminRefreshUserMetrics(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid user ID format", http.StatusBadRequest)
		return
	}

	logger.L.Info("Admin triggered progress metrics refresh for user", "targetUserID", userID)

	if _, err := h.progressService.RefreshUserMetrics(userID); err != nil {
		logger.L.Error("Failed to refresh progress metrics", "userID", userID, "error", err)
		sendJSONError(w, "Failed to refresh user metrics", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type AdminUserView struct {
	ID                int64        `json:"id"`
	Username          string       `json:"username"`
	Email             string       `json:"email"`
	AuthProvider      string       `json:"auth_provider"`
	Plan              string       `json:"plan"`
	CreatedAt         time.Time    `json:"created_at"`
	TradeCount        int          `json:"trade_count"`
	MindsetEntryCount int          `json:"mindset_entry_count"`
	Streak            int          `json:"streak"`
	AvgDiscipline     float64      `json:"avg_discipline"`
	ConsistencyLevel  string       `json:"consistency_level"`
	LastLoginAt       sql.NullTime `json:"last_login_at"`
	LastLoginIP       string       `json:"last_login_ip"`
	LoginCount        int          `json:"login_count"`
}

type AdminUserDetailsResponse struct {
	User           AdminUserView         `json:"user"`
	Trades         []models.Trade        `json:"trades"`
	MindsetEntries []models.MindsetEntry `json:"mindset_entries"`
	Progress       *models.UserProgress  `json:"progress,omitempty"`
}

func (h *UserHandler) HandleGetAdminUserDetails(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		sendJSONError(w, "Formato de ID de utilizador inválido", http.StatusBadRequest)
		return
	}

	var response AdminUserDetailsResponse

	queryUser := `
		SELECT u.id, u.username, u.email, u.auth_provider, u.plan, u.created_at,
			(SELECT COUNT(*) FROM trades WHERE user_id = u.id) as trade_count,
			(SELECT COUNT(*) FROM mindset_entries WHERE user_id = u.id) as mindset_entry_count,
			u.streak, u.avg_discipline, u.consistency_level, u.last_login_at, u.last_login_ip, u.login_count
		FROM users u WHERE u.id = ?`

	row := database.DB.QueryRow(queryUser, userID)
	var u AdminUserView
	var lastLoginIP, consistencyLevel sql.NullString
	var lastLoginAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.AuthProvider, &u.Plan, &u.CreatedAt, &u.TradeCount, &u.MindsetEntryCount, &u.Streak, &u.AvgDiscipline, &consistencyLevel, &lastLoginAt, &lastLoginIP, &u.LoginCount); err != nil {
		if err == sql.ErrNoRows {
			sendJSONError(w, "Utilizador não encontrado", http.StatusNotFound)
			return
		}
		logger.L.Error("Falha ao obter detalhes do utilizador", "error", err)
		sendJSONError(w, "Falha ao obter detalhes do utilizador", http.StatusInternalServerError)
		return
	}
	u.LastLoginAt = lastLoginAt
	u.LastLoginIP = lastLoginIP.String
	u.ConsistencyLevel = consistencyLevel.String
	response.User = u

	trades, err := queryTrades(userID, models.TradeFilter{}, 500)
	if err != nil {
		logger.L.Error("Falha ao obter trades do utilizador", "userID", userID, "error", err)
	} else {
		response.Trades = trades
	}

	entries, err := queryMindsetEntries(userID, 100)
	if err != nil {
		logger.L.Error("Falha ao obter entradas de mindset do utilizador", "userID", userID, "error", err)
	} else {
		response.MindsetEntries = entries
	}

	if progress, err := h.progressService.GetProgress(userID); err == nil {
		response.Progress = progress
	}

	if response.Trades == nil {
		response.Trades = []models.Trade{}
	}
	if response.MindsetEntries == nil {
		response.MindsetEntries = []models.MindsetEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type BatchRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

func (h *UserHandler) HandleAdminRefreshMultipleUserMetrics(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var successCount, failCount int
	for _, userID := range req.UserIDs {
		if _, err := h.progressService.RefreshUserMetrics(userID); err != nil {
			logger.L.Error("Failed to refresh metrics for user in batch", "userID", userID, "error", err)
			failCount++
		} else {
			successCount++
		}
	}

	logger.L.Info("Batch metrics refresh completed", "success", successCount, "fail", failCount)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) HandleAdminClearStatsCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Flush()
	w.WriteHeader(http.StatusNoContent)
}

type ImpersonateRequest struct {
	MfaCode string `json:"mfa_code"`
}

func (h *UserHandler) HandleImpersonateUser(w http.ResponseWriter, r *http.Request) {
	// 1. Obter o ID do Admin que está a fazer o pedido
	adminID, _ := GetUserIDFromContext(r.Context())

	// 2. Parse do targetUserID da URL
	targetUserIDStr := chi.URLParam(r, "userID")
	targetUserID, err := strconv.ParseInt(targetUserIDStr, 10, 64)
	if err != nil {
		sendJSONError(w, "ID de utilizador inválido", http.StatusBadRequest)
		return
	}

	// 3. Ler o código MFA do body
	var req ImpersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// 4. Buscar dados do ADMIN para validar o MFA dele
	adminUser, err := model.GetUserByID(database.DB, adminID)
	if err != nil {
		sendJSONError(w, "Admin user not found", http.StatusUnauthorized)
		return
	}

	// 5. Verificar se o admin tem MFA ativo
	if !adminUser.MfaEnabled {
		sendJSONError(w, "MFA required. Please enable 2FA in your profile settings.", http.StatusForbidden)
		return
	}

	// 6. Validar o código MFA
	if !h.mfaService.ValidateToken(adminUser.MfaSecret, req.MfaCode) {
		logger.L.Warn("Failed MFA attempt for impersonation", "adminID", adminID)
		sendJSONError(w, "Código MFA inválido", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(database.DB, targetUserID)
	if err != nil {
		sendJSONError(w, "Utilizador não encontrado", http.StatusNotFound)
		return
	}

	// 1. Gerar Access Token
	accessToken, err := h.authService.GenerateToken(fmt.Sprintf("%d", user.ID))
	if err != nil {
		logger.L.Error("Falha ao gerar token de impersonation", "error", err)
		sendJSONError(w, "Erro ao gerar acesso", http.StatusInternalServerError)
		return
	}

	// 2. Gerar Refresh Token (Necessário para criar a sessão válida)
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		logger.L.Error("Falha ao gerar refresh token de impersonation", "error", err)
		sendJSONError(w, "Erro ao gerar credenciais", http.StatusInternalServerError)
		return
	}

	// 3. CRIAR A SESSÃO NA BASE DE DADOS
	// O middleware verifica se esta sessão existe. Se não existir, dá 401.
	session := &model.Session{
		UserID:       user.ID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserAgent:    "Admin-Impersonation (" + r.UserAgent() + ")",
		ClientIP:     r.RemoteAddr,
		IsBlocked:    false,
		// Usamos a duração do Refresh Token para a sessão não expirar logo
		ExpiresAt: time.Now().Add(config.Cfg.RefreshTokenExpiry),
	}

	if err := model.CreateSession(database.DB, session); err != nil {
		logger.L.Error("Falha ao registar sessão de impersonation na BD", "userID", user.ID, "error", err)
		sendJSONError(w, "Falha ao iniciar sessão simulada", http.StatusInternalServerError)
		return
	}

	// 4. Retornar resposta
	response := map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": map[string]interface{}{
			"id":            user.ID,
			"username":      user.Username,
			"email":         user.Email,
			"auth_provider": user.AuthProvider,
			"plan":          user.Plan,
			"is_admin":      isAdmin(user.Email),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *UserHandler) HandleSetupMFA(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	// Buscar user para obter o username (para o QR code ficar bonito no Google Auth)
	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		sendJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	secret, qrCode, err := h.mfaService.GenerateMFASecret(user.Username)
	if err != nil {
		sendJSONError(w, "Failed to generate MFA", http.StatusInternalServerError)
		return
	}

	// Guardar o segredo temporariamente na BD (mas NÃO ativar ainda mfa_enabled)
	if err := user.UpdateMfaSecret(database.DB, secret); err != nil {
		sendJSONError(w, "Failed to save MFA secret", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"secret":  secret, // Opcional enviar o texto, caso o QR falhe
		"qr_code": qrCode, // Imagem base64
	})
}

func (h *UserHandler) HandleActivateMFA(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	user, _ := model.GetUserByID(database.DB, userID)

	if !h.mfaService.ValidateToken(user.MfaSecret, req.Code) {
		sendJSONError(w, "Código inválido", http.StatusUnauthorized)
		return
	}

	user.UpdateMfaEnabled(database.DB, true)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "MFA Ativado com sucesso"})
}
