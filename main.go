package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/protrade/backend/src/config"
	"github.com/username/protrade/backend/src/database"
	"github.com/username/protrade/backend/src/handlers"
	"github.com/username/protrade/backend/src/journal"
	"github.com/username/protrade/backend/src/logger"
	"github.com/username/protrade/backend/src/security"
	"github.com/username/protrade/backend/src/services"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":    true,
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("ProTrade backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	handlers.InitializeGoogleOAuthConfig()

	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	mfaService := services.NewMFAService()
	progressService := services.NewProgressService()
	journalService := services.NewJournalService(journal.DefaultTemplate, reportCache)

	userHandler := handlers.NewUserHandler(authService, emailService, progressService, mfaService, reportCache)
	tradeHandler := handlers.NewTradeHandler(journalService)
	journalHandler := handlers.NewJournalHandler(journalService)
	strategyHandler := handlers.NewStrategyHandler()
	mindsetHandler := handlers.NewMindsetHandler(progressService)
	calculatorHandler := handlers.NewCalculatorHandler()

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "ProTrade Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		// Rotas Públicas
		r.Group(func(r chi.Router) {
			r.Get("/auth/csrf", handlers.GetCSRFToken)
			r.Get("/auth/verify-email", userHandler.VerifyEmailHandler)
			r.Get("/auth/google/login", userHandler.HandleGoogleLogin)
			r.Get("/auth/google/callback", userHandler.HandleGoogleCallback)
		})

		// Rotas de Autenticação (Protegidas por CSRF)
		r.Group(func(r chi.Router) {
			r.Use(handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey))
			r.Post("/auth/login", userHandler.LoginUserHandler)
			r.Post("/auth/register", userHandler.RegisterUserHandler)
			r.Post("/auth/refresh", userHandler.RefreshTokenHandler)
			r.With(userHandler.AuthMiddleware).Post("/auth/logout", userHandler.LogoutUserHandler)
			r.Post("/auth/request-password-reset", userHandler.RequestPasswordResetHandler)
			r.Post("/auth/reset-password", userHandler.ResetPasswordHandler)
		})

		// Rotas Protegidas (Requerem Autenticação e CSRF)
		r.Group(func(r chi.Router) {
			r.Use(handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey))
			r.Use(userHandler.AuthMiddleware)

			// Diário de trades
			r.Get("/trades", tradeHandler.HandleGetTrades)
			r.Post("/trades", tradeHandler.HandleCreateTrade)
			r.Get("/trades/export", tradeHandler.HandleExportTrades)
			r.Get("/trades/stats", tradeHandler.HandleGetDashboardStats)
			r.Delete("/trades", tradeHandler.HandleDeleteTrades)
			r.Get("/trades/{tradeID}", tradeHandler.HandleGetTrade)
			r.Put("/trades/{tradeID}", tradeHandler.HandleUpdateTrade)
			r.Delete("/trades/{tradeID}", tradeHandler.HandleDeleteTrade)

			// Documento de journal por trade
			r.Get("/trades/{tradeID}/journal", journalHandler.HandleGetJournal)
			r.Put("/trades/{tradeID}/journal", journalHandler.HandleSaveJournal)
			r.Patch("/trades/{tradeID}/journal", journalHandler.HandleApplyJournalOps)

			// Biblioteca de estratégias
			r.Get("/strategy-folders", strategyHandler.HandleGetFolders)
			r.Post("/strategy-folders", strategyHandler.HandleCreateFolder)
			r.Delete("/strategy-folders/{folderID}", strategyHandler.HandleDeleteFolder)
			r.Get("/strategies", strategyHandler.HandleGetStrategies)
			r.Post("/strategies", strategyHandler.HandleCreateStrategy)
			r.Put("/strategies/{strategyID}", strategyHandler.HandleUpdateStrategy)
			r.Delete("/strategies/{strategyID}", strategyHandler.HandleDeleteStrategy)

			// Mindset diário e progresso
			r.Get("/mindset", mindsetHandler.HandleGetMindsetEntries)
			r.Post("/mindset", mindsetHandler.HandleSaveMindsetEntry)
			r.Get("/mindset/summary", mindsetHandler.HandleGetMindsetSummary)
			r.Get("/mindset/{date}", mindsetHandler.HandleGetMindsetEntryByDate)
			r.Delete("/mindset/{date}", mindsetHandler.HandleDeleteMindsetEntry)
			r.Get("/progress", userHandler.HandleGetUserProgress)

			// Calculadoras
			r.Post("/calculators/mini-contract", calculatorHandler.HandleMiniContract)
			r.Post("/calculators/risk-reward", calculatorHandler.HandleRiskReward)
			r.Post("/calculators/average-price", calculatorHandler.HandleAveragePrice)

			// Conta
			r.Get("/user/has-data", userHandler.HandleCheckUserData)
			r.Post("/user/change-password", userHandler.ChangePasswordHandler)
			r.Post("/user/delete-account", userHandler.DeleteAccountHandler)
			r.Get("/user/mfa/setup", userHandler.HandleSetupMFA)
			r.Post("/user/mfa/enable", userHandler.HandleActivateMFA)

			// Rotas de Administração
			r.Group(func(r chi.Router) {
				r.Use(userHandler.AdminMiddleware)
				r.Get("/admin/stats", userHandler.HandleGetAdminStats)
				r.Get("/admin/users", userHandler.HandleGetAdminUsers)
				r.Post("/admin/users/{userID}/refresh-metrics", userHandler.HandleAdminRefreshUserMetrics)
				r.Get("/admin/users/{userID}", userHandler.HandleGetAdminUserDetails)
				r.Post("/admin/users/refresh-metrics-batch", userHandler.HandleAdminRefreshMultipleUserMetrics)
				r.Post("/admin/stats/clear-cache", userHandler.HandleAdminClearStatsCache)

				// Rota de Impersonation (o frontend tem de enviar o código MFA no POST)
				r.Post("/admin/users/{userID}/impersonate", userHandler.HandleImpersonateUser)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
