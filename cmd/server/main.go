package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"omcounter/internal/config"
	"omcounter/internal/database"
	"omcounter/internal/gemini"
	"omcounter/internal/handlers"
	"omcounter/internal/payments"
	"omcounter/internal/repository"
	"omcounter/internal/security"
	"omcounter/internal/service"

	"github.com/google/uuid"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	mantraRepo := repository.NewMantraRepository(db)
	prefsRepo := repository.NewPrefsRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Outbound clients
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Printf("Warning: email service unavailable, continuing without email: %v", err)
		emailService, _ = service.NewEmailService("", "", "", "")
	}
	geminiClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiTimeout)
	razorpayClient := payments.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret)

	// Initialize services
	entitlement := service.NewEntitlementService(statsRepo)
	authService := service.NewAuthService(userRepo, statsRepo, cfg.SessionDuration)
	groupService := service.NewGroupService(groupRepo, entitlement)
	practiceService := service.NewPracticeService(statsRepo, mantraRepo, prefsRepo, entitlement, groupService)
	reportService := service.NewReportService(statsRepo, groupRepo, userRepo, entitlement)
	reminderService := service.NewReminderService(reminderRepo, statsRepo, userRepo, emailService, cfg.ReminderPollInterval)
	insightService := service.NewInsightService(geminiClient)
	billingService := service.NewBillingService(razorpayClient, paymentRepo, statsRepo, userRepo, emailService, cfg.PremiumPricePaise)

	// Seed the shared demo circle on first run
	if err := seedDemoGroup(settingsRepo, userRepo, statsRepo, groupService); err != nil {
		log.Printf("Warning: Failed to seed demo group: %v", err)
	}

	// Initialize handlers
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	rateLimiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, csrf, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService, emailService, csrf, cfg)
	practiceHandler := handlers.NewPracticeHandler(practiceService)
	groupHandler := handlers.NewGroupHandler(groupService, insightService)
	dashboardHandler := handlers.NewDashboardHandler(reportService)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	billingHandler := handlers.NewBillingHandler(billingService)
	insightHandler := handlers.NewInsightHandler(insightService, practiceService)

	// Setup routes
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("PUT /api/auth/me", middleware.RequireAuth(middleware.CSRFProtect(authHandler.UpdateName)))
	mux.HandleFunc("GET /api/auth/providers", authHandler.Providers)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Personal practice routes
	mux.HandleFunc("POST /api/practice/increment", middleware.RequireAuth(middleware.CSRFProtect(practiceHandler.Increment)))
	mux.HandleFunc("GET /api/practice/stats", middleware.RequireAuth(practiceHandler.Stats))
	mux.HandleFunc("GET /api/practice/mantras", middleware.RequireAuth(practiceHandler.ListMantras))
	mux.HandleFunc("POST /api/practice/mantras", middleware.RequireAuth(middleware.CSRFProtect(practiceHandler.AddMantra)))
	mux.HandleFunc("DELETE /api/practice/mantras/{id}", middleware.RequireAuth(middleware.CSRFProtect(practiceHandler.RemoveMantra)))
	mux.HandleFunc("GET /api/practice/preferences", middleware.RequireAuth(practiceHandler.GetPreferences))
	mux.HandleFunc("PUT /api/practice/preferences", middleware.RequireAuth(middleware.CSRFProtect(practiceHandler.SavePreferences)))

	// Group routes
	mux.HandleFunc("POST /api/groups", middleware.RequireAuth(middleware.CSRFProtect(groupHandler.Create)))
	mux.HandleFunc("GET /api/groups", middleware.RequireAuth(groupHandler.List))
	mux.HandleFunc("GET /api/groups/{id}", middleware.RequireAuth(groupHandler.Get))
	mux.HandleFunc("POST /api/groups/{id}/join", middleware.RequireAuth(middleware.CSRFProtect(groupHandler.Join)))
	mux.HandleFunc("POST /api/groups/{id}/increment", middleware.RequireAuth(middleware.CSRFProtect(groupHandler.Increment)))
	mux.HandleFunc("POST /api/groups/{id}/announcements", middleware.RequireAuth(middleware.CSRFProtect(groupHandler.PostAnnouncement)))
	mux.HandleFunc("GET /api/groups/{id}/leaderboard", middleware.RequireAuth(groupHandler.Leaderboard))

	// Dashboard routes
	mux.HandleFunc("GET /api/dashboard", middleware.RequireAuth(dashboardHandler.Get))
	mux.HandleFunc("GET /api/dashboard/export", middleware.RequireAuth(dashboardHandler.ExportCSV))

	// Reminder and notification routes
	mux.HandleFunc("GET /api/reminders/settings", middleware.RequireAuth(reminderHandler.GetSettings))
	mux.HandleFunc("PUT /api/reminders/settings", middleware.RequireAuth(middleware.CSRFProtect(reminderHandler.UpdateSettings)))
	mux.HandleFunc("GET /api/notifications", middleware.RequireAuth(reminderHandler.ListNotifications))
	mux.HandleFunc("POST /api/notifications/read", middleware.RequireAuth(middleware.CSRFProtect(reminderHandler.MarkNotificationsRead)))

	// Billing routes
	mux.HandleFunc("POST /api/billing/checkout", middleware.RequireAuth(middleware.CSRFProtect(billingHandler.CreateCheckout)))
	mux.HandleFunc("POST /api/billing/verify", middleware.RequireAuth(middleware.CSRFProtect(billingHandler.Verify)))
	mux.HandleFunc("POST /webhooks/razorpay", billingHandler.Webhook)

	// AI insight routes
	mux.HandleFunc("POST /api/insights/mantras", middleware.RequireAuth(middleware.CSRFProtect(insightHandler.SuggestMantras)))
	mux.HandleFunc("POST /api/insights/group-description", middleware.RequireAuth(middleware.CSRFProtect(insightHandler.SuggestGroupDescription)))
	mux.HandleFunc("GET /api/insights/mantra", middleware.RequireAuth(insightHandler.MantraInsight))
	mux.HandleFunc("GET /api/insights/habits", middleware.RequireAuth(insightHandler.AnalyzeHabits))
	mux.HandleFunc("GET /api/insights/poster", middleware.RequireAuth(insightHandler.SharePoster))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background workers: reminder scheduler and session cleanup
	go reminderService.Run(ctx)
	go cleanupExpiredSessions(ctx, authService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// seedDemoGroup creates the shared "Global Peace Circle" on first run so
// new installs have a circle worth joining. The circle is owned by a
// premium system account, which lifts the member cap.
func seedDemoGroup(settingsRepo *repository.SettingsRepository, userRepo *repository.UserRepository, statsRepo *repository.StatsRepository, groupService *service.GroupService) error {
	if settingsRepo.IsSeeded("demo_group") {
		return nil
	}

	// The system account never logs in; its password is a throwaway.
	hash, err := security.HashPassword(security.GenerateSessionID())
	if err != nil {
		return err
	}

	systemID := uuid.New().String()
	if _, err := userRepo.CreateUser(systemID, "sangha@omcounter.app", hash, "OmCounter"); err != nil {
		return err
	}
	if _, err := statsRepo.EnsureStats(systemID); err != nil {
		return err
	}
	if err := statsRepo.SetPremium(systemID, true); err != nil {
		return err
	}

	group, err := groupService.CreateGroup(systemID, "OmCounter", "Global Peace Circle", "Chanting for universal harmony", "Lokah Samastah Sukhino Bhavantu")
	if err != nil {
		return err
	}
	log.Printf("Seeded demo group %q (%s)", group.Name, group.ID)

	return settingsRepo.MarkSeeded("demo_group")
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredSessions(); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			} else {
				log.Println("Expired sessions cleaned up")
			}
		}
	}
}
