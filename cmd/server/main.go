package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"southcoast-promotion/internal/config"
	"southcoast-promotion/internal/database"
	"southcoast-promotion/internal/handlers"
	"southcoast-promotion/internal/middleware"
	"southcoast-promotion/internal/pricing"
	"southcoast-promotion/internal/repositories"
	"southcoast-promotion/internal/services"
	"southcoast-promotion/pkg/logging"
)

func main() {
	logger := logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connection established")

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db.DB)
	campaignRepo := repositories.NewCampaignRepository(db.DB)
	bookingRepo := repositories.NewBookingRepository(db.DB, campaignRepo)
	creativeRepo := repositories.NewCreativeRepository(db.DB)

	// Email (mock when no API key is configured)
	var emailService services.EmailService
	if cfg.Email.APIKey != "" {
		emailService = services.NewResendEmailService(cfg.Email)
	} else {
		emailService = services.NewMockEmailService(logger)
		logger.Warn("email API key not configured, using mock email service")
	}

	storageService, err := services.NewStorageService(services.StorageFactoryConfig{
		Storage:      cfg.Storage,
		LocalPath:    "./uploads",
		LocalBaseURL: "http://" + cfg.Server.Host + ":" + cfg.Server.Port + "/uploads",
	}, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Services
	pricingCfg := pricing.FromAppConfig(cfg.Pricing)
	authService := services.NewAuthService(userRepo, logger)
	campaignService := services.NewCampaignService(campaignRepo, logger)
	bookingService := services.NewBookingService(bookingRepo, pricingCfg, emailService, logger)
	contractService := services.NewContractService(bookingRepo, logger)
	creativeService := services.NewCreativeService(creativeRepo, bookingRepo, storageService, cfg.Upload, logger)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(sessionStore, authService)
	csrfMiddleware := middleware.NewCSRFMiddleware(sessionStore)
	loginLimiter := middleware.NewRateLimiter(10, 15*time.Minute)

	// Handlers
	publicHandler := handlers.NewPublicHandler(campaignService)
	authHandler := handlers.NewAuthHandler(authService, sessionStore)
	cartHandler := handlers.NewCartHandler(campaignService, bookingService, sessionStore)
	bookingHandler := handlers.NewBookingHandler(bookingService, sessionStore)
	contractHandler := handlers.NewContractHandler(bookingService, contractService, emailService, sessionStore, logger)
	creativeHandler := handlers.NewCreativeHandler(bookingService, creativeService, sessionStore, cfg.Upload.MaxFileSize, cfg.Upload.MaxFiles)
	adminHandler := handlers.NewAdminHandler(campaignService, bookingService)

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(getEnvDefault("CORS_ORIGIN", "*")))
	r.Use(authMiddleware.LoadUser)
	r.Use(csrfMiddleware.Protect)

	// Local creative files in development
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir("uploads/"))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Catalog
		r.Get("/campaigns", publicHandler.ListCampaigns)
		r.Get("/campaigns/{campaignID}", publicHandler.GetCampaign)

		// Auth
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Limit)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)

		// Cart and booking phase flow
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{campaignID}", cartHandler.UpdateItem)
			r.Delete("/items/{campaignID}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/phase", cartHandler.AdvancePhase)
		})

		// Customer routes
		r.Route("/customer", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Post("/bookings", bookingHandler.CreateBooking)
			r.Get("/bookings", bookingHandler.ListMyBookings)
			r.Get("/bookings/{bookingID}", bookingHandler.GetMyBooking)

			r.Get("/bookings/{bookingID}/contract", contractHandler.GetContract)
			r.Post("/bookings/{bookingID}/contract/stage", contractHandler.AdvanceStage)
			r.Post("/bookings/{bookingID}/contract", contractHandler.Sign)

			r.Post("/bookings/{bookingID}/files", creativeHandler.UploadFiles)
			r.Get("/bookings/{bookingID}/files", creativeHandler.ListFiles)
			r.Delete("/bookings/{bookingID}/files/{fileID}", creativeHandler.DeleteFile)
			r.Post("/bookings/{bookingID}/files/cancel", creativeHandler.CancelUpload)
			r.Post("/bookings/{bookingID}/files/presign", creativeHandler.PresignUpload)
			r.Post("/bookings/{bookingID}/files/{fileID}/confirm", creativeHandler.ConfirmUpload)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)

			r.Get("/campaigns", adminHandler.ListCampaigns)
			r.Post("/campaigns", adminHandler.CreateCampaign)
			r.Put("/campaigns/{campaignID}", adminHandler.UpdateCampaign)
			r.Delete("/campaigns/{campaignID}", adminHandler.DeleteCampaign)

			r.Get("/bookings", adminHandler.ListBookings)
			r.Get("/bookings/{bookingID}", adminHandler.GetBooking)
			r.Patch("/bookings/{bookingID}/status", adminHandler.UpdateBookingStatus)
		})
	})

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
