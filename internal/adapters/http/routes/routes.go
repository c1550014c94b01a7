package routes

import (
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/http/handlers"
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/http/middleware"
	"github.com/Goldwhyit/almere-pickleball/internal/adapters/persistence/repositories"
	"github.com/Goldwhyit/almere-pickleball/internal/config"
	"github.com/Goldwhyit/almere-pickleball/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	trialRepo := repositories.NewTrialRepository(db)
	registrationRepo := repositories.NewRegistrationRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	photoRepo := repositories.NewPhotoRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, memberRepo, cfg)
	trialService := services.NewTrialService(userRepo, memberRepo, trialRepo, authService)
	bookingService := services.NewBookingService(registrationRepo, trialRepo, memberRepo)
	membershipService := services.NewMembershipService(userRepo, memberRepo, paymentRepo, authService)
	adminService := services.NewAdminService(userRepo, memberRepo, registrationRepo, trialRepo, paymentRepo)
	photoService := services.NewPhotoService(photoRepo, cfg.UploadDir)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	trialHandler := handlers.NewTrialHandler(trialService, authHandler, cfg)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	membershipHandler := handlers.NewMembershipHandler(membershipService, authHandler)
	adminHandler := handlers.NewAdminHandler(adminService)
	photoHandler := handlers.NewPhotoHandler(photoService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Uploaded gallery images
	app.Static("/uploads", cfg.UploadDir)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Trial lesson routes
	trialRoutes := apiV1.Group("/trial-lessons")
	setupTrialRoutes(trialRoutes, trialHandler, cfg)

	// Training booking routes
	trainingRoutes := apiV1.Group("/trainings")
	setupTrainingRoutes(trainingRoutes, bookingHandler, cfg)

	// Membership routes
	membershipRoutes := apiV1.Group("/memberships")
	setupMembershipRoutes(membershipRoutes, membershipHandler, cfg)

	// Public photo gallery
	apiV1.Get("/photos", photoHandler.ListActive)

	// Admin routes (Admin only)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler, trialHandler, photoHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, rate limited against brute force
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
	router.Post("/change-password", middleware.AuthMiddleware(cfg), handler.ChangePassword)
}

// setupTrialRoutes configures trial lesson routes
func setupTrialRoutes(router fiber.Router, handler *handlers.TrialHandler, cfg *config.Config) {
	// Public signup, rate limited
	router.Post("/signup", middleware.AuthRateLimiter(), handler.Signup)

	// Protected routes
	router.Get("/status", middleware.AuthMiddleware(cfg), handler.MyStatus)
	router.Get("/my-lessons", middleware.AuthMiddleware(cfg), handler.MyLessons)
	router.Post("/book-dates", middleware.AuthMiddleware(cfg), handler.BookDates)
	router.Put("/:id/reschedule", middleware.AuthMiddleware(cfg), handler.Reschedule)
	router.Post("/convert", middleware.AuthMiddleware(cfg), handler.Convert)
	router.Post("/decline", middleware.AuthMiddleware(cfg), handler.Decline)
}

// setupTrainingRoutes configures training booking routes
func setupTrainingRoutes(router fiber.Router, handler *handlers.BookingHandler, cfg *config.Config) {
	// Public slot overview
	router.Get("/available", handler.AvailableSlots)

	// Protected routes
	router.Post("/register", middleware.AuthMiddleware(cfg), handler.Register)
	router.Delete("/register/:id", middleware.AuthMiddleware(cfg), handler.CancelRegistration)
	router.Get("/my-registrations", middleware.AuthMiddleware(cfg), handler.MyRegistrations)
	router.Post("/punch", middleware.AuthMiddleware(cfg), handler.BookPunchSession)
	router.Delete("/punch/:id", middleware.AuthMiddleware(cfg), handler.CancelPunchSession)
	router.Get("/my-bookings", middleware.AuthMiddleware(cfg), handler.MyBookings)
}

// setupMembershipRoutes configures membership routes
func setupMembershipRoutes(router fiber.Router, handler *handlers.MembershipHandler, cfg *config.Config) {
	// Public routes
	router.Get("/types", handler.Types)
	router.Post("/apply", middleware.AuthRateLimiter(), handler.Apply)

	// Protected routes
	router.Get("/payment-status", middleware.AuthMiddleware(cfg), handler.PaymentStatus)
	router.Post("/session-payment", middleware.AuthMiddleware(cfg), handler.CreateSessionPayment)
	router.Get("/monthly-payment/check", middleware.AuthMiddleware(cfg), handler.CheckMonthlyPayment)
	router.Post("/monthly-payment/confirm", middleware.AuthMiddleware(cfg), handler.ConfirmMonthlyPayment)
}

// setupAdminRoutes configures back office routes (Admin only)
func setupAdminRoutes(
	router fiber.Router,
	adminHandler *handlers.AdminHandler,
	trialHandler *handlers.TrialHandler,
	photoHandler *handlers.PhotoHandler,
) {
	// Dashboard
	router.Get("/dashboard", adminHandler.Overview)
	router.Get("/stats", adminHandler.Stats)

	// Member management
	router.Get("/members", adminHandler.ListMembers)
	router.Put("/members/:id", adminHandler.UpdateMember)
	router.Delete("/members/:id", adminHandler.DeleteMember)
	router.Put("/members/:id/status", adminHandler.SetMembershipStatus)
	router.Put("/members/:id/toggle-admin", adminHandler.ToggleAdmin)
	router.Put("/members/:id/mark-paid", adminHandler.MarkPaid)

	// Training planning
	router.Get("/trainings", adminHandler.TrainingPlanning)

	// Payments
	router.Get("/payments", adminHandler.Payments)
	router.Get("/payments/history", adminHandler.PaymentHistory)

	// Trial follow-up
	router.Get("/trial-members", trialHandler.ListTrialMembers)
	router.Get("/trial-members/:id", trialHandler.TrialMemberDetails)
	router.Put("/trial-lessons/:id/complete", trialHandler.CompleteLesson)
	router.Get("/trial-stats", trialHandler.TrialStats)

	// Photo gallery
	router.Get("/photos", photoHandler.ListAll)
	router.Post("/photos", photoHandler.Create)
	router.Post("/photos/upload", photoHandler.Upload)
	router.Put("/photos/reorder", photoHandler.Reorder)
	router.Put("/photos/:id", photoHandler.Update)
	router.Put("/photos/:id/toggle", photoHandler.ToggleActive)
	router.Delete("/photos/:id", photoHandler.Delete)
}
