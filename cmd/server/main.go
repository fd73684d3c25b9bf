package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/config"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/database"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/handlers"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/middleware"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/services"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/internal/utils"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/pkg/jwt"
	"github.com/geco-mentor/Msia-Hackathon-2025-11-Team-A-Room-Booking-and-Payment/pkg/mail"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Room Booking and Payment Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	spaceRepository := database.NewSpaceRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	paymentRepository := database.NewPaymentRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	stripeService := services.NewStripeService(&cfg.Stripe, cfg.Server.FrontendURL, logger)
	if !stripeService.Enabled() {
		logger.Warn("Running without a payment gateway; bookings stay pending until confirmed manually")
	}

	mailSender := mail.NewResendGateway(mail.ResendConfig{
		APIKey:  cfg.Email.ResendAPIKey,
		From:    cfg.Email.From,
		Timeout: cfg.Email.Timeout,
	})

	pricingService := services.NewPricingService()
	bookingService := services.NewBookingService(
		bookingRepository,
		spaceRepository,
		paymentRepository,
		pricingService,
		stripeService,
		logger,
	)
	notifyService := services.NewNotifyService(
		bookingRepository,
		spaceRepository,
		paymentRepository,
		mailSender,
		logger,
	)
	reconcileService := services.NewReconcileService(
		bookingService,
		paymentRepository,
		stripeService,
		notifyService,
		logger,
	)

	// Initialize handlers
	spaceHandler := handlers.NewSpaceHandler(spaceRepository, bookingService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, reconcileService, logger)
	webhookHandler := handlers.NewWebhookHandler(reconcileService, stripeService, cfg.Stripe.WebhookSecret, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Space catalog (public)
		spaces := v1.Group("/spaces")
		{
			spaces.GET("", spaceHandler.ListSpaces)
			spaces.GET("/:id", spaceHandler.GetSpace)
			spaces.GET("/:id/availability", spaceHandler.CheckAvailability)
		}

		// Booking routes (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
			bookings.POST("/:id/reconcile", bookingHandler.ReconcileBooking)
		}

		// Stripe webhooks (public, signature-verified)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/stripe", webhookHandler.HandleStripeWebhook)
			webhooks.GET("/stripe/test", webhookHandler.WebhookTest)
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		device := utils.ParseUserAgent(c.Request.UserAgent())

		fields := logrus.Fields{
			"status":      c.Writer.Status(),
			"method":      c.Request.Method,
			"path":        path,
			"query":       query,
			"ip":          c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
			"device_type": device.DeviceType,
			"os":          device.OS,
			"browser":     device.Browser,
		}
		if device.IsBot {
			fields["is_bot"] = true
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request failed with errors")
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
