package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/togetherwethrive/enquiry-api/config"
	"github.com/togetherwethrive/enquiry-api/internal/csrf"
	"github.com/togetherwethrive/enquiry-api/internal/handlers"
	"github.com/togetherwethrive/enquiry-api/internal/middleware"
	"github.com/togetherwethrive/enquiry-api/internal/services"
	"github.com/togetherwethrive/enquiry-api/pkg/httpclient"
	"github.com/togetherwethrive/enquiry-api/pkg/logger"
	"github.com/togetherwethrive/enquiry-api/pkg/mailer"
	"github.com/togetherwethrive/enquiry-api/pkg/metrics"
	"github.com/togetherwethrive/enquiry-api/pkg/profiling"
	"github.com/togetherwethrive/enquiry-api/pkg/tracing"
	"github.com/togetherwethrive/enquiry-api/pkg/turnstile"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting enquiry API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Optional continuous profiling
	profilerStop, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Core pipeline components
	tokenStore := csrf.NewStore(time.Duration(cfg.Session.TTLHours) * time.Hour)
	verifierClient := httpclient.NewStandardClient(time.Duration(cfg.Turnstile.TimeoutSeconds) * time.Second)
	verifier := turnstile.NewVerifier(cfg.Turnstile.SecretKey, verifierClient)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)

	submissionService := services.NewSubmissionService(tokenStore, verifier, smtpMailer)

	// Handlers
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	tokenHandler := handlers.NewTokenHandler(tokenStore)
	healthHandler := handlers.NewHealthHandler()

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS: only the site itself may talk to the API
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:5173", "http://127.0.0.1:5173")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // session cookie backs the CSRF token
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters: a tight one for the mail-sending endpoints, a looser one
	// for everything else
	generalRateLimiter := middleware.NewRateLimiter(50, 100)
	defer generalRateLimiter.Stop()
	submitRateLimiter := middleware.NewRateLimiter(2, 5)
	defer submitRateLimiter.Stop()

	// Operational endpoints
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	// Public form endpoints; every route below carries a session identity
	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionMiddleware(cfg.Session))
	v1.GET("/csrf", generalRateLimiter.Middleware(), tokenHandler.IssueToken)
	v1.POST("/contact", submitRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(64*1024), submissionHandler.SubmitEnquiry)
	v1.POST("/referral", submitRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(64*1024), submissionHandler.SubmitReferral)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
