package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"concierge/assistant"
	"concierge/calendar"
	"concierge/config"
	"concierge/handlers"
	"concierge/middleware"
	"concierge/routes"
	"concierge/services/conversation"
	"concierge/services/notification"
	"concierge/services/scheduling"
	"concierge/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	zone, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid TIME_ZONE %q: %v", cfg.TimeZone, err)
	}

	ctx := context.Background()

	// The guard is optional: without Redis the engine falls back to the
	// plain re-check-then-commit protocol.
	var guard scheduling.BookingGuard
	if cacheClient, err := utils.InitCache(); err != nil {
		logger.Sugar().Warnf("main: redis unavailable, booking guard disabled: %v", err)
	} else {
		guard = scheduling.NewRedisBookingGuard(cacheClient, 2*time.Hour)
		utils.StartHealthMonitor(cacheClient)
	}

	calendarClient, err := calendar.NewClient(ctx, cfg.GoogleCredentialsFile)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar client: %v", err)
	}

	assistantClient := assistant.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	profile, err := assistantClient.GetAssistant(ctx, cfg.OpenAIAssistantID)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to retrieve assistant %s: %v", cfg.OpenAIAssistantID, err)
	}
	logger.Sugar().Infof("main: using assistant %q (model %s)", profile.Name, profile.Model)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// services.
	schedulingEngine := &scheduling.DefaultSchedulingEngine{
		Backend:    calendarClient,
		Guard:      guard,
		ResourceID: cfg.CalendarID,
		Zone:       zone,
		OpenHour:   cfg.BusinessOpenHour,
		CloseHour:  cfg.BusinessCloseHour,
		WindowDays: cfg.SearchWindowDays,
		MaxRetries: cfg.MaxBookingAttempts,
	}

	conversationService := &conversation.DefaultConversationService{
		Backend:      assistantClient,
		Dispatcher:   &conversation.DefaultToolDispatcher{Scheduler: schedulingEngine},
		AssistantID:  cfg.OpenAIAssistantID,
		PollInterval: time.Duration(cfg.RunPollIntervalSeconds) * time.Second,
		MaxPolls:     cfg.RunMaxPolls,
	}

	notifier := notification.NewWebhookNotifier(cfg.EscalationWebhookURL)
	chatHandler := handlers.NewChatHandler(conversationService, notifier, zone)

	routes.RegisterRoutes(router, chatHandler)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
