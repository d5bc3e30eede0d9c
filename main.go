// File: leadline/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadline/config"
	"leadline/cron"
	"leadline/database"
	"leadline/database/repository/callrecords"
	"leadline/handlers"
	"leadline/middleware"
	"leadline/routes"
	"leadline/services/calendar"
	"leadline/services/call"
	"leadline/services/dispatch"
	"leadline/services/googleauth"
	"leadline/services/leadsheet"
	"leadline/services/results"
	"leadline/services/scheduling"
	"leadline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()

	// Google credentials: one consent per API, tokens on disk or in redis.
	calendarAuth := newAuthenticator(logger, "calendar", cfg.CalendarTokenFile, calendar.Scope)
	sheetsAuth := newAuthenticator(logger, "sheets", cfg.SheetsTokenFile, leadsheet.Scope)

	// repositories.
	recordsRepo := callrecords.NewMongoCallRecordRepo()
	if err := recordsRepo.EnsureIndexes(); err != nil {
		logger.Warn("main: call record indexes not ensured", zap.Error(err))
	}

	// services.
	gateway := calendar.NewGateway(
		calendar.NewGoogleBackend(cfg.CalendarID, calendarAuth),
		cfg.CalendarTimeout,
		logger.Named("calendar"),
	)
	sheet := leadsheet.NewClient(cfg.GoogleSheetID, cfg.GoogleSheetName, sheetsAuth)

	sinks := results.MultiSink{results.NewHistorySink(recordsRepo)}
	if cfg.GoogleSheetID != "" {
		sinks = append(sinks, results.NewSheetsSink(sheet, logger.Named("sheets")))
	}

	launcher := dispatch.NewLauncher(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.AgentName, logger.Named("gateway"))

	callService := &call.DefaultCallService{
		Resolver:    scheduling.NewResolver(cfg.DisplayZone(), cfg.DefaultHour),
		Gateway:     gateway,
		Sink:        sinks,
		Closer:      launcher,
		Transferrer: launcher,
		TransferTo:  cfg.TransferTo,
		Logger:      logger.Named("call"),
		Duration:    cfg.AppointmentDuration(),
		Summary:     cfg.MeetingSummary,
		HangupDelay: cfg.AutoHangupDelay,
	}

	var worker *cron.Worker
	if cfg.GoogleSheetID != "" && cfg.LiveKitURL != "" {
		source := dispatch.NewSheetSource(sheet, logger.Named("dispatch"))
		w, err := cron.InitDispatchWorker(source, launcher, logger.Named("worker"))
		if err != nil {
			logger.Sugar().Fatalf("main: failed to start dispatch worker: %v", err)
		}
		worker = w
	} else {
		logger.Info("main: dispatch disabled, GOOGLE_SHEET_ID or LIVEKIT_URL not set")
	}

	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	queueRedis := utils.NewQueueClient()
	defer queueRedis.Close()
	utils.StartHealthMonitor(healthCtx, utils.HealthTargets{
		Redis: []*redis.Client{queueRedis},
		Mongo: database.MongoClient,
		Google: map[string]oauth2.TokenSource{
			"calendar": calendarAuth,
			"sheets":   sheetsAuth,
		},
	}, 60*time.Second)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewCallHandler(callService),
		handlers.NewHistoryHandler(recordsRepo),
		handlers.NewOAuthHandler(calendarAuth, sheetsAuth),
		handlers.HealthHandler(callService),
	)
	routes.RegisterRoutes(router, handlerBundle)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// newAuthenticator loads the OAuth client secret and picks the token store.
// A missing client secret is not fatal; the API then reports AuthRequired.
func newAuthenticator(logger *zap.Logger, name, tokenFile string, scopes ...string) *googleauth.Authenticator {
	cfg := config.AppConfig
	oauthCfg, err := googleauth.LoadConfig(cfg.GoogleClientSecretFile, cfg.OAuthRedirectURL, scopes...)
	if err != nil {
		logger.Warn("main: Google client secret unavailable", zap.String("scope", name), zap.Error(err))
		oauthCfg = &oauth2.Config{Scopes: scopes, RedirectURL: cfg.OAuthRedirectURL}
	}

	var store googleauth.TokenStore = googleauth.NewFileTokenStore(tokenFile)
	if cfg.GoogleTokenStore == "redis" {
		store = googleauth.NewRedisTokenStore(utils.GetTokenCacheClient(), utils.TokenKeyPrefix+name)
	}
	return googleauth.NewAuthenticator(name, oauthCfg, store, logger.Named("auth"))
}
