package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openauthstack/user-auth-service/internal/config"
	"github.com/openauthstack/user-auth-service/internal/database"
	"github.com/openauthstack/user-auth-service/internal/database/repository"
	"github.com/openauthstack/user-auth-service/internal/router"
	"github.com/openauthstack/user-auth-service/internal/services/audit"
	"github.com/openauthstack/user-auth-service/internal/services/auth"
	"github.com/openauthstack/user-auth-service/internal/services/excel"
	"github.com/openauthstack/user-auth-service/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	_ "github.com/openauthstack/user-auth-service/docs"
)

// @title User Authentication API
// @version 1.0
// @description Authentication backend: registration, JWT access tokens, refresh tokens with revocation, and account management

// @contact.name API Support

// @license.name MIT

// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter `Bearer ` followed by your JWT access token

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	settings, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	configureLogging(settings.LogLevel)
	utils.InitSentry(settings.SentryDSN)

	db, err := database.InitDB(settings)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Audit events are best-effort; a missing broker only costs the events
	auditPublisher, err := audit.NewPublisher()
	if err != nil {
		logrus.Warnf("Failed to initialize audit publisher: %v", err)
		auditPublisher = nil
	} else {
		defer auditPublisher.Close()
	}

	authService := auth.NewAuthService(userRepo, refreshTokenRepo, settings, auditPublisher)
	excelService := excel.NewService(userRepo)

	if err := authService.EnsureAdminUser(settings); err != nil {
		logrus.Warnf("Failed to ensure admin user: %v", err)
	}

	tokenCleanup := auth.NewTokenCleanupService(refreshTokenRepo)
	tokenCleanup.Start()
	defer tokenCleanup.Stop()

	r := router.SetupRouter(db, settings, authService, excelService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", settings.Port),
		Handler: r,
	}

	go func() {
		logrus.Infof("%s starting on port %s", settings.AppName, settings.Port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", settings.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
}

func configureLogging(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
