// File: app/app.go
package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"go-bank-console/config"
	"go-bank-console/db"
	"go-bank-console/handler"
	"go-bank-console/logger"
	"go-bank-console/repository"
	"go-bank-console/router"
	"go-bank-console/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// App holds the wired layers of the console.
type App struct {
	Config        config.Config
	DB            *sql.DB
	Redis         *redis.Client
	Accounts      *service.AccountService
	Notifications service.NotificationStore
	Router        http.Handler
}

// New wires repositories, services, handlers and the router from
// config.AppConfig. Postgres and Redis are only used when their host is
// configured.
func New(ctx context.Context) (*App, error) {
	cfg := config.AppConfig
	a := &App{Config: cfg}

	var activityRepo repository.IActivityRepository = repository.NoopActivityRepository{}
	if cfg.AuditEnabled() {
		database, err := db.Connect()
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(database); err != nil {
			database.Close()
			return nil, err
		}
		a.DB = database
		activityRepo = repository.NewActivityRepository(database)
		logger.Log.Info("Activity audit store enabled")
	}

	if cfg.RedisEnabled() {
		client, err := db.ConnectRedis(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = client
		a.Notifications = service.NewRedisNotificationStore(client)
		logger.Log.Info("Notifications are stored in Redis")
	} else {
		a.Notifications = service.NewMemoryNotificationStore()
	}

	accountRepo := repository.NewAccountRepository(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout)
	a.Accounts = service.NewAccountService(accountRepo, activityRepo)

	secret := cfg.Session.SecretKey
	if secret == "" {
		generated, err := randomSecret()
		if err != nil {
			a.Close()
			return nil, err
		}
		logger.Log.Warn("session.secret_key is empty; sessions will not survive a restart")
		secret = generated
	}
	authService := service.NewAuthService(cfg.Auth.OperatorUser, cfg.Auth.OperatorPasswordHash, secret, cfg.Session.TTL)
	if !authService.OperatorAuthEnabled() {
		logger.Log.Warn("auth.operator_password_hash is empty; the console is open to anyone who can reach it")
	}

	accountHandler := handler.NewAccountHandler(a.Accounts, a.Notifications, cfg.AuditEnabled())
	a.Router = router.NewRouter(accountHandler, authService, cfg.Session.TTL)
	return a, nil
}

// Close releases the store connections and stops the in-memory
// notification sweeper.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if m, ok := a.Notifications.(*service.MemoryNotificationStore); ok {
		m.Close()
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func Run() {
	logger.Init()
	if err := config.LoadConfig("."); err != nil {
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.InitWithLevel(config.AppConfig.Log.Level)
	logger.Log.Info("Configuration loaded successfully")

	a, err := New(context.Background())
	if err != nil {
		logger.Log.Fatalf("Error starting the console: %v", err)
	}
	defer a.Close()

	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Console starting on port :%s, accounts API at %s", port, config.AppConfig.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
