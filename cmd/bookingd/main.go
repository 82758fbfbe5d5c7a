package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"booking-dashboard-backend/config"
	"booking-dashboard-backend/internal/api"
	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/db"
	"booking-dashboard-backend/internal/notification"
	"booking-dashboard-backend/internal/stays"
	"booking-dashboard-backend/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const defaultConfigPath = "./config/config.yaml"

func main() {
	logger := log.New(os.Stdout, "bookingd ", log.LstdFlags)
	startedAt := time.Now()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			configPath = defaultConfigPath
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %q: %v", configPath, err)
	}
	logger.Printf("configuration loaded (file %q, environment %s)", configPath, cfg.Server.Environment)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys are not configured; conflict alerts are disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	var pool *notification.WorkerPool
	if webpushOptions != nil {
		pool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
	}

	responseCache := cache.New(time.Duration(cfg.Server.CacheTTLSeconds)*time.Second, 10*time.Minute)

	deps := api.Deps{
		Store: appStore,
		Views: booking.NewService(appStore, appStore, booking.Options{
			Location:   cfg.Dashboard.Location(),
			PastDays:   cfg.Dashboard.PastDays,
			FutureDays: cfg.Dashboard.FutureDays,
			Palette:    booking.Palette{Colors: cfg.Dashboard.PlatformColors, Default: cfg.Dashboard.DefaultColor},
		}),
		WebPush: webpushOptions,
		Info: api.BuildInfo{
			Version:     version,
			Environment: cfg.Server.Environment,
			StartedAt:   startedAt,
		},
	}

	if cfg.Stays.BaseURL != "" {
		client := stays.NewClient(&cfg.Stays)
		syncSvc := stays.NewService(cfg, appStore, client, pool)
		syncSvc.OnSuccess(func(*stays.Result) { responseCache.Flush() })
		deps.Syncer = syncSvc
		deps.Upstream = client

		go func() {
			if err := syncSvc.Run(ctx); err != nil {
				logger.Printf("stays sync stopped: %v", err)
			}
		}()
	} else {
		logger.Println("stays.base_url is not set; sync and reconciliation are disabled")
	}

	router := api.NewRouter(api.NewHandler(deps), &cfg.Server, responseCache)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
