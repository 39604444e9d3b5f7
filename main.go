package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"canteen-service/config"
	"canteen-service/consumers"
	"canteen-service/controllers"
	"canteen-service/database"
	"canteen-service/middlewares"
	"canteen-service/rabbitmq"
	"canteen-service/repository"
	"canteen-service/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	if err := run(cfg); err != nil {
		log.WithError(err).Fatal("Canteen service stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store
	var (
		repo   repository.Repository
		health func(context.Context) error
	)
	if cfg.DBDriver == "memory" {
		log.Warn("Using in-memory store, data is lost on exit")
		repo = repository.NewMemoryRepository()
	} else {
		db, err := database.InitDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.CloseDB()
		repo = repository.NewSQLRepository(db)
		health = db.PingContext
	}

	// Order events
	var events services.EventPublisher
	if cfg.EventsEnabled() {
		rmq, err := rabbitmq.NewRabbitMQ(cfg)
		if err != nil {
			return err
		}
		defer rmq.Close()

		if err := rmq.SetupQueues(); err != nil {
			return err
		}
		if err := consumers.StartOrderConsumer(rmq.Channel, cfg); err != nil {
			return err
		}
		events = rmq
	}

	auth := services.NewAuthService(repo)
	catalog := services.NewCatalogService(repo, repo)
	directory := services.NewDirectoryService(repo, repo)
	orders := services.NewOrderService(repo, events, services.OrderOptions{
		DedupCustomersByPhone: cfg.DedupCustomersByPhone,
		CartIdleTTL:           cfg.CartIdleTTL,
		OnRelease:             middlewares.RecordRelease,
	})

	if err := services.Bootstrap(ctx, auth, directory, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword); err != nil {
		return err
	}

	if cfg.CartIdleTTL > 0 && cfg.CartSweepInterval > 0 {
		go sweepIdleCarts(ctx, orders, cfg.CartSweepInterval)
	}

	gin.SetMode(gin.ReleaseMode)
	router := controllers.NewRouter(&controllers.Handler{
		Auth:      auth,
		Catalog:   catalog,
		Directory: directory,
		Orders:    orders,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
		Health:    health,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("Canteen service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	if n := orders.ReleaseAllCarts(shutdownCtx); n > 0 {
		log.WithField("carts", n).Info("Released open carts")
	}
	return nil
}

func sweepIdleCarts(ctx context.Context, orders *services.OrderService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := orders.ReleaseIdleCarts(ctx, now); n > 0 {
				log.WithField("carts", n).Info("Released idle carts")
			}
		}
	}
}
