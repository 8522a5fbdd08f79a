// README: Entry point; loads config, wires stores and services, starts the
// HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"revline/internal/config"
	httptransport "revline/internal/http"
	"revline/internal/infra"
	"revline/internal/modules/checklist"
	"revline/internal/modules/identity"
	"revline/internal/modules/notification"
	"revline/internal/modules/order"
	"revline/internal/modules/vehicle"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := infra.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		identityStore  identity.Store
		vehicleStore   vehicle.Store
		checklistStore checklist.Store
		orderStore     order.Store
		orderInfo      checklist.OrderInfo
	)
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.WithError(err).Fatal("connect database")
		}
		defer pool.Close()
		identityStore = identity.NewPGStore(pool)
		vehicleStore = vehicle.NewPGStore(pool)
		checklistStore = checklist.NewPGStore(pool)
		pg := order.NewPGStore(pool)
		orderStore = pg
		orderInfo = pg
	} else {
		log.Warn("no database DSN configured; using in-memory stores")
		identityStore = identity.NewMemStore()
		vehicleStore = vehicle.NewMemStore()
		checklistStore = checklist.NewMemStore()
		mem := order.NewMemStore()
		orderStore = mem
		orderInfo = mem
	}

	var notifier order.Notifier
	if cfg.Redis.Addr != "" {
		notifier = notification.NewQueue(infra.NewRedis(cfg.Redis.Addr))
	}

	identitySvc := identity.NewService(identityStore, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	vehicleSvc := vehicle.NewService(vehicleStore)
	checklistSvc := checklist.NewService(checklistStore, orderInfo, vehicleSvc)
	orderSvc := order.NewService(orderStore, checklistSvc, checklistSvc, vehicleSvc, notifier, log)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Identity:  identitySvc,
		Order:     orderSvc,
		Vehicle:   vehicleSvc,
		Checklist: checklistSvc,
		Log:       log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", cfg.HTTP.Addr).Info("garage-api listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server")
	}
}
