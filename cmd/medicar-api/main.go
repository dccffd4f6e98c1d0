// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"medicar/internal/config"
	httptransport "medicar/internal/http"
	"medicar/internal/infra"
	"medicar/internal/maps"
	"medicar/internal/modules/assignment"
	"medicar/internal/modules/availability"
	"medicar/internal/modules/destination"
	"medicar/internal/modules/driver"
	"medicar/internal/modules/patient"
	"medicar/internal/modules/ride"
	"medicar/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	amqpConn, err := infra.NewAMQP(cfg.AMQP.URL)
	if err != nil {
		logger.Fatal("connect rabbitmq", zap.Error(err))
	}
	defer amqpConn.Close()

	notifier, err := notify.New(amqpConn, logger)
	if err != nil {
		logger.Fatal("init notifier", zap.Error(err))
	}

	var routes ride.RouteEstimator
	if cfg.Maps.APIKey != "" {
		rs, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("init maps client", zap.Error(err))
		}
		routes = rs
	}

	availabilityStore := availability.NewStore(dbPool)
	availabilitySvc := availability.NewService(availabilityStore)

	rideStore := ride.NewStore(dbPool)
	rideSvc := ride.NewService(rideStore, availabilitySvc, notifier, routes)

	patientSvc := patient.NewService(patient.NewStore(dbPool))
	driverSvc := driver.NewService(driver.NewStore(dbPool))
	destinationSvc := destination.NewService(destination.NewStore(dbPool))

	assignmentSvc := assignment.NewService(driverSvc, rideStore, availabilitySvc)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Rides:        rideSvc,
		Assignment:   assignmentSvc,
		Availability: availabilitySvc,
		Patients:     patientSvc,
		Drivers:      driverSvc,
		Destinations: destinationSvc,
		Verifier:     infra.NewJWTVerifier(cfg.Auth.JWTSecret),
		Redis:        redisClient,
		Logger:       logger,
		RatePerMin:   cfg.RateLimit.PerMinute,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("http server", zap.Error(err))
	}
}
