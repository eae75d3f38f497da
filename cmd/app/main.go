package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Domenick1991/flightdashboard/config"
	"github.com/Domenick1991/flightdashboard/internal/bootstrap"
	"github.com/Domenick1991/flightdashboard/internal/broadcast"
	"github.com/Domenick1991/flightdashboard/internal/cache"
	"github.com/Domenick1991/flightdashboard/internal/kafka"
	"github.com/Domenick1991/flightdashboard/internal/logger"
	"github.com/Domenick1991/flightdashboard/internal/migrate"
	"github.com/Domenick1991/flightdashboard/internal/repository"
	"github.com/Domenick1991/flightdashboard/internal/service/flights"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.Database.DSN()); err != nil {
		lg.Fatal("migrate database", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	opts := []flights.FlightServiceOption{flights.WithLogger(lg.Named("flights"))}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Redis.FlightsCacheTTL)*time.Second)
		defer redisCache.Close()
		opts = append(opts, flights.WithCache(redisCache))
	}
	flightService := flights.NewFlightService(repository.NewFlightRepository(pool), opts...)

	hub := broadcast.NewHub(cfg.Broadcast.ClientBuffer, lg.Named("hub"))
	var events broadcast.Publisher = hub
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, lg.Named("kafka"))
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			lg.Warn("kafka unreachable, events will still be relayed when it recovers", zap.Error(err))
		}
		events = broadcast.NewFanout(lg, hub, kafka.NewEventRelay(producer, cfg.Kafka.FlightEventsTopic))
	}

	if err := bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Flights: flightService,
		Hub:     hub,
		Events:  events,
		Log:     lg,
	}); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
