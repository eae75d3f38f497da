package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Domenick1991/flightdashboard/config"
	"github.com/Domenick1991/flightdashboard/internal/broadcast"
	"github.com/Domenick1991/flightdashboard/internal/kafka"
	"github.com/Domenick1991/flightdashboard/internal/logger"
	"github.com/Domenick1991/flightdashboard/internal/notify"
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

	if len(cfg.Kafka.Brokers) == 0 {
		lg.Fatal("kafka.brokers is empty, nothing to consume")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.FlightEventsTopic)
	defer consumer.Close()

	notifier := notify.NewNotifier(lg.Named("notify"))

	lg.Info("consuming flight events", zap.String("topic", cfg.Kafka.FlightEventsTopic), zap.String("group", cfg.Kafka.GroupID))
	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		env, err := broadcast.DecodeEnvelope(msg.Value)
		if err != nil {
			lg.Warn("decode event", zap.Int64("offset", msg.Offset), zap.Error(err))
			return nil
		}
		if err := notifier.Notify(ctx, env); err != nil {
			lg.Warn("notify", zap.String("event", string(env.Kind)), zap.Error(err))
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		lg.Error("consumer stopped", zap.Error(err))
	}
	lg.Info("worker stopped")
}
