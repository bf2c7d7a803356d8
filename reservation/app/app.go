package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/hotel-reservation/pkg/kafka"
	"github.com/Astemirdum/hotel-reservation/pkg/logger"
	"github.com/Astemirdum/hotel-reservation/pkg/postgres"
	"github.com/Astemirdum/hotel-reservation/reservation/config"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/handler"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/metrics"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/repository"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/repository/memory"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/server"
	"github.com/Astemirdum/hotel-reservation/reservation/internal/service"
	"github.com/Astemirdum/hotel-reservation/reservation/migrations"
	"go.uber.org/zap"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "reservation")
	defer log.Sync() //nolint:errcheck

	store, closeStore, err := newStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	loc := cfg.Location()
	opts := []service.Option{
		service.WithClock(func() time.Time { return time.Now().In(loc) }),
		service.WithMetrics(metrics.Prometheus{}),
	}
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka.NewProducer: %w", err)
		}
		publisher := kafka.NewPublisher(producer, cfg.Kafka.Topic, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("publisher.Close", zap.Error(err))
			}
		}()
		opts = append(opts, service.WithPublisher(publisher))
	}

	svc := service.NewService(store, log, opts...)
	h := handler.New(svc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
	return nil
}

func newStore(cfg *config.Config, log *zap.Logger) (repository.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn("using in-memory storage, reservations are lost on restart")
		return memory.NewStore(), func() {}, nil
	}
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return nil, nil, fmt.Errorf("db init %v", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return nil, nil, fmt.Errorf("repo reservations %v", err)
	}
	return repo, func() { _ = db.Close() }, nil
}
