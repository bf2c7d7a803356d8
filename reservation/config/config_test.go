package config_test

import (
	"testing"
	"time"

	"github.com/Astemirdum/hotel-reservation/reservation/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("RESERVATION_HTTP_PORT", "9090")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("KAFKA_ADDRS", "k1:9092,k2:9092")
	t.Setenv("TIMEZONE", "Europe/Madrid")

	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.WarnLevel),
		config.WithWriteTimeout(time.Minute),
		config.WithStorage(config.StorageMemory),
	)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	require.Equal(t, "pg", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, config.StorageMemory, cfg.Storage)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Addrs)
	require.Equal(t, "reservations", cfg.Kafka.Topic)
	require.True(t, cfg.Kafka.Enabled())
	require.Equal(t, zapcore.WarnLevel, cfg.Log.LogLevel)
	require.Equal(t, "Europe/Madrid", cfg.Location().String())
}

func TestConfig_LocationFallback(t *testing.T) {
	t.Parallel()
	cfg := config.Config{TimeZone: "Mars/Olympus_Mons"}
	require.Equal(t, time.UTC, cfg.Location())
}
