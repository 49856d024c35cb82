package wire

import (
	"github.com/Digital-Creators-Team/prize-wheel-module/config"
	"github.com/Digital-Creators-Team/prize-wheel-module/db/redis"
	"github.com/Digital-Creators-Team/prize-wheel-module/events/kafka"
	"github.com/Digital-Creators-Team/prize-wheel-module/logging"
	"github.com/Digital-Creators-Team/prize-wheel-module/pkg/providers"
	"github.com/Digital-Creators-Team/prize-wheel-module/provider"
	"github.com/Digital-Creators-Team/prize-wheel-module/server"
	"github.com/google/wire"
	"github.com/rs/zerolog"
)

// ProvideLogger provides a zerolog.Logger
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideRedisClient provides a Redis client
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	return redis.New(cfg.Redis)
}

// ProvideKafkaProducer provides a Kafka producer. Returns nil when no
// brokers are configured, which the server treats as publishing disabled.
func ProvideKafkaProducer(cfg *config.Config) (*kafka.Producer, error) {
	return kafka.NewProducer(cfg.Kafka.Brokers)
}

// ProvideWalletProvider provides the points ledger provider
func ProvideWalletProvider(cfg *config.Config, logger zerolog.Logger) providers.WalletProvider {
	return provider.NewWalletProvider(cfg, logger)
}

// ProvideSpinProvider provides the latest-spin storage provider
func ProvideSpinProvider(cfg *config.Config, redisClient *redis.Client, logger zerolog.Logger) providers.SpinProvider {
	return provider.NewSpinProvider(redisClient, cfg.Roulette.LatestSpinTTL, logger)
}

// ProvideLogProvider provides the audit log provider
func ProvideLogProvider(cfg *config.Config, producer *kafka.Producer, logger zerolog.Logger) providers.LogProvider {
	return provider.NewLogProvider(cfg, producer, logger)
}

// ProvideServerOptions provides server options
func ProvideServerOptions(cfg *config.Config, logger zerolog.Logger) server.Options {
	return server.Options{
		Config: cfg,
		Logger: logger,
	}
}

// ProvideApp provides the fully wired application
func ProvideApp(
	opts server.Options,
	wallet providers.WalletProvider,
	spins providers.SpinProvider,
	logs providers.LogProvider,
	producer *kafka.Producer,
) *server.App {
	app := server.New(opts)
	app.SetWalletProvider(wallet)
	app.SetSpinProvider(spins)
	app.SetLogProvider(logs)
	app.SetKafkaProducer(producer)
	app.BuildSpinService()
	return app
}

// ConfigSet is the wire provider set for configuration
var ConfigSet = wire.NewSet(
	config.Load,
)

// LoggingSet is the wire provider set for logging
var LoggingSet = wire.NewSet(
	ProvideLogger,
)

// RedisSet is the wire provider set for Redis
var RedisSet = wire.NewSet(
	ProvideRedisClient,
)

// KafkaSet is the wire provider set for Kafka
var KafkaSet = wire.NewSet(
	ProvideKafkaProducer,
)

// ProviderSet is the wire provider set for the external providers
var ProviderSet = wire.NewSet(
	ProvideWalletProvider,
	ProvideSpinProvider,
	ProvideLogProvider,
)

// ServerSet is the wire provider set for server
var ServerSet = wire.NewSet(
	ProvideServerOptions,
	ProvideApp,
)

// DefaultSet is the default wire provider set including all common providers
var DefaultSet = wire.NewSet(
	LoggingSet,
	ServerSet,
)

// FullSet includes all providers including Redis, Kafka, and the
// external service providers
var FullSet = wire.NewSet(
	DefaultSet,
	RedisSet,
	KafkaSet,
	ProviderSet,
)
