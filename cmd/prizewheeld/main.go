package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/Digital-Creators-Team/prize-wheel-module/config"
	"github.com/Digital-Creators-Team/prize-wheel-module/db/redis"
	"github.com/Digital-Creators-Team/prize-wheel-module/events/kafka"
	"github.com/Digital-Creators-Team/prize-wheel-module/logging"
	"github.com/Digital-Creators-Team/prize-wheel-module/provider"
	"github.com/Digital-Creators-Team/prize-wheel-module/server"
	"github.com/spf13/cobra"
)

var (
	version    = getVersion()
	configFile string
)

// getVersion returns the module version from build info
func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "prizewheeld",
		Short: "Club prize wheel service",
		Long:  "prizewheeld runs the club roulette service: prize administration, weighted spins, venue display polling, and claim fulfillment.",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "path to the configuration file")
	return cmd
}

func serve() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.Logging)
	logger.Info().
		Str("version", version).
		Str("environment", cfg.Environment).
		Msg("Starting prize wheel service")

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	if producer == nil {
		logger.Warn().Msg("No Kafka brokers configured, spin event publishing disabled")
	}

	app := server.New(server.Options{
		Config: cfg,
		Logger: logger,
	})

	app.SetWalletProvider(provider.NewWalletProvider(cfg, logger))
	app.SetSpinProvider(provider.NewSpinProvider(redisClient, cfg.Roulette.LatestSpinTTL, logger))
	app.SetLogProvider(provider.NewLogProvider(cfg, producer, logger))
	app.SetKafkaProducer(producer)
	app.BuildSpinService()

	var consumer *kafka.Consumer
	if len(cfg.Kafka.Brokers) > 0 {
		topic := "roulette.spins"
		if t, ok := cfg.Kafka.Topics["spins"]; ok {
			topic = t
		}
		consumer = kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         topic,
			ConsumerGroup: cfg.Kafka.ConsumerGroup,
			Logger:        logger,
		}, kafka.NewSpinCache(logger))
		if err := consumer.Start(); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
		sub := consumer.SubscribeAll()
		app.AttachSpinFeed(sub.Channel)
	}

	app.UseCommonMiddlewares()
	app.RegisterHealthCheck()
	app.RegisterRoutes()

	app.OnShutdown(func() {
		if consumer != nil {
			if err := consumer.Stop(); err != nil {
				logger.Error().Err(err).Msg("Error stopping Kafka consumer")
			}
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing Kafka producer")
			}
		}
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Redis client")
		}
	})

	return app.Run()
}
