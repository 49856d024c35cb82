package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Digital-Creators-Team/prize-wheel-module/logging"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment      string                 `mapstructure:"environment"`
	Server           ServerConfig           `mapstructure:"server"`
	Redis            RedisConfig            `mapstructure:"redis"`
	Kafka            KafkaConfig            `mapstructure:"kafka"`
	JWT              JWTConfig              `mapstructure:"jwt"`
	Logging          logging.Config         `mapstructure:"logging"`
	Roulette         RouletteConfig         `mapstructure:"roulette"`
	Wheel            WheelConfig            `mapstructure:"wheel"`
	Fund             FundConfig             `mapstructure:"fund"`
	ExternalServices ExternalServicesConfig `mapstructure:"external_services"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	EnableCORS   bool          `mapstructure:"enable_cors"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers       []string          `mapstructure:"brokers"`
	ConsumerGroup string            `mapstructure:"consumer_group"`
	Topics        map[string]string `mapstructure:"topics"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// RouletteConfig holds spin economics configuration
type RouletteConfig struct {
	// SpinCost is the fixed point cost charged per spin
	SpinCost int64 `mapstructure:"spin_cost"`
	// PollInterval is the venue-display polling cadence for new spins
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// LatestSpinTTL bounds how long a spin outcome stays available to pollers
	LatestSpinTTL time.Duration `mapstructure:"latest_spin_ttl"`
}

// WheelConfig holds wheel rendering geometry shared with clients.
// The reconciler and the rendered track must agree on these numbers or the
// wheel will settle on the wrong card.
type WheelConfig struct {
	// ItemWidth is the width of one prize card including gap, in track units
	ItemWidth float64 `mapstructure:"item_width"`
	// Copies is how many repeated copies of the prize sequence are rendered
	Copies int `mapstructure:"copies"`
	// MinLaps is the minimum number of full laps a spin must travel
	MinLaps int `mapstructure:"min_laps"`
	// NormalizeLaps is the offset magnitude, in laps, beyond which the stored
	// position is shifted back by whole lap-widths
	NormalizeLaps int `mapstructure:"normalize_laps"`
	// Duration is the nominal animation duration
	Duration time.Duration `mapstructure:"duration"`
	// CenterOffset positions the pointer center within the viewport
	CenterOffset float64 `mapstructure:"center_offset"`
}

// FundConfig holds club prize fund configuration
type FundConfig struct {
	// DefaultRate is the share of each spin cost accrued to a club's
	// fund when the club has no explicit entry below. Zero disables
	// accrual for unlisted clubs.
	DefaultRate float64 `mapstructure:"default_rate"`
	// Clubs lists per-club fund overrides registered at startup
	Clubs []ClubFundConfig `mapstructure:"clubs"`
}

// ClubFundConfig holds one club's fund settings
type ClubFundConfig struct {
	ClubID         string  `mapstructure:"club_id"`
	InitialBalance int64   `mapstructure:"initial_balance"`
	Rate           float64 `mapstructure:"rate"`
}

// ExternalServicesConfig holds external service configurations
type ExternalServicesConfig struct {
	WalletService ServiceConfig `mapstructure:"wallet_service"`
	LogService    ServiceConfig `mapstructure:"log_service"`
}

// ServiceConfig holds external service configuration
type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from YAML file using Viper
func Load(filename string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(filename)
	v.SetConfigType("yaml")

	// Enable environment variable substitution
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.setDefaults()

	return &config, nil
}

// LoadByEnv loads configuration based on environment using Viper
func LoadByEnv(configDir string) (*Config, error) {
	v := viper.New()

	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	env := viper.GetString("ENV")
	if env == "" {
		env = viper.GetString("APP_ENV")
	}
	if env == "" {
		env = "development"
	}

	v.SetConfigName(fmt.Sprintf("config-%s", env))
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.setDefaults()

	return &config, nil
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Roulette.SpinCost == 0 {
		c.Roulette.SpinCost = 20
	}
	if c.Roulette.PollInterval == 0 {
		c.Roulette.PollInterval = 2 * time.Second
	}
	if c.Roulette.LatestSpinTTL == 0 {
		c.Roulette.LatestSpinTTL = 24 * time.Hour
	}
	if c.Wheel.ItemWidth == 0 {
		c.Wheel.ItemWidth = 284
	}
	if c.Wheel.Copies == 0 {
		c.Wheel.Copies = 8
	}
	if c.Wheel.MinLaps == 0 {
		c.Wheel.MinLaps = 1
	}
	if c.Wheel.NormalizeLaps == 0 {
		c.Wheel.NormalizeLaps = 3
	}
	if c.Wheel.Duration == 0 {
		c.Wheel.Duration = 4 * time.Second
	}
	if c.Fund.DefaultRate == 0 {
		c.Fund.DefaultRate = 0.1
	}
	if c.ExternalServices.WalletService.Timeout == 0 {
		c.ExternalServices.WalletService.Timeout = 10 * time.Second
	}
	if c.ExternalServices.LogService.Timeout == 0 {
		c.ExternalServices.LogService.Timeout = 10 * time.Second
	}
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return c.Addr
}

// IsDevelopment returns true if environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
