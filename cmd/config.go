package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	LogEnv   string
	LogLevel string

	KafkaBrokers      []string
	KafkaWriteTimeout time.Duration

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	SettingsCacheTTL time.Duration

	OrderNumberPrefix     string
	LoadTransferTTL       time.Duration
	ReturnTransferTTL     time.Duration
	AdjustmentTransferTTL time.Duration

	OutboxRelaySchedule    string
	TransferExpirySchedule string

	HideZeroQuantities bool
	VisibleProductIDs  []kernel.UUID
}

// DSN builds the Postgres connection string gorm opens.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads the configuration from the environment. A .env file in the
// working directory, when present, is loaded first and never overrides
// variables that are already set.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := Config{
		HTTPPort:   v.GetString("HTTP_PORT"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),

		LogEnv:   v.GetString("LOG_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		KafkaBrokers:      splitList(v.GetString("KAFKA_BROKERS")),
		KafkaWriteTimeout: v.GetDuration("KAFKA_WRITE_TIMEOUT"),

		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		SettingsCacheTTL: v.GetDuration("SETTINGS_CACHE_TTL"),

		OrderNumberPrefix:     v.GetString("ORDER_NUMBER_PREFIX"),
		LoadTransferTTL:       v.GetDuration("TRANSFER_LOAD_TTL"),
		ReturnTransferTTL:     v.GetDuration("TRANSFER_RETURN_TTL"),
		AdjustmentTransferTTL: v.GetDuration("TRANSFER_ADJUSTMENT_TTL"),

		OutboxRelaySchedule:    v.GetString("JOB_OUTBOX_RELAY_SCHEDULE"),
		TransferExpirySchedule: v.GetString("JOB_TRANSFER_EXPIRY_SCHEDULE"),

		HideZeroQuantities: v.GetBool("STOCK_HIDE_ZERO_QUANTITIES"),
	}

	var err error
	if cfg.VisibleProductIDs, err = queries.ParseProductList(v.GetString("STOCK_VISIBLE_PRODUCTS")); err != nil {
		return Config{}, fmt.Errorf("STOCK_VISIBLE_PRODUCTS: %w", err)
	}

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "fulfillment")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("LOG_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_WRITE_TIMEOUT", "10s")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SETTINGS_CACHE_TTL", "5m")
	v.SetDefault("ORDER_NUMBER_PREFIX", "ORD")
	v.SetDefault("TRANSFER_LOAD_TTL", "30m")
	v.SetDefault("TRANSFER_RETURN_TTL", "2h")
	v.SetDefault("TRANSFER_ADJUSTMENT_TTL", "15m")
}

func (c Config) validate() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is empty")
	}
	if strings.TrimSpace(c.OrderNumberPrefix) == "" {
		return errors.New("ORDER_NUMBER_PREFIX is empty")
	}
	for name, ttl := range map[string]time.Duration{
		"TRANSFER_LOAD_TTL":       c.LoadTransferTTL,
		"TRANSFER_RETURN_TTL":     c.ReturnTransferTTL,
		"TRANSFER_ADJUSTMENT_TTL": c.AdjustmentTransferTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, ttl)
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
