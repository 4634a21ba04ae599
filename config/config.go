package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	Env         string `mapstructure:"ENV"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Scheduling parameters.
	TimeZone           string `mapstructure:"TIME_ZONE"`
	SlotGranularityMin int    `mapstructure:"SLOT_GRANULARITY_MIN"`

	// Platform fee tiers, in fils (3-decimal minor units).
	FeeTierThresholdFils int64 `mapstructure:"FEE_TIER_THRESHOLD_FILS"`
	FeeLowFils           int64 `mapstructure:"FEE_LOW_FILS"`
	FeeHighFils          int64 `mapstructure:"FEE_HIGH_FILS"`

	// Policy defaults, overridable per provider.
	DefaultMinNoticeHours int `mapstructure:"DEFAULT_MIN_NOTICE_HOURS"`
	DefaultMaxAdvanceDays int `mapstructure:"DEFAULT_MAX_ADVANCE_DAYS"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Firebase service account for push delivery.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB_NAME", "zeena")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("TIME_ZONE", "Asia/Kuwait")
	viper.SetDefault("SLOT_GRANULARITY_MIN", 30)
	viper.SetDefault("FEE_TIER_THRESHOLD_FILS", 25000) // 25.000
	viper.SetDefault("FEE_LOW_FILS", 1000)             // 1.000
	viper.SetDefault("FEE_HIGH_FILS", 2000)            // 2.000
	viper.SetDefault("DEFAULT_MIN_NOTICE_HOURS", 2)
	viper.SetDefault("DEFAULT_MAX_ADVANCE_DAYS", 90)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
