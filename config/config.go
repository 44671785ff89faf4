package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// OpenAI assistant configuration.
	OpenAIAPIKey      string `mapstructure:"OPENAI_API_KEY"`
	OpenAIAssistantID string `mapstructure:"OPENAI_ASSISTANT_ID"`
	OpenAIBaseURL     string `mapstructure:"OPENAI_BASE_URL"`

	// Google Calendar configuration.
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	CalendarID            string `mapstructure:"CALENDAR_ID"`
	TimeZone              string `mapstructure:"TIME_ZONE"`

	// Scheduling configuration.
	BusinessOpenHour   int `mapstructure:"BUSINESS_OPEN_HOUR"`
	BusinessCloseHour  int `mapstructure:"BUSINESS_CLOSE_HOUR"`
	SearchWindowDays   int `mapstructure:"SEARCH_WINDOW_DAYS"`
	MaxBookingAttempts int `mapstructure:"MAX_BOOKING_ATTEMPTS"`

	// Run polling configuration.
	RunPollIntervalSeconds int `mapstructure:"RUN_POLL_INTERVAL_SECONDS"`
	RunMaxPolls            int `mapstructure:"RUN_MAX_POLLS"`

	// Escalation webhook for human follow-up.
	EscalationWebhookURL string `mapstructure:"ESCALATION_WEBHOOK_URL"`

	// Redis configuration (booking idempotency guard).
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
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
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	viper.SetDefault("GOOGLE_CREDENTIALS_FILE", "auth.json")
	viper.SetDefault("CALENDAR_ID", "primary")
	viper.SetDefault("TIME_ZONE", "America/New_York")
	viper.SetDefault("BUSINESS_OPEN_HOUR", 9)
	viper.SetDefault("BUSINESS_CLOSE_HOUR", 17)
	viper.SetDefault("SEARCH_WINDOW_DAYS", 7)
	viper.SetDefault("MAX_BOOKING_ATTEMPTS", 24)
	viper.SetDefault("RUN_POLL_INTERVAL_SECONDS", 2)
	viper.SetDefault("RUN_MAX_POLLS", 60)
	viper.SetDefault("ESCALATION_WEBHOOK_URL", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)

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
