package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisTokenDB  int    `mapstructure:"REDIS_TOKEN_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Google OAuth. Tokens live either on disk or in redis.
	GoogleClientSecretFile string `mapstructure:"GOOGLE_CLIENT_SECRET_FILE"`
	GoogleTokenStore       string `mapstructure:"GOOGLE_TOKEN_STORE"`
	CalendarTokenFile      string `mapstructure:"CALENDAR_TOKEN_FILE"`
	SheetsTokenFile        string `mapstructure:"SHEETS_TOKEN_FILE"`
	OAuthRedirectURL       string `mapstructure:"OAUTH_REDIRECT_URL"`

	// Calendar and appointment rules.
	CalendarID            string        `mapstructure:"CALENDAR_ID"`
	CalendarTimeout       time.Duration `mapstructure:"CALENDAR_TIMEOUT"`
	AppointmentMinutes    int           `mapstructure:"APPOINTMENT_MINUTES"`
	DisplayUTCOffsetHours int           `mapstructure:"DISPLAY_UTC_OFFSET_HOURS"`
	DefaultHour           int           `mapstructure:"DEFAULT_HOUR"`
	MeetingSummary        string        `mapstructure:"MEETING_SUMMARY"`
	AutoHangupDelay       time.Duration `mapstructure:"AUTO_HANGUP_DELAY"`

	// Lead sheet used as job source and result sink.
	GoogleSheetID     string `mapstructure:"GOOGLE_SHEET_ID"`
	GoogleSheetName   string `mapstructure:"GOOGLE_SHEET_NAME"`
	SheetPollSchedule string `mapstructure:"SHEET_POLL_SCHEDULE"`

	// Voice gateway.
	LiveKitURL       string `mapstructure:"LIVEKIT_URL"`
	LiveKitAPIKey    string `mapstructure:"LIVEKIT_API_KEY"`
	LiveKitAPISecret string `mapstructure:"LIVEKIT_API_SECRET"`
	AgentName        string `mapstructure:"AGENT_NAME"`
	TransferTo       string `mapstructure:"TRANSFER_TO"`
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

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "leadline")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_TOKEN_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)

	viper.SetDefault("GOOGLE_CLIENT_SECRET_FILE", "client_secret.json")
	viper.SetDefault("GOOGLE_TOKEN_STORE", "file")
	viper.SetDefault("CALENDAR_TOKEN_FILE", "token.json")
	viper.SetDefault("SHEETS_TOKEN_FILE", "sheets_token.json")
	viper.SetDefault("OAUTH_REDIRECT_URL", "http://localhost:8080/oauth/google/callback")

	viper.SetDefault("CALENDAR_ID", "primary")
	viper.SetDefault("CALENDAR_TIMEOUT", "5s")
	viper.SetDefault("APPOINTMENT_MINUTES", 30)
	viper.SetDefault("DISPLAY_UTC_OFFSET_HOURS", -8)
	viper.SetDefault("DEFAULT_HOUR", 14)
	viper.SetDefault("MEETING_SUMMARY", "Landscaping Marketing Consultation")
	viper.SetDefault("AUTO_HANGUP_DELAY", "9s")

	viper.SetDefault("GOOGLE_SHEET_ID", "")
	viper.SetDefault("GOOGLE_SHEET_NAME", "Sheet1")
	viper.SetDefault("SHEET_POLL_SCHEDULE", "@every 1m")

	viper.SetDefault("LIVEKIT_URL", "")
	viper.SetDefault("LIVEKIT_API_KEY", "")
	viper.SetDefault("LIVEKIT_API_SECRET", "")
	viper.SetDefault("AGENT_NAME", "outbound-caller")
	viper.SetDefault("TRANSFER_TO", "")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// AppointmentDuration is the length of every booked or checked slot.
func (c Config) AppointmentDuration() time.Duration {
	if c.AppointmentMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.AppointmentMinutes) * time.Minute
}

// DisplayZone is the fixed civil zone used for every human-facing time.
// No DST adjustment is applied.
func (c Config) DisplayZone() *time.Location {
	name := "PST"
	if c.DisplayUTCOffsetHours != -8 {
		name = fmt.Sprintf("UTC%+d", c.DisplayUTCOffsetHours)
	}
	return time.FixedZone(name, c.DisplayUTCOffsetHours*3600)
}
