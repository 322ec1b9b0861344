package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config carries every knob both services need. It is built once at
// startup and passed by value; nothing mutates it afterwards.
type Config struct {
	ProxyAddr  string
	IngestAddr string

	// IngestURL is where the proxy forwards accepted submissions.
	IngestURL string

	RunLocal bool

	OrdersTable string
	DedupTable  string
	SheetURL    string

	ForwardTimeout time.Duration
	RetryPause     time.Duration

	EmailEnabled bool
	NotifyEmail  string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	TelegramEnabled  bool
	TelegramBotToken string
	TelegramChatID   string

	AnalyticsURL string

	LogLevel string
}

// Load reads an optional .env file, then the real environment. Env vars
// always win over the file.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// fine: most deployments configure through the environment only
		logrus.Debugf("no .env file loaded: %v", err)
	}
	v.AutomaticEnv()

	v.SetDefault("PROXY_ADDR", ":8080")
	v.SetDefault("INGEST_ADDR", ":8081")
	v.SetDefault("INGEST_URL", "http://localhost:8081/orders")
	v.SetDefault("ORDERS_TABLE", "watch-orders")
	v.SetDefault("DEDUP_TABLE", "watch-orders-dedup")
	v.SetDefault("FORWARD_TIMEOUT_MS", 6000)
	v.SetDefault("RETRY_PAUSE_MS", 500)
	v.SetDefault("EMAIL_ENABLED", true)
	v.SetDefault("TELEGRAM_ENABLED", false)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("LOG_LEVEL", "info")

	cfg := Config{
		ProxyAddr:  v.GetString("PROXY_ADDR"),
		IngestAddr: v.GetString("INGEST_ADDR"),
		IngestURL:  v.GetString("INGEST_URL"),

		RunLocal: v.GetBool("RUN_LOCAL"),

		OrdersTable: v.GetString("ORDERS_TABLE"),
		DedupTable:  v.GetString("DEDUP_TABLE"),
		SheetURL:    v.GetString("SHEET_URL"),

		ForwardTimeout: time.Duration(v.GetInt("FORWARD_TIMEOUT_MS")) * time.Millisecond,
		RetryPause:     time.Duration(v.GetInt("RETRY_PAUSE_MS")) * time.Millisecond,

		EmailEnabled: v.GetBool("EMAIL_ENABLED"),
		NotifyEmail:  v.GetString("NOTIFY_EMAIL"),
		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),

		TelegramEnabled:  v.GetBool("TELEGRAM_ENABLED"),
		TelegramBotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   v.GetString("TELEGRAM_CHAT_ID"),

		AnalyticsURL: v.GetString("ANALYTICS_URL"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}

	return cfg, nil
}

// ValidateNotifications checks that every enabled channel has the settings
// it needs. Only the ingest service calls this; the proxy never sends
// notifications and must boot on a bare environment.
func (c Config) ValidateNotifications() error {
	if c.EmailEnabled && c.NotifyEmail == "" {
		return fmt.Errorf("EMAIL_ENABLED is set but NOTIFY_EMAIL is empty")
	}
	if c.TelegramEnabled && (c.TelegramBotToken == "" || c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_ENABLED is set but TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID are incomplete")
	}
	return nil
}

// NewLogger builds the shared logrus logger from the configured level.
func NewLogger(cfg Config) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
