package config

import (
	"testing"
	"time"
)

func TestLoad_BareEnvironment(t *testing.T) {
	t.Setenv("NOTIFY_EMAIL", "")
	t.Setenv("EMAIL_ENABLED", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("a bare environment must load: %v", err)
	}
	if cfg.ProxyAddr != ":8080" || cfg.IngestAddr != ":8081" {
		t.Fatalf("defaults: proxy=%q ingest=%q", cfg.ProxyAddr, cfg.IngestAddr)
	}
	if cfg.ForwardTimeout != 6*time.Second {
		t.Fatalf("forward timeout = %v", cfg.ForwardTimeout)
	}
}

func TestValidateNotifications(t *testing.T) {
	cfg := Config{EmailEnabled: true}
	if err := cfg.ValidateNotifications(); err == nil {
		t.Fatal("email enabled without recipient must be rejected")
	}
	cfg.NotifyEmail = "orders@example.com"
	if err := cfg.ValidateNotifications(); err != nil {
		t.Fatalf("complete email config rejected: %v", err)
	}

	cfg = Config{TelegramEnabled: true, TelegramBotToken: "bot-token"}
	if err := cfg.ValidateNotifications(); err == nil {
		t.Fatal("telegram enabled without chat id must be rejected")
	}
	cfg.TelegramChatID = "chat-1"
	if err := cfg.ValidateNotifications(); err != nil {
		t.Fatalf("complete telegram config rejected: %v", err)
	}
}
