package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.CodeLength != 4 || cfg.Backpressure != "drop" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.PingPeriod != 54*time.Second || cfg.RateLimit.Interval != time.Second {
		t.Errorf("durations not decoded: %+v", cfg)
	}
	if cfg.PongWait() != 60*time.Second {
		t.Errorf("PongWait = %s", cfg.PongWait())
	}
}

func TestLoadPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	body := "port: 9000\nbackpressure: kick\nrate_limit:\n  burst: 9\nallowed_origins:\n  - https://app.example\n"
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHAT_CODE_LENGTH", "6")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	if err := flags.Parse([]string{"--port=9100"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(file, flags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("flag should win, port = %d", cfg.Port)
	}
	if cfg.CodeLength != 6 {
		t.Errorf("env should override default, code_length = %d", cfg.CodeLength)
	}
	if cfg.Backpressure != "kick" || cfg.RateLimit.Burst != 9 {
		t.Errorf("file values lost: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example" {
		t.Errorf("allowed_origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("CHAT_PORT", "70000")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatal("expected validation error")
	}
}
