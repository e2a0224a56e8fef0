package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type RateLimit struct {
	Burst    int           `mapstructure:"burst"`
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	Secret       string        `mapstructure:"secret"`
	LogLevel     string        `mapstructure:"log_level"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	CodeLength   int           `mapstructure:"code_length"`
	UnclaimedTTL time.Duration `mapstructure:"unclaimed_ttl"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
	Backpressure string        `mapstructure:"backpressure"`
	RateLimit    RateLimit     `mapstructure:"rate_limit"`

	// AllowedOrigins lists extra browser origins allowed to open a socket;
	// "*" accepts any. The serving host itself is always allowed.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PongWait is how long a connection may stay silent before it is dropped.
func (c *Config) PongWait() time.Duration {
	return c.PingPeriod * 10 / 9
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 4096)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("code_length", 4)
	v.SetDefault("unclaimed_ttl", "10m")
	v.SetDefault("reap_interval", "1m")
	v.SetDefault("backpressure", "drop")
	v.SetDefault("rate_limit.burst", 5)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("allowed_origins", []string{})
}

// Load reads, in increasing precedence: defaults, config/config.<CONFIG_ENV>.yaml
// (or file when non-empty), CHAT_* environment variables (a .env file is
// honoured) and flags.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env present but unreadable")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if file == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		file = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(file)

	v.SetEnvPrefix("chat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("file", file).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("file", file).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("mode", cfg.Mode).Int("port", cfg.Port).Str("backpressure", cfg.Backpressure).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Mode != "debug" && c.Mode != "release" && c.Mode != "test":
		return fmt.Errorf("invalid mode %q", c.Mode)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.CodeLength <= 0:
		return fmt.Errorf("invalid code_length %d", c.CodeLength)
	case c.SendBuffer <= 0:
		return fmt.Errorf("invalid send_buffer %d", c.SendBuffer)
	case c.PingPeriod <= 0 || c.WriteWait <= 0:
		return errors.New("ping_period and write_wait must be positive")
	case c.ReapInterval <= 0 || c.UnclaimedTTL <= 0:
		return errors.New("reap_interval and unclaimed_ttl must be positive")
	}
	return nil
}
