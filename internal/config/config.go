package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "stowaway"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Mail     MailConfig     `mapstructure:"mail"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type StorageConfig struct {
	// Backend is either "s3" or "local".
	Backend string `mapstructure:"backend"`

	// AWS S3 and compatible stores
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`

	// Local directory backend, one subdirectory per bucket
	LocalRoot string `mapstructure:"local_root"`
}

// MailConfig holds the SMTP session settings used by the email notifier.
// Missing Sender or Password disables email notification.
type MailConfig struct {
	Server   string `mapstructure:"server"`
	Port     int    `mapstructure:"port"`
	Sender   string `mapstructure:"sender"`
	Password string `mapstructure:"password"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// Load reads the optional config file at path and overlays STOWAWAY_*
// environment variables. An empty path means environment and defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app.name", "stowaway")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")
	v.SetDefault("storage.backend", "s3")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.force_path_style", false)
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.local_root", "")
	v.SetDefault("mail.server", "")
	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.sender", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "s3":
	case "local":
		if c.Storage.LocalRoot == "" {
			return fmt.Errorf("storage.local_root is required for the local backend")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported type %q", c.Storage.Backend)
	}

	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		return fmt.Errorf("mail.port: %d is out of range", c.Mail.Port)
	}

	return nil
}

// MailEnabled reports whether enough is configured to open an SMTP session.
func (c *Config) MailEnabled() bool {
	return c.Mail.Sender != "" && c.Mail.Password != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
