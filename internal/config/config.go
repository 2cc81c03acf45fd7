package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// global configuration structure
type Config struct {
	Bot        BotConfig        `mapstructure:"bot"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Owners     []int64          `mapstructure:"owners"`
	Moderation ModerationConfig `mapstructure:"moderation"`
}

// Telegram bot configuration
type BotConfig struct {
	Token   string        `mapstructure:"token"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// webhook server configuration
type WebhookConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	ListenPort string `mapstructure:"listen_port"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
}

// logging configuration
type LoggerConfig struct {
	Directory string            `mapstructure:"directory"`
	Rotation  LogRotationConfig `mapstructure:"rotation"`
	Level     string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// process-wide moderation defaults; per-chat settings override most of these
type ModerationConfig struct {
	KickGraceSeconds     int `mapstructure:"kick_grace_seconds"`
	AdminCacheTTLSeconds int `mapstructure:"admin_cache_ttl_seconds"`
	RaidDurationSeconds  int `mapstructure:"raid_duration_seconds"`
	RaidActionSeconds    int `mapstructure:"raid_action_seconds"`
	QuarantineSeconds    int `mapstructure:"quarantine_seconds"`
	CaptchaKickSeconds   int `mapstructure:"captcha_kick_seconds"`
	WarnNoticeTTLSeconds int `mapstructure:"warn_notice_ttl_seconds"`
	ConfirmExpirySeconds int `mapstructure:"confirm_expiry_seconds"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.webhook.listen_port", "8443")
	v.SetDefault("bot.webhook.cert_file", "")
	v.SetDefault("bot.webhook.key_file", "")

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.charset", "utf8mb4")

	v.SetDefault("moderation.kick_grace_seconds", 45)
	v.SetDefault("moderation.admin_cache_ttl_seconds", 60)
	v.SetDefault("moderation.raid_duration_seconds", 6*3600)
	v.SetDefault("moderation.raid_action_seconds", 3600)
	v.SetDefault("moderation.quarantine_seconds", 86400)
	v.SetDefault("moderation.captcha_kick_seconds", 300)
	v.SetDefault("moderation.warn_notice_ttl_seconds", 20)
	v.SetDefault("moderation.confirm_expiry_seconds", 60)
}
